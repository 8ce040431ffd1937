package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/suitesmith/internal/core/domain"
	"github.com/custodia-labs/suitesmith/internal/core/ports/driven"
	"github.com/custodia-labs/suitesmith/internal/core/ports/driving"
	"github.com/custodia-labs/suitesmith/internal/logger"
)

// Ensure WorkflowService implements the interface.
var _ driving.WorkflowService = (*WorkflowService)(nil)

// WorkflowService runs the explore, design and code generation phases
// against the external collaborators and records results in the repository.
type WorkflowService struct {
	repo         driving.RepositoryService
	explorer     driven.PageExplorer
	assistant    driven.Assistant
	desiredCount int
}

// NewWorkflowService creates a new workflow service.
// explorer and assistant may be nil; the phases that need them then fail.
func NewWorkflowService(repo driving.RepositoryService, explorer driven.PageExplorer, assistant driven.Assistant) *WorkflowService {
	return &WorkflowService{
		repo:         repo,
		explorer:     explorer,
		assistant:    assistant,
		desiredCount: domain.DefaultDesiredCount,
	}
}

// SetDesiredCount sets the count used when DesignSuite is given zero.
func (s *WorkflowService) SetDesiredCount(n int) {
	if n > 0 {
		s.desiredCount = n
	}
}

// Explore captures url and stores it as a new exploration.
func (s *WorkflowService) Explore(ctx context.Context, url, name string) (*domain.Exploration, error) {
	if s.repo == nil || s.explorer == nil {
		return nil, domain.ErrNotImplemented
	}
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, fmt.Errorf("%w: url is required", domain.ErrInvalidInput)
	}

	logger.Section("Explore")
	logger.Debug("exploring %s", url)

	snap, err := s.explorer.Explore(ctx, url)
	if err != nil {
		return nil, err
	}

	page, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding page snapshot: %w", domain.ErrValidation, err)
	}

	if name == "" {
		name = snap.Title
	}
	if name == "" {
		name = url
	}

	logger.Debug("found %d elements on %q", len(snap.Elements), snap.Title)
	return s.repo.AddExploration(ctx, domain.Exploration{
		Name: name,
		URL:  url,
		Page: page,
	})
}

// DesignSuite asks the assistant for test cases and stores them as a new suite.
// The exploration's page payload is copied into the suite.
func (s *WorkflowService) DesignSuite(ctx context.Context, explorationID, name string, count int) (*domain.TestSuite, error) {
	if s.repo == nil {
		return nil, domain.ErrNotImplemented
	}
	if s.assistant == nil {
		return nil, domain.ErrLLMUnavailable
	}
	if count <= 0 {
		count = s.desiredCount
	}

	exploration, err := s.repo.GetExploration(explorationID)
	if err != nil {
		return nil, err
	}

	snap, err := domain.DecodePageSnapshot(exploration.Page)
	if err != nil {
		return nil, fmt.Errorf("%w: exploration %s payload: %w", domain.ErrValidation, explorationID, err)
	}
	if snap.URL == "" {
		snap.URL = exploration.URL
	}

	logger.Section("Design")
	logger.Debug("designing %d test cases for %s", count, exploration.URL)

	result, err := s.assistant.DesignTests(ctx, snap, count)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateTestCases(result.TestCases); err != nil {
		return nil, err
	}

	cases := domain.CloneTestCases(result.TestCases)
	domain.RenumberTestCases(cases)

	if name == "" {
		name = exploration.Name + " Suite"
	}

	logger.Debug("designed %d test cases, coverage %.1f%%", len(cases), result.CoverageScore)
	return s.repo.AddSuite(ctx, domain.TestSuite{
		Name:          name,
		URL:           exploration.URL,
		TestCases:     cases,
		Exploration:   exploration.Page,
		CoverageScore: result.CoverageScore,
	})
}

// GenerateCode renders a stored suite as executable test code.
func (s *WorkflowService) GenerateCode(ctx context.Context, suiteID, instructions string) (*domain.CodeResult, error) {
	if s.repo == nil {
		return nil, domain.ErrNotImplemented
	}
	if s.assistant == nil {
		return nil, domain.ErrLLMUnavailable
	}

	suite, err := s.repo.GetSuite(suiteID)
	if err != nil {
		return nil, err
	}
	if len(suite.TestCases) == 0 {
		return nil, fmt.Errorf("%w: suite %s has no test cases", domain.ErrInvalidInput, suiteID)
	}

	snap, err := domain.DecodePageSnapshot(suite.Exploration)
	if err != nil {
		logger.Warn("suite %s page snapshot unreadable, generating without elements: %v", suiteID, err)
		snap = domain.PageSnapshot{}
	}

	logger.Section("Generate Code")
	return s.assistant.GenerateCode(ctx, domain.CodeRequest{
		TestCases:          suite.TestCases,
		URL:                suite.URL,
		SuiteName:          suite.Name,
		Elements:           snap.Elements,
		CustomInstructions: instructions,
	})
}
