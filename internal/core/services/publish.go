package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/suitesmith/internal/core/domain"
	"github.com/custodia-labs/suitesmith/internal/core/ports/driven"
	"github.com/custodia-labs/suitesmith/internal/core/ports/driving"
)

// Ensure PublishService implements the interface.
var _ driving.PublishService = (*PublishService)(nil)

// PublishService renders stored suites and hands them to a publisher.
type PublishService struct {
	repo      driving.RepositoryService
	publisher driven.Publisher
}

// NewPublishService creates a new publish service. publisher may be nil.
func NewPublishService(repo driving.RepositoryService, publisher driven.Publisher) *PublishService {
	return &PublishService{
		repo:      repo,
		publisher: publisher,
	}
}

// exportedSuite is the JSON export shape.
type exportedSuite struct {
	Name          string            `json:"name"`
	URL           string            `json:"url"`
	CoverageScore float64           `json:"coverage_score"`
	TestCases     []domain.TestCase `json:"test_cases"`
}

// Export renders a stored suite in the given format.
func (s *PublishService) Export(suiteID string, format driving.ExportFormat) (string, error) {
	if s.repo == nil {
		return "", domain.ErrNotImplemented
	}
	suite, err := s.repo.GetSuite(suiteID)
	if err != nil {
		return "", err
	}

	switch format {
	case driving.ExportJSON, "":
		data, err := json.MarshalIndent(exportedSuite{
			Name:          suite.Name,
			URL:           suite.URL,
			CoverageScore: suite.CoverageScore,
			TestCases:     suite.TestCases,
		}, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encoding suite: %w", err)
		}
		return string(data) + "\n", nil
	case driving.ExportMarkdown:
		return RenderMarkdown(*suite), nil
	default:
		return "", fmt.Errorf("%w: export format %q", domain.ErrInvalidInput, format)
	}
}

// Publish exports a suite and uploads it through the publisher.
func (s *PublishService) Publish(ctx context.Context, suiteID string, format driving.ExportFormat) (*domain.PublishResult, error) {
	if s.publisher == nil {
		return nil, domain.ErrNotImplemented
	}
	content, err := s.Export(suiteID, format)
	if err != nil {
		return nil, err
	}
	suite, err := s.repo.GetSuite(suiteID)
	if err != nil {
		return nil, err
	}

	ext := ".json"
	if format == driving.ExportMarkdown {
		ext = ".md"
	}
	filename := slug(suite.Name) + ext
	description := fmt.Sprintf("%s: %d test cases for %s", suite.Name, len(suite.TestCases), suite.URL)

	return s.publisher.Publish(ctx, filename, description, content)
}

// PublishCode uploads generated code as test_<suite>.py.
func (s *PublishService) PublishCode(ctx context.Context, suiteID, code string) (*domain.PublishResult, error) {
	if s.publisher == nil || s.repo == nil {
		return nil, domain.ErrNotImplemented
	}
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("%w: no code to publish", domain.ErrInvalidInput)
	}
	suite, err := s.repo.GetSuite(suiteID)
	if err != nil {
		return nil, err
	}

	filename := "test_" + strings.ReplaceAll(slug(suite.Name), "-", "_") + ".py"
	description := fmt.Sprintf("%s: generated tests for %s", suite.Name, suite.URL)
	return s.publisher.Publish(ctx, filename, description, code)
}

// RenderMarkdown renders a suite as a Markdown document.
func RenderMarkdown(suite domain.TestSuite) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", suite.Name)
	if suite.URL != "" {
		fmt.Fprintf(&b, "URL: %s\n\n", suite.URL)
	}
	if suite.CoverageScore > 0 {
		fmt.Fprintf(&b, "Coverage: %.1f%%\n\n", suite.CoverageScore)
	}

	for _, tc := range suite.TestCases {
		fmt.Fprintf(&b, "## %d. %s\n\n", tc.ID, tc.Name)
		fmt.Fprintf(&b, "**Priority:** %s\n\n", tc.Priority)
		if tc.Description != "" {
			fmt.Fprintf(&b, "%s\n\n", tc.Description)
		}
		if len(tc.Steps) > 0 {
			b.WriteString("**Steps:**\n\n")
			for i, step := range tc.Steps {
				fmt.Fprintf(&b, "%d. %s\n", i+1, step)
			}
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "**Expected:** %s\n\n", tc.ExpectedOutcome)
	}
	return b.String()
}

// slug turns a display name into a file name.
func slug(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "suite"
	}
	return out
}
