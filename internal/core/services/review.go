package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/suitesmith/internal/core/domain"
	"github.com/custodia-labs/suitesmith/internal/core/ports/driven"
	"github.com/custodia-labs/suitesmith/internal/core/ports/driving"
	"github.com/custodia-labs/suitesmith/internal/logger"
)

// Ensure ReviewService implements the interface.
var _ driving.ReviewService = (*ReviewService)(nil)

var reviewLog = logger.For("review")

// reviewTransitions is the reconciliation state machine.
// A state may only move to the states listed for it.
var reviewTransitions = map[domain.ReviewState][]domain.ReviewState{
	domain.ReviewViewing: {domain.ReviewEditing},
	domain.ReviewEditing: {domain.ReviewEditing, domain.ReviewDirty, domain.ReviewViewing},
	domain.ReviewDirty:   {domain.ReviewDirty, domain.ReviewEditing, domain.ReviewSaving, domain.ReviewViewing},
	domain.ReviewSaving:  {domain.ReviewSaved, domain.ReviewDirty},
	domain.ReviewSaved:   {domain.ReviewEditing, domain.ReviewDirty, domain.ReviewViewing},
}

// ReviewService owns the single live edit buffer and reconciles it with
// the repository.
//
// The dirty signal compares the buffer with the baseline, which is the
// test case sequence most recently persisted for the open suite.
type ReviewService struct {
	mu        sync.Mutex
	repo      driving.RepositoryService
	assistant driven.Assistant
	policy    domain.DirtyPolicy
	now       func() time.Time

	state    domain.ReviewState
	buffer   *EditBuffer
	baseline []domain.TestCase
	inFlight bool
	lastErr  error

	// unsynced is set when a save failed after the repository had already
	// taken the buffer into memory. Discarding must then restore baseline.
	unsynced bool
}

// NewReviewService creates a review workspace over repo.
// assistant may be nil, in which case SendChat reports ErrLLMUnavailable.
func NewReviewService(repo driving.RepositoryService, assistant driven.Assistant, policy domain.DirtyPolicy) *ReviewService {
	if !policy.IsValid() {
		policy = domain.DirtyPolicyConfirm
	}
	return &ReviewService{
		repo:      repo,
		assistant: assistant,
		policy:    policy,
		now:       time.Now,
		state:     domain.ReviewViewing,
	}
}

// SetDirtyPolicy changes how unsaved edits are handled when leaving a suite.
func (s *ReviewService) SetDirtyPolicy(policy domain.DirtyPolicy) error {
	if !policy.IsValid() {
		return fmt.Errorf("%w: dirty policy %q", domain.ErrInvalidInput, policy)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policy = policy
	return nil
}

// SetClock replaces the time source used for chat message timestamps.
func (s *ReviewService) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// transition moves to state to, or fails if the state machine forbids it.
// Callers must hold the lock.
func (s *ReviewService) transition(to domain.ReviewState) error {
	for _, allowed := range reviewTransitions[s.state] {
		if allowed == to {
			if s.state != to {
				reviewLog.Debug("%s -> %s", s.state, to)
			}
			s.state = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, s.state, to)
}

// dirty reports whether the buffer differs from the baseline.
// Callers must hold the lock.
func (s *ReviewService) dirty() bool {
	return s.buffer != nil && !s.buffer.Equal(s.baseline)
}

// settle recomputes Editing or Dirty after the buffer changed.
// Callers must hold the lock.
func (s *ReviewService) settle() error {
	if s.dirty() {
		return s.transition(domain.ReviewDirty)
	}
	if s.state == domain.ReviewSaved {
		return nil
	}
	return s.transition(domain.ReviewEditing)
}

// Status returns the current state and dirty signal.
func (s *ReviewService) Status() domain.ReviewStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := domain.ReviewStatus{
		State:        s.state,
		Dirty:        s.dirty(),
		ChatInFlight: s.inFlight,
		LastError:    s.lastErr,
	}
	if s.buffer != nil {
		status.SuiteID = s.buffer.SuiteID()
	}
	return status
}

// TestCases returns a copy of the buffer, or nil when no suite is open.
func (s *ReviewService) TestCases() []domain.TestCase {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buffer == nil {
		return nil
	}
	return s.buffer.TestCases()
}

// Open starts reviewing suiteID, replacing any open buffer.
func (s *ReviewService) Open(ctx context.Context, suiteID string, discard bool) error {
	if s.repo == nil {
		return domain.ErrNotImplemented
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	suite, err := s.repo.GetSuite(suiteID)
	if err != nil {
		return err
	}

	if err := s.release(ctx, discard); err != nil {
		return err
	}

	s.buffer = OpenEditBuffer(*suite)
	s.baseline = domain.CloneTestCases(suite.TestCases)
	s.lastErr = nil
	s.unsynced = false
	reviewLog.Debug("opened suite %s (%d test cases)", suite.ID, s.buffer.Len())
	return s.transition(domain.ReviewEditing)
}

// Leave closes the open suite.
func (s *ReviewService) Leave(ctx context.Context, discard bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.release(ctx, discard)
}

// release drops the open buffer, applying the dirty policy first.
// Callers must hold the lock.
func (s *ReviewService) release(ctx context.Context, discard bool) error {
	if s.buffer == nil {
		return nil
	}

	if s.dirty() {
		switch {
		case discard, s.policy == domain.DirtyPolicyDiscard:
			s.discard(ctx)
		case s.policy == domain.DirtyPolicyAutosave:
			if err := s.save(ctx); err != nil {
				return err
			}
		default:
			return domain.ErrUnsavedChanges
		}
	} else if s.unsynced {
		// Edited back to the baseline after a failed save
		s.discard(ctx)
	}

	s.buffer = nil
	s.baseline = nil
	s.lastErr = nil
	s.unsynced = false
	return s.transition(domain.ReviewViewing)
}

// discard drops unsaved edits. After a failed save the repository still
// holds the buffer in memory, so the baseline is written back over it.
// Callers must hold the lock.
func (s *ReviewService) discard(ctx context.Context) {
	suiteID := s.buffer.SuiteID()
	reviewLog.Debug("discarding unsaved edits to suite %s", suiteID)
	if !s.unsynced {
		return
	}

	// The repository restores memory before writing, so a failed write here
	// still leaves the baseline authoritative for the session.
	baseline := domain.CloneTestCases(s.baseline)
	if err := s.repo.UpdateSuite(ctx, suiteID, domain.SuitePatch{TestCases: &baseline}); err != nil {
		reviewLog.Warn("restoring suite %s after discard: %v", suiteID, err)
	}
	s.unsynced = false
}

// mutate runs fn against the open buffer and recomputes the dirty state.
func (s *ReviewService) mutate(fn func(b *EditBuffer) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.buffer == nil {
		return domain.ErrNoActiveSuite
	}
	// A chat reply may replace the buffer wholesale; edits made meanwhile
	// would be lost.
	if s.inFlight {
		return domain.ErrChatInFlight
	}
	if err := fn(s.buffer); err != nil {
		return err
	}
	return s.settle()
}

// SetField sets one scalar field of the case at index.
func (s *ReviewService) SetField(index int, field, value string) error {
	return s.mutate(func(b *EditBuffer) error {
		return b.SetField(index, field, value)
	})
}

// SetSteps replaces one case's steps from newline-delimited text.
func (s *ReviewService) SetSteps(index int, text string) error {
	return s.mutate(func(b *EditBuffer) error {
		return b.SetSteps(index, text)
	})
}

// AddBlank appends a placeholder case.
func (s *ReviewService) AddBlank() (int, error) {
	var index int
	err := s.mutate(func(b *EditBuffer) error {
		index = b.AddBlank()
		return nil
	})
	return index, err
}

// RemoveAt deletes the case at index.
func (s *ReviewService) RemoveAt(index int) error {
	return s.mutate(func(b *EditBuffer) error {
		return b.RemoveAt(index)
	})
}

// Save renumbers the buffer and writes it to the repository.
// A clean buffer is not written.
func (s *ReviewService) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.buffer == nil {
		return domain.ErrNoActiveSuite
	}
	if !s.dirty() {
		return nil
	}
	return s.save(ctx)
}

// save commits the buffer. Callers must hold the lock and have a dirty buffer.
func (s *ReviewService) save(ctx context.Context) error {
	suiteID := s.buffer.SuiteID()

	// The suite may have been deleted from another view
	if _, err := s.repo.GetSuite(suiteID); err != nil {
		s.lastErr = err
		return err
	}

	if err := s.transition(domain.ReviewSaving); err != nil {
		return err
	}

	s.buffer.Renumber()
	cases := s.buffer.TestCases()
	if err := s.repo.UpdateSuite(ctx, suiteID, domain.SuitePatch{TestCases: &cases}); err != nil {
		s.lastErr = err
		if errors.Is(err, domain.ErrStorage) {
			s.unsynced = true
		}
		reviewLog.Warn("saving suite %s failed: %v", suiteID, err)
		if terr := s.transition(domain.ReviewDirty); terr != nil {
			return errors.Join(err, terr)
		}
		return err
	}

	s.baseline = cases
	s.lastErr = nil
	s.unsynced = false
	reviewLog.Debug("saved suite %s (%d test cases)", suiteID, len(cases))
	return s.transition(domain.ReviewSaved)
}

// SendChat sends message with the current buffer to the assistant.
//
// Nothing is recorded until a complete, valid reply arrives. Then the user
// message and the reply are appended to the transcript in that order, and
// any replacement set is applied to the buffer and persisted immediately.
// If the suite was closed while waiting, the replacement is persisted to
// the suite without touching whatever buffer is now open.
func (s *ReviewService) SendChat(ctx context.Context, message string) (*domain.ChatReply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fmt.Errorf("%w: empty chat message", domain.ErrInvalidInput)
	}

	req, suiteID, err := s.beginChat(message)
	if err != nil {
		return nil, err
	}

	reply, err := s.assistant.Chat(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false

	if err != nil {
		if !errors.Is(err, domain.ErrValidation) && !errors.Is(err, domain.ErrNetwork) {
			err = fmt.Errorf("%w: %w", domain.ErrNetwork, err)
		}
		s.lastErr = err
		reviewLog.Warn("chat for suite %s failed: %v", suiteID, err)
		return nil, err
	}
	if reply == nil {
		err = fmt.Errorf("%w: empty chat reply", domain.ErrValidation)
		s.lastErr = err
		return nil, err
	}
	if reply.HasModifications() {
		if err := domain.ValidateTestCases(reply.ModifiedTestCases); err != nil {
			s.lastErr = err
			reviewLog.Warn("rejected chat replacement for suite %s: %v", suiteID, err)
			return nil, err
		}
	}

	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	keep(s.repo.AppendChatMessage(ctx, suiteID, domain.ChatMessage{
		Role: domain.ChatRoleUser, Content: message, CreatedAt: s.now(),
	}))
	keep(s.repo.AppendChatMessage(ctx, suiteID, domain.ChatMessage{
		Role: domain.ChatRoleAssistant, Content: reply.ResponseText, CreatedAt: s.now(),
	}))

	if reply.HasModifications() {
		keep(s.applyReplacement(ctx, suiteID, reply.ModifiedTestCases))
	}

	s.lastErr = firstErr
	return reply, firstErr
}

// beginChat validates the workspace and marks a chat turn in flight.
func (s *ReviewService) beginChat(message string) (domain.ChatRequest, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.assistant == nil {
		return domain.ChatRequest{}, "", domain.ErrLLMUnavailable
	}
	if s.buffer == nil {
		return domain.ChatRequest{}, "", domain.ErrNoActiveSuite
	}
	if s.inFlight {
		return domain.ChatRequest{}, "", domain.ErrChatInFlight
	}

	suiteID := s.buffer.SuiteID()
	suite, err := s.repo.GetSuite(suiteID)
	if err != nil {
		return domain.ChatRequest{}, "", err
	}

	s.inFlight = true
	return domain.ChatRequest{
		TestCases:   s.buffer.TestCases(),
		Message:     message,
		Exploration: suite.Exploration,
		History:     s.repo.ChatHistory(suiteID),
	}, suiteID, nil
}

// applyReplacement replaces the suite's test cases with cases and persists them.
// Callers must hold the lock.
func (s *ReviewService) applyReplacement(ctx context.Context, suiteID string, cases []domain.TestCase) error {
	if s.buffer == nil || s.buffer.SuiteID() != suiteID {
		renumbered := domain.CloneTestCases(cases)
		domain.RenumberTestCases(renumbered)
		reviewLog.Debug("suite %s closed during chat, persisting replacement directly", suiteID)
		return s.repo.UpdateSuite(ctx, suiteID, domain.SuitePatch{TestCases: &renumbered})
	}

	s.buffer.ReplaceAll(cases)
	if err := s.transition(domain.ReviewDirty); err != nil {
		return err
	}
	reviewLog.Debug("chat replaced suite %s with %d test cases", suiteID, s.buffer.Len())
	return s.save(ctx)
}
