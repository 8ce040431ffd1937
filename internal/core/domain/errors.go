package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrStorage indicates the durable store could not be read or written.
	// The in-memory collection stays authoritative for the session.
	ErrStorage = errors.New("storage failure")

	// ErrValidation indicates an external payload did not have the expected shape.
	// No state is changed when this is returned.
	ErrValidation = errors.New("validation failure")

	// ErrNetwork indicates an external collaborator could not be reached.
	// No state is changed when this is returned.
	ErrNetwork = errors.New("network failure")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Features requiring LLM (test design, chat, code generation) are disabled.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// Review Errors.

	// ErrUnsavedChanges indicates the open suite has unsaved manual edits
	// and the dirty policy requires confirmation before discarding them.
	ErrUnsavedChanges = errors.New("unsaved changes")

	// ErrNoActiveSuite indicates an edit or save was attempted with no suite open.
	ErrNoActiveSuite = errors.New("no suite open for review")

	// ErrChatInFlight indicates a chat turn is already running for the open suite.
	ErrChatInFlight = errors.New("chat request already in flight")

	// ErrInvalidTransition indicates a review state change that the state machine forbids.
	ErrInvalidTransition = errors.New("invalid review state transition")
)
