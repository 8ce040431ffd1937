package domain

import "encoding/json"

// DesignResult is the output of a test design run.
type DesignResult struct {
	TestCases     []TestCase
	CoverageScore float64
}

// ChatRequest is one chat turn sent to the assistant.
type ChatRequest struct {
	// TestCases is the current buffer content.
	TestCases []TestCase

	// Message is the user's text.
	Message string

	// Exploration is the page context of the suite, if any.
	Exploration json.RawMessage

	// History is the suite's transcript before this turn.
	History []ChatMessage
}

// ChatReply is the assistant's answer to a chat turn.
type ChatReply struct {
	// ResponseText is shown to the user and appended to the transcript.
	ResponseText string

	// ModifiedTestCases, when non-nil, replaces the whole suite.
	ModifiedTestCases []TestCase
}

// HasModifications reports whether the reply carries a replacement set.
func (r ChatReply) HasModifications() bool {
	return r.ModifiedTestCases != nil
}

// CodeRequest asks for executable test code.
type CodeRequest struct {
	TestCases          []TestCase
	URL                string
	SuiteName          string
	Elements           []PageElement
	CustomInstructions string
}

// CodeResult holds generated test code.
type CodeResult struct {
	Code string
}

// PublishResult describes where a document was published.
type PublishResult struct {
	ID  string
	URL string
}
