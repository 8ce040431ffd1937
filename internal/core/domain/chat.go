package domain

import "time"

// ChatRole identifies who authored a chat message.
type ChatRole string

// Available chat roles.
const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// IsValid returns true if the role is recognised.
func (r ChatRole) IsValid() bool {
	return r == ChatRoleUser || r == ChatRoleAssistant
}

// ChatMessage is one entry of a suite's chat transcript.
// Transcripts are append-only and ordered by insertion.
type ChatMessage struct {
	Role      ChatRole  `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Collection keys used in the durable store. Each key holds a whole collection.
const (
	CollectionExplorations  = "explorations"
	CollectionTestSuites    = "test_suites"
	CollectionChatHistories = "chat_histories"
)
