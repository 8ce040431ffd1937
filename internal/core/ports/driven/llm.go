package driven

import "context"

// LLMService is a text model behind one of the openai, anthropic or ollama
// adapters, optionally wrapped in a rate limiter.
type LLMService interface {
	// Generate completes a single prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// Chat continues a conversation; the reply is the assistant's next turn.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	ModelName() string

	// Ping makes the cheapest authenticated request the provider allows.
	Ping(ctx context.Context) error

	Close() error
}

// Errors returned by implementations wrap domain.ErrNetwork for transport
// failures and retryable statuses, domain.ErrLLMUnavailable for auth or
// unknown-model rejections, and domain.ErrValidation for unreadable replies.

// GenerateOptions tunes a Generate call. Zero values leave the provider default.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float64

	// StopWords end generation when produced.
	StopWords []string

	// JSON asks the provider to constrain output to a JSON document
	// where it supports that.
	JSON bool
}

// ChatMessage is one provider-level turn. Role is "system", "user" or
// "assistant"; domain.ChatMessage is the persisted transcript entry.
type ChatMessage struct {
	Role    string
	Content string
}

// ChatOptions tunes a Chat call.
type ChatOptions struct {
	MaxTokens   int
	Temperature float64

	// JSON asks for a JSON document reply. See GenerateOptions.JSON.
	JSON bool
}
