package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptDesignTests asks for a test suite for a page.
	// The template expects %d (desired count), %s (url), %s (structure) and %s (elements).
	PromptDesignTests = "design_tests"

	// PromptChatSystem is the system prompt for suite chat.
	// The template expects %s (page context) and %s (current test cases as JSON).
	PromptChatSystem = "chat_system"

	// PromptGenerateCode asks for executable test code.
	// The template expects %s (suite name), %s (url), %s (elements), %s (test cases) and %s (custom instructions).
	PromptGenerateCode = "generate_code"
)

// PromptStoreAware is an optional interface for services that can use custom prompts.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service should use hardcoded default prompts.
	SetPromptStore(store PromptStore)
}
