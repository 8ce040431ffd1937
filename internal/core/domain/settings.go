package domain

const unknownDescription = "Unknown"

// AIProvider identifies an LLM service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// StorageBackend selects the durable store implementation.
type StorageBackend string

// Available storage backends.
const (
	// StorageBackendSQLite persists collections in a local SQLite database.
	StorageBackendSQLite StorageBackend = "sqlite"

	// StorageBackendMemory keeps collections in process memory only.
	StorageBackendMemory StorageBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	return b == StorageBackendSQLite || b == StorageBackendMemory
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or compatible servers).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// RequestsPerMinute caps outbound LLM calls. Zero disables the limit.
	RequestsPerMinute int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// ReviewSettings controls the review workspace.
type ReviewSettings struct {
	// DirtyPolicy decides what happens to unsaved edits when leaving a suite.
	DirtyPolicy DirtyPolicy
}

// DesignSettings controls test design runs.
type DesignSettings struct {
	// DesiredCount is the number of test cases requested per design run.
	DesiredCount int
}

// StorageSettings controls persistence.
type StorageSettings struct {
	// Backend selects the durable store.
	Backend StorageBackend
}

// PublishSettings holds credentials for publishing suites.
type PublishSettings struct {
	// GitHubToken is a personal access token with gist scope.
	GitHubToken string
}

// AppSettings holds all application settings.
type AppSettings struct {
	LLM     LLMSettings
	Review  ReviewSettings
	Design  DesignSettings
	Storage StorageSettings
	Publish PublishSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// The LLM is left unconfigured; users set it up via the settings command.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		LLM: LLMSettings{},
		Review: ReviewSettings{
			DirtyPolicy: DirtyPolicyConfirm,
		},
		Design: DesignSettings{
			DesiredCount: DefaultDesiredCount,
		},
		Storage: StorageSettings{
			Backend: StorageBackendSQLite,
		},
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}
