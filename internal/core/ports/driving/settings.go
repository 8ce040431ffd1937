package driving

import "github.com/custodia-labs/suitesmith/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetLLMProvider configures the LLM provider.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// SetDirtyPolicy sets what happens to unsaved edits when leaving a suite.
	SetDirtyPolicy(policy domain.DirtyPolicy) error

	// SetDesiredCount sets the default number of designed test cases.
	SetDesiredCount(count int) error

	// SetRequestsPerMinute limits LLM requests; 0 disables the limit.
	SetRequestsPerMinute(n int) error

	// SetStorageBackend selects the durable store used on next start.
	SetStorageBackend(backend domain.StorageBackend) error

	// SetGitHubToken stores the token used to publish gists.
	SetGitHubToken(token string) error

	// Validate checks if current settings are consistent.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
	ValidateLLMConfig() error
}
