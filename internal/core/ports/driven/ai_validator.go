package driven

import "github.com/custodia-labs/suitesmith/internal/core/domain"

// AIConfigValidator checks LLM settings before they are saved.
type AIConfigValidator interface {
	// ValidateLLM pings the configured provider. Unconfigured settings are
	// accepted so the LLM can be switched off.
	ValidateLLM(config *domain.LLMSettings) error
}
