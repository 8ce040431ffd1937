package services

import (
	"fmt"

	"github.com/custodia-labs/suitesmith/internal/core/domain"
	"github.com/custodia-labs/suitesmith/internal/core/ports/driven"
	"github.com/custodia-labs/suitesmith/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyLLMProvider    = "llm.provider"
	keyLLMModel       = "llm.model"
	keyLLMBaseURL     = "llm.base_url"
	keyLLMAPIKey      = "llm.api_key"
	keyLLMRateLimit   = "llm.requests_per_minute"
	keyDirtyPolicy    = "review.dirty_policy"
	keyDesiredCount   = "design.desired_count"
	keyStorageBackend = "storage.backend"
	keyGitHubToken    = "publish.github_token"
	defaultOllamaURL  = "http://localhost:11434"
	maxDesiredCount   = 50
	maxRequestsPerMin = 600
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	if s.configStore == nil {
		return nil, domain.ErrNotImplemented
	}
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		LLM: domain.LLMSettings{
			Provider:          s.getProvider(defaults.LLM.Provider),
			Model:             s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:           s.configStore.GetString(keyLLMBaseURL), // No default - empty is valid for cloud providers
			APIKey:            s.configStore.GetString(keyLLMAPIKey),
			RequestsPerMinute: s.getInt(keyLLMRateLimit, defaults.LLM.RequestsPerMinute),
		},
		Review: domain.ReviewSettings{
			DirtyPolicy: s.getDirtyPolicy(defaults.Review.DirtyPolicy),
		},
		Design: domain.DesignSettings{
			DesiredCount: s.getInt(keyDesiredCount, defaults.Design.DesiredCount),
		},
		Storage: domain.StorageSettings{
			Backend: s.getBackend(defaults.Storage.Backend),
		},
		Publish: domain.PublishSettings{
			GitHubToken: s.configStore.GetString(keyGitHubToken),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if s.configStore == nil {
		return domain.ErrNotImplemented
	}

	values := []struct {
		key   string
		value any
		label string
	}{
		{keyLLMProvider, settings.LLM.Provider.String(), "llm provider"},
		{keyLLMModel, settings.LLM.Model, "llm model"},
		{keyLLMBaseURL, settings.LLM.BaseURL, "llm base_url"},
		{keyLLMRateLimit, settings.LLM.RequestsPerMinute, "llm requests_per_minute"},
		{keyDirtyPolicy, settings.Review.DirtyPolicy.String(), "dirty policy"},
		{keyDesiredCount, settings.Design.DesiredCount, "desired count"},
		{keyStorageBackend, string(settings.Storage.Backend), "storage backend"},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.label, err)
		}
	}

	// Secrets are only written when present so a partial save never clears them
	if settings.LLM.APIKey != "" {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}
	if settings.Publish.GitHubToken != "" {
		if err := s.configStore.Set(keyGitHubToken, settings.Publish.GitHubToken); err != nil {
			return fmt.Errorf("save github token: %w", err)
		}
	}

	return nil
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider

	if model != "" {
		settings.LLM.Model = model
	} else if defaultModel, ok := domain.DefaultLLMModels()[provider]; ok {
		settings.LLM.Model = defaultModel
	}

	if provider.IsLocal() {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = defaultOllamaURL
		}
	} else {
		settings.LLM.BaseURL = ""
	}

	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetDirtyPolicy sets what happens to unsaved edits when leaving a suite.
func (s *SettingsService) SetDirtyPolicy(policy domain.DirtyPolicy) error {
	if !policy.IsValid() {
		return fmt.Errorf("invalid dirty policy: %s", policy)
	}
	return s.configStore.Set(keyDirtyPolicy, policy.String())
}

// SetDesiredCount sets the default number of designed test cases.
func (s *SettingsService) SetDesiredCount(count int) error {
	if count < 1 || count > maxDesiredCount {
		return fmt.Errorf("desired count must be between 1 and %d", maxDesiredCount)
	}
	return s.configStore.Set(keyDesiredCount, count)
}

// SetRequestsPerMinute limits LLM requests; 0 disables the limit.
func (s *SettingsService) SetRequestsPerMinute(n int) error {
	if n < 0 || n > maxRequestsPerMin {
		return fmt.Errorf("%w: requests per minute must be between 0 and %d", domain.ErrInvalidInput, maxRequestsPerMin)
	}
	return s.configStore.Set(keyLLMRateLimit, n)
}

// SetStorageBackend selects the durable store used on next start.
func (s *SettingsService) SetStorageBackend(backend domain.StorageBackend) error {
	if !backend.IsValid() {
		return fmt.Errorf("%w: unknown storage backend %q", domain.ErrInvalidInput, backend)
	}
	return s.configStore.Set(keyStorageBackend, string(backend))
}

// SetGitHubToken stores the token used to publish gists.
func (s *SettingsService) SetGitHubToken(token string) error {
	if token == "" {
		return fmt.Errorf("%w: empty token", domain.ErrInvalidInput)
	}
	return s.configStore.Set(keyGitHubToken, token)
}

// Validate checks if current settings are consistent.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if settings.LLM.Provider != "" && !settings.LLM.IsConfigured() {
		return fmt.Errorf("LLM provider %q is missing an API key", settings.LLM.Provider)
	}
	if settings.Design.DesiredCount < 1 || settings.Design.DesiredCount > maxDesiredCount {
		return fmt.Errorf("desired count must be between 1 and %d", maxDesiredCount)
	}
	if settings.LLM.RequestsPerMinute < 0 || settings.LLM.RequestsPerMinute > maxRequestsPerMin {
		return fmt.Errorf("requests per minute must be between 0 and %d", maxRequestsPerMin)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getProvider(defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(keyLLMProvider))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getDirtyPolicy(defaultVal domain.DirtyPolicy) domain.DirtyPolicy {
	policy := domain.DirtyPolicy(s.configStore.GetString(keyDirtyPolicy))
	if !policy.IsValid() {
		return defaultVal
	}
	return policy
}

func (s *SettingsService) getBackend(defaultVal domain.StorageBackend) domain.StorageBackend {
	backend := domain.StorageBackend(s.configStore.GetString(keyStorageBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
