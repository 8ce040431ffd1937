package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/suitesmith/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the LLM provider, review behaviour, storage and publishing.

Settings are stored in ~/.suitesmith/config.toml.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Interactively choose the LLM provider and model used to design, revise and render suites.`,
	RunE:  runSettingsLLM,
}

var settingsPolicyCmd = &cobra.Command{
	Use:   "policy <confirm|discard|autosave>",
	Short: "Set what happens to unsaved edits when leaving a suite",
	Long: `Set the dirty policy used when a suite with unsaved edits is closed.

  confirm  - refuse to leave until the edits are saved or explicitly discarded
  discard  - drop the unsaved edits
  autosave - save the edits first`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsPolicy,
}

var settingsCountCmd = &cobra.Command{
	Use:   "count <n>",
	Short: "Set the default number of designed test cases",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsCount,
}

var settingsRateLimitCmd = &cobra.Command{
	Use:   "rate-limit <requests-per-minute>",
	Short: "Limit LLM requests per minute (0 = unlimited)",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsRateLimit,
}

var settingsStorageCmd = &cobra.Command{
	Use:   "storage <sqlite|memory>",
	Short: "Set the storage backend",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsStorage,
}

var settingsGitHubTokenCmd = &cobra.Command{
	Use:   "github-token",
	Short: "Store the GitHub token used to publish gists",
	Args:  cobra.NoArgs,
	RunE:  runSettingsGitHubToken,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsPolicyCmd)
	settingsCmd.AddCommand(settingsCountCmd)
	settingsCmd.AddCommand(settingsRateLimitCmd)
	settingsCmd.AddCommand(settingsStorageCmd)
	settingsCmd.AddCommand(settingsGitHubTokenCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[LLM]")
	if settings.LLM.Provider == "" {
		cmd.Println("  Provider: (not set)")
	} else {
		cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
		cmd.Printf("  Model: %s\n", settings.LLM.Model)
	}
	if settings.LLM.Provider.IsLocal() || settings.LLM.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
	}
	if settings.LLM.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", maskSecret(settings.LLM.APIKey))
	}
	if settings.LLM.RequestsPerMinute > 0 {
		cmd.Printf("  Rate limit: %d requests/minute\n", settings.LLM.RequestsPerMinute)
	} else {
		cmd.Println("  Rate limit: none")
	}
	status := "configured"
	if !settings.LLM.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	cmd.Println("[Review]")
	cmd.Printf("  Dirty policy: %s\n", settings.Review.DirtyPolicy)
	cmd.Println()

	cmd.Println("[Design]")
	cmd.Printf("  Desired count: %d\n", settings.Design.DesiredCount)
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Backend: %s\n", settings.Storage.Backend)
	cmd.Println()

	cmd.Println("[Publish]")
	cmd.Printf("  GitHub token: %s\n", maskSecret(settings.Publish.GitHubToken))
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'suitesmith settings llm' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureLLMProvider(cmd, reader)
}

func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select LLM Provider")
	providers := domain.AllLLMProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	defaults := domain.DefaultLLMModels()
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readSecret(cmd, reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetLLMProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("LLM provider configured: %s (%s)\n", selectedProvider.Description(), model)
	return nil
}

func runSettingsPolicy(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	policy := domain.DirtyPolicy(strings.ToLower(args[0]))
	if err := settingsService.SetDirtyPolicy(policy); err != nil {
		return err
	}
	cmd.Printf("Dirty policy set to: %s\n", policy)
	return nil
}

func runSettingsCount(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("%w: count must be a number", domain.ErrInvalidInput)
	}
	if err := settingsService.SetDesiredCount(n); err != nil {
		return err
	}
	cmd.Printf("Desired count set to: %d\n", n)
	return nil
}

func runSettingsRateLimit(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("%w: requests per minute must be a number", domain.ErrInvalidInput)
	}
	if err := settingsService.SetRequestsPerMinute(n); err != nil {
		return err
	}
	cmd.Printf("LLM rate limit set to: %d requests/minute\n", n)
	return nil
}

func runSettingsStorage(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	backend := domain.StorageBackend(strings.ToLower(args[0]))
	if err := settingsService.SetStorageBackend(backend); err != nil {
		return err
	}
	cmd.Printf("Storage backend set to: %s (takes effect on next start)\n", backend)
	return nil
}

func runSettingsGitHubToken(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Print("Enter GitHub token (gist scope): ")
	token := readSecret(cmd, bufio.NewReader(cmd.InOrStdin()))
	cmd.Println()
	if err := settingsService.SetGitHubToken(token); err != nil {
		return err
	}
	cmd.Println("GitHub token saved.")
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

// parseChoice reads a 1-based menu choice, falling back to defaultVal.
func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readSecret reads without echo when the command reads from a terminal.
func readSecret(cmd *cobra.Command, reader *bufio.Reader) string {
	if in, ok := cmd.InOrStdin().(*os.File); ok && in == os.Stdin && term.IsTerminal(int(in.Fd())) {
		secret, err := term.ReadPassword(int(in.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	return readLine(reader)
}

// maskSecret keeps the first and last four characters of long secrets.
func maskSecret(secret string) string {
	switch {
	case secret == "":
		return "(not set)"
	case len(secret) <= 8:
		return "****"
	default:
		return secret[:4] + "..." + secret[len(secret)-4:]
	}
}
