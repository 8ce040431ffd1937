// Package cli implements the suitesmith command line on top of the driving ports.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/suitesmith/internal/core/ports/driving"
	"github.com/custodia-labs/suitesmith/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

var verbose bool

// Services used by the commands. Tests swap these for mocks.
var (
	repositoryService driving.RepositoryService
	reviewService     driving.ReviewService
	workflowService   driving.WorkflowService
	settingsService   driving.SettingsService
	publishService    driving.PublishService
)

// errNotConfigured is returned when a command's service was not wired.
var errNotConfigured = errors.New("service not configured")

var rootCmd = &cobra.Command{
	Use:   "suitesmith",
	Short: "Co-author QA test suites with an AI assistant",
	Long: `suitesmith explores a web page, designs a manual test suite for it with an
LLM, and lets you refine the suite by hand or by chatting with the assistant.

Typical flow:
  suitesmith explore https://shop.example.com
  suitesmith suite design <exploration-id>
  suitesmith chat send <suite-id> "add a test for the empty cart"
  suitesmith codegen <suite-id> --output test_shop.py`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug output to stderr")
}

// Services bundles the driving ports the commands need.
type Services struct {
	Repository driving.RepositoryService
	Review     driving.ReviewService
	Workflow   driving.WorkflowService
	Settings   driving.SettingsService
	Publish    driving.PublishService
}

// SetServices wires the command set to its services.
func SetServices(s Services) {
	repositoryService = s.Repository
	reviewService = s.Review
	workflowService = s.Workflow
	settingsService = s.Settings
	publishService = s.Publish
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
