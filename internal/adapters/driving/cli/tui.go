package cli

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/suitesmith/internal/adapters/driving/tui"
	"github.com/custodia-labs/suitesmith/internal/logger"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface.

The TUI lists explorations and suites and opens a suite in the review
editor, where test cases can be edited by hand or rewritten by chatting
with the assistant. Manual edits stay unsaved until you save; assistant
rewrites are saved as soon as they arrive.

Controls:
  ↑/k, ↓/j - Navigate
  tab      - Next field
  e/Enter  - Edit / Select
  s        - Save
  c        - Chat
  Esc      - Back
  ctrl+c   - Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func tuiPorts() *tui.Ports {
	return &tui.Ports{
		Repository: repositoryService,
		Review:     reviewService,
		Workflow:   workflowService,
		Settings:   settingsService,
	}
}

func runTUI(cmd *cobra.Command, _ []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if repositoryService == nil || reviewService == nil {
		return errNotConfigured
	}

	app, err := tui.NewApp(tuiPorts())
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	// Log lines would corrupt the alternate screen.
	logger.SetOutput(io.Discard)
	defer logger.SetOutput(os.Stderr)

	if err := app.WithContext(cmd.Context()).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
