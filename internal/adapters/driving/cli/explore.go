package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/suitesmith/internal/core/domain"
)

var exploreCmd = &cobra.Command{
	Use:   "explore <url>",
	Short: "Capture a web page as a new exploration",
	Long: `Fetch a page and record its title, interactive elements and layout.

The exploration is the input for 'suitesmith suite design'.`,
	Args: cobra.ExactArgs(1),
	RunE: runExplore,
}

var exploreName string

func init() {
	exploreCmd.Flags().StringVarP(&exploreName, "name", "n", "", "display name (defaults to the page title)")
	rootCmd.AddCommand(exploreCmd)
}

func runExplore(cmd *cobra.Command, args []string) error {
	if workflowService == nil {
		return fmt.Errorf("workflow %w", errNotConfigured)
	}

	cmd.Printf("Exploring %s...\n", args[0])
	exploration, err := workflowService.Explore(cmd.Context(), args[0], exploreName)
	if err != nil {
		return fmt.Errorf("explore failed: %w", err)
	}

	snap, err := domain.DecodePageSnapshot(exploration.Page)
	if err != nil {
		return fmt.Errorf("reading page snapshot: %w", err)
	}
	cmd.Printf("Explored %q: %d elements (%d visible)\n",
		exploration.Name, len(snap.Elements), len(snap.VisibleElements()))
	cmd.Printf("Exploration ID: %s\n", exploration.ID)
	return nil
}
