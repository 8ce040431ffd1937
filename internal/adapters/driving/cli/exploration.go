package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/suitesmith/internal/core/domain"
)

var explorationCmd = &cobra.Command{
	Use:     "exploration",
	Aliases: []string{"explorations"},
	Short:   "Manage recorded explorations",
}

var explorationListCmd = &cobra.Command{
	Use:   "list",
	Short: "List explorations, newest first",
	Args:  cobra.NoArgs,
	RunE:  runExplorationList,
}

var explorationShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show the elements captured for an exploration",
	Args:  cobra.ExactArgs(1),
	RunE:  runExplorationShow,
}

var explorationRenameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename an exploration",
	Args:  cobra.ExactArgs(2),
	RunE:  runExplorationRename,
}

var explorationDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an exploration (suites keep their own copy)",
	Args:  cobra.ExactArgs(1),
	RunE:  runExplorationDelete,
}

func init() {
	explorationCmd.AddCommand(explorationListCmd)
	explorationCmd.AddCommand(explorationShowCmd)
	explorationCmd.AddCommand(explorationRenameCmd)
	explorationCmd.AddCommand(explorationDeleteCmd)
	rootCmd.AddCommand(explorationCmd)
}

func runExplorationList(cmd *cobra.Command, _ []string) error {
	if repositoryService == nil {
		return fmt.Errorf("repository %w", errNotConfigured)
	}

	explorations := repositoryService.ListExplorations()
	if len(explorations) == 0 {
		cmd.Println("No explorations yet. Run 'suitesmith explore <url>' to create one.")
		return nil
	}
	for _, e := range explorations {
		cmd.Printf("%s  %-30s  %s  %s\n", e.ID, truncate(e.Name, 30), e.CreatedAt.Format(timeLayout), e.URL)
	}
	return nil
}

func runExplorationShow(cmd *cobra.Command, args []string) error {
	if repositoryService == nil {
		return fmt.Errorf("repository %w", errNotConfigured)
	}

	e, err := repositoryService.GetExploration(args[0])
	if err != nil {
		return err
	}
	snap, err := domain.DecodePageSnapshot(e.Page)
	if err != nil {
		return fmt.Errorf("reading page snapshot: %w", err)
	}

	cmd.Printf("Name:  %s\n", e.Name)
	cmd.Printf("URL:   %s\n", e.URL)
	cmd.Printf("Title: %s\n", snap.Title)
	s := snap.Structure
	cmd.Printf("Forms: %d  Buttons: %d  Inputs: %d  Links: %d\n", s.Forms, s.Buttons, s.Inputs, s.Links)
	cmd.Println()
	for _, el := range snap.Elements {
		marker := " "
		if !el.Visible {
			marker = "h"
		}
		cmd.Printf("%s %-6s %-32s %s\n", marker, el.Tag, truncate(el.Text, 32), el.Locator)
	}
	return nil
}

func runExplorationRename(cmd *cobra.Command, args []string) error {
	if repositoryService == nil {
		return fmt.Errorf("repository %w", errNotConfigured)
	}
	if _, err := repositoryService.GetExploration(args[0]); err != nil {
		return err
	}

	name := args[1]
	if err := repositoryService.UpdateExploration(cmd.Context(), args[0], domain.ExplorationPatch{Name: &name}); err != nil {
		return fmt.Errorf("rename failed: %w", err)
	}
	cmd.Printf("Renamed exploration %s to %q\n", args[0], name)
	return nil
}

func runExplorationDelete(cmd *cobra.Command, args []string) error {
	if repositoryService == nil {
		return fmt.Errorf("repository %w", errNotConfigured)
	}
	if _, err := repositoryService.GetExploration(args[0]); err != nil {
		return err
	}
	if err := repositoryService.DeleteExploration(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	cmd.Printf("Deleted exploration %s\n", args[0])
	return nil
}
