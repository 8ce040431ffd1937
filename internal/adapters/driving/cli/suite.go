package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/suitesmith/internal/core/domain"
	"github.com/custodia-labs/suitesmith/internal/core/ports/driving"
)

var suiteCmd = &cobra.Command{
	Use:     "suite",
	Aliases: []string{"suites"},
	Short:   "Design, review and export test suites",
}

var suiteDesignCmd = &cobra.Command{
	Use:   "design <exploration-id>",
	Short: "Design a new suite from an exploration",
	Args:  cobra.ExactArgs(1),
	RunE:  runSuiteDesign,
}

var suiteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List suites, newest first",
	Args:  cobra.NoArgs,
	RunE:  runSuiteList,
}

var suiteShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a suite's test cases",
	Args:  cobra.ExactArgs(1),
	RunE:  runSuiteShow,
}

var suiteRenameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename a suite",
	Args:  cobra.ExactArgs(2),
	RunE:  runSuiteRename,
}

var suiteDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a suite and its chat history",
	Args:  cobra.ExactArgs(1),
	RunE:  runSuiteDelete,
}

var suiteEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit test cases and save",
	Long: `Apply manual edits to a suite and save them in one step.

Edits are applied in this order: --add, then --set, then --remove.
Positions are 1-based and refer to the order shown by 'suite show'.
After saving, test cases are renumbered 1..N.

Fields for --set: name, description, expected_outcome, priority, steps.
Separate steps with a literal \n.

Examples:
  suitesmith suite edit <id> --set 1.name="Login happy path"
  suitesmith suite edit <id> --set '2.steps=Open cart\nClick checkout'
  suitesmith suite edit <id> --add 1 --set 4.name="Empty cart" --remove 2`,
	Args: cobra.ExactArgs(1),
	RunE: runSuiteEdit,
}

var suiteExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export a suite as JSON or Markdown",
	Args:  cobra.ExactArgs(1),
	RunE:  runSuiteExport,
}

var suitePublishCmd = &cobra.Command{
	Use:   "publish <id>",
	Short: "Publish a suite as a GitHub gist",
	Args:  cobra.ExactArgs(1),
	RunE:  runSuitePublish,
}

var (
	designName   string
	designCount  int
	showJSON     bool
	editSets     []string
	editRemoves  []string
	editAdd      int
	exportFormat string
	exportOutput string
)

func init() {
	suiteDesignCmd.Flags().StringVarP(&designName, "name", "n", "", "suite name (defaults to '<exploration> Suite')")
	suiteDesignCmd.Flags().IntVarP(&designCount, "count", "c", 0, "number of test cases (0 = configured default)")
	suiteShowCmd.Flags().BoolVar(&showJSON, "json", false, "print the suite as JSON")
	suiteEditCmd.Flags().StringArrayVar(&editSets, "set", nil, "POSITION.FIELD=VALUE (repeatable)")
	suiteEditCmd.Flags().StringArrayVar(&editRemoves, "remove", nil, "position to remove (repeatable)")
	suiteEditCmd.Flags().IntVar(&editAdd, "add", 0, "number of blank test cases to append")
	for _, c := range []*cobra.Command{suiteExportCmd, suitePublishCmd} {
		c.Flags().StringVarP(&exportFormat, "format", "f", string(driving.ExportMarkdown), "json or markdown")
	}
	suiteExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write to file instead of stdout")

	suiteCmd.AddCommand(suiteDesignCmd)
	suiteCmd.AddCommand(suiteListCmd)
	suiteCmd.AddCommand(suiteShowCmd)
	suiteCmd.AddCommand(suiteRenameCmd)
	suiteCmd.AddCommand(suiteDeleteCmd)
	suiteCmd.AddCommand(suiteEditCmd)
	suiteCmd.AddCommand(suiteExportCmd)
	suiteCmd.AddCommand(suitePublishCmd)
	rootCmd.AddCommand(suiteCmd)
}

func runSuiteDesign(cmd *cobra.Command, args []string) error {
	if workflowService == nil {
		return fmt.Errorf("workflow %w", errNotConfigured)
	}

	cmd.Println("Designing test cases...")
	suite, err := workflowService.DesignSuite(cmd.Context(), args[0], designName, designCount)
	if err != nil {
		return fmt.Errorf("design failed: %w", err)
	}

	cmd.Printf("Created suite %q with %d test cases (coverage %.1f%%)\n",
		suite.Name, len(suite.TestCases), suite.CoverageScore)
	cmd.Printf("Suite ID: %s\n", suite.ID)
	return nil
}

func runSuiteList(cmd *cobra.Command, _ []string) error {
	if repositoryService == nil {
		return fmt.Errorf("repository %w", errNotConfigured)
	}

	suites := repositoryService.ListSuites()
	if len(suites) == 0 {
		cmd.Println("No suites yet. Run 'suitesmith suite design <exploration-id>' to create one.")
		return nil
	}
	for _, s := range suites {
		cmd.Printf("%s  %-30s  %3d cases  %s\n",
			s.ID, truncate(s.Name, 30), len(s.TestCases), s.CreatedAt.Format(timeLayout))
	}
	return nil
}

func runSuiteShow(cmd *cobra.Command, args []string) error {
	if repositoryService == nil {
		return fmt.Errorf("repository %w", errNotConfigured)
	}

	suite, err := repositoryService.GetSuite(args[0])
	if err != nil {
		return err
	}

	if showJSON {
		data, err := json.MarshalIndent(suite.TestCases, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding suite: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("%s\n", suite.Name)
	cmd.Printf("URL: %s\n", suite.URL)
	cmd.Printf("Coverage: %.1f%%\n\n", suite.CoverageScore)
	printTestCases(cmd, suite.TestCases)
	return nil
}

func runSuiteRename(cmd *cobra.Command, args []string) error {
	if repositoryService == nil {
		return fmt.Errorf("repository %w", errNotConfigured)
	}
	if _, err := repositoryService.GetSuite(args[0]); err != nil {
		return err
	}

	name := strings.TrimSpace(args[1])
	if name == "" {
		return fmt.Errorf("%w: name must not be empty", domain.ErrInvalidInput)
	}
	if err := repositoryService.UpdateSuite(cmd.Context(), args[0], domain.SuitePatch{Name: &name}); err != nil {
		return fmt.Errorf("rename failed: %w", err)
	}
	cmd.Printf("Renamed suite %s to %q\n", args[0], name)
	return nil
}

func runSuiteDelete(cmd *cobra.Command, args []string) error {
	if repositoryService == nil {
		return fmt.Errorf("repository %w", errNotConfigured)
	}
	if _, err := repositoryService.GetSuite(args[0]); err != nil {
		return err
	}
	if err := repositoryService.DeleteSuite(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	cmd.Printf("Deleted suite %s and its chat history\n", args[0])
	return nil
}

// edit is one parsed --set flag.
type edit struct {
	index int
	field string
	value string
}

func parseSet(s string) (edit, error) {
	target, value, ok := strings.Cut(s, "=")
	if !ok {
		return edit{}, fmt.Errorf("%w: --set %q must be POSITION.FIELD=VALUE", domain.ErrInvalidInput, s)
	}
	pos, field, ok := strings.Cut(target, ".")
	if !ok {
		return edit{}, fmt.Errorf("%w: --set %q must be POSITION.FIELD=VALUE", domain.ErrInvalidInput, s)
	}
	index, err := parsePosition(pos)
	if err != nil {
		return edit{}, err
	}
	return edit{index: index, field: strings.TrimSpace(field), value: value}, nil
}

func runSuiteEdit(cmd *cobra.Command, args []string) error {
	if reviewService == nil {
		return fmt.Errorf("review %w", errNotConfigured)
	}

	edits := make([]edit, 0, len(editSets))
	for _, s := range editSets {
		e, err := parseSet(s)
		if err != nil {
			return err
		}
		edits = append(edits, e)
	}
	removes := make([]int, 0, len(editRemoves))
	for _, s := range editRemoves {
		index, err := parsePosition(s)
		if err != nil {
			return err
		}
		removes = append(removes, index)
	}
	if len(edits) == 0 && len(removes) == 0 && editAdd <= 0 {
		return fmt.Errorf("%w: nothing to edit; use --set, --add or --remove", domain.ErrInvalidInput)
	}

	ctx := cmd.Context()
	if err := reviewService.Open(ctx, args[0], false); err != nil {
		return err
	}
	// Anything not saved below is dropped.
	defer reviewService.Leave(ctx, true) //nolint:errcheck // discard never fails

	for range editAdd {
		if _, err := reviewService.AddBlank(); err != nil {
			return err
		}
	}
	for _, e := range edits {
		var err error
		if e.field == "steps" {
			err = reviewService.SetSteps(e.index, strings.ReplaceAll(e.value, `\n`, "\n"))
		} else {
			err = reviewService.SetField(e.index, e.field, e.value)
		}
		if err != nil {
			return fmt.Errorf("position %d: %w", e.index+1, err)
		}
	}
	slices.Sort(removes)
	removes = slices.Compact(removes)
	for _, index := range slices.Backward(removes) {
		if err := reviewService.RemoveAt(index); err != nil {
			return fmt.Errorf("position %d: %w", index+1, err)
		}
	}

	if !reviewService.Status().Dirty {
		cmd.Println("No changes.")
		return nil
	}
	if err := reviewService.Save(ctx); err != nil {
		return fmt.Errorf("save failed: %w", err)
	}
	cmd.Printf("Saved suite %s: %d test cases\n", args[0], len(reviewService.TestCases()))
	return nil
}

func runSuiteExport(cmd *cobra.Command, args []string) error {
	if publishService == nil {
		return fmt.Errorf("publish %w", errNotConfigured)
	}

	out, err := publishService.Export(args[0], driving.ExportFormat(exportFormat))
	if err != nil {
		return err
	}
	if exportOutput == "" {
		cmd.Print(out)
		return nil
	}
	if err := os.WriteFile(exportOutput, []byte(out), 0o644); err != nil { //nolint:gosec // exported suites are not secret
		return fmt.Errorf("writing %s: %w", exportOutput, err)
	}
	cmd.Printf("Wrote %s\n", exportOutput)
	return nil
}

func runSuitePublish(cmd *cobra.Command, args []string) error {
	if publishService == nil {
		return fmt.Errorf("publish %w", errNotConfigured)
	}

	result, err := publishService.Publish(cmd.Context(), args[0], driving.ExportFormat(exportFormat))
	if err != nil {
		return publishError(err)
	}
	cmd.Printf("Published: %s\n", result.URL)
	return nil
}

// publishError explains the usual reason publishing is unavailable.
func publishError(err error) error {
	if errors.Is(err, domain.ErrNotImplemented) {
		return errors.New("publishing is not configured; run 'suitesmith settings github-token' first")
	}
	return fmt.Errorf("publish failed: %w", err)
}
