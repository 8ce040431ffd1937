package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/suitesmith/internal/core/domain"
)

var codegenCmd = &cobra.Command{
	Use:   "codegen <suite-id>",
	Short: "Generate Playwright pytest code for a suite",
	Args:  cobra.ExactArgs(1),
	RunE:  runCodegen,
}

var (
	codegenInstructions string
	codegenOutput       string
	codegenPublish      bool
)

func init() {
	codegenCmd.Flags().StringVarP(&codegenInstructions, "instructions", "i", "", "extra instructions for the generator")
	codegenCmd.Flags().StringVarP(&codegenOutput, "output", "o", "", "write code to file instead of stdout")
	codegenCmd.Flags().BoolVar(&codegenPublish, "publish", false, "also publish the code as a GitHub gist")
	rootCmd.AddCommand(codegenCmd)
}

func runCodegen(cmd *cobra.Command, args []string) error {
	if workflowService == nil {
		return fmt.Errorf("workflow %w", errNotConfigured)
	}

	result, err := workflowService.GenerateCode(cmd.Context(), args[0], codegenInstructions)
	if err != nil {
		if errors.Is(err, domain.ErrLLMUnavailable) {
			return errors.New("no LLM configured; run 'suitesmith settings llm' first")
		}
		return fmt.Errorf("code generation failed: %w", err)
	}

	if codegenOutput == "" {
		cmd.Print(result.Code)
	} else {
		if err := os.WriteFile(codegenOutput, []byte(result.Code), 0o644); err != nil { //nolint:gosec // generated tests are not secret
			return fmt.Errorf("writing %s: %w", codegenOutput, err)
		}
		cmd.Printf("Wrote %s\n", codegenOutput)
	}

	if codegenPublish {
		if publishService == nil {
			return fmt.Errorf("publish %w", errNotConfigured)
		}
		published, err := publishService.PublishCode(cmd.Context(), args[0], result.Code)
		if err != nil {
			return publishError(err)
		}
		cmd.Printf("Published: %s\n", published.URL)
	}
	return nil
}
