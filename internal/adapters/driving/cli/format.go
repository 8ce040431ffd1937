package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/suitesmith/internal/core/domain"
)

const timeLayout = "2006-01-02 15:04"

// truncate truncates a string to the specified number of runes.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen])
}

// parsePosition converts a 1-based position argument to an index.
func parsePosition(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: position %q must be a number from 1", domain.ErrInvalidInput, s)
	}
	return n - 1, nil
}

// printTestCases writes a suite body in a readable layout.
func printTestCases(cmd *cobra.Command, cases []domain.TestCase) {
	if len(cases) == 0 {
		cmd.Println("(no test cases)")
		return
	}
	for _, tc := range cases {
		cmd.Printf("%d. %s [%s]\n", tc.ID, tc.Name, tc.Priority)
		if tc.Description != "" {
			cmd.Printf("   %s\n", tc.Description)
		}
		for i, step := range tc.Steps {
			cmd.Printf("   %d) %s\n", i+1, step)
		}
		cmd.Printf("   Expected: %s\n", tc.ExpectedOutcome)
	}
}
