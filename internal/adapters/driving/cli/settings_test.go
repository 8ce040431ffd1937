package cli

import (
	"bufio"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		secret string
		want   string
	}{
		{"", "(not set)"},
		{"ghp_1", "****"},
		{"12345678", "****"},
		{"ghp_abcdefghijklmnop", "ghp_...mnop"},
		{"sk-ant-api03-xyz9", "sk-a...xyz9"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := maskSecret(tt.secret)
			assert.Equal(t, tt.want, got)
			if len(tt.secret) > 8 {
				assert.NotContains(t, got, tt.secret[4:len(tt.secret)-4])
			}
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"", 2},
		{"1", 1},
		{"3", 3},
		{"4", 2},
		{"0", 2},
		{"-1", 2},
		{"two", 2},
		{" ", 2},
	}

	for _, tt := range tests {
		t.Run("input="+tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseChoice(strings.TrimSpace(tt.input), 3, 2))
		})
	}
}

func TestReadSecret_FallsBackToLineWhenNotTerminal(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader("  ghp_token  \nnext\n"))
	reader := bufio.NewReader(cmd.InOrStdin())

	assert.Equal(t, "ghp_token", readSecret(cmd, reader))
	assert.Equal(t, "next", readLine(reader))
}
