package cli

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/suitesmith/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve suites to MCP clients",
}

var (
	mcpPort int
	mcpHost string
)

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Serve the suite repository over the Model Context Protocol.

Clients can read suites, explorations and chat transcripts. When an LLM is
configured they can also explore pages, design suites and revise a suite
through chat; chat rewrites are saved at once, as in the terminal UI.

stdio is the default transport. With --port the server speaks streamable
HTTP instead:

  suitesmith mcp serve
  suitesmith mcp serve --port 8080 --host 127.0.0.1`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "HTTP port (0 serves on stdio)")
	mcpServeCmd.Flags().StringVar(&mcpHost, "host", "localhost", "HTTP listen host")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if repositoryService == nil {
		return errNotConfigured
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Repository: repositoryService,
		Review:     reviewService,
		Workflow:   workflowService,
		Publish:    publishService,
	})
	if err != nil {
		return err
	}

	if mcpPort <= 0 {
		return server.Run(cmd.Context())
	}
	addr := net.JoinHostPort(mcpHost, strconv.Itoa(mcpPort))
	fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://%s\n", addr)
	return server.RunHTTP(cmd.Context(), addr)
}
