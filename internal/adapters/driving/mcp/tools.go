package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/suitesmith/internal/core/domain"
)

// SuiteRef identifies a suite.
type SuiteRef struct {
	SuiteID string `json:"suite_id" jsonschema:"the id of the test suite"`
}

// SuiteSummary is one entry of the list_suites output.
type SuiteSummary struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	URL           string    `json:"url"`
	TestCaseCount int       `json:"test_case_count"`
	CoverageScore float64   `json:"coverage_score"`
	CreatedAt     time.Time `json:"created_at"`
}

// ListSuitesOutput is the output schema for the list_suites tool.
type ListSuitesOutput struct {
	Suites []SuiteSummary `json:"suites"`
	Count  int            `json:"count"`
}

// SuiteOutput is the output schema for tools returning a whole suite.
type SuiteOutput struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	URL           string            `json:"url"`
	CoverageScore float64           `json:"coverage_score"`
	TestCases     []domain.TestCase `json:"test_cases"`
}

// ExplorationSummary is one entry of the list_explorations output.
type ExplorationSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// ListExplorationsOutput is the output schema for the list_explorations tool.
type ListExplorationsOutput struct {
	Explorations []ExplorationSummary `json:"explorations"`
	Count        int                  `json:"count"`
}

// ChatHistoryOutput is the output schema for the chat_history tool.
type ChatHistoryOutput struct {
	Messages []domain.ChatMessage `json:"messages"`
	Count    int                  `json:"count"`
}

// ExploreInput is the input schema for the explore tool.
type ExploreInput struct {
	URL  string `json:"url" jsonschema:"the page to explore"`
	Name string `json:"name,omitempty" jsonschema:"display name (defaults to the page title)"`
}

// DesignInput is the input schema for the design_suite tool.
type DesignInput struct {
	ExplorationID string `json:"exploration_id" jsonschema:"the exploration to design tests for"`
	Name          string `json:"name,omitempty" jsonschema:"suite name"`
	Count         int    `json:"count,omitempty" jsonschema:"number of test cases (default from settings)"`
}

// ChatInput is the input schema for the chat_suite tool.
type ChatInput struct {
	SuiteID string `json:"suite_id" jsonschema:"the suite to discuss"`
	Message string `json:"message" jsonschema:"the message to send to the suite assistant"`
}

// ChatOutput is the output schema for the chat_suite tool.
type ChatOutput struct {
	Response  string            `json:"response"`
	Updated   bool              `json:"updated"`
	TestCases []domain.TestCase `json:"test_cases,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
// Tools backed by optional ports are only offered when the port is set.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_suites",
		Description: "List all test suites, newest first",
	}, s.handleListSuites)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_suite",
		Description: "Get a test suite with all of its test cases",
	}, s.handleGetSuite)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_explorations",
		Description: "List recorded page explorations, newest first",
	}, s.handleListExplorations)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "chat_history",
		Description: "Get the chat transcript of a test suite",
	}, s.handleChatHistory)

	if s.ports.Workflow != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "explore",
			Description: "Capture a web page as a new exploration",
		}, s.handleExplore)

		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "design_suite",
			Description: "Design a new test suite from an exploration",
		}, s.handleDesignSuite)
	}

	if s.ports.Review != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "chat_suite",
			Description: "Ask the suite assistant to discuss or rewrite a test suite; rewrites are saved immediately",
		}, s.handleChatSuite)
	}
}

func (s *Server) handleListSuites(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, ListSuitesOutput, error) {
	suites := s.ports.Repository.ListSuites()
	output := ListSuitesOutput{
		Suites: make([]SuiteSummary, len(suites)),
		Count:  len(suites),
	}
	for i, suite := range suites {
		output.Suites[i] = SuiteSummary{
			ID:            suite.ID,
			Name:          suite.Name,
			URL:           suite.URL,
			TestCaseCount: len(suite.TestCases),
			CoverageScore: suite.CoverageScore,
			CreatedAt:     suite.CreatedAt,
		}
	}
	return nil, output, nil
}

func (s *Server) handleGetSuite(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input SuiteRef,
) (*mcp.CallToolResult, SuiteOutput, error) {
	suite, err := s.ports.Repository.GetSuite(input.SuiteID)
	if err != nil {
		return nil, SuiteOutput{}, fmt.Errorf("getting suite %s: %w", input.SuiteID, err)
	}
	return nil, suiteOutput(suite), nil
}

func (s *Server) handleListExplorations(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, ListExplorationsOutput, error) {
	explorations := s.ports.Repository.ListExplorations()
	output := ListExplorationsOutput{
		Explorations: make([]ExplorationSummary, len(explorations)),
		Count:        len(explorations),
	}
	for i, e := range explorations {
		output.Explorations[i] = ExplorationSummary{
			ID:        e.ID,
			Name:      e.Name,
			URL:       e.URL,
			CreatedAt: e.CreatedAt,
		}
	}
	return nil, output, nil
}

func (s *Server) handleChatHistory(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input SuiteRef,
) (*mcp.CallToolResult, ChatHistoryOutput, error) {
	if _, err := s.ports.Repository.GetSuite(input.SuiteID); err != nil {
		return nil, ChatHistoryOutput{}, fmt.Errorf("getting suite %s: %w", input.SuiteID, err)
	}
	history := s.ports.Repository.ChatHistory(input.SuiteID)
	return nil, ChatHistoryOutput{Messages: history, Count: len(history)}, nil
}

func (s *Server) handleExplore(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExploreInput,
) (*mcp.CallToolResult, ExplorationSummary, error) {
	e, err := s.ports.Workflow.Explore(ctx, input.URL, input.Name)
	if err != nil {
		return nil, ExplorationSummary{}, fmt.Errorf("exploring %s: %w", input.URL, err)
	}
	return nil, ExplorationSummary{ID: e.ID, Name: e.Name, URL: e.URL, CreatedAt: e.CreatedAt}, nil
}

func (s *Server) handleDesignSuite(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DesignInput,
) (*mcp.CallToolResult, SuiteOutput, error) {
	suite, err := s.ports.Workflow.DesignSuite(ctx, input.ExplorationID, input.Name, input.Count)
	if err != nil {
		return nil, SuiteOutput{}, fmt.Errorf("designing suite: %w", err)
	}
	return nil, suiteOutput(suite), nil
}

// handleChatSuite runs one chat turn. The suite is opened for the turn only;
// edits left unsaved by another client of the same review service block it.
func (s *Server) handleChatSuite(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ChatInput,
) (*mcp.CallToolResult, ChatOutput, error) {
	s.chatMu.Lock()
	defer s.chatMu.Unlock()

	if err := s.ports.Review.Open(ctx, input.SuiteID, false); err != nil {
		return nil, ChatOutput{}, fmt.Errorf("opening suite %s: %w", input.SuiteID, err)
	}
	defer s.ports.Review.Leave(ctx, true) //nolint:errcheck // buffer is clean after a chat turn

	reply, err := s.ports.Review.SendChat(ctx, input.Message)
	if err != nil {
		return nil, ChatOutput{}, fmt.Errorf("chat: %w", err)
	}
	out := ChatOutput{
		Response: reply.ResponseText,
		Updated:  reply.HasModifications(),
	}
	if out.Updated {
		// The saved buffer, renumbered, rather than the ids the assistant chose
		out.TestCases = s.ports.Review.TestCases()
	}
	return nil, out, nil
}

func suiteOutput(suite *domain.TestSuite) SuiteOutput {
	return SuiteOutput{
		ID:            suite.ID,
		Name:          suite.Name,
		URL:           suite.URL,
		CoverageScore: suite.CoverageScore,
		TestCases:     suite.TestCases,
	}
}
