package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/suitesmith/internal/core/ports/driving"
)

const (
	// URIScheme is the custom URI scheme for suitesmith resources.
	uriScheme = "suitesmith://"

	chatSuffix = "/chat"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "suites",
		Name:        "suites",
		Description: "List of all test suites",
		MIMEType:    "application/json",
	}, s.handleSuitesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "suites/{suiteId}",
		Name:        "suite",
		Description: "A test suite rendered as Markdown",
		MIMEType:    "text/markdown",
	}, s.handleSuiteResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "suites/{suiteId}/chat",
		Name:        "suite-chat",
		Description: "Chat transcript of a test suite",
		MIMEType:    "application/json",
	}, s.handleChatResource)
}

// handleSuitesResource returns a summary of every suite.
func (s *Server) handleSuitesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	_, output, err := s.handleListSuites(ctx, nil, struct{}{})
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, output.Suites)
}

// handleSuiteResource renders one suite. Markdown needs the publish port;
// without it the suite is returned as JSON.
func (s *Server) handleSuiteResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	suiteID := extractSuiteID(req.Params.URI)
	if suiteID == "" || strings.HasSuffix(req.Params.URI, chatSuffix) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	suite, err := s.ports.Repository.GetSuite(suiteID)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	if s.ports.Publish == nil {
		return jsonResource(req.Params.URI, suiteOutput(suite))
	}

	text, err := s.ports.Publish.Export(suiteID, driving.ExportMarkdown)
	if err != nil {
		return nil, fmt.Errorf("exporting suite: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     text,
		}},
	}, nil
}

// handleChatResource returns the transcript of one suite.
func (s *Server) handleChatResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if !strings.HasSuffix(req.Params.URI, chatSuffix) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	suiteID := extractSuiteID(strings.TrimSuffix(req.Params.URI, chatSuffix))
	if suiteID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if _, err := s.ports.Repository.GetSuite(suiteID); err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	return jsonResource(req.Params.URI, s.ports.Repository.ChatHistory(suiteID))
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractSuiteID extracts the suite ID from a URI like suitesmith://suites/{suiteId}.
func extractSuiteID(uri string) string {
	const prefix = uriScheme + "suites/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
