// Package mcp provides an MCP (Model Context Protocol) server adapter for suitesmith.
// It lets AI assistants read suites and chat transcripts, and optionally run
// explorations, design suites and revise them through chat.
package mcp

import "errors"

// ErrMissingRepositoryService is returned when the repository service is not provided.
var ErrMissingRepositoryService = errors.New("mcp: repository service is required")
