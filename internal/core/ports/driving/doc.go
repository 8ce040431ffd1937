// Package driving defines what the CLI, TUI and MCP adapters may ask of the
// core. Every interface here is implemented in internal/core/services.
package driving
