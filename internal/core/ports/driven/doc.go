// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - BlobStore: Durable whole-collection persistence
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - PageExplorer: Captures pages. Without it, explorations cannot be created.
//   - Assistant: Test design, chat and code generation. Without it, those commands report ErrLLMUnavailable.
//   - LLMService: Language model backing the default Assistant.
//   - PromptStore: Custom prompt templates. Without it, built-in prompts are used.
//   - Publisher: Publishes exported suites. Without it, publishing is disabled.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
