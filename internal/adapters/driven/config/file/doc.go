// Package file provides filesystem-backed driven adapters.
//
// Adapters:
//   - ConfigStore: TOML settings in ~/.suitesmith/config.toml
//   - PromptStore: user-editable LLM prompt templates
//   - PromptWatcher: reloads prompts when their files change
package file
