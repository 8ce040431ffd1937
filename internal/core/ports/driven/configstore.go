package driven

// ConfigStore holds flat dotted keys such as "llm.provider" or
// "review.dirty_policy". The file adapter maps the first segment to a TOML
// table.
type ConfigStore interface {
	// Get returns the raw value and whether the key is set.
	Get(key string) (any, bool)

	// GetString returns "" for unset or non-string keys.
	GetString(key string) string

	// GetInt returns 0 for unset or non-numeric keys.
	GetInt(key string) int

	// Set stores value and persists it before returning.
	Set(key string, value any) error

	// Save writes the current values.
	Save() error

	// Load replaces the in-memory values with what is stored.
	Load() error

	// Path is where the configuration lives. The memory adapter returns ":memory:".
	Path() string
}
