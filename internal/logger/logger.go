// Package logger provides diagnostic output for suitesmith.
//
// Debug, Info and Section lines are written only in verbose mode, enabled by
// the --verbose flag. Warnings are always written. The TUI redirects output
// to io.Discard while it owns the terminal.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

const timestampLayout = "15:04:05.000"

var (
	mu         sync.RWMutex
	verbose    bool
	timestamps bool
	output     io.Writer = os.Stderr
	now                  = time.Now
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetTimestamps prefixes every line with the wall-clock time.
func SetTimestamps(on bool) {
	mu.Lock()
	defer mu.Unlock()
	timestamps = on
}

// SetOutput sets the output writer. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Debug prints a message in verbose mode.
func Debug(format string, args ...any) {
	write(true, "[DEBUG] ", "", format, args...)
}

// Info prints an informational message in verbose mode.
func Info(format string, args ...any) {
	write(true, "[INFO] ", "", format, args...)
}

// Warn prints a warning.
func Warn(format string, args ...any) {
	write(false, "[WARN] ", "", format, args...)
}

// Section prints a section header in verbose mode.
func Section(name string) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Scoped logs with a fixed component prefix, e.g. "review: ".
type Scoped struct {
	prefix string
}

// For returns a logger whose lines are prefixed with component.
func For(component string) Scoped {
	return Scoped{prefix: component + ": "}
}

// Debug prints a message in verbose mode.
func (s Scoped) Debug(format string, args ...any) {
	write(true, "[DEBUG] ", s.prefix, format, args...)
}

// Info prints an informational message in verbose mode.
func (s Scoped) Info(format string, args ...any) {
	write(true, "[INFO] ", s.prefix, format, args...)
}

// Warn prints a warning.
func (s Scoped) Warn(format string, args ...any) {
	write(false, "[WARN] ", s.prefix, format, args...)
}

// write holds the write lock so lines from concurrent callers never interleave.
func write(verboseOnly bool, level, prefix, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if verboseOnly && !verbose {
		return
	}
	stamp := ""
	if timestamps {
		stamp = now().Format(timestampLayout) + " "
	}
	fmt.Fprintf(output, stamp+level+prefix+format+"\n", args...)
}
