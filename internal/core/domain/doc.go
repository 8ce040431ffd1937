// Package domain defines the core business entities for Suitesmith.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Exploration: A captured web page representation
//   - TestSuite: A named, ordered set of test cases for one page
//   - TestCase: A single structured test record
//   - ChatMessage: One entry of a suite's chat transcript
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
