// Package services holds the suite-authoring core: the collection
// repository, the per-suite edit buffer and the review state machine that
// reconciles the two. The workflow, settings and publish services sit on top.
//
// Services depend only on the driven ports; adapters are injected by the
// caller.
package services
