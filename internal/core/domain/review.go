package domain

// ReviewState is the reconciliation state of the suite under review.
type ReviewState string

// Review states.
const (
	// ReviewViewing means no suite is open.
	ReviewViewing ReviewState = "viewing"

	// ReviewEditing means a suite is open and the buffer matches the persisted suite.
	ReviewEditing ReviewState = "editing"

	// ReviewDirty means the buffer differs from the persisted suite.
	ReviewDirty ReviewState = "dirty"

	// ReviewSaving is held while the buffer is being written.
	ReviewSaving ReviewState = "saving"

	// ReviewSaved is a clean state reported right after a successful save.
	ReviewSaved ReviewState = "saved"
)

// String returns the string representation.
func (s ReviewState) String() string {
	return string(s)
}

// HasBuffer reports whether a suite is open in this state.
func (s ReviewState) HasBuffer() bool {
	return s != ReviewViewing
}

// DirtyPolicy decides what happens to unsaved edits when the user leaves a suite.
type DirtyPolicy string

// Available dirty policies.
const (
	// DirtyPolicyConfirm refuses to leave until the caller confirms the discard.
	DirtyPolicyConfirm DirtyPolicy = "confirm"

	// DirtyPolicyDiscard drops unsaved edits silently.
	DirtyPolicyDiscard DirtyPolicy = "discard"

	// DirtyPolicyAutosave saves unsaved edits before leaving.
	DirtyPolicyAutosave DirtyPolicy = "autosave"
)

// IsValid returns true if the policy is recognised.
func (p DirtyPolicy) IsValid() bool {
	switch p {
	case DirtyPolicyConfirm, DirtyPolicyDiscard, DirtyPolicyAutosave:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p DirtyPolicy) String() string {
	return string(p)
}

// AllDirtyPolicies returns every dirty policy.
func AllDirtyPolicies() []DirtyPolicy {
	return []DirtyPolicy{DirtyPolicyConfirm, DirtyPolicyDiscard, DirtyPolicyAutosave}
}

// ReviewStatus is a read-only view of the review workspace.
type ReviewStatus struct {
	// SuiteID is the open suite, empty when Viewing.
	SuiteID string

	// State is the current reconciliation state.
	State ReviewState

	// Dirty is true when the buffer differs from the persisted suite.
	Dirty bool

	// ChatInFlight is true while a chat turn is awaiting its reply.
	ChatInFlight bool

	// LastError is the most recent save or chat failure, if any.
	LastError error
}
