package wecs

// Stage represents a scheduling stage for system execution.
// Systems are executed in stage order: Before → Update → After.
type Stage int

const (
	// Before runs first. Use for input handling and setup logic that other
	// systems depend on.
	Before Stage = iota

	// Update runs second. Use for main simulation logic.
	Update

	// After runs last. Use for cleanup, bookkeeping and output.
	After

	// stageCount is the total number of stages.
	stageCount
)

// String returns the string representation of the stage.
func (s Stage) String() string {
	switch s {
	case Before:
		return "Before"
	case Update:
		return "Update"
	case After:
		return "After"
	default:
		return "Unknown"
	}
}
