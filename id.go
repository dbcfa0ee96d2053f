package wecs

import "sync/atomic"

// SystemID uniquely identifies a system within the process.
// IDs are issued once at construction and never reused. The zero value is
// never issued, so it can be used to mean "no system".
type SystemID uint64

// nextSystemID is the process-wide id counter.
var nextSystemID atomic.Uint64

// newSystemID issues the next system id. Safe to call from any goroutine.
func newSystemID() SystemID {
	return SystemID(nextSystemID.Add(1))
}
