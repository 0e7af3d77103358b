package resource

// Step is the minimum window size the logical-address allocator reserves
// per allocation: far larger than any single command will actually use, so
// windows are trivially non-overlapping without the allocator needing to
// know how big a given window's contents will be.
const Step = 1 << 30

// LogicalAllocator hands out disjoint windows of logical address space.
// The original this is grounded on kept it as a process-wide singleton; per
// the redesign this carries its state as a plain struct field so callers
// construct and own an instance explicitly (typically one per
// runtime.Manager) instead of reaching for global state.
type LogicalAllocator struct {
	next uint64
}

// NewLogicalAllocator creates an allocator whose first Alloc returns Step.
func NewLogicalAllocator() *LogicalAllocator {
	return &LogicalAllocator{}
}

// Alloc advances the cursor by Step and returns the new base. Base 0 is
// never issued, so callers may reserve it as a not-yet-assigned sentinel.
func (a *LogicalAllocator) Alloc() uint64 {
	a.next += Step
	return a.next
}

// Snapshot captures the allocator's cursor for rollback.
func (a *LogicalAllocator) Snapshot() uint64 { return a.next }

// Restore resets the cursor to a previously captured snapshot.
func (a *LogicalAllocator) Restore(snap uint64) { a.next = snap }
