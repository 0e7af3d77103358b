package resource

import (
	"fmt"

	"github.com/xyfuture/nandmachine/internal/config"
	"github.com/xyfuture/nandmachine/internal/rerr"
)

// Registry maps a resource entry's base logical address to the entry
// itself. It is not safe for concurrent use; the runtime manager serializes
// all table mutation.
type Registry struct {
	entries map[uint64]Entry
}

// NewRegistry creates an empty resource registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[uint64]Entry)}
}

// Add registers e under its base address. It fails with ErrConfigInvalid if
// e is invalid, or ErrAddrInUse if e's base is already registered.
func (r *Registry) Add(e Entry) error {
	if e == nil || !e.IsValid() {
		return fmt.Errorf("resource: add: %w: entry is invalid", rerr.ErrConfigInvalid)
	}

	if _, ok := r.entries[e.Base()]; ok {
		return fmt.Errorf("resource: add: base %#x: %w", e.Base(), rerr.ErrAddrInUse)
	}

	r.entries[e.Base()] = e

	return nil
}

// Remove deletes the entry at base. It fails with ErrBadHandle if no entry
// is registered there.
func (r *Registry) Remove(base uint64) error {
	if _, ok := r.entries[base]; !ok {
		return fmt.Errorf("resource: remove: base %#x: %w", base, rerr.ErrBadHandle)
	}

	delete(r.entries, base)

	return nil
}

// Get returns the entry at base. It fails with ErrBadHandle if none exists.
func (r *Registry) Get(base uint64) (Entry, error) {
	e, ok := r.entries[base]
	if !ok {
		return nil, fmt.Errorf("resource: get: base %#x: %w", base, rerr.ErrBadHandle)
	}

	return e, nil
}

// Has reports whether base has a registered entry.
func (r *Registry) Has(base uint64) bool {
	_, ok := r.entries[base]
	return ok
}

// GetAll returns a copy of every registered entry, in no particular order.
func (r *Registry) GetAll() []Entry {
	all := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		all = append(all, e)
	}

	return all
}

// Count returns the number of registered entries.
func (r *Registry) Count() int { return len(r.entries) }

// Clear removes every entry.
func (r *Registry) Clear() {
	r.entries = make(map[uint64]Entry)
}

// FindByPage scans the registry for an entry whose derived page set
// contains lp. O(n) in the number of entries; acceptable at the scale this
// runtime operates at.
func (r *Registry) FindByPage(lp uint64) (Entry, bool) {
	for _, e := range r.entries {
		for _, p := range e.Pages() {
			if p == lp {
				return e, true
			}
		}
	}

	return nil, false
}

// FindByAddr is FindByPage for a byte address rather than a page number.
func (r *Registry) FindByAddr(a uint64) (Entry, bool) {
	return r.FindByPage(a / config.Page)
}

// RemoveInvalidEntries sweeps the registry for entries whose Valid flag is
// false and removes them, returning how many were removed. Required by the
// same design note that calls for FindByPage/FindByAddr, despite being
// absent from the stub this was ported from.
func (r *Registry) RemoveInvalidEntries() int {
	removed := 0

	for base, e := range r.entries {
		if !e.IsValid() {
			delete(r.entries, base)
			removed++
		}
	}

	return removed
}

// Snapshot captures the registry's state for rollback. Entries themselves
// are not deep-copied: handlers that mutate an entry in place (e.g.
// Invalidate) must restore it through Restore before Add/Remove bookkeeping
// diverges, or hold their own copy.
func (r *Registry) Snapshot() map[uint64]Entry {
	cp := make(map[uint64]Entry, len(r.entries))
	for k, v := range r.entries {
		cp[k] = v
	}

	return cp
}

// Restore replaces the registry's state with a previously captured
// snapshot.
func (r *Registry) Restore(snap map[uint64]Entry) {
	r.entries = snap
}
