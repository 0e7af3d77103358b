// Package page implements the page table: the single indirection layer
// between logical page numbers handed out by the resource registry and the
// physical pages backing them on NAND, DRAM, or SRAM.
package page

import "fmt"

// Device identifies which physical pool a page table entry's physical page
// lives in.
type Device int

const (
	NAND Device = iota
	DRAM
	SRAM
)

// Permission is a bitmask of the access rights a mapping grants.
type Permission int

const (
	Read Permission = 1 << iota
	Write
)

// Has reports whether p grants every bit set in required.
func (p Permission) Has(required Permission) bool {
	return p&required == required
}

// String renders p as its letter flags, e.g. "RW", "R", or "-" for none.
// Permission is a bitmask, not a sequential enum, so this is hand-written
// rather than stringer-generated.
func (p Permission) String() string {
	if p == 0 {
		return "-"
	}

	s := ""
	if p.Has(Read) {
		s += "R"
	}

	if p.Has(Write) {
		s += "W"
	}

	return s
}

// Entry is one page table row: a logical page mapped to a physical page on
// some device, with the access rights it was mapped under.
//
// Valid distinguishes a soft-invalidated entry (translate fails, but the
// slot is still occupied) from an absent one (unmap frees the slot
// entirely) — see Invalidate.
type Entry struct {
	Device   Device
	PhysPage uint64
	Perm     Permission
	Valid    bool
}

// Table is the page table: a map from logical page number to Entry.
// It is not safe for concurrent use; the runtime manager serializes all
// table mutation.
type Table struct {
	entries map[uint64]Entry
}

// New creates an empty page table.
func New() *Table {
	return &Table{entries: make(map[uint64]Entry)}
}

// ErrAlreadyMapped is returned by Map when lp already has an entry,
// invalidated or not — a slot must be Unmapped before it can be reused.
var ErrAlreadyMapped = fmt.Errorf("page: already mapped")

// ErrNotMapped is returned by Unmap, Translate-adjacent lookups, and
// Invalidate when lp has no entry at all.
var ErrNotMapped = fmt.Errorf("page: not mapped")

// Map creates a valid mapping from lp to (device, physPage) with the given
// permission. It fails with ErrAlreadyMapped if lp already has an entry.
func (t *Table) Map(lp uint64, device Device, physPage uint64, perm Permission) error {
	if _, ok := t.entries[lp]; ok {
		return fmt.Errorf("page: map lp=%d: %w", lp, ErrAlreadyMapped)
	}

	t.entries[lp] = Entry{Device: device, PhysPage: physPage, Perm: perm, Valid: true}

	return nil
}

// Unmap removes lp's entry entirely, freeing the slot for reuse. It fails
// with ErrNotMapped if lp has no entry.
func (t *Table) Unmap(lp uint64) error {
	if _, ok := t.entries[lp]; !ok {
		return fmt.Errorf("page: unmap lp=%d: %w", lp, ErrNotMapped)
	}

	delete(t.entries, lp)

	return nil
}

// Translate returns lp's (device, physPage) and true iff lp has a valid
// entry. An invalidated or absent entry returns false.
func (t *Table) Translate(lp uint64) (Device, uint64, bool) {
	e, ok := t.entries[lp]
	if !ok || !e.Valid {
		return 0, 0, false
	}

	return e.Device, e.PhysPage, true
}

// CheckPermission reports whether lp has a valid entry whose permission
// bits are a superset of required.
func (t *Table) CheckPermission(lp uint64, required Permission) bool {
	e, ok := t.entries[lp]
	if !ok || !e.Valid {
		return false
	}

	return e.Perm.Has(required)
}

// Invalidate marks lp's entry invalid without removing it: later
// Translate/CheckPermission calls fail, but the slot stays occupied until
// an explicit Unmap. Invalidating an already-invalid entry is a no-op.
// It fails with ErrNotMapped if lp has no entry at all.
func (t *Table) Invalidate(lp uint64) error {
	e, ok := t.entries[lp]
	if !ok {
		return fmt.Errorf("page: invalidate lp=%d: %w", lp, ErrNotMapped)
	}

	e.Valid = false
	t.entries[lp] = e

	return nil
}

// GetDevicePages returns every logical page currently validly mapped to
// device, in no particular order.
func (t *Table) GetDevicePages(device Device) []uint64 {
	var pages []uint64

	for lp, e := range t.entries {
		if e.Valid && e.Device == device {
			pages = append(pages, lp)
		}
	}

	return pages
}

// Snapshot captures the page table's state for rollback.
func (t *Table) Snapshot() map[uint64]Entry {
	cp := make(map[uint64]Entry, len(t.entries))
	for k, v := range t.entries {
		cp[k] = v
	}

	return cp
}

// Restore replaces the page table's state with a previously captured
// snapshot.
func (t *Table) Restore(snap map[uint64]Entry) {
	t.entries = snap
}
