// Package resource implements the resource registry and its entry types —
// the records of what a command has allocated, keyed by the logical
// address the kernel-lowering pass pre-assigned it — plus the
// logical-address allocator that hands out those bases.
//
// The original this is ported from modeled entries as a class hierarchy
// (RuntimeResourceEntryBase and three subclasses); here they are a tagged
// sum type, an Entry interface implemented by three concrete structs, each
// embedding the shared base/size/valid bookkeeping.
package resource

import (
	"github.com/xyfuture/nandmachine/internal/config"
	"github.com/xyfuture/nandmachine/internal/page"
)

// Entry is anything the resource registry can track: a base logical
// address, a byte size, a validity flag, and the set of logical pages it
// derives (base/P .. base/P+numPages-1).
type Entry interface {
	Base() uint64
	Size() int
	Pages() []uint64
	IsValid() bool
	Invalidate()
}

type entryBase struct {
	base  uint64
	size  int
	valid bool
}

func (e *entryBase) Base() uint64  { return e.base }
func (e *entryBase) Size() int     { return e.size }
func (e *entryBase) IsValid() bool { return e.valid }
func (e *entryBase) Invalidate()   { e.valid = false }

// Pages returns the contiguous logical page range this entry covers.
func (e *entryBase) Pages() []uint64 {
	n := e.size / config.Page
	pages := make([]uint64, n)
	start := e.base / config.Page

	for i := range pages {
		pages[i] = start + uint64(i)
	}

	return pages
}

// NandMmapEntry records a file mapped into the logical address space: its
// backing file and the permission every derived page was mapped with.
type NandMmapEntry struct {
	entryBase
	FileID uint64
	Perm   page.Permission
}

// NewNandMmapEntry creates a valid NandMmapEntry covering numPages pages
// starting at base.
func NewNandMmapEntry(base uint64, numPages int, fileID uint64, perm page.Permission) *NandMmapEntry {
	return &NandMmapEntry{
		entryBase: entryBase{base: base, size: numPages * config.Page, valid: true},
		FileID:    fileID,
		Perm:      perm,
	}
}

// MallocEntry records a DRAM or SRAM allocation with no backing file.
type MallocEntry struct {
	entryBase
	Device page.Device
}

// NewMallocEntry creates a valid MallocEntry covering numPages pages on
// device, starting at base.
func NewMallocEntry(base uint64, numPages int, device page.Device) *MallocEntry {
	return &MallocEntry{
		entryBase: entryBase{base: base, size: numPages * config.Page, valid: true},
		Device:    device,
	}
}

// PrefetchEntry records a SRAM staging copy of another mapping's pages: the
// mapping aliases the same data on SRAM without disturbing the source
// mapping, so SourceLogicalPages tracks which source page backs each
// prefetched page.
type PrefetchEntry struct {
	entryBase
	SourceLogicalPages map[uint64]uint64 // prefetched lp -> source lp
}

// NewPrefetchEntry creates a valid PrefetchEntry covering numPages pages
// starting at base, with no source mappings recorded yet; callers add them
// with Record as pages are staged.
func NewPrefetchEntry(base uint64, numPages int) *PrefetchEntry {
	return &PrefetchEntry{
		entryBase:          entryBase{base: base, size: numPages * config.Page, valid: true},
		SourceLogicalPages: make(map[uint64]uint64, numPages),
	}
}

// Record notes that prefetched logical page lp was staged from source page
// srcLP.
func (e *PrefetchEntry) Record(lp, srcLP uint64) {
	e.SourceLogicalPages[lp] = srcLP
}
