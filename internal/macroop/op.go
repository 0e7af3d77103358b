// Package macroop defines the macro-op command stream the runtime manager
// interprets: the eight stateful table-mutating commands plus the compute
// op a kernel lowers to, and the HwOp wrapper the accelerator model
// schedules them as.
//
// These are a tagged sum type — a Kind enum plus an Op interface each
// concrete payload struct implements — so the runtime manager dispatches
// with a plain type switch instead of virtual calls.
package macroop

// Kind tags which concrete Op a value holds.
type Kind int

const (
	KindNandMmap Kind = iota
	KindNandMunmap
	KindSramMalloc
	KindSramFree
	KindDramMalloc
	KindDramFree
	KindSramPrefetch
	KindSramPrefetchRelease
	KindMatMul
)

// Op is any macro-op the runtime manager can interpret.
type Op interface {
	Kind() Kind
}

// NandMmap maps a file into the logical address space at PreAllocLogicAddr.
type NandMmap struct {
	FileID            uint64
	PreAllocLogicAddr uint64
}

func (NandMmap) Kind() Kind { return KindNandMmap }

// NandMunmap tears down the NandMmapEntry registered at Addr.
type NandMunmap struct {
	Addr uint64
}

func (NandMunmap) Kind() Kind { return KindNandMunmap }

// SramMalloc allocates NumPages SRAM pages at PreAllocLogicAddr.
type SramMalloc struct {
	NumPages          int
	PreAllocLogicAddr uint64
}

func (SramMalloc) Kind() Kind { return KindSramMalloc }

// SramFree releases the MallocEntry registered at Addr back to the SRAM
// pool.
type SramFree struct {
	Addr uint64
}

func (SramFree) Kind() Kind { return KindSramFree }

// DramMalloc allocates NumPages DRAM pages at PreAllocLogicAddr.
type DramMalloc struct {
	NumPages          int
	PreAllocLogicAddr uint64
}

func (DramMalloc) Kind() Kind { return KindDramMalloc }

// DramFree releases the MallocEntry registered at Addr back to the DRAM
// pool.
type DramFree struct {
	Addr uint64
}

func (DramFree) Kind() Kind { return KindDramFree }

// SramPrefetch stages NumPages pages starting at PrefetchAddr into SRAM,
// aliased at PreAllocLogicAddr, without disturbing the source mapping.
type SramPrefetch struct {
	PrefetchAddr      uint64
	NumPages          int
	PreAllocLogicAddr uint64
}

func (SramPrefetch) Kind() Kind { return KindSramPrefetch }

// SramPrefetchRelease tears down the PrefetchEntry registered at Addr,
// returning its SRAM pages to the pool.
type SramPrefetchRelease struct {
	Addr uint64
}

func (SramPrefetchRelease) Kind() Kind { return KindSramPrefetchRelease }

// MatMul is the one compute macro-op kernel lowering emits: it reads
// weights through a SRAM prefetch alias and has no table-mutating effect
// of its own, only a cost the accelerator's compute engine charges.
type MatMul struct {
	SramAddr uint64 // logical address of the SRAM-aliased weights
	Rows     int
	Cols     int
	Inner    int
}

func (MatMul) Kind() Kind { return KindMatMul }
