// Package rampool implements the flat DRAM/SRAM free-page pools: unlike
// NAND, there is no channel/plane/block geometry to respect, so allocation
// is just "give me the lowest free index" and free is "give it back."
package rampool

import (
	"container/heap"
	"fmt"
)

// indexHeap is a min-heap of free page indices, used so Alloc always
// returns the lowest-numbered free page: allocation order stays
// deterministic regardless of the order pages were freed in.
type indexHeap []uint64

func (h indexHeap) Len() int            { return len(h) }
func (h indexHeap) Less(i, j int) bool  { return h[i] < h[j] }
func (h indexHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *indexHeap) Push(x interface{}) { *h = append(*h, x.(uint64)) }

func (h *indexHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]

	return x
}

// Pool is a flat free-page allocator over [0, total). All pages start
// free. It is not safe for concurrent use; callers serialize access the
// same way the runtime manager serializes every other table mutation.
type Pool struct {
	total int
	free  indexHeap
	used  map[uint64]bool
}

// New creates a pool over total pages, all initially free.
func New(total int) *Pool {
	free := make(indexHeap, total)
	for i := range free {
		free[i] = uint64(i)
	}

	heap.Init(&free)

	return &Pool{total: total, free: free, used: make(map[uint64]bool, total)}
}

// ErrOOM is returned by Alloc when the pool has no free pages.
var ErrOOM = fmt.Errorf("rampool: out of pages")

// Alloc removes and returns the lowest free page index.
func (p *Pool) Alloc() (uint64, error) {
	if p.free.Len() == 0 {
		return 0, ErrOOM
	}

	idx := heap.Pop(&p.free).(uint64)
	p.used[idx] = true

	return idx, nil
}

// AllocN allocates n pages at once, rolling back the whole request (none of
// the n pages are consumed) if the pool runs out partway through.
func (p *Pool) AllocN(n int) ([]uint64, error) {
	pages := make([]uint64, 0, n)

	for i := 0; i < n; i++ {
		idx, err := p.Alloc()
		if err != nil {
			for _, taken := range pages {
				p.Free(taken)
			}

			return nil, fmt.Errorf("rampool: alloc %d pages: %w", n, err)
		}

		pages = append(pages, idx)
	}

	return pages, nil
}

// Free returns idx to the pool. Freeing an already-free or out-of-range
// index is a no-op: double-free is idempotent, matching the source table's
// set-based free list where re-adding an already-present index changes
// nothing.
func (p *Pool) Free(idx uint64) {
	if idx >= uint64(p.total) || !p.used[idx] {
		return
	}

	delete(p.used, idx)
	heap.Push(&p.free, idx)
}

// IsFree reports whether idx is currently unallocated.
func (p *Pool) IsFree(idx uint64) bool {
	if idx >= uint64(p.total) {
		return false
	}

	return !p.used[idx]
}

// FreeCount returns the number of currently-unallocated pages.
func (p *Pool) FreeCount() int { return p.free.Len() }

// Total returns the pool's fixed capacity in pages.
func (p *Pool) Total() int { return p.total }

// Snapshot captures the pool's allocation state for rollback.
type Snapshot struct {
	free indexHeap
	used map[uint64]bool
}

// Snapshot returns a copy of the pool's current state.
func (p *Pool) Snapshot() Snapshot {
	free := make(indexHeap, len(p.free))
	copy(free, p.free)

	used := make(map[uint64]bool, len(p.used))
	for k, v := range p.used {
		used[k] = v
	}

	return Snapshot{free: free, used: used}
}

// Restore replaces the pool's state with a previously captured snapshot.
func (p *Pool) Restore(snap Snapshot) {
	p.free = snap.free
	p.used = snap.used
}
