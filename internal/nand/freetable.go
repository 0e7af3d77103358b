// Package nand implements the NAND free-space allocator and the file table
// that lays logical weight files out across NAND pages.
package nand

// freetable.go tracks, per block, the next writable page — whole-block
// erase semantics, no write-before-erase enforcement at this layer.

import (
	"fmt"

	"github.com/xyfuture/nandmachine/internal/addr"
	"github.com/xyfuture/nandmachine/internal/config"
	"github.com/xyfuture/nandmachine/internal/rerr"
)

// FreeTable maps each NAND block to the index of its next writable page.
// It is not safe for concurrent use; the runtime manager serializes access
// the same way it serializes every other table mutation.
type FreeTable struct {
	cfg   config.NandConfig
	block map[uint64]int // NandBlockAddress.Index() -> next free page
}

// NewFreeTable creates an empty free table: every block starts with its
// next-page counter at zero.
func NewFreeTable(cfg config.NandConfig) *FreeTable {
	return &FreeTable{
		cfg:   cfg,
		block: make(map[uint64]int),
	}
}

// Allocate returns the next writable page in block and advances the
// counter, or rerr.ErrNandBlockFull if the block has no more pages.
func (t *FreeTable) Allocate(block addr.NandBlockAddress) (addr.NandAddress, error) {
	next := t.block[block.Index()]

	if next >= t.cfg.NumPages {
		return addr.NandAddress{}, fmt.Errorf("nand: free table: block %s: %w", block, rerr.ErrNandBlockFull)
	}

	page := addr.NandAddressFromComponents(block.Channel(), block.Plane(), block.Block(), next, t.cfg)
	t.block[block.Index()] = next + 1

	return page, nil
}

// Free resets block's next-page counter to zero, modeling an erase. It does
// not check that every page in the block was actually written.
func (t *FreeTable) Free(block addr.NandBlockAddress) {
	t.block[block.Index()] = 0
}

// CheckFree reports whether a is exactly the next page that would be
// allocated in its containing block.
func (t *FreeTable) CheckFree(a addr.NandAddress) bool {
	block := a.ToBlockAddress()
	return t.block[block.Index()] == a.Page()
}

// NextPage returns the current next-page counter for block, for
// inspection/testing.
func (t *FreeTable) NextPage(block addr.NandBlockAddress) int {
	return t.block[block.Index()]
}

// Snapshot returns a copy of the free table's internal state, for rollback.
func (t *FreeTable) Snapshot() map[uint64]int {
	cp := make(map[uint64]int, len(t.block))
	for k, v := range t.block {
		cp[k] = v
	}

	return cp
}

// Restore replaces the free table's internal state with a previously
// captured snapshot.
func (t *FreeTable) Restore(snap map[uint64]int) {
	t.block = snap
}
