// Package kernel lowers an annotated compute-graph node into the macro-op
// command buffers the accelerator model consumes: a one-time prologue
// mapping and a per-invocation prefetch/compute/release triple.
package kernel

import (
	"fmt"

	"github.com/xyfuture/nandmachine/internal/macroop"
	"github.com/xyfuture/nandmachine/internal/nand"
	"github.com/xyfuture/nandmachine/internal/resource"
)

// NodeAnnotation is the fixed struct kernel lowering consumes. It replaces
// the duck-typed meta dict the frontend this was ported from attached to
// graph nodes: every lowerable node carries exactly these fields, nothing
// more, nothing inferred by attribute lookup.
type NodeAnnotation struct {
	NandStorePages   int
	FileID           uint64
	ModuleType       string
	WeightShape      []int
	RequireAllReduce bool
}

// Mapper is the seam between kernel lowering and the NAND file table: it
// assigns a backing file to a node annotation that doesn't have one yet.
//
// Placing file creation here, rather than standing up a separate
// frontend graph-tracing pass, is deliberate: that pass is out of scope,
// but something in scope still has to drive CreateNewFile, and kernel
// lowering is the one in-scope component that consumes its result.
type Mapper struct {
	files *nand.FileTable
}

// NewMapper creates a Mapper over files.
func NewMapper(files *nand.FileTable) *Mapper {
	return &Mapper{files: files}
}

// Assign creates a backing file for ann if it doesn't already have one,
// stamping the new file ID back onto ann.
func (p *Mapper) Assign(ann *NodeAnnotation) error {
	if ann.FileID != 0 {
		return nil
	}

	id, err := p.files.CreateNewFile(ann.NandStorePages)
	if err != nil {
		return fmt.Errorf("kernel: mapper: assign file: %w", err)
	}

	ann.FileID = id

	return nil
}

// Lower converts ann into the prologue (one-time setup) and per-invocation
// command buffers: a NandMmap in the prologue referencing ann's backing
// file, then a SramPrefetch staging its weights, a MatMul reading the
// staged alias, and a SramPrefetchRelease. ann must already carry a
// FileID — call Mapper.Assign first.
//
// Both buffers carry pre-allocated logical addresses as plain fields: the
// runtime manager never chooses addresses itself, so address assignment
// stays separate from execution.
func Lower(ann NodeAnnotation, alloc *resource.LogicalAllocator) (prologue, commands []macroop.Op, err error) {
	if ann.FileID == 0 {
		return nil, nil, fmt.Errorf("kernel: lower: node %q has no backing file; call Mapper.Assign first", ann.ModuleType)
	}

	nandBase := alloc.Alloc()
	sramBase := alloc.Alloc()

	prologue = []macroop.Op{
		macroop.NandMmap{FileID: ann.FileID, PreAllocLogicAddr: nandBase},
	}

	rows, cols, inner := weightDims(ann.WeightShape)

	commands = []macroop.Op{
		macroop.SramPrefetch{PrefetchAddr: nandBase, NumPages: ann.NandStorePages, PreAllocLogicAddr: sramBase},
		macroop.MatMul{SramAddr: sramBase, Rows: rows, Cols: cols, Inner: inner},
		macroop.SramPrefetchRelease{Addr: sramBase},
	}

	return prologue, commands, nil
}

// weightDims extracts (rows, cols, inner) from a weight shape, defaulting
// missing dimensions to 1 so a partially specified shape still lowers to
// something the compute engine can cost.
func weightDims(shape []int) (rows, cols, inner int) {
	dims := [3]int{1, 1, 1}

	for i := 0; i < len(shape) && i < 3; i++ {
		dims[i] = shape[i]
	}

	return dims[0], dims[1], dims[2]
}
