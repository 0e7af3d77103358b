package kernel

import (
	"testing"

	"github.com/xyfuture/nandmachine/internal/config"
	"github.com/xyfuture/nandmachine/internal/macroop"
	"github.com/xyfuture/nandmachine/internal/nand"
	"github.com/xyfuture/nandmachine/internal/resource"
)

func TestMapperAssign(tt *testing.T) {
	cfg := config.NandConfig{NumChannels: 1, NumPlanes: 1, NumBlocks: 4, NumPages: 16}
	files := nand.NewFileTable(cfg, nand.NewFreeTable(cfg))
	mapper := NewMapper(files)

	ann := &NodeAnnotation{NandStorePages: 2, ModuleType: "linear0", WeightShape: []int{8, 8}}

	if err := mapper.Assign(ann); err != nil {
		tt.Fatalf("assign: %s", err)
	}

	if ann.FileID == 0 {
		tt.Error("assign should stamp a nonzero file id")
	}

	first := ann.FileID

	if err := mapper.Assign(ann); err != nil {
		tt.Fatalf("re-assign: %s", err)
	}

	if ann.FileID != first {
		tt.Error("assign should be a no-op once a node already has a file id")
	}

	if files.Count() != 1 {
		tt.Errorf("file count: got %d, want 1 (re-assign must not create a second file)", files.Count())
	}
}

func TestLowerRequiresFileID(tt *testing.T) {
	ann := NodeAnnotation{ModuleType: "linear0"}
	alloc := resource.NewLogicalAllocator()

	if _, _, err := Lower(ann, alloc); err == nil {
		tt.Error("lower without a file id should fail")
	}
}

// TestLowerShape checks kernel lowering produces the prologue/commands
// structure spec.md §4.7 describes: one NandMmap up front, then
// prefetch/compute/release per invocation, all referencing freshly
// allocated, disjoint logical addresses.
func TestLowerShape(tt *testing.T) {
	ann := NodeAnnotation{FileID: 7, NandStorePages: 4, ModuleType: "linear0", WeightShape: []int{16, 32}}
	alloc := resource.NewLogicalAllocator()

	prologue, commands, err := Lower(ann, alloc)
	if err != nil {
		tt.Fatalf("lower: %s", err)
	}

	if len(prologue) != 1 {
		tt.Fatalf("prologue: got %d ops, want 1", len(prologue))
	}

	mmap, ok := prologue[0].(macroop.NandMmap)
	if !ok {
		tt.Fatalf("prologue[0] is %T, want macroop.NandMmap", prologue[0])
	}

	if mmap.FileID != ann.FileID {
		tt.Errorf("mmap file id: got %d, want %d", mmap.FileID, ann.FileID)
	}

	if len(commands) != 3 {
		tt.Fatalf("commands: got %d ops, want 3", len(commands))
	}

	prefetch, ok := commands[0].(macroop.SramPrefetch)
	if !ok {
		tt.Fatalf("commands[0] is %T, want macroop.SramPrefetch", commands[0])
	}

	if prefetch.PrefetchAddr != mmap.PreAllocLogicAddr {
		tt.Errorf("prefetch source: got %#x, want mmap base %#x", prefetch.PrefetchAddr, mmap.PreAllocLogicAddr)
	}

	if prefetch.NumPages != ann.NandStorePages {
		tt.Errorf("prefetch num pages: got %d, want %d", prefetch.NumPages, ann.NandStorePages)
	}

	matmul, ok := commands[1].(macroop.MatMul)
	if !ok {
		tt.Fatalf("commands[1] is %T, want macroop.MatMul", commands[1])
	}

	if matmul.SramAddr != prefetch.PreAllocLogicAddr {
		tt.Errorf("matmul sram addr: got %#x, want prefetch dst %#x", matmul.SramAddr, prefetch.PreAllocLogicAddr)
	}

	if matmul.Rows != 16 || matmul.Cols != 32 || matmul.Inner != 1 {
		tt.Errorf("matmul dims: got (%d,%d,%d), want (16,32,1)", matmul.Rows, matmul.Cols, matmul.Inner)
	}

	release, ok := commands[2].(macroop.SramPrefetchRelease)
	if !ok {
		tt.Fatalf("commands[2] is %T, want macroop.SramPrefetchRelease", commands[2])
	}

	if release.Addr != prefetch.PreAllocLogicAddr {
		tt.Errorf("release addr: got %#x, want prefetch dst %#x", release.Addr, prefetch.PreAllocLogicAddr)
	}

	if mmap.PreAllocLogicAddr == prefetch.PreAllocLogicAddr {
		tt.Error("mmap and prefetch bases must be disjoint windows")
	}
}

func TestLowerDefaultsPartialShape(tt *testing.T) {
	ann := NodeAnnotation{FileID: 1, NandStorePages: 1, WeightShape: []int{8}}
	alloc := resource.NewLogicalAllocator()

	_, commands, err := Lower(ann, alloc)
	if err != nil {
		tt.Fatalf("lower: %s", err)
	}

	matmul := commands[1].(macroop.MatMul)

	if matmul.Rows != 8 || matmul.Cols != 1 || matmul.Inner != 1 {
		tt.Errorf("matmul dims from partial shape: got (%d,%d,%d), want (8,1,1)", matmul.Rows, matmul.Cols, matmul.Inner)
	}
}
