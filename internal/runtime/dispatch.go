package runtime

import (
	"fmt"

	"github.com/xyfuture/nandmachine/internal/macroop"
)

// Dispatch interprets op against the manager's tables. It is the single
// entry point the accelerator's engines call — they never touch table
// internals directly.
//
// MatMul carries no table mutation of its own: the compute engine charges
// it a roofline cost and dispatch here is a no-op.
func (m *Manager) Dispatch(op macroop.Op) error {
	switch o := op.(type) {
	case macroop.NandMmap:
		return m.NandMmap(o.FileID, o.PreAllocLogicAddr)
	case macroop.NandMunmap:
		return m.NandMunmap(o.Addr)
	case macroop.SramMalloc:
		return m.SramMalloc(o.NumPages, o.PreAllocLogicAddr)
	case macroop.SramFree:
		return m.SramFree(o.Addr)
	case macroop.DramMalloc:
		return m.DramMalloc(o.NumPages, o.PreAllocLogicAddr)
	case macroop.DramFree:
		return m.DramFree(o.Addr)
	case macroop.SramPrefetch:
		return m.SramPrefetch(o.PrefetchAddr, o.NumPages, o.PreAllocLogicAddr)
	case macroop.SramPrefetchRelease:
		return m.SramPrefetchRelease(o.Addr)
	case macroop.MatMul:
		return nil
	default:
		return fmt.Errorf("runtime: dispatch: unrecognized op %T", op)
	}
}
