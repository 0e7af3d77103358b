package macroop

import "github.com/xyfuture/nandmachine/internal/simkernel"

// HwOp wraps one macro-op as the accelerator model schedules it: a
// dependency edge on the op issued immediately before it, and a
// completion signal the engine that runs it fires once done.
//
// The original this is ported from gave every HwOp a reference to one
// shared Event instance with a shared default-valued payload, so two
// in-flight ops could observe each other's completion by mistake; here
// each HwOp owns a fresh simkernel.Event, which fires exactly once and
// panics on a second Fire, so waiting on the wrong op's signal is not
// possible.
type HwOp struct {
	ID       uint64
	MacroOp  Op
	Finished bool
	Finish   *simkernel.Event
	InputOps []*HwOp
}

// NewHwOp wraps op with the given dependency as its single predecessor
// (nil if op has none — only the very first op in the combined queue
// order has no predecessor).
func NewHwOp(id uint64, op Op, input *HwOp) *HwOp {
	h := &HwOp{ID: id, MacroOp: op, Finish: simkernel.NewEvent()}
	if input != nil {
		h.InputOps = []*HwOp{input}
	}

	return h
}

// Ready reports whether every input op has finished.
func (h *HwOp) Ready() bool {
	for _, in := range h.InputOps {
		if !in.Finished {
			return false
		}
	}

	return true
}

// WhenReady registers fn to run once every input op has finished. fn runs
// immediately if h has no inputs or they've already all finished.
func (h *HwOp) WhenReady(fn func()) {
	if len(h.InputOps) == 0 {
		fn()
		return
	}

	// Spec's dependency rule gives every op exactly one input.
	h.InputOps[0].Finish.Wait(fn)
}

// Done marks h finished and fires its completion signal. Calling Done more
// than once panics: an op finishes exactly once.
func (h *HwOp) Done() {
	h.Finished = true
	h.Finish.Fire()
}
