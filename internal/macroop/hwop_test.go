package macroop

import "testing"

func TestHwOpReadyNoInput(tt *testing.T) {
	h := NewHwOp(1, NandMunmap{Addr: 0}, nil)

	if !h.Ready() {
		tt.Error("an op with no inputs should be ready immediately")
	}
}

func TestHwOpReadyChain(tt *testing.T) {
	first := NewHwOp(1, NandMunmap{Addr: 0}, nil)
	second := NewHwOp(2, NandMunmap{Addr: 0}, first)

	if second.Ready() {
		tt.Error("second should not be ready before first finishes")
	}

	ran := false
	second.WhenReady(func() { ran = true })

	if ran {
		tt.Error("WhenReady should not fire before the dependency finishes")
	}

	first.Done()

	if !second.Ready() {
		tt.Error("second should be ready once first is finished")
	}

	if !ran {
		tt.Error("WhenReady callback should have fired once first finished")
	}
}

func TestHwOpDoneTwicePanics(tt *testing.T) {
	defer func() {
		if recover() == nil {
			tt.Error("calling Done twice should panic")
		}
	}()

	h := NewHwOp(1, NandMunmap{Addr: 0}, nil)
	h.Done()
	h.Done()
}

func TestHwOpKinds(tt *testing.T) {
	cases := []struct {
		op   Op
		kind Kind
	}{
		{NandMmap{}, KindNandMmap},
		{NandMunmap{}, KindNandMunmap},
		{SramMalloc{}, KindSramMalloc},
		{SramFree{}, KindSramFree},
		{DramMalloc{}, KindDramMalloc},
		{DramFree{}, KindDramFree},
		{SramPrefetch{}, KindSramPrefetch},
		{SramPrefetchRelease{}, KindSramPrefetchRelease},
		{MatMul{}, KindMatMul},
	}

	for _, c := range cases {
		if c.op.Kind() != c.kind {
			tt.Errorf("%T.Kind() = %v, want %v", c.op, c.op.Kind(), c.kind)
		}
	}
}
