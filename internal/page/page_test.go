package page

import (
	"errors"
	"testing"
)

func TestMapUnmap(tt *testing.T) {
	tbl := New()

	if err := tbl.Map(10, NAND, 5, Read); err != nil {
		tt.Fatalf("map: %s", err)
	}

	if err := tbl.Map(10, NAND, 6, Read); !errors.Is(err, ErrAlreadyMapped) {
		tt.Errorf("remap: got %v, want ErrAlreadyMapped", err)
	}

	dev, pp, ok := tbl.Translate(10)
	if !ok || dev != NAND || pp != 5 {
		tt.Errorf("translate: got (%v,%v,%v), want (NAND,5,true)", dev, pp, ok)
	}

	if err := tbl.Unmap(10); err != nil {
		tt.Fatalf("unmap: %s", err)
	}

	if err := tbl.Unmap(10); !errors.Is(err, ErrNotMapped) {
		tt.Errorf("double unmap: got %v, want ErrNotMapped", err)
	}

	if _, _, ok := tbl.Translate(10); ok {
		tt.Error("translate after unmap should fail")
	}
}

func TestCheckPermission(tt *testing.T) {
	tbl := New()

	if err := tbl.Map(1, DRAM, 0, Read); err != nil {
		tt.Fatalf("map: %s", err)
	}

	if !tbl.CheckPermission(1, Read) {
		tt.Error("should have read permission")
	}

	if tbl.CheckPermission(1, Write) {
		tt.Error("should not have write permission")
	}

	if err := tbl.Map(2, DRAM, 1, Read|Write); err != nil {
		tt.Fatalf("map: %s", err)
	}

	if !tbl.CheckPermission(2, Read|Write) {
		tt.Error("should have read+write permission")
	}
}

// TestInvalidate checks soft invalidation: translate/permission fail after
// Invalidate, but the slot stays occupied until a separate Unmap.
func TestInvalidate(tt *testing.T) {
	tbl := New()

	if err := tbl.Map(4, SRAM, 0, Read); err != nil {
		tt.Fatalf("map: %s", err)
	}

	if err := tbl.Invalidate(4); err != nil {
		tt.Fatalf("invalidate: %s", err)
	}

	if _, _, ok := tbl.Translate(4); ok {
		tt.Error("translate after invalidate should fail")
	}

	if err := tbl.Map(4, SRAM, 1, Read); !errors.Is(err, ErrAlreadyMapped) {
		tt.Errorf("remap over invalidated slot: got %v, want ErrAlreadyMapped", err)
	}

	if err := tbl.Unmap(4); err != nil {
		tt.Fatalf("unmap after invalidate: %s", err)
	}

	if err := tbl.Map(4, SRAM, 1, Read); err != nil {
		tt.Errorf("remap after unmap: %s", err)
	}
}

func TestInvalidateNotMapped(tt *testing.T) {
	tbl := New()

	if err := tbl.Invalidate(99); !errors.Is(err, ErrNotMapped) {
		tt.Errorf("invalidate unmapped: got %v, want ErrNotMapped", err)
	}
}

func TestGetDevicePages(tt *testing.T) {
	tbl := New()

	_ = tbl.Map(1, NAND, 0, Read)
	_ = tbl.Map(2, NAND, 1, Read)
	_ = tbl.Map(3, DRAM, 0, Read|Write)
	_ = tbl.Invalidate(2)

	nandPages := tbl.GetDevicePages(NAND)
	if len(nandPages) != 1 || nandPages[0] != 1 {
		tt.Errorf("nand pages: got %v, want [1]", nandPages)
	}

	dramPages := tbl.GetDevicePages(DRAM)
	if len(dramPages) != 1 || dramPages[0] != 3 {
		tt.Errorf("dram pages: got %v, want [3]", dramPages)
	}
}

func TestPermissionString(tt *testing.T) {
	cases := []struct {
		perm Permission
		want string
	}{
		{0, "-"},
		{Read, "R"},
		{Write, "W"},
		{Read | Write, "RW"},
	}

	for _, c := range cases {
		if got := c.perm.String(); got != c.want {
			tt.Errorf("%d.String() = %q, want %q", c.perm, got, c.want)
		}
	}
}

func TestSnapshotRestore(tt *testing.T) {
	tbl := New()
	_ = tbl.Map(1, NAND, 0, Read)

	snap := tbl.Snapshot()

	_ = tbl.Map(2, NAND, 1, Read)
	_ = tbl.Unmap(1)

	tbl.Restore(snap)

	if _, _, ok := tbl.Translate(1); !ok {
		tt.Error("restore should bring back page 1")
	}

	if _, _, ok := tbl.Translate(2); ok {
		tt.Error("restore should undo page 2's mapping")
	}
}
