package runtime

import (
	"errors"
	"fmt"

	"github.com/xyfuture/nandmachine/internal/config"
	"github.com/xyfuture/nandmachine/internal/log"
	"github.com/xyfuture/nandmachine/internal/page"
	"github.com/xyfuture/nandmachine/internal/rampool"
	"github.com/xyfuture/nandmachine/internal/resource"
	"github.com/xyfuture/nandmachine/internal/rerr"
)

// NandMmap maps fileID's pages into the logical address space starting at
// preAllocLogicAddr, one page-table entry per NAND page.
func (m *Manager) NandMmap(fileID uint64, preAllocLogicAddr uint64) error {
	file, err := m.files.GetFileByID(fileID)
	if err != nil {
		return fmt.Errorf("runtime: nand_mmap: %w", err)
	}

	snap := m.snapshot()

	entry := resource.NewNandMmapEntry(preAllocLogicAddr, len(file.Pages), fileID, file.Perm)
	if err := m.registry.Add(entry); err != nil {
		m.restore(snap)
		return fmt.Errorf("runtime: nand_mmap: %w", err)
	}

	base := preAllocLogicAddr / config.Page

	for i, p := range file.Pages {
		if err := m.pages.Map(base+uint64(i), page.NAND, p.Index(), entry.Perm); err != nil {
			m.restore(snap)
			return fmt.Errorf("runtime: nand_mmap: addr %#x: %w", preAllocLogicAddr, rerr.ErrMapConflict)
		}
	}

	m.log.Debug("nand_mmap", log.Any("file_id", fileID), log.Any("base", preAllocLogicAddr))

	return nil
}

// NandMunmap tears down the NandMmapEntry registered at addrLP, unmapping
// every page it covers.
func (m *Manager) NandMunmap(addrLP uint64) error {
	e, err := m.registry.Get(addrLP)
	if err != nil {
		return fmt.Errorf("runtime: nand_munmap: %w", err)
	}

	entry, ok := e.(*resource.NandMmapEntry)
	if !ok {
		return fmt.Errorf("runtime: nand_munmap: addr %#x: %w", addrLP, rerr.ErrBadHandle)
	}

	for _, lp := range entry.Pages() {
		if err := m.pages.Unmap(lp); err != nil && !errors.Is(err, page.ErrNotMapped) {
			return fmt.Errorf("runtime: nand_munmap: %w", err)
		}
	}

	return m.registry.Remove(addrLP)
}

// SramMalloc allocates numPages SRAM pages and maps them at
// preAllocLogicAddr.
func (m *Manager) SramMalloc(numPages int, preAllocLogicAddr uint64) error {
	return m.ramMalloc(m.sram, page.SRAM, rerr.ErrOOMSram, numPages, preAllocLogicAddr)
}

// DramMalloc allocates numPages DRAM pages and maps them at
// preAllocLogicAddr.
func (m *Manager) DramMalloc(numPages int, preAllocLogicAddr uint64) error {
	return m.ramMalloc(m.dram, page.DRAM, rerr.ErrOOMDram, numPages, preAllocLogicAddr)
}

func (m *Manager) ramMalloc(pool *rampool.Pool, device page.Device, oom error, numPages int, preAllocLogicAddr uint64) error {
	snap := m.snapshot()

	pps, err := pool.AllocN(numPages)
	if err != nil {
		return fmt.Errorf("runtime: %s_malloc: %w", device, oom)
	}

	entry := resource.NewMallocEntry(preAllocLogicAddr, numPages, device)
	if err := m.registry.Add(entry); err != nil {
		m.restore(snap)
		return fmt.Errorf("runtime: %s_malloc: %w", device, err)
	}

	base := preAllocLogicAddr / config.Page

	for i, pp := range pps {
		if err := m.pages.Map(base+uint64(i), device, pp, page.Read|page.Write); err != nil {
			m.restore(snap)
			return fmt.Errorf("runtime: %s_malloc: addr %#x: %w", device, preAllocLogicAddr, rerr.ErrMapConflict)
		}
	}

	return nil
}

// SramFree releases the MallocEntry registered at addrLP back to the SRAM
// pool.
func (m *Manager) SramFree(addrLP uint64) error {
	return m.ramFree(m.sram, page.SRAM, addrLP)
}

// DramFree releases the MallocEntry registered at addrLP back to the DRAM
// pool.
func (m *Manager) DramFree(addrLP uint64) error {
	return m.ramFree(m.dram, page.DRAM, addrLP)
}

func (m *Manager) ramFree(pool *rampool.Pool, device page.Device, addrLP uint64) error {
	e, err := m.registry.Get(addrLP)
	if err != nil {
		return fmt.Errorf("runtime: %s_free: %w", device, err)
	}

	entry, ok := e.(*resource.MallocEntry)
	if !ok || entry.Device != device {
		return fmt.Errorf("runtime: %s_free: addr %#x: %w", device, addrLP, rerr.ErrBadHandle)
	}

	for _, lp := range entry.Pages() {
		if dev, pp, ok := m.pages.Translate(lp); ok && dev == device {
			pool.Free(pp)
		}

		if err := m.pages.Unmap(lp); err != nil && !errors.Is(err, page.ErrNotMapped) {
			return fmt.Errorf("runtime: %s_free: %w", device, err)
		}
	}

	return m.registry.Remove(addrLP)
}

// SramPrefetch copies the mapping (not the data) of numPages pages starting
// at prefetchAddr into a fresh SRAM-backed alias at preAllocLogicAddr. The
// source mapping is left untouched: reads through it still hit NAND or
// DRAM, only reads through the new alias hit SRAM.
func (m *Manager) SramPrefetch(prefetchAddr uint64, numPages int, preAllocLogicAddr uint64) error {
	snap := m.snapshot()

	entry := resource.NewPrefetchEntry(preAllocLogicAddr, numPages)
	srcBase := prefetchAddr / config.Page
	dstBase := preAllocLogicAddr / config.Page

	for i := 0; i < numPages; i++ {
		srcLP := srcBase + uint64(i)
		dstLP := dstBase + uint64(i)

		pp, err := m.sram.Alloc()
		if err != nil {
			m.restore(snap)
			return fmt.Errorf("runtime: sram_prefetch: %w", rerr.ErrOOMPrefetch)
		}

		if err := m.pages.Map(dstLP, page.SRAM, pp, page.Read); err != nil {
			m.restore(snap)
			return fmt.Errorf("runtime: sram_prefetch: addr %#x: %w", preAllocLogicAddr, rerr.ErrMapConflict)
		}

		entry.Record(dstLP, srcLP)
	}

	if err := m.registry.Add(entry); err != nil {
		m.restore(snap)
		return fmt.Errorf("runtime: sram_prefetch: %w", err)
	}

	return nil
}

// SramPrefetchRelease tears down the PrefetchEntry registered at addrLP,
// returning its SRAM pages to the pool and unmapping its aliases. The
// source mapping it was staged from is unaffected.
func (m *Manager) SramPrefetchRelease(addrLP uint64) error {
	e, err := m.registry.Get(addrLP)
	if err != nil {
		return fmt.Errorf("runtime: sram_prefetch_release: %w", err)
	}

	entry, ok := e.(*resource.PrefetchEntry)
	if !ok {
		return fmt.Errorf("runtime: sram_prefetch_release: addr %#x: %w", addrLP, rerr.ErrBadHandle)
	}

	for lp := range entry.SourceLogicalPages {
		if _, pp, ok := m.pages.Translate(lp); ok {
			m.sram.Free(pp)
		}

		if err := m.pages.Unmap(lp); err != nil && !errors.Is(err, page.ErrNotMapped) {
			return fmt.Errorf("runtime: sram_prefetch_release: %w", err)
		}
	}

	return m.registry.Remove(addrLP)
}
