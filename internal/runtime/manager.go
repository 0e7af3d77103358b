// Package runtime implements the command interpreter: the single entry
// point that mutates the NAND file/free tables, the DRAM/SRAM pools, the
// page table, and the resource registry in response to the eight
// macro-ops the accelerator model dispatches.
//
// Every handler method is atomic with respect to simulation time: on any
// failure after partial mutation it rolls the manager's state back to
// exactly what it was before the call, by snapshotting every table a
// handler can mutate (page table, resource registry, DRAM pool, SRAM pool)
// up front and restoring all four together on error.
package runtime

import (
	"github.com/xyfuture/nandmachine/internal/config"
	"github.com/xyfuture/nandmachine/internal/log"
	"github.com/xyfuture/nandmachine/internal/nand"
	"github.com/xyfuture/nandmachine/internal/page"
	"github.com/xyfuture/nandmachine/internal/rampool"
	"github.com/xyfuture/nandmachine/internal/resource"
)

// Manager owns every table the command interpreter mutates: one file
// table (with its NAND free table), one DRAM pool, one SRAM pool, one
// page table, one resource registry, and the logical-address allocator
// kernel lowering draws fresh bases from.
type Manager struct {
	nandCfg config.NandConfig

	files    *nand.FileTable
	dram     *rampool.Pool
	sram     *rampool.Pool
	pages    *page.Table
	registry *resource.Registry
	alloc    *resource.LogicalAllocator

	log *log.Logger
}

// Option configures a Manager at construction time.
type Option func(*Manager)

// WithLogger overrides the manager's logger.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// New creates a Manager over freshly initialized tables sized by the given
// configurations.
func New(nandCfg config.NandConfig, dramCfg config.DramConfig, sramCfg config.SramConfig, opts ...Option) (*Manager, error) {
	if err := nandCfg.Validate(); err != nil {
		return nil, err
	}

	if err := dramCfg.Validate(); err != nil {
		return nil, err
	}

	if err := sramCfg.Validate(); err != nil {
		return nil, err
	}

	free := nand.NewFreeTable(nandCfg)

	m := &Manager{
		nandCfg:  nandCfg,
		files:    nand.NewFileTable(nandCfg, free),
		dram:     rampool.New(dramCfg.TotalPages),
		sram:     rampool.New(sramCfg.TotalPages),
		pages:    page.New(),
		registry: resource.NewRegistry(),
		alloc:    resource.NewLogicalAllocator(),
		log:      log.DefaultLogger(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m, nil
}

// Files returns the manager's NAND file table, the entry point for
// creating new weight files (spec's out-of-scope mapper pass drives this
// through internal/kernel.Mapper, not through a macro-op).
func (m *Manager) Files() *nand.FileTable { return m.files }

// Allocator returns the manager's logical-address allocator.
func (m *Manager) Allocator() *resource.LogicalAllocator { return m.alloc }

// Pages returns the manager's page table, for read-only inspection.
func (m *Manager) Pages() *page.Table { return m.pages }

// Registry returns the manager's resource registry, for read-only
// inspection.
func (m *Manager) Registry() *resource.Registry { return m.registry }

// Dram returns the manager's DRAM pool, for read-only inspection.
func (m *Manager) Dram() *rampool.Pool { return m.dram }

// Sram returns the manager's SRAM pool, for read-only inspection.
func (m *Manager) Sram() *rampool.Pool { return m.sram }

// snapshot captures every table a handler can mutate.
type snapshot struct {
	pages    map[uint64]page.Entry
	registry map[uint64]resource.Entry
	dram     rampool.Snapshot
	sram     rampool.Snapshot
}

func (m *Manager) snapshot() snapshot {
	return snapshot{
		pages:    m.pages.Snapshot(),
		registry: m.registry.Snapshot(),
		dram:     m.dram.Snapshot(),
		sram:     m.sram.Snapshot(),
	}
}

func (m *Manager) restore(s snapshot) {
	m.pages.Restore(s.pages)
	m.registry.Restore(s.registry)
	m.dram.Restore(s.dram)
	m.sram.Restore(s.sram)
}
