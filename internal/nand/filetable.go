package nand

// filetable.go lays a logical weight file out across NAND pages. Pages for
// a single file are not necessarily contiguous: the allocator advances to
// the next block whenever the current one fills, so a file's page list can
// span many blocks.

import (
	"fmt"

	"github.com/xyfuture/nandmachine/internal/addr"
	"github.com/xyfuture/nandmachine/internal/config"
	"github.com/xyfuture/nandmachine/internal/page"
	"github.com/xyfuture/nandmachine/internal/rerr"
)

// FileEntry records the pages backing one logical file, in the order a
// reader should walk them. CreateNewFile always produces weight files:
// read-only, kind "weight".
type FileEntry struct {
	ID    uint64
	Pages []addr.NandAddress
	Perm  page.Permission
	Kind  string
}

// FileTable creates logical files over a FreeTable, advancing a single
// cursor block round-robin as blocks fill. File IDs are monotonic starting
// at 1; 0 is never issued so callers can use it as a not-found sentinel.
//
// Only the cursor (next_block) is meaningful here — the original
// implementation this was ported from also carried a next_page field that
// nothing ever read; CreateNewFile tracks page placement entirely through
// the FreeTable instead.
type FileTable struct {
	cfg       config.NandConfig
	free      *FreeTable
	nextBlock addr.NandBlockAddress
	nextID    uint64
	entries   map[uint64]*FileEntry
}

// NewFileTable creates a file table over free, starting its block cursor at
// block zero.
func NewFileTable(cfg config.NandConfig, free *FreeTable) *FileTable {
	return &FileTable{
		cfg:       cfg,
		free:      free,
		nextBlock: addr.NewNandBlockAddress(0, cfg),
		nextID:    1,
		entries:   make(map[uint64]*FileEntry),
	}
}

// CreateNewFile allocates numPages NAND pages for a new file, advancing the
// block cursor by one block address (block fastest, then plane, then
// channel, wrapping to block zero after the last) whenever the current
// block fills, and returns the new file's ID.
//
// It returns rerr.ErrNandSpaceExhausted if every block is full before
// numPages pages have been placed.
func (t *FileTable) CreateNewFile(numPages int) (uint64, error) {
	if numPages <= 0 {
		return 0, fmt.Errorf("nand: file table: create file: num_pages must be positive, got %d: %w", numPages, rerr.ErrConfigInvalid)
	}

	pages := make([]addr.NandAddress, 0, numPages)
	totalBlocks := t.cfg.TotalBlocks()

	for visited := 0; len(pages) < numPages; {
		page, err := t.free.Allocate(t.nextBlock)
		if err == nil {
			pages = append(pages, page)

			continue
		}

		if visited >= totalBlocks {
			return 0, fmt.Errorf("nand: file table: create file: %w", rerr.ErrNandSpaceExhausted)
		}

		next, err := t.nextBlock.Add(1)
		if err != nil {
			next = addr.NewNandBlockAddress(0, t.cfg)
		}

		t.nextBlock = next
		visited++
	}

	id := t.nextID
	t.nextID++
	t.entries[id] = &FileEntry{ID: id, Pages: pages, Perm: page.Read, Kind: "weight"}

	return id, nil
}

// Count returns the number of files currently registered.
func (t *FileTable) Count() int { return len(t.entries) }

// GetFileByID returns the file entry for id, or rerr.ErrUnknownFile if no
// such file exists.
func (t *FileTable) GetFileByID(id uint64) (*FileEntry, error) {
	entry, ok := t.entries[id]
	if !ok {
		return nil, fmt.Errorf("nand: file table: file %d: %w", id, rerr.ErrUnknownFile)
	}

	return entry, nil
}

// RemoveFile deletes id's entry without freeing its pages; callers that
// want the backing blocks reclaimed must free them through the FreeTable
// themselves once they know no other file shares a block.
func (t *FileTable) RemoveFile(id uint64) error {
	if _, ok := t.entries[id]; !ok {
		return fmt.Errorf("nand: file table: file %d: %w", id, rerr.ErrUnknownFile)
	}

	delete(t.entries, id)

	return nil
}

// fileTableSnapshot captures CreateNewFile's visible mutations for rollback.
type fileTableSnapshot struct {
	nextBlock addr.NandBlockAddress
	nextID    uint64
	entries   map[uint64]*FileEntry
	free      map[uint64]int
}

// Snapshot captures the file table's state, including the underlying free
// table, for rollback by Restore.
func (t *FileTable) Snapshot() fileTableSnapshot {
	entries := make(map[uint64]*FileEntry, len(t.entries))
	for k, v := range t.entries {
		entries[k] = v
	}

	return fileTableSnapshot{
		nextBlock: t.nextBlock,
		nextID:    t.nextID,
		entries:   entries,
		free:      t.free.Snapshot(),
	}
}

// Restore reverts the file table and its underlying free table to a
// previously captured snapshot.
func (t *FileTable) Restore(snap fileTableSnapshot) {
	t.nextBlock = snap.nextBlock
	t.nextID = snap.nextID
	t.entries = snap.entries
	t.free.Restore(snap.free)
}
