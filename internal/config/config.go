// Package config holds the machine configuration consumed at simulator
// startup: NAND device geometry, DRAM/SRAM capacity, and the page size and
// element width the rest of the runtime is built around.
package config

import (
	"fmt"

	"github.com/xyfuture/nandmachine/internal/rerr"
)

// Page is the system-wide page size, in bytes. All allocation sizes round up
// to a whole number of pages.
const Page = 4096

// BytesPerElement is the default weight element width used when sizing a
// node's NAND footprint (fp16 convention).
const BytesPerElement = 2

// NandConfig describes the channel/plane/block/page geometry of the NAND
// device and its timing constants.
//
// NumChannels, NumPlanes, NumBlocks and NumPages must each be positive;
// Validate reports CONFIG_INVALID otherwise.
type NandConfig struct {
	NumChannels int // channels
	NumPlanes   int // planes, per channel
	NumBlocks   int // blocks, per plane
	NumPages    int // pages, per block

	TRead  float64 // ns
	TWrite float64 // ns
	TErase float64 // ns
}

// TotalBlocks returns the number of addressable (channel, plane, block)
// triples.
func (c NandConfig) TotalBlocks() int {
	return c.NumChannels * c.NumPlanes * c.NumBlocks
}

// TotalPages returns the number of addressable NAND pages.
func (c NandConfig) TotalPages() int {
	return c.TotalBlocks() * c.NumPages
}

// Validate reports an error if any geometry dimension is non-positive.
func (c NandConfig) Validate() error {
	switch {
	case c.NumChannels <= 0:
		return fmt.Errorf("config: nand: %w: num_channels must be positive, got %d", rerr.ErrConfigInvalid, c.NumChannels)
	case c.NumPlanes <= 0:
		return fmt.Errorf("config: nand: %w: num_plane must be positive, got %d", rerr.ErrConfigInvalid, c.NumPlanes)
	case c.NumBlocks <= 0:
		return fmt.Errorf("config: nand: %w: num_block must be positive, got %d", rerr.ErrConfigInvalid, c.NumBlocks)
	case c.NumPages <= 0:
		return fmt.Errorf("config: nand: %w: num_pages must be positive, got %d", rerr.ErrConfigInvalid, c.NumPages)
	}

	return nil
}

// DramConfig describes the opaque DRAM address space: a flat pool of pages
// with no further geometry.
type DramConfig struct {
	TotalPages int
}

// Validate reports an error if TotalPages is non-positive.
func (c DramConfig) Validate() error {
	if c.TotalPages <= 0 {
		return fmt.Errorf("config: dram: %w: total_pages must be positive, got %d", rerr.ErrConfigInvalid, c.TotalPages)
	}

	return nil
}

// SramConfig describes the opaque SRAM address space: a flat pool of pages
// with no further geometry.
type SramConfig struct {
	TotalPages int
}

// Validate reports an error if TotalPages is non-positive.
func (c SramConfig) Validate() error {
	if c.TotalPages <= 0 {
		return fmt.Errorf("config: sram: %w: total_pages must be positive, got %d", rerr.ErrConfigInvalid, c.TotalPages)
	}

	return nil
}
