// Package addr implements the mixed-radix address arithmetic over the NAND
// channel/plane/block/page geometry, plus the opaque DRAM/SRAM address
// types. Addresses are stride-based: each axis has a fixed multiplier and
// decoding is successive division and modulus, never decimal-digit
// splitting — see the Design Notes on the decimal-digit vs. stride tie-break.
package addr

// addr.go defines the NAND address coordinate system. NandAddress and
// NandBlockAddress are sibling variants sharing the same encode/decode/add
// protocol: one with a page axis, one without.

import (
	"errors"
	"fmt"

	"github.com/xyfuture/nandmachine/internal/config"
)

// ErrOverflow is returned when an Add would carry out of the top of the
// address space. ErrNegative is returned when Add is given a negative
// delta. ErrRange is returned by setters given an out-of-range component.
var (
	ErrOverflow = errors.New("address overflow")
	ErrNegative = errors.New("negative address delta")
	ErrRange    = errors.New("address component out of range")
)

// NandAddress is a full (channel, plane, block, page) NAND page address,
// encoded as a single index in [0, C*N*B*G).
//
// Strides place block least-significant, then page, then plane, then
// channel: idx = block + page*B + plane*(B*G) + channel*(B*G*N).
type NandAddress struct {
	idx uint64
	cfg config.NandConfig
}

// NewNandAddress builds a NandAddress from a flat index under cfg. It does
// not validate that idx is in range; use IsValid.
func NewNandAddress(idx uint64, cfg config.NandConfig) NandAddress {
	return NandAddress{idx: idx, cfg: cfg}
}

// NandAddressFromComponents builds a NandAddress from its four components.
func NandAddressFromComponents(channel, plane, block, page int, cfg config.NandConfig) NandAddress {
	a := NandAddress{cfg: cfg}
	a.idx = a.encode(channel, plane, block, page)

	return a
}

func (a NandAddress) strides() (blockStride, pageStride, planeStride, channelStride uint64) {
	blockStride = 1
	pageStride = blockStride * uint64(a.cfg.NumBlocks)
	planeStride = pageStride * uint64(a.cfg.NumPages)
	channelStride = planeStride * uint64(a.cfg.NumPlanes)

	return
}

func (a NandAddress) encode(channel, plane, block, page int) uint64 {
	_, pageStride, planeStride, channelStride := a.strides()

	return uint64(block) + uint64(page)*pageStride + uint64(plane)*planeStride + uint64(channel)*channelStride
}

// Index returns the address as a flat integer in [0, C*N*B*G).
func (a NandAddress) Index() uint64 { return a.idx }

// Channel returns the channel component.
func (a NandAddress) Channel() int {
	_, _, _, channelStride := a.strides()
	return int(a.idx / channelStride)
}

// Plane returns the plane component.
func (a NandAddress) Plane() int {
	_, _, planeStride, channelStride := a.strides()
	rem := a.idx % channelStride

	return int(rem / planeStride)
}

// Block returns the block component.
func (a NandAddress) Block() int {
	_, pageStride, _, _ := a.strides()
	return int(a.idx % pageStride)
}

// Page returns the page component.
func (a NandAddress) Page() int {
	_, pageStride, planeStride, _ := a.strides()
	rem := a.idx % planeStride

	return int(rem / pageStride)
}

// WithChannel returns a copy of a with the channel component replaced.
func (a NandAddress) WithChannel(channel int) (NandAddress, error) {
	if channel < 0 || channel >= a.cfg.NumChannels {
		return NandAddress{}, fmt.Errorf("addr: channel %d: %w", channel, ErrRange)
	}

	return NandAddressFromComponents(channel, a.Plane(), a.Block(), a.Page(), a.cfg), nil
}

// WithPlane returns a copy of a with the plane component replaced.
func (a NandAddress) WithPlane(plane int) (NandAddress, error) {
	if plane < 0 || plane >= a.cfg.NumPlanes {
		return NandAddress{}, fmt.Errorf("addr: plane %d: %w", plane, ErrRange)
	}

	return NandAddressFromComponents(a.Channel(), plane, a.Block(), a.Page(), a.cfg), nil
}

// WithBlock returns a copy of a with the block component replaced.
func (a NandAddress) WithBlock(block int) (NandAddress, error) {
	if block < 0 || block >= a.cfg.NumBlocks {
		return NandAddress{}, fmt.Errorf("addr: block %d: %w", block, ErrRange)
	}

	return NandAddressFromComponents(a.Channel(), a.Plane(), block, a.Page(), a.cfg), nil
}

// WithPage returns a copy of a with the page component replaced.
func (a NandAddress) WithPage(page int) (NandAddress, error) {
	if page < 0 || page >= a.cfg.NumPages {
		return NandAddress{}, fmt.Errorf("addr: page %d: %w", page, ErrRange)
	}

	return NandAddressFromComponents(a.Channel(), a.Plane(), a.Block(), page, a.cfg), nil
}

// IsValid reports whether the address' components all fall within cfg's
// configured ranges.
func (a NandAddress) IsValid() bool {
	if err := a.cfg.Validate(); err != nil {
		return false
	}

	return a.Channel() >= 0 && a.Channel() < a.cfg.NumChannels &&
		a.Plane() >= 0 && a.Plane() < a.cfg.NumPlanes &&
		a.Block() >= 0 && a.Block() < a.cfg.NumBlocks &&
		a.Page() >= 0 && a.Page() < a.cfg.NumPages &&
		a.idx < uint64(a.cfg.TotalPages())
}

// Add returns a new NandAddress offset by delta, with carries propagating
// from block to page to plane to channel. It errors with ErrNegative if
// delta is negative, or ErrOverflow if the result would leave the top of
// the address space.
func (a NandAddress) Add(delta int64) (NandAddress, error) {
	if delta < 0 {
		return NandAddress{}, fmt.Errorf("addr: add %d: %w", delta, ErrNegative)
	}

	total := uint64(a.cfg.TotalPages())
	sum := a.idx + uint64(delta)

	if sum >= total {
		return NandAddress{}, fmt.Errorf("addr: add %d to %d: %w", delta, a.idx, ErrOverflow)
	}

	return NandAddress{idx: sum, cfg: a.cfg}, nil
}

// ToBlockAddress projects this page address onto its containing block,
// discarding the page component.
func (a NandAddress) ToBlockAddress() NandBlockAddress {
	return NandBlockAddressFromComponents(a.Channel(), a.Plane(), a.Block(), a.cfg)
}

func (a NandAddress) String() string {
	return fmt.Sprintf("Nand(c=%d,n=%d,b=%d,g=%d)", a.Channel(), a.Plane(), a.Block(), a.Page())
}

// NandBlockAddress is a (channel, plane, block) address, encoded as a flat
// index in [0, C*N*B), used by the NAND free table to track the next
// writable page within a block.
type NandBlockAddress struct {
	idx uint64
	cfg config.NandConfig
}

// NewNandBlockAddress builds a NandBlockAddress from a flat index under cfg.
func NewNandBlockAddress(idx uint64, cfg config.NandConfig) NandBlockAddress {
	return NandBlockAddress{idx: idx, cfg: cfg}
}

// NandBlockAddressFromComponents builds a NandBlockAddress from its three
// components.
func NandBlockAddressFromComponents(channel, plane, block int, cfg config.NandConfig) NandBlockAddress {
	b := NandBlockAddress{cfg: cfg}
	b.idx = b.encode(channel, plane, block)

	return b
}

func (b NandBlockAddress) strides() (blockStride, planeStride, channelStride uint64) {
	blockStride = 1
	planeStride = blockStride * uint64(b.cfg.NumBlocks)
	channelStride = planeStride * uint64(b.cfg.NumPlanes)

	return
}

func (b NandBlockAddress) encode(channel, plane, block int) uint64 {
	_, planeStride, channelStride := b.strides()

	return uint64(block) + uint64(plane)*planeStride + uint64(channel)*channelStride
}

// Index returns the block address as a flat integer in [0, C*N*B).
func (b NandBlockAddress) Index() uint64 { return b.idx }

// Channel returns the channel component.
func (b NandBlockAddress) Channel() int {
	_, _, channelStride := b.strides()
	return int(b.idx / channelStride)
}

// Plane returns the plane component.
func (b NandBlockAddress) Plane() int {
	_, planeStride, channelStride := b.strides()
	rem := b.idx % channelStride

	return int(rem / planeStride)
}

// Block returns the block component.
func (b NandBlockAddress) Block() int {
	_, planeStride, _ := b.strides()
	return int(b.idx % planeStride)
}

// WithChannel returns a copy of b with the channel component replaced.
func (b NandBlockAddress) WithChannel(channel int) (NandBlockAddress, error) {
	if channel < 0 || channel >= b.cfg.NumChannels {
		return NandBlockAddress{}, fmt.Errorf("addr: channel %d: %w", channel, ErrRange)
	}

	return NandBlockAddressFromComponents(channel, b.Plane(), b.Block(), b.cfg), nil
}

// WithPlane returns a copy of b with the plane component replaced.
func (b NandBlockAddress) WithPlane(plane int) (NandBlockAddress, error) {
	if plane < 0 || plane >= b.cfg.NumPlanes {
		return NandBlockAddress{}, fmt.Errorf("addr: plane %d: %w", plane, ErrRange)
	}

	return NandBlockAddressFromComponents(b.Channel(), plane, b.Block(), b.cfg), nil
}

// WithBlock returns a copy of b with the block component replaced.
func (b NandBlockAddress) WithBlock(block int) (NandBlockAddress, error) {
	if block < 0 || block >= b.cfg.NumBlocks {
		return NandBlockAddress{}, fmt.Errorf("addr: block %d: %w", block, ErrRange)
	}

	return NandBlockAddressFromComponents(b.Channel(), b.Plane(), block, b.cfg), nil
}

// IsValid reports whether the block address' components all fall within
// cfg's configured ranges.
func (b NandBlockAddress) IsValid() bool {
	if err := b.cfg.Validate(); err != nil {
		return false
	}

	return b.Channel() >= 0 && b.Channel() < b.cfg.NumChannels &&
		b.Plane() >= 0 && b.Plane() < b.cfg.NumPlanes &&
		b.Block() >= 0 && b.Block() < b.cfg.NumBlocks &&
		b.idx < uint64(b.cfg.TotalBlocks())
}

// Add returns a new NandBlockAddress offset by delta, with carries
// propagating from block to plane to channel.
func (b NandBlockAddress) Add(delta int64) (NandBlockAddress, error) {
	if delta < 0 {
		return NandBlockAddress{}, fmt.Errorf("addr: add %d: %w", delta, ErrNegative)
	}

	total := uint64(b.cfg.TotalBlocks())
	sum := b.idx + uint64(delta)

	if sum >= total {
		return NandBlockAddress{}, fmt.Errorf("addr: add %d to %d: %w", delta, b.idx, ErrOverflow)
	}

	return NandBlockAddress{idx: sum, cfg: b.cfg}, nil
}

func (b NandBlockAddress) String() string {
	return fmt.Sprintf("NandBlock(c=%d,n=%d,b=%d)", b.Channel(), b.Plane(), b.Block())
}

// DramAddress is an opaque DRAM address: a page index bounds-checked
// against the configured total capacity. There is no further geometry.
type DramAddress struct {
	idx uint64
	cfg config.DramConfig
}

// NewDramAddress builds a DramAddress from a flat page index under cfg.
func NewDramAddress(idx uint64, cfg config.DramConfig) DramAddress {
	return DramAddress{idx: idx, cfg: cfg}
}

// Index returns the page index.
func (a DramAddress) Index() uint64 { return a.idx }

// IsValid reports whether the index falls within the configured capacity.
func (a DramAddress) IsValid() bool { return a.idx < uint64(a.cfg.TotalPages) }

func (a DramAddress) String() string { return fmt.Sprintf("Dram(%d)", a.idx) }

// SramAddress is an opaque SRAM address: a page index bounds-checked
// against the configured total capacity. There is no further geometry.
type SramAddress struct {
	idx uint64
	cfg config.SramConfig
}

// NewSramAddress builds a SramAddress from a flat page index under cfg.
func NewSramAddress(idx uint64, cfg config.SramConfig) SramAddress {
	return SramAddress{idx: idx, cfg: cfg}
}

// Index returns the page index.
func (a SramAddress) Index() uint64 { return a.idx }

// IsValid reports whether the index falls within the configured capacity.
func (a SramAddress) IsValid() bool { return a.idx < uint64(a.cfg.TotalPages) }

func (a SramAddress) String() string { return fmt.Sprintf("Sram(%d)", a.idx) }
