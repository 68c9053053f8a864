// Package bitmap tracks which blocks on the disk image are free versus in
// use, and answers "what's the next free block".
package bitmap

import (
	"github.com/boljen/go-bitmap"

	"github.com/brackenbridge/sfscore/sfserrors"
)

// SentinelNone is returned by NextFree when no free block exists in range.
const SentinelNone = -1

// FreeBitmap is a boolean vector of length N where a set bit means "free".
// It's backed by github.com/boljen/go-bitmap and exposes a narrow,
// single-block first-fit-ascending allocation contract rather than a
// general contiguous-run allocator.
type FreeBitmap struct {
	bits        bitmap.Bitmap
	totalBlocks uint
	firstData   uint
	lastBlock   uint // the bitmap's own block; always kept unset
}

// New creates a FreeBitmap for a device with totalBlocks blocks, where
// [firstData, lastBlock) is the range eligible for allocation by NextFree,
// and lastBlock itself (the bitmap's own location) is permanently marked
// used.
func New(totalBlocks, firstData, lastBlock uint) *FreeBitmap {
	fb := &FreeBitmap{
		bits:        bitmap.New(int(totalBlocks)),
		totalBlocks: totalBlocks,
		firstData:   firstData,
		lastBlock:   lastBlock,
	}
	for i := uint(0); i < totalBlocks; i++ {
		fb.bits.Set(int(i), true)
	}
	fb.bits.Set(int(lastBlock), false)
	return fb
}

// IsFree reports whether block i is currently unallocated.
func (fb *FreeBitmap) IsFree(i uint) bool {
	return fb.bits.Get(int(i))
}

// MarkUsed clears count bits starting at start.
func (fb *FreeBitmap) MarkUsed(start, count uint) error {
	if start+count > fb.totalBlocks {
		return sfserrors.ErrInvalidArgument.WithMessage("block range out of bounds")
	}
	for i := start; i < start+count; i++ {
		fb.bits.Set(int(i), false)
	}
	return nil
}

// MarkFree sets count bits starting at start.
func (fb *FreeBitmap) MarkFree(start, count uint) error {
	if start+count > fb.totalBlocks {
		return sfserrors.ErrInvalidArgument.WithMessage("block range out of bounds")
	}
	for i := start; i < start+count; i++ {
		fb.bits.Set(int(i), true)
	}
	return nil
}

// NextFree returns the smallest free block index in [firstData, lastBlock),
// or SentinelNone if the region is exhausted. Allocation policy is
// first-fit, ascending; ties (there can't be any, since each index is
// distinct) are broken by lowest index.
func (fb *FreeBitmap) NextFree() int {
	for i := fb.firstData; i < fb.lastBlock; i++ {
		if fb.bits.Get(int(i)) {
			return int(i)
		}
	}
	return SentinelNone
}

// Encode renders the bitmap as a byte image exactly blockSize bytes long,
// suitable for Flush to persist into the single block reserved for it.
// go-bitmap packs 8 bits per byte, so the packed image is normally far
// shorter than a whole block; the remainder is left zero.
func (fb *FreeBitmap) Encode(blockSize uint) []byte {
	packed := fb.bits.Data(false)
	buf := make([]byte, blockSize)
	copy(buf, packed)
	return buf
}

// Decode rebuilds a FreeBitmap from the byte image Encode produced, by
// constructing fresh via New and then populating bit-by-bit — go-bitmap
// has no documented constructor for wrapping an existing byte slice.
func Decode(data []byte, totalBlocks, firstData, lastBlock uint) *FreeBitmap {
	fb := &FreeBitmap{
		bits:        bitmap.New(int(totalBlocks)),
		totalBlocks: totalBlocks,
		firstData:   firstData,
		lastBlock:   lastBlock,
	}
	for i := uint(0); i < totalBlocks; i++ {
		byteIndex := i / 8
		bitIndex := i % 8
		var bit bool
		if int(byteIndex) < len(data) {
			bit = data[byteIndex]&(1<<bitIndex) != 0
		}
		fb.bits.Set(int(i), bit)
	}
	return fb
}
