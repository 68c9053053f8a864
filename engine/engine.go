// Package engine implements the allocation and I/O engine: it translates
// logical file offsets into block reads and writes, allocates blocks on
// first touch, and enforces the maximum file size. All I/O happens in
// whole-block units against a single fetch-then-mutate-then-flush staging
// buffer per call, rather than a persistent multi-block cache.
package engine

import (
	"github.com/brackenbridge/sfscore/bitmap"
	"github.com/brackenbridge/sfscore/blockdev"
	"github.com/brackenbridge/sfscore/inode"
	"github.com/brackenbridge/sfscore/sfserrors"
)

// Engine couples the block device, the free-block bitmap, and the inode
// table into the read/write/seek/remove operations.
type Engine struct {
	Device      *blockdev.Device
	Bitmap      *bitmap.FreeBitmap
	Inodes      *inode.Table
	BlockSize   int
	MaxFileSize int
}

func (e *Engine) allocateBlock() (int, error) {
	b := e.Bitmap.NextFree()
	if b == bitmap.SentinelNone {
		return 0, sfserrors.ErrNoSpaceOnDevice
	}
	if err := e.Bitmap.MarkUsed(uint(b), 1); err != nil {
		return 0, err
	}
	return b, nil
}

// Write fills in the inode at inodeIndex, writing up to length bytes
// from buf starting at the inode's
// current cursor. It returns the number of bytes actually written, which
// may be less than length if the write was capped by MaxFileSize.
func (e *Engine) Write(inodeIndex int, buf []byte, length int) (int, error) {
	in, err := e.Inodes.Get(inodeIndex)
	if err != nil {
		return 0, err
	}

	B := e.BlockSize
	F := e.MaxFileSize
	p := int(in.Cursor)

	if p+1 >= F {
		return 0, sfserrors.ErrFileTooLarge
	}
	if p+length >= F {
		length = F - p - 1
	}
	if length <= 0 {
		return 0, nil
	}

	k := p / B
	off := p % B
	staging := make([]byte, B)

	if in.Pointers[k] == int32(inode.SentinelUnused) {
		blk, err := e.allocateBlock()
		if err != nil {
			return 0, err
		}
		in.Pointers[k] = int32(blk)
	} else {
		data, err := e.Device.ReadBlocks(blockdev.BlockID(in.Pointers[k]), 1)
		if err != nil {
			return 0, err
		}
		copy(staging, data)
	}

	written := 0
	for i := 0; i < length; i++ {
		if off == B {
			if err := e.Device.WriteBlocks(blockdev.BlockID(in.Pointers[k]), staging); err != nil {
				return written, err
			}
			k++
			off = 0
			if in.Pointers[k] == int32(inode.SentinelUnused) {
				blk, err := e.allocateBlock()
				if err != nil {
					return written, err
				}
				in.Pointers[k] = int32(blk)
				for j := range staging {
					staging[j] = 0
				}
			} else {
				data, err := e.Device.ReadBlocks(blockdev.BlockID(in.Pointers[k]), 1)
				if err != nil {
					return written, err
				}
				copy(staging, data)
			}
		}

		staging[off] = buf[i]
		off++
		p++
		written++
		if p >= F {
			break
		}
	}

	if off == B {
		if err := e.Device.WriteBlocks(blockdev.BlockID(in.Pointers[k]), staging); err != nil {
			return written, err
		}
		k++
		if k < inode.NumDirectPointers && in.Pointers[k] == int32(inode.SentinelUnused) {
			blk, err := e.allocateBlock()
			if err != nil {
				return written, err
			}
			in.Pointers[k] = int32(blk)
			empty := make([]byte, B)
			if err := e.Device.WriteBlocks(blockdev.BlockID(blk), empty); err != nil {
				return written, err
			}
		}
	} else {
		if p > int(in.Size) {
			staging[off] = 0
		}
		if err := e.Device.WriteBlocks(blockdev.BlockID(in.Pointers[k]), staging); err != nil {
			return written, err
		}
	}

	if p > int(in.Size) {
		in.Size = int32(p)
	}
	in.Cursor = int32(p)
	return written, nil
}

// Read fills up to length bytes of buf starting at the inode's current
// cursor and returns the number of bytes actually read. Reading past
// end-of-file or crossing into an unallocated (hole) block stops early and
// leaves a zero byte at the stopping position. A hole at the starting
// block reads as zero bytes up to end-of-file.
func (e *Engine) Read(inodeIndex int, buf []byte, length int) (int, error) {
	in, err := e.Inodes.Get(inodeIndex)
	if err != nil {
		return 0, err
	}

	B := e.BlockSize
	F := e.MaxFileSize
	p := int(in.Cursor)
	k := p / B
	off := p % B
	staging := make([]byte, B)

	if k < inode.NumDirectPointers && in.Pointers[k] != int32(inode.SentinelUnused) {
		data, err := e.Device.ReadBlocks(blockdev.BlockID(in.Pointers[k]), 1)
		if err != nil {
			return 0, err
		}
		copy(staging, data)
	}

	count := 0
	for i := 0; i < length; i++ {
		if off == B {
			k++
			off = 0
			if k >= inode.NumDirectPointers || in.Pointers[k] == int32(inode.SentinelUnused) {
				buf[i] = 0
				break
			}
			data, err := e.Device.ReadBlocks(blockdev.BlockID(in.Pointers[k]), 1)
			if err != nil {
				return count, err
			}
			copy(staging, data)
		}

		if p > F || p >= int(in.Size) {
			buf[i] = 0
			break
		}

		buf[i] = staging[off]
		off++
		p++
		count++
	}

	in.Cursor = int32(p)
	return count, nil
}

// Seek moves the inode's cursor to offset. Valid iff 0 <= offset < size.
func (e *Engine) Seek(inodeIndex int, offset int) error {
	in, err := e.Inodes.Get(inodeIndex)
	if err != nil {
		return err
	}
	if offset < 0 || offset >= int(in.Size) {
		return sfserrors.ErrSeekOutOfRange
	}
	in.Cursor = int32(offset)
	return nil
}

// FreeInodeBlocks returns every allocated data block of the inode at
// inodeIndex to the bitmap and marks the inode slot free. It's the data
// half of Remove; the name/directory half lives in package sfs, which is
// the only layer that knows about both the directory and the inode
// table.
func (e *Engine) FreeInodeBlocks(inodeIndex int) error {
	in, err := e.Inodes.Get(inodeIndex)
	if err != nil {
		return err
	}
	if in.IsFree() {
		return sfserrors.ErrNotFound
	}
	for _, ptr := range in.Pointers {
		if ptr != int32(inode.SentinelUnused) {
			if err := e.Bitmap.MarkFree(uint(ptr), 1); err != nil {
				return err
			}
		}
	}
	return e.Inodes.Free(inodeIndex)
}
