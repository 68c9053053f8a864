// Package blockdev is the thin contract the rest of sfscore treats the
// backing store through: format a fresh image, mount an existing one, and
// move whole blocks in and out. It never interprets the bytes it moves.
package blockdev

import (
	"io"
	"os"

	"github.com/brackenbridge/sfscore/sfserrors"
)

// BlockID addresses a single fixed-size block on the device.
type BlockID uint

// Device is a fixed array of fixed-size blocks with primitive read/write
// operations. Callers never see partial blocks.
//
// The exported fields are informational; nothing outside this package
// should mutate them after construction.
type Device struct {
	// BlockSize is the size, in bytes, of one block. All reads and writes
	// move an integer multiple of this many bytes.
	BlockSize uint
	// TotalBlocks is the number of blocks the device holds.
	TotalBlocks uint

	stream io.ReadWriteSeeker
}

// Format zero-fills TotalBlocks blocks of BlockSize bytes onto stream and
// returns a Device ready for use. This is destructive: any prior content of
// stream is discarded.
func Format(stream io.ReadWriteSeeker, blockSize, totalBlocks uint) (*Device, error) {
	dev := &Device{BlockSize: blockSize, TotalBlocks: totalBlocks, stream: stream}

	if _, err := stream.Seek(0, io.SeekStart); err != nil {
		return nil, sfserrors.ErrIOFailed.WrapError(err)
	}

	zero := make([]byte, blockSize)
	for i := uint(0); i < totalBlocks; i++ {
		if _, err := stream.Write(zero); err != nil {
			return nil, sfserrors.ErrIOFailed.WrapError(err)
		}
	}
	return dev, nil
}

// Mount attaches to an existing backing store with the declared geometry.
// It performs no validation of the store's contents; that's the caller's
// job once the super block has been read back.
func Mount(stream io.ReadWriteSeeker, blockSize, totalBlocks uint) (*Device, error) {
	return &Device{BlockSize: blockSize, TotalBlocks: totalBlocks, stream: stream}, nil
}

func (dev *Device) checkBounds(start BlockID, count uint) error {
	if uint(start) >= dev.TotalBlocks {
		return sfserrors.ErrInvalidArgument.WithMessage(
			"block index out of range")
	}
	if uint(start)+count > dev.TotalBlocks {
		return sfserrors.ErrInvalidArgument.WithMessage(
			"block range extends past end of device")
	}
	return nil
}

func (dev *Device) seekToBlock(start BlockID) error {
	offset := int64(start) * int64(dev.BlockSize)
	_, err := dev.stream.Seek(offset, io.SeekStart)
	return err
}

// ReadBlocks reads count blocks beginning at start and returns exactly
// count*BlockSize bytes.
func (dev *Device) ReadBlocks(start BlockID, count uint) ([]byte, error) {
	if err := dev.checkBounds(start, count); err != nil {
		return nil, err
	}
	if err := dev.seekToBlock(start); err != nil {
		return nil, sfserrors.ErrIOFailed.WrapError(err)
	}

	buffer := make([]byte, dev.BlockSize*count)
	if _, err := io.ReadFull(dev.stream, buffer); err != nil {
		return nil, sfserrors.ErrIOFailed.WrapError(err)
	}
	return buffer, nil
}

// WriteBlocks writes data, which must be a multiple of BlockSize, starting
// at block start.
func (dev *Device) WriteBlocks(start BlockID, data []byte) error {
	if uint(len(data))%dev.BlockSize != 0 {
		return sfserrors.ErrInvalidArgument.WithMessage(
			"data length is not a multiple of the block size")
	}
	count := uint(len(data)) / dev.BlockSize
	if err := dev.checkBounds(start, count); err != nil {
		return err
	}
	if err := dev.seekToBlock(start); err != nil {
		return sfserrors.ErrIOFailed.WrapError(err)
	}

	if _, err := dev.stream.Write(data); err != nil {
		return sfserrors.ErrIOFailed.WrapError(err)
	}
	return nil
}

// OpenFile is a convenience wrapper around os.OpenFile that returns a stream
// suitable for Format/Mount, creating the file if it is being formatted.
func OpenFile(path string, fresh bool) (*os.File, error) {
	flags := os.O_RDWR
	if fresh {
		flags |= os.O_CREATE | os.O_TRUNC
	}
	return os.OpenFile(path, flags, 0o644)
}
