// Package superblock holds the fixed geometry constants that describe a
// mounted sfscore image. It is written at format time, rewritten unchanged
// on every flush, and read once at mount time.
package superblock

import (
	"bytes"
	"encoding/binary"

	"github.com/noxer/bytewriter"

	"github.com/brackenbridge/sfscore/sfserrors"
)

// Raw is the on-disk record for the super block: a fixed-width struct
// read and written with encoding/binary so the byte image never depends
// on Go's in-memory representation.
type Raw struct {
	BlockSize          uint32
	FsSize             uint32
	InodeTableLength   uint32
	RootDirectoryBlock uint32
}

// SuperBlock is the in-memory, immutable-after-format geometry record.
type SuperBlock struct {
	BlockSize          uint
	FsSize             uint
	InodeTableLength   uint
	RootDirectoryBlock uint
}

// New builds a SuperBlock from explicit geometry. Callers should use
// sfs.DefaultGeometry for the standard defaults.
func New(blockSize, fsSize, inodeTableLength, rootDirectoryBlock uint) SuperBlock {
	return SuperBlock{
		BlockSize:          blockSize,
		FsSize:             fsSize,
		InodeTableLength:   inodeTableLength,
		RootDirectoryBlock: rootDirectoryBlock,
	}
}

// Encode writes the super block record into a buffer exactly blockSize
// bytes long, with any unused trailing bytes left zero.
func (sb SuperBlock) Encode(blockSize uint) ([]byte, error) {
	buf := make([]byte, blockSize)
	writer := bytewriter.New(buf)

	raw := Raw{
		BlockSize:          uint32(sb.BlockSize),
		FsSize:             uint32(sb.FsSize),
		InodeTableLength:   uint32(sb.InodeTableLength),
		RootDirectoryBlock: uint32(sb.RootDirectoryBlock),
	}
	if err := binary.Write(writer, binary.LittleEndian, &raw); err != nil {
		return nil, sfserrors.ErrIOFailed.WrapError(err)
	}
	return buf, nil
}

// Decode parses a previously Encode'd block back into a SuperBlock.
func Decode(block []byte) (SuperBlock, error) {
	var raw Raw
	reader := bytes.NewReader(block)
	if err := binary.Read(reader, binary.LittleEndian, &raw); err != nil {
		return SuperBlock{}, sfserrors.ErrIOFailed.WrapError(err)
	}
	return SuperBlock{
		BlockSize:          uint(raw.BlockSize),
		FsSize:             uint(raw.FsSize),
		InodeTableLength:   uint(raw.InodeTableLength),
		RootDirectoryBlock: uint(raw.RootDirectoryBlock),
	}, nil
}
