// Package inode implements the fixed-size inode table: the lifecycle of an
// inode is the lifecycle of a file, and each live inode carries a direct
// (non-indirect) map from logical block number to physical block number.
package inode

import (
	"bytes"
	"encoding/binary"

	"github.com/noxer/bytewriter"

	"github.com/brackenbridge/sfscore/sfserrors"
)

// NumDirectPointers is the number of direct block pointers per inode,
// covering a 32KiB max file size at a 1KiB block size.
const NumDirectPointers = 32

// SentinelUnused marks a pointer slot that has no block allocated yet, and
// (as Size) marks an inode slot as free.
const SentinelUnused = -1

// Inode is the in-memory record for one file: a 32-bit size/cursor pair
// plus a flat array of direct block pointers (no indirect blocks).
type Inode struct {
	// Size is the number of valid bytes of file content, or SentinelUnused
	// if this slot is free.
	Size int32
	// Cursor is the read/write offset used by the next fread/fwrite. Only
	// meaningful while the file is open.
	Cursor int32
	// Pointers maps logical block k to the physical block holding bytes
	// [k*BlockSize, (k+1)*BlockSize), or SentinelUnused if unallocated.
	Pointers [NumDirectPointers]int32
}

// IsFree reports whether this inode slot holds no file.
func (in *Inode) IsFree() bool {
	return in.Size == SentinelUnused
}

func freeInode() Inode {
	in := Inode{Size: SentinelUnused, Cursor: 0}
	for i := range in.Pointers {
		in.Pointers[i] = SentinelUnused
	}
	return in
}

// Table is the full fixed-size array of inodes, persisted as one
// contiguous byte image.
type Table struct {
	Inodes []Inode
}

// NewTable builds a table of count inodes, all free — the format-time
// state of the inode table.
func NewTable(count uint) *Table {
	t := &Table{Inodes: make([]Inode, count)}
	for i := range t.Inodes {
		t.Inodes[i] = freeInode()
	}
	return t
}

// Allocate finds the lowest-index free inode, initializes it to an empty
// live file (size=0, cursor=0, all pointers unused), and returns its
// index. Returns sfserrors.ErrNoFreeInode if the table is full.
func (t *Table) Allocate() (int, error) {
	for i := range t.Inodes {
		if t.Inodes[i].IsFree() {
			t.Inodes[i] = Inode{Size: 0, Cursor: 0}
			for j := range t.Inodes[i].Pointers {
				t.Inodes[i].Pointers[j] = SentinelUnused
			}
			return i, nil
		}
	}
	return -1, sfserrors.ErrNoFreeInode
}

// Free marks inode index as unused. It does not touch the free-block
// bitmap; the caller (engine.FreeInodeBlocks) is responsible for returning the
// inode's data blocks first.
func (t *Table) Free(index int) error {
	if index < 0 || index >= len(t.Inodes) {
		return sfserrors.ErrInvalidArgument
	}
	t.Inodes[index] = freeInode()
	return nil
}

// Get returns a pointer to the inode at index for in-place mutation.
func (t *Table) Get(index int) (*Inode, error) {
	if index < 0 || index >= len(t.Inodes) {
		return nil, sfserrors.ErrInvalidArgument
	}
	return &t.Inodes[index], nil
}

// recordSize is the fixed byte width of one encoded Inode: a 4-byte size,
// a 4-byte cursor, and NumDirectPointers 4-byte pointers.
const recordSize = 4 + 4 + NumDirectPointers*4

// Encode renders the whole table into a buffer exactly blockSize*numBlocks
// bytes, the image persisted across the inode table's contiguous blocks.
// Unused trailing bytes are left zero.
func (t *Table) Encode(blockSize, numBlocks uint) ([]byte, error) {
	buf := make([]byte, blockSize*numBlocks)
	writer := bytewriter.New(buf)

	for i := range t.Inodes {
		if err := binary.Write(writer, binary.LittleEndian, &t.Inodes[i]); err != nil {
			return nil, sfserrors.ErrIOFailed.WrapError(err)
		}
	}
	return buf, nil
}

// Decode parses a previously Encode'd byte image back into a Table of
// count inodes.
func Decode(data []byte, count uint) (*Table, error) {
	t := &Table{Inodes: make([]Inode, count)}
	reader := bytes.NewReader(data)
	for i := range t.Inodes {
		if err := binary.Read(reader, binary.LittleEndian, &t.Inodes[i]); err != nil {
			return nil, sfserrors.ErrIOFailed.WrapError(err)
		}
	}
	return t, nil
}

// EncodedSize returns the number of bytes recordSize*count occupies, the
// space count encoded inodes need in the inode table region.
func EncodedSize(count uint) uint {
	return uint(recordSize) * count
}
