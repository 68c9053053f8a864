// Package directory implements the flat root directory: a bounded array of
// name -> inode index mappings plus a stateful enumeration cursor. sfscore
// has no subdirectories, so this is the entire namespace.
package directory

import (
	"bytes"
	"encoding/binary"

	"github.com/noxer/bytewriter"

	"github.com/brackenbridge/sfscore/sfserrors"
)

// MaxNameLength is the maximum file name length in bytes, including the
// terminating null byte.
const MaxNameLength = 20

// entryRaw is the fixed-width on-disk record for one directory entry.
type entryRaw struct {
	FileName  [MaxNameLength]byte
	Available uint8
	_         [3]byte // padding to keep InodeIndex 4-byte aligned
	InodeIndex int32
}

// Entry is one slot in the directory.
type Entry struct {
	FileName   string
	Available  bool
	InodeIndex int
}

func encodeName(name string) ([MaxNameLength]byte, error) {
	var raw [MaxNameLength]byte
	if len(name)+1 > MaxNameLength {
		return raw, sfserrors.ErrNameTooLong
	}
	copy(raw[:], name)
	return raw, nil
}

func decodeName(raw [MaxNameLength]byte) string {
	n := bytes.IndexByte(raw[:], 0)
	if n < 0 {
		n = len(raw)
	}
	return string(raw[:n])
}

// Table is the fixed 128-entry directory plus its enumeration cursor.
type Table struct {
	Cursor  int
	Entries []Entry
}

// NewTable builds a directory with count entries, all available — the
// format-time state of the directory.
func NewTable(count uint) *Table {
	entries := make([]Entry, count)
	for i := range entries {
		entries[i] = Entry{Available: true}
	}
	return &Table{Cursor: 0, Entries: entries}
}

// FindByName returns the index of the entry named name, or -1 if absent.
func (t *Table) FindByName(name string) int {
	for i := range t.Entries {
		if !t.Entries[i].Available && t.Entries[i].FileName == name {
			return i
		}
	}
	return -1
}

// Create claims the lowest-index available entry for name/inodeIndex.
// Returns sfserrors.ErrNameTooLong if name doesn't fit, or
// sfserrors.ErrDirectoryFull if there's no available slot.
func (t *Table) Create(name string, inodeIndex int) (int, error) {
	if len(name)+1 > MaxNameLength {
		return -1, sfserrors.ErrNameTooLong
	}
	for i := range t.Entries {
		if t.Entries[i].Available {
			t.Entries[i] = Entry{
				FileName:   name,
				Available:  false,
				InodeIndex: inodeIndex,
			}
			return i, nil
		}
	}
	return -1, sfserrors.ErrDirectoryFull
}

// Release marks the entry named name as available again. The inode itself
// is freed by the caller (sfs.FileSystem.Remove, through
// engine.FreeInodeBlocks), not here; this only forgets the
// name. Returns false if no entry matched.
func (t *Table) Release(name string) (inodeIndex int, found bool) {
	for i := range t.Entries {
		if !t.Entries[i].Available && t.Entries[i].FileName == name {
			inodeIndex = t.Entries[i].InodeIndex
			t.Entries[i] = Entry{Available: true}
			return inodeIndex, true
		}
	}
	return -1, false
}

// Enumerate advances the cursor past the next non-available entry and
// writes its name. It returns false once every entry from the current
// cursor position onward has been visited. Resetting Cursor to 0 restarts
// the scan.
func (t *Table) Enumerate() (name string, ok bool) {
	for i := t.Cursor; i < len(t.Entries); i++ {
		if !t.Entries[i].Available {
			t.Cursor = i + 1
			return t.Entries[i].FileName, true
		}
	}
	return "", false
}

// ResetEnumeration restarts the enumeration cursor from the beginning.
func (t *Table) ResetEnumeration() {
	t.Cursor = 0
}

// Encode renders the whole directory table into a buffer exactly
// blockSize*numBlocks bytes long.
func (t *Table) Encode(blockSize, numBlocks uint) ([]byte, error) {
	buf := make([]byte, blockSize*numBlocks)
	writer := bytewriter.New(buf)

	for i := range t.Entries {
		name, err := encodeName(t.Entries[i].FileName)
		if err != nil {
			return nil, err
		}
		raw := entryRaw{FileName: name, InodeIndex: int32(t.Entries[i].InodeIndex)}
		if t.Entries[i].Available {
			raw.Available = 1
		}
		if err := binary.Write(writer, binary.LittleEndian, &raw); err != nil {
			return nil, sfserrors.ErrIOFailed.WrapError(err)
		}
	}
	return buf, nil
}

// Decode parses a previously Encode'd byte image back into a Table of
// count entries. The enumeration cursor always restarts at 0 on decode;
// it's logical state, not persisted semantics.
func Decode(data []byte, count uint) (*Table, error) {
	t := &Table{Cursor: 0, Entries: make([]Entry, count)}
	reader := bytes.NewReader(data)
	for i := range t.Entries {
		var raw entryRaw
		if err := binary.Read(reader, binary.LittleEndian, &raw); err != nil {
			return nil, sfserrors.ErrIOFailed.WrapError(err)
		}
		t.Entries[i] = Entry{
			FileName:   decodeName(raw.FileName),
			Available:  raw.Available != 0,
			InodeIndex: int(raw.InodeIndex),
		}
	}
	return t, nil
}
