// Package fdtable is the open-file handle table: a dense slot array
// coupling a file name and inode index with an open/closed flag. There is
// at most one handle per name.
package fdtable

import "github.com/brackenbridge/sfscore/directory"

// Mode is the open/closed state of a FileHandle.
type Mode int

const (
	Closed Mode = iota
	Open
)

// FileHandle is one entry in the file descriptor table.
type FileHandle struct {
	Mode       Mode
	FileName   string
	InodeIndex int
}

// Table is the dense slot array of optional handles. A nil entry means the
// slot is empty.
type Table struct {
	Handles []*FileHandle
}

// NewTable builds an empty table with the given capacity.
func NewTable(capacity uint) *Table {
	return &Table{Handles: make([]*FileHandle, capacity)}
}

// LocateByName does a linear scan for the handle (open or closed) named
// name, returning its slot or -1.
func (t *Table) LocateByName(name string) int {
	for i, h := range t.Handles {
		if h != nil && h.FileName == name {
			return i
		}
	}
	return -1
}

// AllocateHandle claims the lowest empty slot for a new, open handle.
// Returns -1 if the table is full.
func (t *Table) AllocateHandle(name string, inodeIndex int) int {
	for i, h := range t.Handles {
		if h == nil {
			t.Handles[i] = &FileHandle{Mode: Open, FileName: name, InodeIndex: inodeIndex}
			return i
		}
	}
	return -1
}

// Destroy drops ownership of the handle in slot i, if any.
func (t *Table) Destroy(i int) {
	if i >= 0 && i < len(t.Handles) {
		t.Handles[i] = nil
	}
}

// Get returns the handle in slot i, or nil if the slot is empty or out of
// range.
func (t *Table) Get(i int) *FileHandle {
	if i < 0 || i >= len(t.Handles) {
		return nil
	}
	return t.Handles[i]
}

// RebuildFromDirectory repopulates the table from scratch by scanning dir
// in ascending entry order, filling slots from 0 upward with closed
// handles (the file is known to exist, but nothing has opened it yet since
// the mount).
func (t *Table) RebuildFromDirectory(dir *directory.Table) {
	for i := range t.Handles {
		t.Handles[i] = nil
	}

	slot := 0
	for _, entry := range dir.Entries {
		if entry.Available {
			continue
		}
		if slot >= len(t.Handles) {
			break
		}
		t.Handles[slot] = &FileHandle{
			Mode:       Closed,
			FileName:   entry.FileName,
			InodeIndex: entry.InodeIndex,
		}
		slot++
	}
}
