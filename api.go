package sfs

import (
	"errors"

	"github.com/brackenbridge/sfscore/fdtable"
	"github.com/brackenbridge/sfscore/sfserrors"
)

// Fopen opens name if it already exists, otherwise creates it, and returns
// a handle id >= 0. It returns -1 on error: name too long, no free inode
// slot, no free directory entry, or no free handle slot. See
// FileSystem.LastError for the underlying cause.
func (fs *FileSystem) Fopen(name string) int {
	if len(name)+1 > int(fs.Geometry.MaxNameLength) {
		fs.setErr(sfserrors.ErrNameTooLong)
		return -1
	}

	if slot := fs.FDs.LocateByName(name); slot != -1 {
		fs.FDs.Get(slot).Mode = fdtable.Open
		fs.setErr(nil)
		return slot
	}

	// The file may already exist in the directory without a handle:
	// RebuildFromDirectory stops once every handle slot is filled, so when
	// the handle table is smaller than the directory some names get no
	// handle at mount.
	if dirIdx := fs.Dir.FindByName(name); dirIdx != -1 {
		entry := fs.Dir.Entries[dirIdx]
		slot := fs.FDs.AllocateHandle(name, entry.InodeIndex)
		if slot == -1 {
			fs.setErr(sfserrors.ErrTooManyOpenFiles)
			return -1
		}
		fs.setErr(nil)
		return slot
	}

	inodeIdx, err := fs.Inodes.Allocate()
	if err != nil {
		fs.setErr(err)
		return -1
	}

	if _, err := fs.Dir.Create(name, inodeIdx); err != nil {
		fs.Inodes.Free(inodeIdx)
		fs.setErr(err)
		return -1
	}

	slot := fs.FDs.AllocateHandle(name, inodeIdx)
	if slot == -1 {
		fs.Dir.Release(name)
		fs.Inodes.Free(inodeIdx)
		fs.setErr(sfserrors.ErrTooManyOpenFiles)
		return -1
	}

	fs.setErr(nil)
	return slot
}

// Fread reads up to length bytes from the handle into dest and returns
// the number of bytes actually read, or -1 if the handle is absent or not
// open.
func (fs *FileSystem) Fread(handleID int, dest []byte, length int) int {
	h := fs.FDs.Get(handleID)
	if h == nil {
		fs.setErr(sfserrors.ErrInvalidHandle)
		return -1
	}
	if h.Mode != fdtable.Open {
		fs.setErr(sfserrors.ErrNotOpen)
		return -1
	}

	n, err := fs.Engine.Read(h.InodeIndex, dest, length)
	if err != nil {
		fs.setErr(err)
		return -1
	}
	fs.setErr(nil)
	return n
}

// Fwrite writes up to length bytes from src into the handle's file and
// returns the number of bytes actually written, which may be less than
// length if the write was capped by the file size limit. Returns -1 on
// error (handle absent/not open, or no free data block).
func (fs *FileSystem) Fwrite(handleID int, src []byte, length int) int {
	h := fs.FDs.Get(handleID)
	if h == nil {
		fs.setErr(sfserrors.ErrInvalidHandle)
		return -1
	}
	if h.Mode != fdtable.Open {
		fs.setErr(sfserrors.ErrNotOpen)
		return -1
	}

	n, err := fs.Engine.Write(h.InodeIndex, src, length)
	if errors.Is(err, sfserrors.ErrFileTooLarge) {
		// The cursor already sits at the last allowed offset: the write is
		// capped to zero bytes rather than reported as an error.
		fs.setErr(nil)
		return n
	}
	if err != nil {
		fs.setErr(err)
		return -1
	}
	fs.setErr(nil)
	return n
}

// Fseek moves the handle's cursor to offset. Returns 0 on success, -1 if
// offset is out of [0, size) or the handle is absent. The cursor is left
// unchanged on failure.
func (fs *FileSystem) Fseek(handleID int, offset int) int {
	h := fs.FDs.Get(handleID)
	if h == nil {
		fs.setErr(sfserrors.ErrInvalidHandle)
		return -1
	}

	if err := fs.Engine.Seek(h.InodeIndex, offset); err != nil {
		fs.setErr(err)
		return -1
	}
	fs.setErr(nil)
	return 0
}

// Fclose marks the handle closed and flushes every cached metadata
// region. Returns 0 on success, -1 if the handle is absent or already
// closed.
func (fs *FileSystem) Fclose(handleID int) int {
	h := fs.FDs.Get(handleID)
	if h == nil {
		fs.setErr(sfserrors.ErrInvalidHandle)
		return -1
	}
	if h.Mode == fdtable.Closed {
		fs.setErr(sfserrors.ErrNotOpen)
		return -1
	}

	h.Mode = fdtable.Closed
	if err := fs.Flush(); err != nil {
		fs.setErr(err)
		return -1
	}
	fs.setErr(nil)
	return 0
}

// Remove deletes name: the directory entry is freed, the inode's data
// blocks are returned to the bitmap, and any handle for the name is
// destroyed. Returns 0 on success, 1 when the file isn't present or its
// inode is already free.
func (fs *FileSystem) Remove(name string) int {
	if slot := fs.FDs.LocateByName(name); slot != -1 {
		fs.FDs.Destroy(slot)
	}

	inodeIdx, found := fs.Dir.Release(name)
	if !found {
		fs.setErr(sfserrors.ErrNotFound)
		return 1
	}

	if err := fs.Engine.FreeInodeBlocks(inodeIdx); err != nil {
		fs.setErr(err)
		return 1
	}

	fs.setErr(nil)
	return 0
}

// GetNextFileName advances the directory's enumeration cursor and returns
// the next live file name, or ok=false when enumeration is exhausted.
// Call fs.Dir.ResetEnumeration to restart the scan.
func (fs *FileSystem) GetNextFileName() (name string, ok bool) {
	return fs.Dir.Enumerate()
}

// GetFileSize returns the current size in bytes of the file behind a
// handle (open or closed) named name, or 0 if no handle carries that
// name. This matches the reference implementation: a removed-then-closed
// name with no handle reports 0 even though the directory may still (in
// another implementation) remember it.
func (fs *FileSystem) GetFileSize(name string) int {
	slot := fs.FDs.LocateByName(name)
	if slot == -1 {
		return 0
	}
	h := fs.FDs.Get(slot)
	in, err := fs.Inodes.Get(h.InodeIndex)
	if err != nil {
		return 0
	}
	return int(in.Size)
}
