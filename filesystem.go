// Package sfs is the public entry point for the Simple File System core:
// it ties together the free-block bitmap, super block, inode table, root
// directory, file descriptor table, and allocation/I/O engine into the
// Format/Mount/Flush lifecycle and the flat file API.
package sfs

import (
	"io"

	"github.com/brackenbridge/sfscore/bitmap"
	"github.com/brackenbridge/sfscore/blockdev"
	"github.com/brackenbridge/sfscore/directory"
	"github.com/brackenbridge/sfscore/engine"
	"github.com/brackenbridge/sfscore/fdtable"
	"github.com/brackenbridge/sfscore/inode"
	"github.com/brackenbridge/sfscore/sfserrors"
	"github.com/brackenbridge/sfscore/superblock"
)

// FileSystem is one mounted sfscore image: the owned cache of metadata
// (bitmap, super block, directory, inode table, file descriptor table)
// plus the engine that does block-level I/O through them. A re-mount
// replaces this record wholesale rather than mutating the old one in
// place, since the previous caches may be stale relative to what's on
// disk.
type FileSystem struct {
	Geometry Geometry

	Device  *blockdev.Device
	Bitmap  *bitmap.FreeBitmap
	Super   superblock.SuperBlock
	Inodes  *inode.Table
	Dir     *directory.Table
	FDs     *fdtable.Table
	Engine  *engine.Engine

	lastErr error
}

// LastError returns the richer sfserrors.DriverError behind the most
// recent -1/1 sentinel returned by Fopen, Fread, Fwrite, Fseek, Fclose or
// Remove, or nil if the last of those calls succeeded. GetNextFileName and
// GetFileSize leave it unchanged. It's supplementary: the numeric return
// value is always the authoritative signal.
func (fs *FileSystem) LastError() error {
	return fs.lastErr
}

func (fs *FileSystem) setErr(err error) {
	fs.lastErr = err
}

// Format destructively initializes a fresh sfscore image on stream using
// geom: zero the device, mark its own reserved regions used in the
// bitmap, then persist the super block, inode table, and directory table
// in turn before writing the bitmap itself.
func Format(stream io.ReadWriteSeeker, geom Geometry) (*FileSystem, error) {
	dev, err := blockdev.Format(stream, geom.BlockSize, geom.TotalBlocks)
	if err != nil {
		return nil, err
	}

	fb := bitmap.New(geom.TotalBlocks, geom.FirstDataBlock, geom.BitmapLocation)

	sb := superblock.New(geom.BlockSize, geom.TotalBlocks, geom.InodeTableBlocks, geom.DirStart)
	sbBytes, err := sb.Encode(geom.BlockSize)
	if err != nil {
		return nil, err
	}
	if err := dev.WriteBlocks(blockdev.BlockID(geom.SuperBlockLocation), sbBytes); err != nil {
		return nil, err
	}
	if err := fb.MarkUsed(geom.SuperBlockLocation, 1); err != nil {
		return nil, err
	}

	fds := fdtable.NewTable(geom.MaxOpenFiles)

	inodes := inode.NewTable(geom.MaxInodes)
	inodeBytes, err := inodes.Encode(geom.BlockSize, geom.InodeTableBlocks)
	if err != nil {
		return nil, err
	}
	if err := dev.WriteBlocks(blockdev.BlockID(geom.InodeTableStart), inodeBytes); err != nil {
		return nil, err
	}
	if err := fb.MarkUsed(geom.InodeTableStart, geom.InodeTableBlocks); err != nil {
		return nil, err
	}

	dir := directory.NewTable(geom.MaxDirEntries)
	dirBytes, err := dir.Encode(geom.BlockSize, geom.DirBlocks)
	if err != nil {
		return nil, err
	}
	if err := dev.WriteBlocks(blockdev.BlockID(geom.DirStart), dirBytes); err != nil {
		return nil, err
	}
	if err := fb.MarkUsed(geom.DirStart, geom.DirBlocks); err != nil {
		return nil, err
	}

	if err := dev.WriteBlocks(blockdev.BlockID(geom.BitmapLocation), fb.Encode(geom.BlockSize)); err != nil {
		return nil, err
	}

	eng := &engine.Engine{
		Device:      dev,
		Bitmap:      fb,
		Inodes:      inodes,
		BlockSize:   int(geom.BlockSize),
		MaxFileSize: int(geom.MaxFileSize),
	}

	return &FileSystem{
		Geometry: geom,
		Device:   dev,
		Bitmap:   fb,
		Super:    sb,
		Inodes:   inodes,
		Dir:      dir,
		FDs:      fds,
		Engine:   eng,
	}, nil
}

// Mount attaches to an existing sfscore image on stream, rebuilding every
// in-memory cache from disk: super block, directory, inode table, bitmap,
// then the file descriptor table scanned from the directory. Any caches
// owned by a previous FileSystem for this stream are simply dropped; there
// are no cross-references to fix up.
func Mount(stream io.ReadWriteSeeker, geom Geometry) (*FileSystem, error) {
	dev, err := blockdev.Mount(stream, geom.BlockSize, geom.TotalBlocks)
	if err != nil {
		return nil, err
	}

	sbBytes, err := dev.ReadBlocks(blockdev.BlockID(geom.SuperBlockLocation), 1)
	if err != nil {
		return nil, err
	}
	sb, err := superblock.Decode(sbBytes)
	if err != nil {
		return nil, err
	}

	dirBytes, err := dev.ReadBlocks(blockdev.BlockID(geom.DirStart), geom.DirBlocks)
	if err != nil {
		return nil, err
	}
	dir, err := directory.Decode(dirBytes, geom.MaxDirEntries)
	if err != nil {
		return nil, err
	}

	inodeBytes, err := dev.ReadBlocks(blockdev.BlockID(geom.InodeTableStart), geom.InodeTableBlocks)
	if err != nil {
		return nil, err
	}
	inodes, err := inode.Decode(inodeBytes, geom.MaxInodes)
	if err != nil {
		return nil, err
	}

	bitmapBytes, err := dev.ReadBlocks(blockdev.BlockID(geom.BitmapLocation), 1)
	if err != nil {
		return nil, err
	}
	fb := bitmap.Decode(bitmapBytes, geom.TotalBlocks, geom.FirstDataBlock, geom.BitmapLocation)

	fds := fdtable.NewTable(geom.MaxOpenFiles)
	fds.RebuildFromDirectory(dir)

	eng := &engine.Engine{
		Device:      dev,
		Bitmap:      fb,
		Inodes:      inodes,
		BlockSize:   int(geom.BlockSize),
		MaxFileSize: int(geom.MaxFileSize),
	}

	return &FileSystem{
		Geometry: geom,
		Device:   dev,
		Bitmap:   fb,
		Super:    sb,
		Inodes:   inodes,
		Dir:      dir,
		FDs:      fds,
		Engine:   eng,
	}, nil
}

// FormatOrMount is a convenience entry point: format a fresh image when
// fresh is true, otherwise mount the existing one.
func FormatOrMount(stream io.ReadWriteSeeker, geom Geometry, fresh bool) (*FileSystem, error) {
	if fresh {
		return Format(stream, geom)
	}
	return Mount(stream, geom)
}

// Flush writes all four cached metadata regions back to disk, in order:
// free bitmap, super block, directory table, inode table. Each region is
// written in full, not by delta. Failures in
// one region don't prevent the others from being attempted; all are
// aggregated with github.com/hashicorp/go-multierror and returned
// together.
func (fs *FileSystem) Flush() error {
	var errs error

	errs = sfserrors.AppendFlush(errs, "bitmap",
		fs.Device.WriteBlocks(blockdev.BlockID(fs.Geometry.BitmapLocation), fs.Bitmap.Encode(fs.Geometry.BlockSize)))

	if sbBytes, err := fs.Super.Encode(fs.Geometry.BlockSize); err != nil {
		errs = sfserrors.AppendFlush(errs, "superblock", err)
	} else {
		errs = sfserrors.AppendFlush(errs, "superblock",
			fs.Device.WriteBlocks(blockdev.BlockID(fs.Geometry.SuperBlockLocation), sbBytes))
	}

	if dirBytes, err := fs.Dir.Encode(fs.Geometry.BlockSize, fs.Geometry.DirBlocks); err != nil {
		errs = sfserrors.AppendFlush(errs, "directory", err)
	} else {
		errs = sfserrors.AppendFlush(errs, "directory",
			fs.Device.WriteBlocks(blockdev.BlockID(fs.Geometry.DirStart), dirBytes))
	}

	if inodeBytes, err := fs.Inodes.Encode(fs.Geometry.BlockSize, fs.Geometry.InodeTableBlocks); err != nil {
		errs = sfserrors.AppendFlush(errs, "inode table", err)
	} else {
		errs = sfserrors.AppendFlush(errs, "inode table",
			fs.Device.WriteBlocks(blockdev.BlockID(fs.Geometry.InodeTableStart), inodeBytes))
	}

	return errs
}
