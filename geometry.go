package sfs

// Geometry describes the fixed layout of an sfscore image: block size,
// total blocks, region placement, and the various "max N" capacities. It's
// passed explicitly into Format rather than read from the environment, so
// callers can format images of different sizes for tests without any
// global state.
type Geometry struct {
	BlockSize   uint
	TotalBlocks uint
	MaxFileSize uint

	MaxInodes     uint
	MaxDirEntries uint
	MaxOpenFiles  uint
	MaxNameLength uint

	SuperBlockLocation uint
	DirStart           uint
	DirBlocks          uint
	InodeTableStart    uint
	InodeTableBlocks   uint
	BitmapLocation     uint
	FirstDataBlock     uint
}

// DefaultGeometry returns the standard geometry: 1024-byte
// blocks, 1024 total blocks, 32KiB max file size, 128 inodes/directory
// entries/open files, 20-byte names, an 18-block inode table starting at
// block 5, a 4-block root directory starting at block 1, the super block
// at block 0, the bitmap at the last block, and data starting at block 23.
func DefaultGeometry() Geometry {
	return Geometry{
		BlockSize:   1024,
		TotalBlocks: 1024,
		MaxFileSize: 32768,

		MaxInodes:     128,
		MaxDirEntries: 128,
		MaxOpenFiles:  128,
		MaxNameLength: 20,

		SuperBlockLocation: 0,
		DirStart:           1,
		DirBlocks:          4,
		InodeTableStart:    5,
		InodeTableBlocks:   18,
		BitmapLocation:     1023,
		FirstDataBlock:     23,
	}
}
