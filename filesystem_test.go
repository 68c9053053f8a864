package sfs_test

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sfs "github.com/brackenbridge/sfscore"
	"github.com/brackenbridge/sfscore/sfstest"
)

func TestFormatReservesExactlyTheDocumentedBlocks(t *testing.T) {
	geom := sfs.DefaultGeometry()
	stream := sfstest.NewMemoryDevice(t, geom.BlockSize, geom.TotalBlocks)

	fs, err := sfs.Format(stream, geom)
	require.NoError(t, err)

	reserved := map[uint]bool{0: true, 1023: true}
	for b := uint(1); b <= 4; b++ {
		reserved[b] = true
	}
	for b := uint(5); b <= 22; b++ {
		reserved[b] = true
	}

	for b := uint(0); b < geom.TotalBlocks; b++ {
		if reserved[b] {
			assert.Falsef(t, fs.Bitmap.IsFree(b), "block %d should be reserved", b)
		} else {
			assert.Truef(t, fs.Bitmap.IsFree(b), "block %d should be free", b)
		}
	}
}

func TestScenario1_WriteSeekReadRoundTrip(t *testing.T) {
	geom := sfs.DefaultGeometry()
	stream := sfstest.NewMemoryDevice(t, geom.BlockSize, geom.TotalBlocks)
	fs, err := sfs.Format(stream, geom)
	require.NoError(t, err)

	handle := fs.Fopen("a")
	require.GreaterOrEqual(t, handle, 0)

	n := fs.Fwrite(handle, []byte("hello"), 5)
	assert.Equal(t, 5, n)

	assert.Equal(t, 0, fs.Fseek(handle, 0))

	buf := make([]byte, 5)
	n = fs.Fread(handle, buf, 5)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", string(buf))
}

func TestScenario2_RemountPreservesContent(t *testing.T) {
	geom := sfs.DefaultGeometry()
	stream := sfstest.NewMemoryDevice(t, geom.BlockSize, geom.TotalBlocks)
	fs, err := sfs.Format(stream, geom)
	require.NoError(t, err)

	payload := bytes.Repeat([]byte{0xAA}, 2000)
	handle := fs.Fopen("b")
	require.GreaterOrEqual(t, handle, 0)

	n := fs.Fwrite(handle, payload, len(payload))
	require.Equal(t, 2000, n)
	assert.Equal(t, 2000, fs.GetFileSize("b"))
	require.Equal(t, 0, fs.Fclose(handle))

	remounted, err := sfs.Mount(stream, geom)
	require.NoError(t, err)

	handle = remounted.Fopen("b")
	require.GreaterOrEqual(t, handle, 0)

	// The cursor persists in the inode table across close and remount, same
	// as the reference implementation's rw_pointer; reading from the start
	// requires an explicit seek.
	require.Equal(t, 0, remounted.Fseek(handle, 0))

	buf := make([]byte, 2000)
	n = remounted.Fread(handle, buf, 2000)
	require.Equal(t, 2000, n)
	assert.Equal(t, payload, buf)
}

func TestScenario3_WriteCappedAtMaxFileSizeMinusOne(t *testing.T) {
	geom := sfs.DefaultGeometry()
	stream := sfstest.NewMemoryDevice(t, geom.BlockSize, geom.TotalBlocks)
	fs, err := sfs.Format(stream, geom)
	require.NoError(t, err)

	handle := fs.Fopen("c")
	require.GreaterOrEqual(t, handle, 0)

	big := make([]byte, 32767)
	n := fs.Fwrite(handle, big, len(big))
	require.Equal(t, 32767, n)
	assert.Equal(t, 32767, fs.GetFileSize("c"))

	n = fs.Fwrite(handle, []byte("0123456789"), 10)
	assert.Equal(t, 0, n)
	assert.Equal(t, 32767, fs.GetFileSize("c"))
}

func TestScenario4_RemoveThenReopenStartsEmpty(t *testing.T) {
	geom := sfs.DefaultGeometry()
	stream := sfstest.NewMemoryDevice(t, geom.BlockSize, geom.TotalBlocks)
	fs, err := sfs.Format(stream, geom)
	require.NoError(t, err)

	handle := fs.Fopen("d")
	require.GreaterOrEqual(t, handle, 0)
	n := fs.Fwrite(handle, make([]byte, 500), 500)
	require.Equal(t, 500, n)
	require.Equal(t, 0, fs.Fclose(handle))

	assert.Equal(t, 0, fs.Remove("d"))

	handle = fs.Fopen("e")
	require.GreaterOrEqual(t, handle, 0)
	assert.Equal(t, 0, fs.GetFileSize("e"))

	buf := make([]byte, 10)
	n = fs.Fread(handle, buf, 10)
	assert.Equal(t, 0, n)
}

func TestScenario5_InodeExhaustionThenRecovery(t *testing.T) {
	geom := sfs.DefaultGeometry()
	stream := sfstest.NewMemoryDevice(t, geom.BlockSize, geom.TotalBlocks)
	fs, err := sfs.Format(stream, geom)
	require.NoError(t, err)

	for i := 0; i < 128; i++ {
		h := fs.Fopen("f" + strconv.Itoa(i))
		require.GreaterOrEqualf(t, h, 0, "fopen of file %d should succeed", i)
	}

	assert.Equal(t, -1, fs.Fopen("f128"))

	require.Equal(t, 0, fs.Remove("f0"))
	assert.GreaterOrEqual(t, fs.Fopen("f128"), 0)
}

func TestScenario6_SeekOutOfRangeFails(t *testing.T) {
	geom := sfs.DefaultGeometry()
	stream := sfstest.NewMemoryDevice(t, geom.BlockSize, geom.TotalBlocks)
	fs, err := sfs.Format(stream, geom)
	require.NoError(t, err)

	handle := fs.Fopen("x")
	require.GreaterOrEqual(t, handle, 0)
	n := fs.Fwrite(handle, []byte("0123456789"), 10)
	require.Equal(t, 10, n)

	assert.Equal(t, -1, fs.Fseek(handle, 20))
	assert.Equal(t, 0, fs.Fseek(handle, 9), "seeking to size-1 must succeed")
	assert.Equal(t, -1, fs.Fseek(handle, 10), "seeking to size must fail")
}

func TestGetNextFileNameEnumeratesAscendingAndRestarts(t *testing.T) {
	geom := sfs.DefaultGeometry()
	stream := sfstest.NewMemoryDevice(t, geom.BlockSize, geom.TotalBlocks)
	fs, err := sfs.Format(stream, geom)
	require.NoError(t, err)

	fs.Fopen("alpha")
	fs.Fopen("beta")

	name, ok := fs.GetNextFileName()
	require.True(t, ok)
	assert.Equal(t, "alpha", name)

	name, ok = fs.GetNextFileName()
	require.True(t, ok)
	assert.Equal(t, "beta", name)

	_, ok = fs.GetNextFileName()
	assert.False(t, ok)

	fs.Dir.ResetEnumeration()
	name, ok = fs.GetNextFileName()
	require.True(t, ok)
	assert.Equal(t, "alpha", name)
}

func TestReopenExistingFilePreservesInodeAndSize(t *testing.T) {
	geom := sfs.DefaultGeometry()
	stream := sfstest.NewMemoryDevice(t, geom.BlockSize, geom.TotalBlocks)
	fs, err := sfs.Format(stream, geom)
	require.NoError(t, err)

	h1 := fs.Fopen("stable")
	require.GreaterOrEqual(t, h1, 0)
	fs.Fwrite(h1, []byte("abc"), 3)
	require.Equal(t, 0, fs.Fclose(h1))

	h2 := fs.Fopen("stable")
	require.Equal(t, h1, h2, "reopening must return the same handle slot")
	assert.Equal(t, 3, fs.GetFileSize("stable"))
}
