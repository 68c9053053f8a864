package bitmap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brackenbridge/sfscore/bitmap"
)

func TestNewMarksReservedRegionsUsed(t *testing.T) {
	fb := bitmap.New(1024, 23, 1023)

	assert.False(t, fb.IsFree(1023), "bitmap's own block must be reserved")
	assert.True(t, fb.IsFree(23), "first data block should start free")
	assert.True(t, fb.IsFree(1022), "last data block should start free")
}

func TestNextFreeIsFirstFitAscending(t *testing.T) {
	fb := bitmap.New(1024, 23, 1023)

	require.NoError(t, fb.MarkUsed(23, 3))
	assert.EqualValues(t, 26, fb.NextFree())

	require.NoError(t, fb.MarkFree(24, 1))
	assert.EqualValues(t, 24, fb.NextFree(), "freeing a lower block should win first-fit")
}

func TestNextFreeExhausted(t *testing.T) {
	fb := bitmap.New(10, 2, 9)

	require.NoError(t, fb.MarkUsed(2, 7))
	assert.Equal(t, bitmap.SentinelNone, fb.NextFree())
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	fb := bitmap.New(1024, 23, 1023)
	require.NoError(t, fb.MarkUsed(23, 5))

	data := fb.Encode(1024)
	assert.Len(t, data, 1024, "encoded image must be padded out to a full block")
	restored := bitmap.Decode(data, 1024, 23, 1023)

	for i := uint(0); i < 1024; i++ {
		assert.Equalf(t, fb.IsFree(i), restored.IsFree(i), "block %d disagrees after round-trip", i)
	}
}
