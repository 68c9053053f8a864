package inode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brackenbridge/sfscore/inode"
)

func TestNewTableAllSlotsFree(t *testing.T) {
	table := inode.NewTable(128)
	for i := range table.Inodes {
		assert.True(t, table.Inodes[i].IsFree(), "slot %d should start free", i)
		for _, p := range table.Inodes[i].Pointers {
			assert.EqualValues(t, inode.SentinelUnused, p)
		}
	}
}

func TestAllocateTakesLowestFreeSlot(t *testing.T) {
	table := inode.NewTable(4)

	idx, err := table.Allocate()
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	idx2, err := table.Allocate()
	require.NoError(t, err)
	assert.Equal(t, 1, idx2)
}

func TestAllocateExhausted(t *testing.T) {
	table := inode.NewTable(2)
	_, err := table.Allocate()
	require.NoError(t, err)
	_, err = table.Allocate()
	require.NoError(t, err)

	_, err = table.Allocate()
	assert.Error(t, err)
}

func TestFreeReturnsSlotToPool(t *testing.T) {
	table := inode.NewTable(2)
	idx, _ := table.Allocate()

	require.NoError(t, table.Free(idx))
	assert.True(t, table.Inodes[idx].IsFree())

	idx2, err := table.Allocate()
	require.NoError(t, err)
	assert.Equal(t, idx, idx2, "freed slot should be reused")
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	table := inode.NewTable(128)
	idx, err := table.Allocate()
	require.NoError(t, err)

	in, err := table.Get(idx)
	require.NoError(t, err)
	in.Size = 2048
	in.Cursor = 100
	in.Pointers[0] = 50
	in.Pointers[1] = 51

	data, err := table.Encode(1024, 18)
	require.NoError(t, err)

	restored, err := inode.Decode(data, 128)
	require.NoError(t, err)

	assert.Equal(t, table.Inodes, restored.Inodes)
}
