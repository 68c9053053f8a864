// Package sfstest provides an in-memory backing store for exercising
// sfscore without touching the filesystem.
package sfstest

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"
)

// NewMemoryDevice allocates totalBlocks*blockSize zeroed bytes and wraps
// them as an io.ReadWriteSeeker, suitable as the stream argument to
// sfs.Format or sfs.Mount.
func NewMemoryDevice(t *testing.T, blockSize, totalBlocks uint) io.ReadWriteSeeker {
	t.Helper()
	size := blockSize * totalBlocks
	require.Greater(t, size, uint(0), "device size must be positive")
	backing := make([]byte, size)
	return bytesextra.NewReadWriteSeeker(backing)
}
