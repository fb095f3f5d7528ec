// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package blob

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coredb/sstable/sstable/block"
)

func TestStore_GetRoundTrip(t *testing.T) {
	records := [][]byte{
		[]byte("alpha"),
		[]byte("bravo"),
		[]byte("charlie"),
	}
	blk, err := EncodeBlock(block.NoCompressionIndicator, records)
	require.NoError(t, err)
	data := BuildStore([]uint64{0}, []uint64{uint64(len(records))}, [][]byte{blk})

	s, err := Load(data, nil)
	require.NoError(t, err)

	for i, want := range records {
		got, err := s.Get(uint64(i))
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestStore_GetAcrossMultipleBlocks(t *testing.T) {
	block0, err := EncodeBlock(block.NoCompressionIndicator, [][]byte{[]byte("a0"), []byte("a1")})
	require.NoError(t, err)
	block1, err := EncodeBlock(block.ZstdCompressionIndicator, [][]byte{[]byte("b0"), []byte("b1"), []byte("b2")})
	require.NoError(t, err)

	data := BuildStore([]uint64{0, 2}, []uint64{2, 3}, [][]byte{block0, block1})
	s, err := Load(data, nil)
	require.NoError(t, err)

	got, err := s.Get(0)
	require.NoError(t, err)
	require.Equal(t, []byte("a0"), got)

	got, err = s.Get(3)
	require.NoError(t, err)
	require.Equal(t, []byte("b1"), got)

	got, err = s.Get(4)
	require.NoError(t, err)
	require.Equal(t, []byte("b2"), got)
}

func TestStore_GetUnknownRecordID(t *testing.T) {
	blk, err := EncodeBlock(block.NoCompressionIndicator, [][]byte{[]byte("only")})
	require.NoError(t, err)
	data := BuildStore([]uint64{0}, []uint64{1}, [][]byte{blk})

	s, err := Load(data, nil)
	require.NoError(t, err)

	_, err = s.Get(5)
	require.Error(t, err)
}

// TestStore_NoCompressionBlockNeverPooled guards against a NoCompression
// block's decoded slice (an alias into the store's own backing data, not a
// buffer decompression wrote to) being handed to a later Get as its
// scratch/dst buffer, which would have snappy/zstd decompression write into
// memory the store still needs to read.
func TestStore_NoCompressionBlockNeverPooled(t *testing.T) {
	block0, err := EncodeBlock(block.NoCompressionIndicator, [][]byte{[]byte("plain0"), []byte("plain1")})
	require.NoError(t, err)
	block1, err := EncodeBlock(block.SnappyCompressionIndicator, [][]byte{[]byte("snappy0"), []byte("snappy1")})
	require.NoError(t, err)
	block2, err := EncodeBlock(block.ZstdCompressionIndicator, [][]byte{[]byte("zstd0"), []byte("zstd1")})
	require.NoError(t, err)

	data := BuildStore([]uint64{0, 2, 4}, []uint64{2, 2, 2}, [][]byte{block0, block1, block2})
	s, err := Load(data, nil)
	require.NoError(t, err)

	for round := 0; round < 3; round++ {
		got, err := s.Get(0)
		require.NoError(t, err)
		require.Equal(t, []byte("plain0"), got)

		got, err = s.Get(2)
		require.NoError(t, err)
		require.Equal(t, []byte("snappy0"), got)

		got, err = s.Get(4)
		require.NoError(t, err)
		require.Equal(t, []byte("zstd0"), got)
	}
}

func TestStore_GetReturnsIndependentCopies(t *testing.T) {
	records := [][]byte{[]byte("one"), []byte("two")}
	blk, err := EncodeBlock(block.NoCompressionIndicator, records)
	require.NoError(t, err)
	data := BuildStore([]uint64{0}, []uint64{2}, [][]byte{blk})

	s, err := Load(data, nil)
	require.NoError(t, err)

	first, err := s.Get(0)
	require.NoError(t, err)
	firstCopy := append([]byte(nil), first...)

	_, err = s.Get(1)
	require.NoError(t, err)

	// A later Get must not have mutated the earlier call's returned slice
	// through a reused scratch buffer.
	require.Equal(t, firstCopy, first)
}
