// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sstable

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coredb/sstable/internal/base"
)

func TestIndexFindAndSeek(t *testing.T) {
	keys := [][]byte{[]byte("apple"), []byte("cherry"), []byte("mango")}
	ids := []uint64{0, 1, 2}
	data := EncodeIndex(keys, ids)

	idx, err := DecodeIndex(data, bytes.Compare)
	require.NoError(t, err)
	require.Equal(t, 3, idx.Len())

	id, ok := idx.Find([]byte("cherry"))
	require.True(t, ok)
	require.Equal(t, uint64(1), id)

	_, ok = idx.Find([]byte("banana"))
	require.False(t, ok)

	pos, exact := idx.Seek([]byte("banana"))
	require.False(t, exact)
	require.Equal(t, 1, pos) // lower bound lands on "cherry"

	pos, exact = idx.Seek([]byte("mango"))
	require.True(t, exact)
	require.Equal(t, 2, pos)
}

func TestIndexSeekPastEnd(t *testing.T) {
	data := EncodeIndex([][]byte{[]byte("a")}, []uint64{0})
	idx, err := DecodeIndex(data, bytes.Compare)
	require.NoError(t, err)

	pos, exact := idx.Seek([]byte("z"))
	require.False(t, exact)
	require.Equal(t, 1, pos)
}

func TestIndexReverseComparator(t *testing.T) {
	keys := [][]byte{[]byte("cherry"), []byte("banana"), []byte("apple")}
	ids := []uint64{0, 1, 2}
	data := EncodeIndex(keys, ids)

	idx, err := DecodeIndex(data, base.ReverseComparer.Compare)
	require.NoError(t, err)

	id, ok := idx.Find([]byte("apple"))
	require.True(t, ok)
	require.Equal(t, uint64(2), id)
}
