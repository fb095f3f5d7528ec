// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sstable

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coredb/sstable/internal/base"
	"github.com/coredb/sstable/sstable/rangetombstone"
)

func TestReaderRangeTombstoneIterator(t *testing.T) {
	dir := t.TempDir()
	path := buildSingleSegmentTable(t, dir, []testKey{
		{key: "apple", versions: []testVersion{{seq: 1, kind: base.InternalKeyKindSet, value: "red"}}},
	}, buildOpts{
		comparatorName: "leveldb.BytewiseComparator",
		globalSeqNum:   1,
		tombstoneSpans: []rangetombstone.Span{
			{Start: []byte("f"), End: []byte("k"), SeqNum: 0},
		},
	})

	r, err := Open(path, Options{})
	require.NoError(t, err)

	it := r.NewRangeTombstoneIterator(ReadOptions{})
	require.NotNil(t, it)

	it.First()
	require.True(t, it.Valid())
	span := it.Current()
	require.Equal(t, "f", string(span.Start))
	require.Equal(t, "k", string(span.End))
	// A stored seqnum of 0 is tagged with the table's global sequence number.
	require.Equal(t, base.SeqNum(1), span.SeqNum)

	// The block was copied out of the mmap region at Open, so it must survive
	// the reader closing.
	require.NoError(t, r.Close())
	require.NoError(t, it.Close())
}

func TestReaderNewRangeTombstoneIteratorNilWhenAbsent(t *testing.T) {
	dir := t.TempDir()
	path := buildSingleSegmentTable(t, dir, []testKey{
		{key: "apple", versions: []testVersion{{seq: 1, kind: base.InternalKeyKindSet, value: "red"}}},
	}, buildOpts{comparatorName: "leveldb.BytewiseComparator", globalSeqNum: 1})

	r, err := Open(path, Options{})
	require.NoError(t, err)
	defer r.Close()

	require.Nil(t, r.NewRangeTombstoneIterator(ReadOptions{}))
}
