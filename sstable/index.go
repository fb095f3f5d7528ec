// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sstable

import (
	"encoding/binary"
	"sort"

	"github.com/coredb/sstable/internal/base"
)

// indexEntry is one (key, record id) pair of the sorted index.
type indexEntry struct {
	key      []byte
	recordID uint64
}

// Index is a sorted-set membership structure mapping a segment's (already
// common-prefix-stripped) keys to the record id holding their payload in the
// segment's blob store. It is built once at load time from a flat
// meta-block encoding and queried thereafter with binary search, mirroring
// the restart-point-free search pattern of a block iterator without the
// restart-interval compression a write-optimized format would use.
type Index struct {
	entries []indexEntry
	cmp     base.Compare
}

// DecodeIndex parses an index meta-block: a sequence of
// varint(len(key)) key varint(recordID), running to the end of data, in cmp
// order.
func DecodeIndex(data []byte, cmp base.Compare) (*Index, error) {
	var entries []indexEntry
	for len(data) > 0 {
		klen, n := binary.Uvarint(data)
		if n <= 0 {
			return nil, base.CorruptionErrorf("invalid index block: bad key length")
		}
		data = data[n:]
		if uint64(len(data)) < klen {
			return nil, base.CorruptionErrorf("invalid index block: truncated key")
		}
		key := data[:klen:klen]
		data = data[klen:]

		recordID, n := binary.Uvarint(data)
		if n <= 0 {
			return nil, base.CorruptionErrorf("invalid index block: bad record id")
		}
		data = data[n:]

		entries = append(entries, indexEntry{key: key, recordID: recordID})
	}
	return &Index{entries: entries, cmp: cmp}, nil
}

// EncodeIndex is the inverse of DecodeIndex, used by table-building test
// fixtures. Entries must already be supplied in cmp order.
func EncodeIndex(keys [][]byte, recordIDs []uint64) []byte {
	var buf []byte
	for i, key := range keys {
		buf = binary.AppendUvarint(buf, uint64(len(key)))
		buf = append(buf, key...)
		buf = binary.AppendUvarint(buf, recordIDs[i])
	}
	return buf
}

// Len returns the number of entries in the index.
func (idx *Index) Len() int { return len(idx.entries) }

// At returns the key and record id of the i-th entry in cmp order.
func (idx *Index) At(i int) ([]byte, uint64) {
	e := idx.entries[i]
	return e.key, e.recordID
}

// Find looks up key exactly, returning its record id.
func (idx *Index) Find(key []byte) (recordID uint64, ok bool) {
	i := idx.lowerBound(key)
	if i < len(idx.entries) && idx.cmp(idx.entries[i].key, key) == 0 {
		return idx.entries[i].recordID, true
	}
	return 0, false
}

// Seek returns the position of the first entry whose key is >= key (in cmp
// order), and whether that entry's key matches key exactly.
func (idx *Index) Seek(key []byte) (pos int, exact bool) {
	i := idx.lowerBound(key)
	return i, i < len(idx.entries) && idx.cmp(idx.entries[i].key, key) == 0
}

func (idx *Index) lowerBound(key []byte) int {
	return sort.Search(len(idx.entries), func(i int) bool {
		return idx.cmp(idx.entries[i].key, key) >= 0
	})
}
