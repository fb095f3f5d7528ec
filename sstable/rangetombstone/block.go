// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package rangetombstone implements the range-tombstone collaborator spec.md
// treats as external: a sorted set of range-deletion intervals with its own
// forward iterator. It is trimmed from the shape of a keyspan.Span to the
// read-only subset a table reader needs.
package rangetombstone

import (
	"encoding/binary"
	"sort"
	"sync/atomic"

	"github.com/coredb/sstable/internal/base"
)

// Span is a single range deletion: every key in [Start, End) was deleted at
// SeqNum.
type Span struct {
	Start, End []byte
	SeqNum     base.SeqNum
}

// Block is a sorted, refcounted collection of spans copied out of a table's
// mmap region at Open, so it can outlive the reader that produced it.
type Block struct {
	spans    []Span
	refCount int32
}

// Decode parses a range-tombstone meta-block: a sequence of
// varint(len(start)) start varint(len(end)) end varint(seqNum), sorted by
// Start, tagging every span with the table's global sequence number when the
// on-disk encoding omits one (kept for symmetry with spec §4.6's mention
// that the block is "tagged with the table's global seqno").
func Decode(data []byte, globalSeqNum base.SeqNum) (*Block, error) {
	var spans []Span
	for len(data) > 0 {
		start, rest, err := readBytes(data)
		if err != nil {
			return nil, err
		}
		data = rest

		end, rest, err := readBytes(data)
		if err != nil {
			return nil, err
		}
		data = rest

		seq, n := binary.Uvarint(data)
		if n <= 0 {
			return nil, base.CorruptionErrorf("invalid range-tombstone block: bad seqnum")
		}
		data = data[n:]

		s := base.SeqNum(seq)
		if s == 0 {
			s = globalSeqNum
		}
		spans = append(spans, Span{Start: start, End: end, SeqNum: s})
	}
	sort.Slice(spans, func(i, j int) bool {
		return string(spans[i].Start) < string(spans[j].Start)
	})
	return &Block{spans: spans, refCount: 1}, nil
}

// Encode is the inverse of Decode, used by table-building test fixtures.
func Encode(spans []Span) []byte {
	var buf []byte
	for _, s := range spans {
		buf = binary.AppendUvarint(buf, uint64(len(s.Start)))
		buf = append(buf, s.Start...)
		buf = binary.AppendUvarint(buf, uint64(len(s.End)))
		buf = append(buf, s.End...)
		buf = binary.AppendUvarint(buf, uint64(s.SeqNum))
	}
	return buf
}

func readBytes(data []byte) (val, rest []byte, err error) {
	n, m := binary.Uvarint(data)
	if m <= 0 {
		return nil, nil, base.CorruptionErrorf("invalid range-tombstone block: bad length")
	}
	data = data[m:]
	if uint64(len(data)) < n {
		return nil, nil, base.CorruptionErrorf("invalid range-tombstone block: truncated")
	}
	return data[:n], data[n:], nil
}

// Ref increments the block's reference count. Call it whenever an Iterator
// retains a reference to the block beyond the call that produced it.
func (b *Block) Ref() { atomic.AddInt32(&b.refCount, 1) }

// Unref decrements the block's reference count.
func (b *Block) Unref() { atomic.AddInt32(&b.refCount, -1) }

// Iterator walks a Block's spans in Start order.
type Iterator struct {
	block *Block
	pos   int
}

// NewIterator returns a forward iterator over block, taking a reference to
// it so the block outlives the iterator even if the table reader that
// produced it is closed first.
func NewIterator(block *Block) *Iterator {
	block.Ref()
	return &Iterator{block: block, pos: -1}
}

// SeekGE positions the iterator at the first span whose Start is >= key.
func (it *Iterator) SeekGE(key []byte) {
	it.pos = sort.Search(len(it.block.spans), func(i int) bool {
		return string(it.block.spans[i].Start) >= string(key)
	})
}

// First positions the iterator at the first span.
func (it *Iterator) First() { it.pos = 0 }

// Valid reports whether the iterator is positioned at a span.
func (it *Iterator) Valid() bool {
	return it.pos >= 0 && it.pos < len(it.block.spans)
}

// Current returns the span the iterator is positioned at.
func (it *Iterator) Current() Span { return it.block.spans[it.pos] }

// Next advances the iterator.
func (it *Iterator) Next() { it.pos++ }

// Close releases the iterator's reference to its block.
func (it *Iterator) Close() error {
	it.block.Unref()
	return nil
}
