// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sstable

import "github.com/coredb/sstable/internal/base"

// MultiIterator implements the same contract as Iterator but threads across
// the segments of a SegmentIndex, per spec §4.4.
type MultiIterator struct {
	si         *SegmentIndex
	inner      *Iterator
	segIdx     int
	globalSeqNum base.SeqNum
	uint64Cmp  bool
}

// NewMultiIterator constructs a MultiIterator over si.
func NewMultiIterator(si *SegmentIndex, globalSeqNum base.SeqNum, uint64Cmp bool) *MultiIterator {
	return &MultiIterator{si: si, globalSeqNum: globalSeqNum, uint64Cmp: uint64Cmp, segIdx: -1}
}

func (mi *MultiIterator) setSegment(i int) {
	mi.segIdx = i
	mi.inner = NewIterator(mi.si.Segment(i), mi.globalSeqNum, mi.uint64Cmp)
}

// SeekToFirst positions the iterator at the table's first key, rolling
// forward past any empty leading segments.
func (mi *MultiIterator) SeekToFirst() {
	for i := 0; i < mi.si.NumSegments(); i++ {
		mi.setSegment(i)
		mi.inner.SeekToFirst()
		if mi.inner.Valid() {
			return
		}
	}
	mi.inner = nil
}

// SeekToLast positions the iterator at the table's last key, rolling
// backward past any empty trailing segments.
func (mi *MultiIterator) SeekToLast() {
	for i := mi.si.NumSegments() - 1; i >= 0; i-- {
		mi.setSegment(i)
		mi.inner.SeekToLast()
		if mi.inner.Valid() {
			return
		}
	}
	mi.inner = nil
}

// Seek locates target's owning segment via the SegmentIndex, rebuilds the
// inner cursor if the segment changed, and seeks within it. If the result is
// invalid, it rolls to the next segment's first key, per spec §4.4.
func (mi *MultiIterator) Seek(target base.InternalKey) {
	segIdx, seg, _ := mi.si.GetSegment(target.UserKey)
	if seg == nil {
		mi.inner = nil
		return
	}
	if segIdx != mi.segIdx || mi.inner == nil {
		mi.setSegment(segIdx)
	}
	mi.inner.Seek(target)
	if mi.inner.Valid() {
		return
	}
	for i := segIdx + 1; i < mi.si.NumSegments(); i++ {
		mi.setSegment(i)
		mi.inner.SeekToFirst()
		if mi.inner.Valid() {
			return
		}
	}
	mi.inner = nil
}

// SeekForPrev is the reverse-order counterpart of Seek: it rolls to the
// previous segment's last key when the local seek misses.
func (mi *MultiIterator) SeekForPrev(target base.InternalKey) {
	segIdx, seg, _ := mi.si.GetSegment(target.UserKey)
	if seg == nil {
		mi.inner = nil
		return
	}
	if segIdx != mi.segIdx || mi.inner == nil {
		mi.setSegment(segIdx)
	}
	mi.inner.SeekForPrev(target)
	if mi.inner.Valid() {
		return
	}
	for i := segIdx - 1; i >= 0; i-- {
		mi.setSegment(i)
		mi.inner.SeekToLast()
		if mi.inner.Valid() {
			return
		}
	}
	mi.inner = nil
}

// Next steps the inner cursor, advancing to the next segment's first key
// when the current segment is exhausted.
func (mi *MultiIterator) Next() {
	if mi.inner == nil {
		return
	}
	mi.inner.Next()
	for !mi.inner.Valid() {
		if mi.segIdx+1 >= mi.si.NumSegments() {
			mi.inner = nil
			return
		}
		mi.setSegment(mi.segIdx + 1)
		mi.inner.SeekToFirst()
	}
}

// Prev is the symmetric counterpart of Next.
func (mi *MultiIterator) Prev() {
	if mi.inner == nil {
		return
	}
	mi.inner.Prev()
	for !mi.inner.Valid() {
		if mi.segIdx-1 < 0 {
			mi.inner = nil
			return
		}
		mi.setSegment(mi.segIdx - 1)
		mi.inner.SeekToLast()
	}
}

// Valid reports whether the iterator is positioned at a version.
func (mi *MultiIterator) Valid() bool { return mi.inner != nil && mi.inner.Valid() }

// Status returns the error, if any, that made the iterator invalid.
func (mi *MultiIterator) Status() error {
	if mi.inner == nil {
		return nil
	}
	return mi.inner.Status()
}

// Key returns the materialized internal key at the current position.
func (mi *MultiIterator) Key() base.InternalKey { return mi.inner.Key() }

// Value returns the user value at the current position.
func (mi *MultiIterator) Value() []byte { return mi.inner.Value() }

// SetPinnedItersMgr attaches or detaches a pinning manager on the active
// inner iterator.
func (mi *MultiIterator) SetPinnedItersMgr(mgr PinnedItersMgr) {
	if mi.inner != nil {
		mi.inner.SetPinnedItersMgr(mgr)
	}
}

// Close releases the iterator.
func (mi *MultiIterator) Close() error {
	if mi.inner != nil {
		return mi.inner.Close()
	}
	return nil
}
