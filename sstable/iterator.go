// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sstable

import (
	"bytes"

	"github.com/coredb/sstable/internal/base"
)

// PinnedItersMgr is the caller-provided capability spec §4.3/§9 describes:
// one observable predicate and no methods the iterator calls back into. When
// attached and PinningEnabled reports true, the iterator retains rather than
// reuses its materialized-key buffer across positioning calls, so byte
// slices previously returned from Key/Value stay valid until the manager is
// detached.
type PinnedItersMgr interface {
	PinningEnabled() bool
}

// Iterator is a bidirectional cursor over one segment's internal keys, in
// the segment's index order, expanding multi-version records into one
// iterator position per visible version. It implements the state machine of
// spec §4.3, generalized (per spec §9's design note) so the same type serves
// every {direction, key-transform} combination TableReader.NewIterator
// dispatches among; direction never affects this type's own stepping logic
// because the underlying Index is already sorted in the table's order.
type Iterator struct {
	seg         *Segment
	globalSeqNum base.SeqNum
	uint64Cmp   bool

	pos        int // position in seg.Index, or -1/Len() when invalid
	records    [][]byte
	versionIdx int

	err error

	keyBuf  []byte
	pinMgr  PinnedItersMgr
	pinned  [][]byte
}

// NewIterator constructs an Iterator over seg.
func NewIterator(seg *Segment, globalSeqNum base.SeqNum, uint64Cmp bool) *Iterator {
	return &Iterator{seg: seg, globalSeqNum: globalSeqNum, uint64Cmp: uint64Cmp, pos: -1}
}

// SetPinnedItersMgr attaches or detaches a pinning manager. Detaching drops
// every buffer retained on its behalf.
func (it *Iterator) SetPinnedItersMgr(mgr PinnedItersMgr) {
	it.pinMgr = mgr
	if mgr == nil {
		it.pinned = nil
	}
}

// Valid reports whether the iterator is positioned at a version.
func (it *Iterator) Valid() bool {
	return it.err == nil && it.pos >= 0 && it.pos < it.seg.Index.Len() && it.versionIdx < len(it.records)
}

// Status returns the error, if any, that made the iterator invalid.
func (it *Iterator) Status() error { return it.err }

// SeekToFirst positions the iterator at the lexicographically-first key in
// the segment's order, at its newest version.
func (it *Iterator) SeekToFirst() {
	it.err = nil
	if it.seg.Index.Len() == 0 {
		it.pos = -1
		return
	}
	it.pos = 0
	it.decodeAt(0)
}

// SeekToLast positions the iterator at the last key, at its oldest version.
func (it *Iterator) SeekToLast() {
	it.err = nil
	n := it.seg.Index.Len()
	if n == 0 {
		it.pos = -1
		return
	}
	it.pos = n - 1
	it.decodeAt(n - 1)
	if len(it.records) > 0 {
		it.versionIdx = len(it.records) - 1
	}
}

// stepForward advances the underlying index cursor by one record,
// materializing its newest version, or invalidates the iterator if there is
// no next record. This is the "index cursor Next" spec §4.3 refers to,
// distinct from the public Next below which also walks multi-version lists.
func (it *Iterator) stepForward() {
	it.pos++
	if it.pos >= it.seg.Index.Len() {
		it.pos = it.seg.Index.Len()
		it.records = nil
		return
	}
	it.decodeAt(it.pos)
}

func (it *Iterator) stepBackward() {
	it.pos--
	if it.pos < 0 {
		it.records = nil
		return
	}
	it.decodeAt(it.pos)
	if len(it.records) > 0 {
		it.versionIdx = len(it.records) - 1
	}
}

// decodeAt fetches and decodes the record at index position pos, leaving the
// iterator positioned at its newest version (versionIdx 0).
func (it *Iterator) decodeAt(pos int) {
	_, recordID := it.seg.Index.At(pos)
	payload, err := it.seg.Store.Get(recordID)
	if err != nil {
		it.err = base.CorruptionErrorf("fetching record %d: %s", recordID, err)
		it.records = nil
		return
	}
	records, err := recordsFromPayload(it.seg.Types.Get(int(recordID)), it.globalSeqNum, payload)
	if err != nil {
		it.err = err
		it.records = nil
		return
	}
	it.records = records
	it.versionIdx = 0
}

// recordsFromPayload normalizes every ValueType into a uniform list of
// packed8(8 bytes)||value records, newest first, so the iterator's
// version-walking logic does not need to special-case the encoding.
func recordsFromPayload(vt ValueType, globalSeqNum base.SeqNum, payload []byte) ([][]byte, error) {
	switch vt {
	case ValueTypeZeroSeq:
		trailer := base.MakeTrailer(globalSeqNum, base.InternalKeyKindSet)
		packed := encodePacked8(trailer)
		rec := append(append([]byte(nil), packed[:]...), payload...)
		return [][]byte{rec}, nil
	case ValueTypeValue:
		if len(payload) < 8 {
			return nil, base.CorruptionErrorf("value record shorter than packed header")
		}
		return [][]byte{payload}, nil
	case ValueTypeDelete:
		if len(payload) < 8 {
			return nil, base.CorruptionErrorf("delete record shorter than packed header")
		}
		return [][]byte{payload[:8]}, nil
	case ValueTypeMulti:
		return DecodeMultiValue(payload)
	default:
		return nil, base.ErrAborted
	}
}

// Seek positions the iterator per the branch logic of spec §4.3.
func (it *Iterator) Seek(target base.InternalKey) {
	it.err = nil
	u := target.UserKey
	if it.uint64Cmp {
		u = byteSwap8Copy(u)
	}
	// The index stores keys stripped of both the segment's partition prefix
	// (set only for a multi-segment table's per-partition segments) and its
	// common prefix; a seek target must be compared against their
	// concatenation, the same combined prefix Key() reattaches.
	cp := it.combinedPrefix()
	clen := sharedPrefixLen(u, cp)

	if clen < len(cp) {
		if len(u) == clen {
			it.SeekToFirst()
			return
		}
		if u[clen] < cp[clen] {
			it.SeekToFirst()
		} else {
			it.SeekToLast()
			it.stepForward()
		}
		return
	}

	suffix := u[clen:]
	pos, exact := it.seg.Index.Seek(suffix)
	if pos >= it.seg.Index.Len() {
		it.pos = it.seg.Index.Len()
		it.records = nil
		return
	}
	it.pos = pos
	it.decodeAt(pos)
	if exact {
		it.seekVersionOrNext(target.SeqNum())
	}
}

// SeekForPrev is the reverse-order counterpart of Seek, added to satisfy the
// public surface spec §6 names but §4.3 does not separately specify. It is
// grounded on a SeekLT-style walk: find the first key >= target, and if that
// is not an exact match, step to the previous record so the iterator lands
// on the largest key <= target.
func (it *Iterator) SeekForPrev(target base.InternalKey) {
	u := target.UserKey
	if it.uint64Cmp {
		u = byteSwap8Copy(u)
	}
	it.Seek(target)
	if it.Valid() {
		key, _ := it.seg.Index.At(it.pos)
		full := append(append([]byte(nil), it.seg.PartitionPrefix...), append(append([]byte(nil), it.seg.CommonPrefix...), key...)...)
		if bytes.Equal(full, u) {
			return
		}
	}
	it.stepBackward()
	if len(it.records) > 0 {
		it.seekVersionOrPrev(base.SeqNumMax)
	}
}

// seekVersionOrNext walks the current record's version list choosing the
// first whose sequence number is <= bound; if none qualifies it steps to the
// next record.
func (it *Iterator) seekVersionOrNext(bound base.SeqNum) {
	for i, rec := range it.records {
		if decodePacked8(rec).SeqNum() <= bound {
			it.versionIdx = i
			return
		}
	}
	it.stepForward()
}

func (it *Iterator) seekVersionOrPrev(bound base.SeqNum) {
	for i := len(it.records) - 1; i >= 0; i-- {
		if decodePacked8(it.records[i]).SeqNum() <= bound {
			it.versionIdx = i
			return
		}
	}
	it.stepBackward()
}

// Next advances to the next visible version: the next-older version of the
// current key if one remains, otherwise the newest version of the next key.
func (it *Iterator) Next() {
	if it.versionIdx+1 < len(it.records) {
		it.versionIdx++
		return
	}
	it.stepForward()
}

// Prev is the symmetric counterpart of Next.
func (it *Iterator) Prev() {
	if it.versionIdx-1 >= 0 {
		it.versionIdx--
		return
	}
	it.stepBackward()
}

// Key returns the materialized internal key at the iterator's current
// position. The returned UserKey is valid until the next positioning call,
// unless a pinning manager is attached and enabled.
func (it *Iterator) Key() base.InternalKey {
	indexKey, _ := it.seg.Index.At(it.pos)
	trailer := decodePacked8(it.records[it.versionIdx])

	size := len(it.seg.PartitionPrefix) + len(it.seg.CommonPrefix) + len(indexKey)
	if it.pinMgr != nil && it.pinMgr.PinningEnabled() && it.keyBuf != nil {
		it.pinned = append(it.pinned, it.keyBuf)
		it.keyBuf = nil
	}
	if cap(it.keyBuf) < size {
		it.keyBuf = make([]byte, size)
	}
	buf := it.keyBuf[:size]
	n := copy(buf, it.seg.PartitionPrefix)
	n += copy(buf[n:], it.seg.CommonPrefix)
	copy(buf[n:], indexKey)

	if it.uint64Cmp {
		buf = byteSwap8Copy(buf)
	}
	return base.InternalKey{UserKey: buf, Trailer: trailer}
}

// Value returns the user value at the iterator's current position.
func (it *Iterator) Value() []byte {
	return it.records[it.versionIdx][8:]
}

// Close releases the iterator.
func (it *Iterator) Close() error {
	it.seg = nil
	it.records = nil
	it.pinned = nil
	return nil
}

// combinedPrefix returns the segment's partition prefix concatenated with its
// common prefix, the full span of leading bytes the index's keys are
// stripped of.
func (it *Iterator) combinedPrefix() []byte {
	if len(it.seg.PartitionPrefix) == 0 {
		return it.seg.CommonPrefix
	}
	return append(append([]byte(nil), it.seg.PartitionPrefix...), it.seg.CommonPrefix...)
}

// sharedPrefixLen returns the length of the longest common prefix of a and
// b.
func sharedPrefixLen(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}
