// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sstable

import (
	"bytes"
	"encoding/binary"
	"sort"

	"github.com/coredb/sstable/internal/base"
)

// partitionMeta records one segment's slice of the six concatenated byte
// ranges that make up a multi-segment table, per spec §4.2.
type partitionMeta struct {
	prefix []byte

	keyEnd          uint64
	valueEnd        uint64
	typeEnd         uint64
	commonPrefixEnd uint64
}

// SegmentIndex maps a full user key to the Segment that owns it, and orders
// segments for whole-table iteration. It is built once, at load time, from
// six concatenated byte ranges plus an offset table recording each segment's
// slice of them.
type SegmentIndex struct {
	segments   []*Segment
	partitions []partitionMeta
	prefixLen  int
	fixedWidth bool // true when prefixLen <= 8: compare prefixes as big-endian uint64
}

// offsetEntry is one row of the offset meta-block: cumulative end offsets
// into the concatenated index/store/type/common-prefix ranges for one
// segment, alongside that table's fixed partition-prefix length.
type offsetEntry struct {
	keyEnd, valueEnd, typeEnd, commonPrefixEnd uint64
	prefixLen                                  int
}

// decodeOffsets parses the offset meta-block: a sequence of
// varint(prefixLen) varint(keyEnd) varint(valueEnd) varint(typeEnd)
// varint(commonPrefixEnd), one row per segment in partition order.
func decodeOffsets(data []byte) ([]offsetEntry, error) {
	var entries []offsetEntry
	readUvarint := func() (uint64, error) {
		v, n := binary.Uvarint(data)
		if n <= 0 {
			return 0, base.CorruptionErrorf("invalid offset block")
		}
		data = data[n:]
		return v, nil
	}
	for len(data) > 0 {
		prefixLen, err := readUvarint()
		if err != nil {
			return nil, err
		}
		keyEnd, err := readUvarint()
		if err != nil {
			return nil, err
		}
		valueEnd, err := readUvarint()
		if err != nil {
			return nil, err
		}
		typeEnd, err := readUvarint()
		if err != nil {
			return nil, err
		}
		commonPrefixEnd, err := readUvarint()
		if err != nil {
			return nil, err
		}
		entries = append(entries, offsetEntry{
			keyEnd: keyEnd, valueEnd: valueEnd, typeEnd: typeEnd, commonPrefixEnd: commonPrefixEnd,
			prefixLen: int(prefixLen),
		})
	}
	return entries, nil
}

// EncodeOffsets is the inverse of decodeOffsets, used by table-building test
// fixtures.
func EncodeOffsets(entries []offsetEntry) []byte {
	var buf []byte
	for _, e := range entries {
		buf = binary.AppendUvarint(buf, uint64(e.prefixLen))
		buf = binary.AppendUvarint(buf, e.keyEnd)
		buf = binary.AppendUvarint(buf, e.valueEnd)
		buf = binary.AppendUvarint(buf, e.typeEnd)
		buf = binary.AppendUvarint(buf, e.commonPrefixEnd)
	}
	return buf
}

// NewSegmentIndex builds a SegmentIndex from the six concatenated byte
// ranges and the offset table locating each segment's slice of them.
func NewSegmentIndex(
	offsetData, indexData, storeDict, storeData, typeData, commonPrefixData []byte, cmp base.Compare,
) (*SegmentIndex, error) {
	entries, err := decodeOffsets(offsetData)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return &SegmentIndex{}, nil
	}

	si := &SegmentIndex{prefixLen: entries[0].prefixLen, fixedWidth: entries[0].prefixLen <= 8}

	var keyStart, valueStart, typeStart, commonPrefixStart uint64
	for _, e := range entries {
		idxBytes := indexData[keyStart:e.keyEnd]
		storeBytes := storeData[valueStart:e.valueEnd]
		typeBytes := typeData[typeStart:e.typeEnd]
		commonPrefix := commonPrefixData[commonPrefixStart:e.commonPrefixEnd]

		idx, err := DecodeIndex(idxBytes, cmp)
		if err != nil {
			return nil, err
		}
		store, err := loadBlobStore(storeBytes, storeDict)
		if err != nil {
			return nil, err
		}
		types, err := NewTypeVector(typeBytes, idx.Len())
		if err != nil {
			return nil, err
		}

		prefix := append([]byte(nil), commonPrefix[:min(len(commonPrefix), si.prefixLen)]...)
		seg := &Segment{
			PartitionPrefix: prefix,
			CommonPrefix:    nil,
			Index:           idx,
			Store:           store,
			Types:           types,
			Cmp:             cmp,
		}
		si.segments = append(si.segments, seg)
		si.partitions = append(si.partitions, partitionMeta{
			prefix: prefix, keyEnd: e.keyEnd, valueEnd: e.valueEnd, typeEnd: e.typeEnd, commonPrefixEnd: e.commonPrefixEnd,
		})

		keyStart, valueStart, typeStart, commonPrefixStart = e.keyEnd, e.valueEnd, e.typeEnd, e.commonPrefixEnd
	}
	return si, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// comparePrefix compares two partition prefixes of equal length L. When L<=8
// the comparison loads each into the low L bytes of a zeroed 8-byte buffer
// and compares as an unsigned big-endian integer; otherwise it compares
// bytewise. Both strategies agree for any L, so this single implementation
// covers every row of the resolution-strategy table in spec §4.2 except its
// linear-scan-for-small-partition-count performance optimization, which has
// no effect on the result.
func comparePrefix(a, b []byte, fixedWidth bool) int {
	if fixedWidth {
		var av, bv [8]byte
		copy(av[8-len(a):], a)
		copy(bv[8-len(b):], b)
		return bytes.Compare(av[:], bv[:])
	}
	return bytes.Compare(a, b)
}

// GetSegment returns the segment that owns key (truncated to the table's
// partition-prefix length), or ok=false if no partition covers it. When the
// key is not covered by any partition, it returns the nearest segment a
// caller should continue searching from: the first segment if key sorts
// before every partition, the last if it sorts after every partition.
func (si *SegmentIndex) GetSegment(key []byte) (idx int, seg *Segment, ok bool) {
	if len(si.partitions) == 0 {
		return 0, nil, false
	}
	trunc := key
	if len(trunc) > si.prefixLen {
		trunc = trunc[:si.prefixLen]
	}
	i := sort.Search(len(si.partitions), func(i int) bool {
		return comparePrefix(si.partitions[i].prefix, trunc, si.fixedWidth) >= 0
	})
	if i < len(si.partitions) && comparePrefix(si.partitions[i].prefix, trunc, si.fixedWidth) == 0 {
		return i, si.segments[i], true
	}
	if i == 0 {
		return 0, si.segments[0], false
	}
	return i - 1, si.segments[i-1], false
}

// Segment returns the i-th segment in partition order, or nil if out of
// range.
func (si *SegmentIndex) Segment(i int) *Segment {
	if i < 0 || i >= len(si.segments) {
		return nil
	}
	return si.segments[i]
}

// NumSegments returns the number of segments in the table.
func (si *SegmentIndex) NumSegments() int { return len(si.segments) }
