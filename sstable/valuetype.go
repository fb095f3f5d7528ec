// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sstable

import (
	"encoding/binary"

	"github.com/coredb/sstable/internal/base"
)

// ValueType is the on-disk 2-bit tag recording how a record's payload should
// be interpreted.
type ValueType uint8

const (
	// ValueTypeZeroSeq marks a record holding a single value whose sequence
	// number is the table's global sequence number and whose kind is Set.
	ValueTypeZeroSeq ValueType = 0
	// ValueTypeValue marks a record holding a single value whose packed8 is
	// stored inline as the payload's first 8 bytes.
	ValueTypeValue ValueType = 1
	// ValueTypeDelete marks a record holding a single tombstone whose
	// packed8 is stored inline as the payload's first 8 bytes, with no
	// trailing user value.
	ValueTypeDelete ValueType = 2
	// ValueTypeMulti marks a record whose payload is a MultiValue frame
	// encoding one or more versions.
	ValueTypeMulti ValueType = 3
)

func (t ValueType) String() string {
	switch t {
	case ValueTypeZeroSeq:
		return "zero-seq"
	case ValueTypeValue:
		return "value"
	case ValueTypeDelete:
		return "delete"
	case ValueTypeMulti:
		return "multi"
	default:
		return "unknown"
	}
}

// TypeVector is the 2-bit-per-record type tag array read from the optional
// value-type meta-block. A nil/empty vector means every record decodes as
// ValueTypeZeroSeq.
type TypeVector struct {
	bits     []byte
	numKeys  int
}

// NewTypeVector wraps a raw 2-bit-per-record bitfield. numKeys must equal the
// segment's record count; bits must be at least ceil(2*numKeys/8) bytes.
func NewTypeVector(bits []byte, numKeys int) (*TypeVector, error) {
	if len(bits) == 0 {
		return &TypeVector{numKeys: numKeys}, nil
	}
	want := (numKeys*2 + 7) / 8
	if len(bits) < want {
		return nil, base.CorruptionErrorf("value-type block too short: have %d bytes, want %d", len(bits), want)
	}
	return &TypeVector{bits: bits, numKeys: numKeys}, nil
}

// Get returns the ValueType for record i, or ValueTypeZeroSeq if the vector
// is empty.
func (tv *TypeVector) Get(i int) ValueType {
	if tv == nil || len(tv.bits) == 0 {
		return ValueTypeZeroSeq
	}
	byteIdx := (i * 2) / 8
	shift := uint((i * 2) % 8)
	return ValueType((tv.bits[byteIdx] >> shift) & 0x3)
}

// EncodeTypeVector packs a slice of per-record ValueTypes into the on-disk
// bitfield representation, for use by table-building test fixtures.
func EncodeTypeVector(types []ValueType) []byte {
	if len(types) == 0 {
		return nil
	}
	out := make([]byte, (len(types)*2+7)/8)
	for i, t := range types {
		byteIdx := (i * 2) / 8
		shift := uint((i * 2) % 8)
		out[byteIdx] |= byte(t&0x3) << shift
	}
	return out
}

// decodePacked8 reads a little-endian packed (seq, kind) word: the same bit
// layout as base.InternalKeyTrailer, reused here for the per-version words
// embedded within a record's payload.
func decodePacked8(b []byte) base.InternalKeyTrailer {
	return base.InternalKeyTrailer(binary.LittleEndian.Uint64(b[:8]))
}

// encodePacked8 writes trailer's packed (seq, kind) word to an 8-byte array.
func encodePacked8(trailer base.InternalKeyTrailer) [8]byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(trailer))
	return buf
}

// DecodeMultiValue parses a MultiValue frame: varint(n) followed by n
// records, each varint(len(value)) || packed8 (8 bytes) || value, newest
// version (index 0) first.
func DecodeMultiValue(payload []byte) ([][]byte, error) {
	n, m := binary.Uvarint(payload)
	if m <= 0 {
		return nil, base.CorruptionErrorf("invalid multi-value record count")
	}
	payload = payload[m:]
	if n == 0 {
		return nil, base.CorruptionErrorf("multi-value frame with zero versions")
	}
	records := make([][]byte, 0, n)
	for i := uint64(0); i < n; i++ {
		vlen, m := binary.Uvarint(payload)
		if m <= 0 {
			return nil, base.CorruptionErrorf("invalid multi-value record length")
		}
		payload = payload[m:]
		recLen := 8 + int(vlen)
		if len(payload) < recLen {
			return nil, base.CorruptionErrorf("multi-value frame truncated")
		}
		records = append(records, payload[:recLen])
		payload = payload[recLen:]
	}
	return records, nil
}

// EncodeMultiValue builds a MultiValue frame from a set of records, each
// already in packed8(8 bytes)||value form, newest first. It is a test/build
// helper mirroring the on-disk layout DecodeMultiValue consumes.
func EncodeMultiValue(records [][]byte) []byte {
	buf := binary.AppendUvarint(nil, uint64(len(records)))
	for _, rec := range records {
		valueLen := len(rec) - 8
		buf = binary.AppendUvarint(buf, uint64(valueLen))
		buf = append(buf, rec...)
	}
	return buf
}
