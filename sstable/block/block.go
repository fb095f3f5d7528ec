// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package block defines the physical block format shared by every section of
// a table: a handle locating a byte range in the file, a trailer recording
// how that range is compressed and checksummed, and the compression codecs
// themselves.
package block

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/coredb/sstable/internal/base"
)

// Handle is an offset and length within the table file.
type Handle struct {
	Offset uint64
	Length uint64
}

// DecodeHandle decodes a Handle from its varint-encoded form and returns the
// remaining bytes.
func DecodeHandle(src []byte) (Handle, []byte, error) {
	offset, n := binary.Uvarint(src)
	if n <= 0 {
		return Handle{}, nil, base.CorruptionErrorf("invalid block handle offset")
	}
	src = src[n:]
	length, n := binary.Uvarint(src)
	if n <= 0 {
		return Handle{}, nil, base.CorruptionErrorf("invalid block handle length")
	}
	return Handle{Offset: offset, Length: length}, src[n:], nil
}

// EncodeHandle appends the varint encoding of h to dst.
func EncodeHandle(dst []byte, h Handle) []byte {
	dst = binary.AppendUvarint(dst, h.Offset)
	dst = binary.AppendUvarint(dst, h.Length)
	return dst
}

// TrailerLen is the number of bytes in a block's trailer: one byte
// identifying the compression codec, followed by a 4-byte little-endian
// xxhash64 checksum (truncated to 32 bits) of the compressed block contents
// and the compression-indicator byte itself.
const TrailerLen = 5

// Trailer is the on-disk trailer appended after every physical block.
type Trailer [TrailerLen]byte

// MakeTrailer constructs a Trailer for a block compressed with the given
// indicator, computing the checksum over the compressed payload plus the
// indicator byte.
func MakeTrailer(compressed []byte, indicator CompressionIndicator) Trailer {
	var t Trailer
	t[0] = byte(indicator)
	checksum := ChecksumBlock(compressed, indicator)
	binary.LittleEndian.PutUint32(t[1:], checksum)
	return t
}

// ChecksumBlock computes the checksum used to validate a physical block: an
// xxhash64 digest of the compressed contents and the trailing indicator
// byte, truncated to 32 bits.
func ChecksumBlock(compressed []byte, indicator CompressionIndicator) uint32 {
	d := xxhash.New()
	d.Write(compressed)
	d.Write([]byte{byte(indicator)})
	return uint32(d.Sum64())
}

// Build compresses raw with indicator and appends its trailer, producing the
// physical block bytes expected by ValidateTrailer/DecompressInto. It is a
// table-building test helper; production code only ever reads blocks built
// this way, never writes them.
func Build(indicator CompressionIndicator, raw []byte) ([]byte, error) {
	compressed, err := Compress(indicator, raw)
	if err != nil {
		return nil, err
	}
	t := MakeTrailer(compressed, indicator)
	return append(append([]byte(nil), compressed...), t[:]...), nil
}

// ValidateTrailer checks that a block's trailer is well-formed and that its
// checksum matches the compressed payload. It returns the codec the block
// was written with.
func ValidateTrailer(compressed []byte, t Trailer) (CompressionIndicator, error) {
	indicator := CompressionIndicator(t[0])
	want := binary.LittleEndian.Uint32(t[1:])
	got := ChecksumBlock(compressed, indicator)
	if got != want {
		return 0, base.CorruptionErrorf("block checksum mismatch: computed 0x%x, on-disk 0x%x", got, want)
	}
	return indicator, nil
}
