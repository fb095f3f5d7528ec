// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sstable

import (
	"encoding/binary"

	"github.com/coredb/sstable/internal/base"
	"github.com/coredb/sstable/sstable/block"
)

// Named meta-blocks, per spec §6. The framing layer that locates these
// blocks within a file (the footer and metaindex below) is itself a concrete
// stand-in for the "external" factory/registry collaborator spec.md treats
// as out of scope; only the set of names and their meaning are pinned by the
// specification.
const (
	metaPropertiesName = "coredb.properties"
	metaDictionaryName = "coredb.dictionary"
	metaIndexName      = "coredb.index"
	metaValueTypeName  = "coredb.value-type"
	metaCommonPrefix   = "coredb.common-prefix"
	metaRangeTombstone = "coredb.range-tombstone"
	metaLicenseName    = "coredb.license"
	metaOffsetName     = "coredb.offset"
)

// footerMagic identifies the trailing footer. It is never reordered.
var footerMagic = [8]byte{'c', 'o', 'r', 'e', 'd', 'b', 's', 't'}

// footerLen is the fixed size of the trailing footer: a metaindex handle (two
// varint-free fixed uint64s, 16 bytes) followed by the 8-byte magic.
const footerLen = 24

// footer is the fixed-size trailer at the end of every table file, pinning
// the location of the metaindex block that in turn locates every other named
// meta-block.
type footer struct {
	metaIndexHandle block.Handle
}

// readFooter parses the trailing footerLen bytes of a file.
func readFooter(fileData []byte) (footer, error) {
	if len(fileData) < footerLen {
		return footer{}, base.CorruptionErrorf("file too short to contain a footer")
	}
	tail := fileData[len(fileData)-footerLen:]
	if string(tail[16:]) != string(footerMagic[:]) {
		return footer{}, base.CorruptionErrorf("invalid footer magic")
	}
	return footer{
		metaIndexHandle: block.Handle{
			Offset: binary.LittleEndian.Uint64(tail[0:8]),
			Length: binary.LittleEndian.Uint64(tail[8:16]),
		},
	}, nil
}

// encodeFooter is the inverse of readFooter, used by table-building test
// fixtures.
func encodeFooter(metaIndexHandle block.Handle) []byte {
	buf := make([]byte, footerLen)
	binary.LittleEndian.PutUint64(buf[0:8], metaIndexHandle.Offset)
	binary.LittleEndian.PutUint64(buf[8:16], metaIndexHandle.Length)
	copy(buf[16:], footerMagic[:])
	return buf
}

// decodeMetaIndex parses the metaindex block: a sequence of
// varint(len(name)) name block.Handle, running to the end of data.
func decodeMetaIndex(data []byte) (map[string]block.Handle, error) {
	index := make(map[string]block.Handle)
	for len(data) > 0 {
		nlen, n := binary.Uvarint(data)
		if n <= 0 {
			return nil, base.CorruptionErrorf("invalid metaindex block: bad name length")
		}
		data = data[n:]
		if uint64(len(data)) < nlen {
			return nil, base.CorruptionErrorf("invalid metaindex block: truncated name")
		}
		name := string(data[:nlen])
		data = data[nlen:]

		h, rest, err := block.DecodeHandle(data)
		if err != nil {
			return nil, err
		}
		data = rest
		index[name] = h
	}
	return index, nil
}

// encodeMetaIndex is the inverse of decodeMetaIndex, used by table-building
// test fixtures.
func encodeMetaIndex(entries map[string]block.Handle) []byte {
	var buf []byte
	for name, h := range entries {
		buf = binary.AppendUvarint(buf, uint64(len(name)))
		buf = append(buf, name...)
		buf = block.EncodeHandle(buf, h)
	}
	return buf
}

// readBlock reads, decompresses and validates the physical block at handle h
// within fileData. Physical (non-raw-value-region) blocks are always
// wrapped in a compressed-payload-plus-trailer frame, so every named
// meta-block goes through this helper.
func readBlock(fileData []byte, h block.Handle) ([]byte, error) {
	if h.Offset+h.Length > uint64(len(fileData)) {
		return nil, base.CorruptionErrorf("block handle out of file bounds")
	}
	raw := fileData[h.Offset : h.Offset+h.Length]
	if len(raw) < block.TrailerLen {
		return nil, base.CorruptionErrorf("block shorter than trailer")
	}
	compressed := raw[:len(raw)-block.TrailerLen]
	var trailer block.Trailer
	copy(trailer[:], raw[len(raw)-block.TrailerLen:])
	indicator, err := block.ValidateTrailer(compressed, trailer)
	if err != nil {
		return nil, err
	}
	return block.DecompressInto(indicator, compressed, nil)
}
