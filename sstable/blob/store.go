// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package blob implements the value store collaborator spec.md pins as
// external: random-access decompression of a value payload by record id. It
// is block-chunked the same way a table's index blocks are: each block
// independently compressed and checksummed via the sstable/block package,
// holding a contiguous run of records indexed by a block directory built at
// load time.
package blob

import (
	"encoding/binary"
	"sort"
	"sync"

	"github.com/coredb/sstable/internal/base"
	"github.com/coredb/sstable/sstable/block"
)

// blockMeta locates one physical block and the range of record ids it holds.
type blockMeta struct {
	firstRecordID uint64
	numRecords    uint64
	handle        block.Handle
}

// Store is a record-id-indexed, block-chunked value store.
type Store struct {
	data   []byte // the physical blocks following the directory; handle offsets are relative to it
	blocks []blockMeta

	scratch sync.Pool // []byte scratch reused across Get calls
}

// maxScratchRetain bounds the size of a decompression buffer this Store will
// keep in its pool; larger buffers are dropped so one oversized value does
// not pin memory for the life of the store.
const maxScratchRetain = 512 << 10

// Load constructs a Store over data: a self-describing region beginning with
// varint(len(directory)) followed by the directory itself — a sequence of
// varint(firstRecordID) varint(numRecords) block.Handle rows in ascending
// record-id order — followed by the physical value blocks the directory's
// handles point into. The shared dictionary block spec §6 pairs with the
// value region is accepted for interface compatibility but is not consulted:
// this store's codecs (none/snappy/zstd) are self-contained and need no
// external dictionary.
func Load(data []byte, _ []byte) (*Store, error) {
	dirLen, n := binary.Uvarint(data)
	if n <= 0 {
		return nil, base.CorruptionErrorf("invalid blob store: bad directory length")
	}
	data = data[n:]
	if uint64(len(data)) < dirLen {
		return nil, base.CorruptionErrorf("invalid blob store: truncated directory")
	}
	dirData := data[:dirLen]
	blockData := data[dirLen:]

	var blocks []blockMeta
	for len(dirData) > 0 {
		firstID, n := binary.Uvarint(dirData)
		if n <= 0 {
			return nil, base.CorruptionErrorf("invalid blob directory: bad first record id")
		}
		dirData = dirData[n:]

		numRecords, n := binary.Uvarint(dirData)
		if n <= 0 {
			return nil, base.CorruptionErrorf("invalid blob directory: bad record count")
		}
		dirData = dirData[n:]

		h, rest, err := block.DecodeHandle(dirData)
		if err != nil {
			return nil, err
		}
		dirData = rest

		blocks = append(blocks, blockMeta{firstRecordID: firstID, numRecords: numRecords, handle: h})
	}
	return &Store{data: blockData, blocks: blocks}, nil
}

// BuildStore assembles the self-describing region Load consumes from a set
// of already-built physical blocks (see EncodeBlock), each covering
// numRecords[i] consecutive record ids starting at firstRecordIDs[i]. It is
// a table-building test fixture helper.
func BuildStore(firstRecordIDs, numRecords []uint64, blocks [][]byte) []byte {
	var blockData []byte
	handles := make([]block.Handle, len(blocks))
	for i, b := range blocks {
		handles[i] = block.Handle{Offset: uint64(len(blockData)), Length: uint64(len(b))}
		blockData = append(blockData, b...)
	}
	var dir []byte
	for i := range firstRecordIDs {
		dir = binary.AppendUvarint(dir, firstRecordIDs[i])
		dir = binary.AppendUvarint(dir, numRecords[i])
		dir = block.EncodeHandle(dir, handles[i])
	}
	out := binary.AppendUvarint(nil, uint64(len(dir)))
	out = append(out, dir...)
	out = append(out, blockData...)
	return out
}

// EncodeBlock packs a run of records, each a raw payload, into a single
// compressed physical block, for use by table-building test fixtures.
func EncodeBlock(indicator block.CompressionIndicator, records [][]byte) ([]byte, error) {
	var raw []byte
	for _, rec := range records {
		raw = binary.AppendUvarint(raw, uint64(len(rec)))
		raw = append(raw, rec...)
	}
	return block.Build(indicator, raw)
}

// Get fetches the payload for recordID, decompressing its containing block
// if necessary. The returned slice is a copy owned by the caller; later Get
// calls do not modify it.
func (s *Store) Get(recordID uint64) ([]byte, error) {
	i := sort.Search(len(s.blocks), func(i int) bool {
		return s.blocks[i].firstRecordID > recordID
	}) - 1
	if i < 0 || recordID >= s.blocks[i].firstRecordID+s.blocks[i].numRecords {
		return nil, base.CorruptionErrorf("record id %d not covered by any blob block", recordID)
	}
	bm := s.blocks[i]

	h := bm.handle
	if h.Offset+h.Length > uint64(len(s.data)) {
		return nil, base.CorruptionErrorf("blob block handle out of bounds")
	}
	raw := s.data[h.Offset : h.Offset+h.Length]
	if len(raw) < block.TrailerLen {
		return nil, base.CorruptionErrorf("blob block shorter than trailer")
	}
	compressed := raw[:len(raw)-block.TrailerLen]
	var trailer block.Trailer
	copy(trailer[:], raw[len(raw)-block.TrailerLen:])
	indicator, err := block.ValidateTrailer(compressed, trailer)
	if err != nil {
		return nil, err
	}

	scratch, _ := s.scratch.Get().([]byte)
	decoded, err := block.DecompressInto(indicator, compressed, scratch)
	if err != nil {
		return nil, err
	}

	skip := recordID - bm.firstRecordID
	rest := decoded
	var payload []byte
	for j := uint64(0); j <= skip; j++ {
		plen, n := binary.Uvarint(rest)
		if n <= 0 {
			return nil, base.CorruptionErrorf("invalid blob block record framing")
		}
		rest = rest[n:]
		if uint64(len(rest)) < plen {
			return nil, base.CorruptionErrorf("blob block record truncated")
		}
		payload = rest[:plen]
		rest = rest[plen:]
	}
	// Copy the record out before the decompression buffer is returned to the
	// pool: another Get on this Store may reuse and overwrite it.
	payload = append([]byte(nil), payload...)

	// A NoCompressionIndicator block hands back compressed unchanged, a
	// slice straight into the store's read-only mmap region rather than a
	// buffer DecompressInto actually wrote to. Pooling it would let a later
	// Get pass it as dst to snappy/zstd decompression, which writes into
	// dst and would corrupt the mapping (or segfault).
	if indicator != block.NoCompressionIndicator && cap(decoded) <= maxScratchRetain {
		s.scratch.Put(decoded[:0])
	}
	return payload, nil
}
