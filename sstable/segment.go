// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sstable

import (
	"bytes"

	"github.com/coredb/sstable/internal/base"
	"github.com/coredb/sstable/sstable/blob"
)

// GetFlags modifies Segment.Get and Reader.Get behavior.
type GetFlags struct {
	// Uint64Comparator indicates the table's user keys are fixed-width
	// 8-byte big-endian integers that callers present in host-endian form;
	// the user key is byte-swapped before being compared against the index.
	Uint64Comparator bool
}

// VisitFunc receives one visible version of a key during Get. It returns
// false to stop further versions of the same key from being visited (used to
// halt a merge chain once a non-merge value is reached).
type VisitFunc func(userKey []byte, seqNum base.SeqNum, kind base.InternalKeyKind, value []byte) bool

// Segment binds one index/blob-store/type-vector/common-prefix/optional
// partition-prefix unit: the unit spec §3 calls a Segment and the substrate
// both Get and the table iterators operate on.
type Segment struct {
	PartitionPrefix []byte
	CommonPrefix    []byte
	Index           *Index
	Store           *blob.Store
	Types           *TypeVector
	Cmp             base.Compare
}

// Get resolves internalKey against the segment, invoking visit for each
// visible version newest-first, stopping when visit returns false or no
// further versions exist. It follows the seven steps of spec §4.1.
func (s *Segment) Get(globalSeqNum base.SeqNum, internalKey []byte, visit VisitFunc, flags GetFlags) error {
	if len(internalKey) < base.InternalTrailerLen {
		return base.InvalidArgumentErrorf("internal key shorter than trailer: %d bytes", len(internalKey))
	}
	ik := base.DecodeInternalKey(internalKey)
	userKey := ik.UserKey
	seqBound := ik.SeqNum()

	if flags.Uint64Comparator {
		userKey = byteSwap8Copy(userKey)
	}

	if !bytes.HasPrefix(userKey, s.CommonPrefix) {
		return nil
	}
	skip := len(s.PartitionPrefix) + len(s.CommonPrefix)
	if skip > len(userKey) {
		return nil
	}
	suffix := userKey[skip:]

	recordID, ok := s.Index.Find(suffix)
	if !ok {
		return nil
	}

	payload, err := s.Store.Get(recordID)
	if err != nil {
		return base.CorruptionErrorf("fetching record %d: %s", recordID, err)
	}

	return decodeAndVisit(s.Types.Get(int(recordID)), userKey, globalSeqNum, payload, seqBound, visit)
}

// decodeAndVisit dispatches a record's payload per its ValueType, invoking
// visit for every version whose embedded sequence number is <= seqBound.
func decodeAndVisit(
	vt ValueType, userKey []byte, globalSeqNum base.SeqNum, payload []byte, seqBound base.SeqNum, visit VisitFunc,
) error {
	switch vt {
	case ValueTypeZeroSeq:
		visit(userKey, globalSeqNum, base.InternalKeyKindSet, payload)
		return nil

	case ValueTypeValue:
		if len(payload) < 8 {
			return base.CorruptionErrorf("value record shorter than packed header")
		}
		trailer := decodePacked8(payload)
		if trailer.SeqNum() <= seqBound {
			visit(userKey, trailer.SeqNum(), trailer.Kind(), payload[8:])
		}
		return nil

	case ValueTypeDelete:
		if len(payload) < 8 {
			return base.CorruptionErrorf("delete record shorter than packed header")
		}
		trailer := decodePacked8(payload)
		if trailer.SeqNum() <= seqBound {
			visit(userKey, trailer.SeqNum(), base.InternalKeyKindDelete, nil)
		}
		return nil

	case ValueTypeMulti:
		records, err := DecodeMultiValue(payload)
		if err != nil {
			return err
		}
		for _, rec := range records {
			trailer := decodePacked8(rec)
			if trailer.SeqNum() > seqBound {
				continue
			}
			if !visit(userKey, trailer.SeqNum(), trailer.Kind(), rec[8:]) {
				break
			}
		}
		return nil

	default:
		return base.ErrAborted
	}
}

// byteSwap8Copy returns a reversed copy of an 8-byte key, used to translate
// between the host-endian form callers of a fixed-width-uint64 table use and
// the big-endian form the table stores keys in.
func byteSwap8Copy(key []byte) []byte {
	if len(key) != 8 {
		return key
	}
	out := make([]byte, 8)
	for i := 0; i < 8; i++ {
		out[i] = key[7-i]
	}
	return out
}
