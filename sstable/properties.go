// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sstable

import (
	"encoding/binary"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/coredb/sstable/internal/base"
)

// Well-known property keys, recorded alongside arbitrary user properties in
// the properties meta-block.
const (
	propNumEntries         = "num_entries"
	propDataSize           = "data_size"
	propIndexSize          = "index_size"
	propUserComparatorName = "user_comparator"
	propExternalSSTVersion = "external_sst.version"
	propExternalSSTSeqNum  = "external_sst.global_seqno"
)

// TableProperties reports table-wide statistics and metadata read from the
// properties meta-block.
type TableProperties struct {
	NumEntries         uint64
	DataSize           uint64
	IndexSize          uint64
	UserComparatorName string
	// UserProperties holds every key/value pair from the properties block,
	// including the well-known ones above, as written.
	UserProperties map[string]string
}

// String renders the properties for diagnostic and CLI use.
func (p *TableProperties) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "num-entries: %d\n", p.NumEntries)
	fmt.Fprintf(&b, "data-size: %d\n", p.DataSize)
	fmt.Fprintf(&b, "index-size: %d\n", p.IndexSize)
	fmt.Fprintf(&b, "comparator: %s\n", p.UserComparatorName)
	keys := make([]string, 0, len(p.UserProperties))
	for k := range p.UserProperties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\n", k, p.UserProperties[k])
	}
	return b.String()
}

// DecodeProperties parses the properties meta-block: a sequence of
// varint(len(key)) key varint(len(value)) value pairs running to the end of
// data.
func DecodeProperties(data []byte) (*TableProperties, error) {
	props := make(map[string]string)
	for len(data) > 0 {
		klen, n := binary.Uvarint(data)
		if n <= 0 {
			return nil, base.CorruptionErrorf("invalid properties block: bad key length")
		}
		data = data[n:]
		if uint64(len(data)) < klen {
			return nil, base.CorruptionErrorf("invalid properties block: truncated key")
		}
		key := string(data[:klen])
		data = data[klen:]

		vlen, n := binary.Uvarint(data)
		if n <= 0 {
			return nil, base.CorruptionErrorf("invalid properties block: bad value length")
		}
		data = data[n:]
		if uint64(len(data)) < vlen {
			return nil, base.CorruptionErrorf("invalid properties block: truncated value")
		}
		props[key] = string(data[:vlen])
		data = data[vlen:]
	}

	p := &TableProperties{UserProperties: props}
	p.NumEntries, _ = strconv.ParseUint(props[propNumEntries], 10, 64)
	p.DataSize, _ = strconv.ParseUint(props[propDataSize], 10, 64)
	p.IndexSize, _ = strconv.ParseUint(props[propIndexSize], 10, 64)
	p.UserComparatorName = props[propUserComparatorName]
	return p, nil
}

// EncodeProperties is the inverse of DecodeProperties, used by table-building
// test fixtures.
func EncodeProperties(props map[string]string) []byte {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var buf []byte
	for _, k := range keys {
		v := props[k]
		buf = binary.AppendUvarint(buf, uint64(len(k)))
		buf = append(buf, k...)
		buf = binary.AppendUvarint(buf, uint64(len(v)))
		buf = append(buf, v...)
	}
	return buf
}

// globalSeqNum derives the table's global sequence number from its
// properties, per the rule in spec §3: a version>=2 file with a recorded
// sequence number uses it; otherwise the reader coerces the disabled
// sentinel to 0. A version<2 file carrying a sequence number is malformed
// but tolerated, logged as a warning.
func globalSeqNum(props *TableProperties, logger base.Logger) base.SeqNum {
	const disabledSeqNum = ^uint64(0)

	versionStr, hasVersion := props.UserProperties[propExternalSSTVersion]
	seqStr, hasSeq := props.UserProperties[propExternalSSTSeqNum]
	if !hasSeq {
		return base.SeqNumZero
	}
	seq, err := strconv.ParseUint(seqStr, 10, 64)
	if err != nil {
		logger.Infof("sstable: ignoring malformed external_sst.global_seqno %q", seqStr)
		return base.SeqNumZero
	}
	if seq == disabledSeqNum {
		return base.SeqNumZero
	}

	version, _ := strconv.ParseUint(versionStr, 10, 64)
	if !hasVersion || version < 2 {
		logger.Infof("sstable: table carries external_sst.global_seqno=%d at version %q, "+
			"tolerating as malformed", seq, versionStr)
	}
	return base.SeqNum(seq)
}
