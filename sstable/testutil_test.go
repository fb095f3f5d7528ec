// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sstable

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coredb/sstable/internal/base"
	"github.com/coredb/sstable/sstable/blob"
	"github.com/coredb/sstable/sstable/block"
	"github.com/coredb/sstable/sstable/rangetombstone"
)

// testVersion is one version of a test key, newest expected first within a
// key's Versions slice.
type testVersion struct {
	seq   uint64
	kind  base.InternalKeyKind
	value string
}

// testKey is one user key and its versions, used to build a fixture table.
type testKey struct {
	key      string
	versions []testVersion
}

type buildOpts struct {
	commonPrefix   string
	comparatorName string
	globalSeqNum   uint64
	licenseBytes   []byte
	tombstoneSpans []rangetombstone.Span
}

// buildSingleSegmentTable assembles a complete single-segment table file on
// disk from a set of test keys, already given in the table's intended
// order, and returns its path. It exists purely to construct fixtures for
// the tests below; it is not part of the reader's public surface, mirroring
// spec.md's exclusion of the write path from scope.
func buildSingleSegmentTable(t *testing.T, dir string, keys []testKey, opts buildOpts) string {
	t.Helper()

	n := len(keys)
	types := make([]ValueType, n)
	records := make([][]byte, n)
	for i, k := range keys {
		vt, rec := encodeTestVersions(t, k.versions, base.SeqNum(opts.globalSeqNum))
		types[i] = vt
		records[i] = rec
	}

	storeBytes := buildStoreBytes(t, records)

	suffixKeys := make([][]byte, n)
	recordIDs := make([]uint64, n)
	for i, k := range keys {
		suffix := k.key
		require.True(t, len(suffix) >= len(opts.commonPrefix) && suffix[:len(opts.commonPrefix)] == opts.commonPrefix,
			"key %q does not start with common prefix %q", k.key, opts.commonPrefix)
		suffixKeys[i] = []byte(suffix[len(opts.commonPrefix):])
		recordIDs[i] = uint64(i)
	}
	indexBytes := EncodeIndex(suffixKeys, recordIDs)
	typeBytes := EncodeTypeVector(types)
	commonPrefixBytes := []byte(opts.commonPrefix)

	props := map[string]string{
		propNumEntries:         itoa(uint64(n)),
		propDataSize:           itoa(uint64(len(storeBytes))),
		propIndexSize:          itoa(uint64(len(indexBytes))),
		propUserComparatorName: opts.comparatorName,
	}
	if opts.globalSeqNum != 0 {
		props[propExternalSSTVersion] = "2"
		props[propExternalSSTSeqNum] = itoa(opts.globalSeqNum)
	}
	propsBytes := EncodeProperties(props)

	var file bytes.Buffer
	file.Write(storeBytes)

	metaIndex := make(map[string]block.Handle)
	writeBlock := func(name string, raw []byte) {
		built, err := block.Build(block.NoCompressionIndicator, raw)
		require.NoError(t, err)
		h := block.Handle{Offset: uint64(file.Len()), Length: uint64(len(built))}
		file.Write(built)
		metaIndex[name] = h
	}
	writeBlock(metaIndexName, indexBytes)
	if len(typeBytes) > 0 {
		writeBlock(metaValueTypeName, typeBytes)
	}
	if len(commonPrefixBytes) > 0 {
		writeBlock(metaCommonPrefix, commonPrefixBytes)
	}
	writeBlock(metaPropertiesName, propsBytes)
	if len(opts.licenseBytes) > 0 {
		writeBlock(metaLicenseName, opts.licenseBytes)
	}
	if len(opts.tombstoneSpans) > 0 {
		writeBlock(metaRangeTombstone, rangetombstone.Encode(opts.tombstoneSpans))
	}

	metaIndexBytes := encodeMetaIndex(metaIndex)
	built, err := block.Build(block.NoCompressionIndicator, metaIndexBytes)
	require.NoError(t, err)
	metaIndexHandle := block.Handle{Offset: uint64(file.Len()), Length: uint64(len(built))}
	file.Write(built)

	file.Write(encodeFooter(metaIndexHandle))

	path := filepath.Join(dir, "table.sst")
	require.NoError(t, os.WriteFile(path, file.Bytes(), 0644))
	return path
}

// encodeTestVersions picks the narrowest ValueType that represents versions
// and returns its record payload, mirroring the encode side of
// decodeAndVisit/recordsFromPayload.
func encodeTestVersions(t *testing.T, versions []testVersion, globalSeqNum base.SeqNum) (ValueType, []byte) {
	t.Helper()
	require.NotEmpty(t, versions)

	if len(versions) == 1 {
		v := versions[0]
		if base.SeqNum(v.seq) == globalSeqNum && v.kind == base.InternalKeyKindSet {
			return ValueTypeZeroSeq, []byte(v.value)
		}
		packed := encodePacked8(base.MakeTrailer(base.SeqNum(v.seq), v.kind))
		if v.kind == base.InternalKeyKindDelete {
			return ValueTypeDelete, packed[:]
		}
		return ValueTypeValue, append(append([]byte(nil), packed[:]...), v.value...)
	}

	recs := make([][]byte, len(versions))
	for i, v := range versions {
		packed := encodePacked8(base.MakeTrailer(base.SeqNum(v.seq), v.kind))
		recs[i] = append(append([]byte(nil), packed[:]...), v.value...)
	}
	return ValueTypeMulti, EncodeMultiValue(recs)
}

func buildStoreBytes(t *testing.T, records [][]byte) []byte {
	t.Helper()
	blk, err := blob.EncodeBlock(block.NoCompressionIndicator, records)
	require.NoError(t, err)
	return blob.BuildStore([]uint64{0}, []uint64{uint64(len(records))}, [][]byte{blk})
}

func itoa(v uint64) string {
	return strconv.FormatUint(v, 10)
}

// encodeIK encodes a search key in the internal-key wire format Reader.Get
// expects.
func encodeIK(userKey string, seq uint64, kind base.InternalKeyKind) []byte {
	ik := base.MakeInternalKey([]byte(userKey), base.SeqNum(seq), kind)
	buf := make([]byte, ik.Size())
	ik.Encode(buf)
	return buf
}
