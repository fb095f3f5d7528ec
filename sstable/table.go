// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package sstable implements a read-only, sorted key/value table reader for
// an LSM-style storage engine: a memory-mappable file holding a succinct
// index over a set of user keys, a separately compressed value store,
// per-record value-type tags, a common-key-prefix, optional range-tombstone
// metadata, and table-wide properties.
package sstable

import (
	"encoding/binary"
	"strings"

	"github.com/coredb/sstable/internal/base"
	"github.com/coredb/sstable/sstable/block"
	"github.com/coredb/sstable/sstable/rangetombstone"
)

// comparatorNameU64 is the sentinel user_comparator name marking a table
// whose keys are fixed-width 8-byte integers. Host byte order must be
// little-endian for the fast path this enables; Open falls back to the
// generic bytewise comparator otherwise and logs why.
const comparatorNameU64 = "coredb.FixedWidthUint64Comparator"

// hostLittleEndian reports whether the running process is little-endian,
// gating the byte-swap fast path comparatorNameU64 enables.
var hostLittleEndian = binary.NativeEndian.Uint16([]byte{1, 0}) == 1

// reverseComparatorPrefix marks a table whose user_comparator name begins
// with it as using reverse-bytewise ordering.
const reverseComparatorPrefix = "rev:"

// Reader opens a table file and dispatches Get/NewIterator against its
// segments. After Open returns, a Reader is immutable and safe for
// concurrent use by any number of callers; each Iterator it produces is not.
type Reader struct {
	opts Options

	region *mmapRegion

	properties  *TableProperties
	globalSeqNum base.SeqNum
	reverse     bool
	uint64Cmp   bool

	segment      *Segment      // single-segment tables
	segmentIndex *SegmentIndex // multi-segment tables; nil for single-segment

	tombstones *rangetombstone.Block
}

// Open reads a table's meta blocks, memory-maps the file and constructs the
// segment(s) needed to dispatch Get and NewIterator, per the eleven steps of
// spec §4.5.
func Open(name string, opts Options) (*Reader, error) {
	opts = opts.EnsureDefaults()

	region, err := openMMap(opts.FS, name)
	if err != nil {
		return nil, err
	}
	r, err := open(region, opts)
	if err != nil {
		region.Close()
		return nil, err
	}
	return r, nil
}

func open(region *mmapRegion, opts Options) (*Reader, error) {
	data := region.data

	ft, err := readFooter(data)
	if err != nil {
		return nil, err
	}
	metaIndexBytes, err := readBlock(data, ft.metaIndexHandle)
	if err != nil {
		return nil, err
	}
	metaIndex, err := decodeMetaIndex(metaIndexBytes)
	if err != nil {
		return nil, err
	}

	propsHandle, ok := metaIndex[metaPropertiesName]
	if !ok {
		return nil, base.CorruptionErrorf("table missing required properties block")
	}
	propsBytes, err := readBlock(data, propsHandle)
	if err != nil {
		return nil, err
	}
	props, err := DecodeProperties(propsBytes)
	if err != nil {
		return nil, err
	}

	r := &Reader{
		opts:        opts,
		region:      region,
		properties:  props,
		globalSeqNum: globalSeqNum(props, opts.Logger),
	}

	switch {
	case strings.HasPrefix(props.UserComparatorName, reverseComparatorPrefix):
		r.reverse = true
	case props.UserComparatorName == comparatorNameU64:
		if hostLittleEndian {
			r.uint64Cmp = true
		} else {
			opts.Logger.Infof("table recorded comparator %q but host is big-endian; falling back to bytewise comparator", comparatorNameU64)
		}
	}
	cmp := opts.Comparer.Compare
	if r.reverse {
		cmp = base.ReverseComparer.Compare
	} else if r.uint64Cmp {
		cmp = base.FixedWidthUint64Comparer.Compare
	}

	dictBytes, _ := optionalBlock(data, metaIndex, metaDictionaryName, opts.Logger, "value-dictionary")

	if offsetHandle, ok := metaIndex[metaOffsetName]; ok {
		if err := r.openMultiSegment(data, metaIndex, offsetHandle, dictBytes, cmp); err != nil {
			return nil, err
		}
	} else {
		if err := r.openSingleSegment(data, metaIndex, dictBytes, cmp); err != nil {
			return nil, err
		}
	}

	if err := r.warmUp(); err != nil {
		return nil, err
	}

	if tombHandle, ok := metaIndex[metaRangeTombstone]; ok {
		tombBytes, err := readBlock(data, tombHandle)
		if err != nil {
			return nil, err
		}
		// Copy the decoded spans out of the mmap region so the block can
		// outlive this Reader. The source pages are not released to the OS
		// (see warmUpDontNeed).
		_ = warmUpDontNeed
		tombBlock, err := rangetombstone.Decode(append([]byte(nil), tombBytes...), r.globalSeqNum)
		if err != nil {
			return nil, err
		}
		r.tombstones = tombBlock
	}

	if licenseHandle, ok := metaIndex[metaLicenseName]; ok {
		licenseBytes, err := readBlock(data, licenseHandle)
		if err != nil {
			return nil, err
		}
		if err := opts.License.Merge(licenseBytes); err != nil {
			return nil, base.CorruptionErrorf("license merge failed: %s", err)
		}
		if !opts.License.Valid() {
			return nil, base.CorruptionErrorf("license validation failed")
		}
	}

	return r, nil
}

func (r *Reader) openSingleSegment(data []byte, metaIndex map[string]block.Handle, dictBytes []byte, cmp base.Compare) error {
	indexHandle, ok := metaIndex[metaIndexName]
	if !ok {
		return base.CorruptionErrorf("table missing required index block")
	}
	indexBytes, err := readBlock(data, indexHandle)
	if err != nil {
		return err
	}
	idx, err := DecodeIndex(indexBytes, cmp)
	if err != nil {
		return err
	}

	store, err := loadBlobStore(data[:r.properties.DataSize], dictBytes)
	if err != nil {
		return err
	}

	var typeBytes []byte
	if h, ok := metaIndex[metaValueTypeName]; ok {
		typeBytes, err = readBlock(data, h)
		if err != nil {
			return err
		}
	} else {
		r.opts.Logger.Infof("sstable: value-type block absent, every record decodes as zero-seq")
	}
	types, err := NewTypeVector(typeBytes, idx.Len())
	if err != nil {
		return err
	}

	var commonPrefix []byte
	if h, ok := metaIndex[metaCommonPrefix]; ok {
		commonPrefix, err = readBlock(data, h)
		if err != nil {
			return err
		}
	} else {
		r.opts.Logger.Infof("sstable: common-prefix block absent, downgrading to empty prefix")
	}

	r.segment = &Segment{
		CommonPrefix: commonPrefix,
		Index:        idx,
		Store:        store,
		Types:        types,
		Cmp:          cmp,
	}
	return nil
}

func (r *Reader) openMultiSegment(
	data []byte, metaIndex map[string]block.Handle, offsetHandle block.Handle, dictBytes []byte, cmp base.Compare,
) error {
	offsetBytes, err := readBlock(data, offsetHandle)
	if err != nil {
		return err
	}
	indexHandle, ok := metaIndex[metaIndexName]
	if !ok {
		return base.CorruptionErrorf("table missing required index block")
	}
	indexBytes, err := readBlock(data, indexHandle)
	if err != nil {
		return err
	}
	store := data[:r.properties.DataSize]

	var typeBytes []byte
	if h, ok := metaIndex[metaValueTypeName]; ok {
		if typeBytes, err = readBlock(data, h); err != nil {
			return err
		}
	}
	var commonPrefixBytes []byte
	if h, ok := metaIndex[metaCommonPrefix]; ok {
		if commonPrefixBytes, err = readBlock(data, h); err != nil {
			return err
		}
	}

	si, err := NewSegmentIndex(offsetBytes, indexBytes, dictBytes, store, typeBytes, commonPrefixBytes, cmp)
	if err != nil {
		return err
	}
	r.segmentIndex = si
	return nil
}

// optionalBlock reads a named meta-block if present, logging a warning via
// logger when it is absent.
func optionalBlock(
	data []byte, metaIndex map[string]block.Handle, name string, logger base.Logger, label string,
) ([]byte, bool) {
	h, ok := metaIndex[name]
	if !ok {
		logger.Infof("sstable: optional %s block absent", label)
		return nil, false
	}
	b, err := readBlock(data, h)
	if err != nil {
		logger.Infof("sstable: failed to read optional %s block: %s", label, err)
		return nil, false
	}
	return b, true
}

// warmUpDontNeed documents the MADV_DONTNEED hint spec §4.6 mentions for
// range-tombstone copy-out; Go's runtime-managed mmap lifetime makes the
// hint unsafe to apply selectively here (the region is still owned by the
// Reader as a whole), so it is intentionally not issued. This is a hint per
// spec's own open question and omitting it does not change semantics.
var warmUpDontNeed = struct{}{}

func (r *Reader) warmUp() error {
	if !r.opts.WarmUpIndexOnOpen && !r.opts.WarmUpValueOnOpen {
		return nil
	}
	if r.segment != nil {
		if r.opts.WarmUpIndexOnOpen {
			// The index's backing bytes are not independently reachable
			// here (they live inside the already-decoded Index); warm the
			// whole mapped region's early pages, which cover the index in
			// a single-segment layout.
			warmUp(r.region.data)
		}
		if r.opts.WarmUpValueOnOpen {
			warmUp(r.region.data[:min64(r.properties.DataSize, uint64(len(r.region.data)))])
		}
		return nil
	}
	if r.segmentIndex != nil {
		// Every segment's index, store, type and common-prefix bytes are
		// views into this one region (see openMultiSegment), so a single
		// warm-up pass already covers every segment; there is no per-segment
		// byte range to split work across.
		warmUp(r.region.data)
		return nil
	}
	return nil
}

func min64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

// Properties returns the table's properties.
func (r *Reader) Properties() *TableProperties { return r.properties }

// Get resolves internalKey, invoking visit for each visible version.
func (r *Reader) Get(_ ReadOptions, internalKey []byte, visit VisitFunc) error {
	flags := GetFlags{Uint64Comparator: r.uint64Cmp}
	if r.segmentIndex != nil {
		ik := base.DecodeInternalKey(internalKey)
		userKey := ik.UserKey
		if r.uint64Cmp {
			userKey = byteSwap8Copy(userKey)
		}
		_, seg, ok := r.segmentIndex.GetSegment(userKey)
		if !ok || seg == nil {
			return nil
		}
		return seg.Get(r.globalSeqNum, internalKey, visit, flags)
	}
	return r.segment.Get(r.globalSeqNum, internalKey, visit, flags)
}

// TableIterator is the public cursor contract of spec §6: both the
// single-segment Iterator and the multi-segment MultiIterator implement it.
type TableIterator interface {
	Valid() bool
	Status() error
	SeekToFirst()
	SeekToLast()
	Seek(base.InternalKey)
	SeekForPrev(base.InternalKey)
	Next()
	Prev()
	Key() base.InternalKey
	Value() []byte
	SetPinnedItersMgr(PinnedItersMgr)
	Close() error
}

// NewIterator constructs an iterator over the table in its stored order.
// The returned value is either *Iterator or *MultiIterator depending on
// whether the table is single- or multi-segment.
func (r *Reader) NewIterator(_ ReadOptions) TableIterator {
	if r.segmentIndex != nil {
		return NewMultiIterator(r.segmentIndex, r.globalSeqNum, r.uint64Cmp)
	}
	return NewIterator(r.segment, r.globalSeqNum, r.uint64Cmp)
}

// NewRangeTombstoneIterator returns a cursor over the table's range-deletion
// spans, or nil if the table carries none.
func (r *Reader) NewRangeTombstoneIterator(_ ReadOptions) *rangetombstone.Iterator {
	if r.tombstones == nil {
		return nil
	}
	return rangetombstone.NewIterator(r.tombstones)
}

// Close unmaps the table file. The Reader and every Iterator it produced
// must not be used afterward.
func (r *Reader) Close() error {
	return r.region.Close()
}
