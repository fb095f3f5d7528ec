// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sstable

import (
	"github.com/coredb/sstable/internal/base"
	"github.com/coredb/sstable/vfs"
)

// Options configures how a table is opened. The zero value is not ready for
// use; call EnsureDefaults (or rely on Open to call it) first.
type Options struct {
	// Comparer is the comparator used to interpret user keys of a table whose
	// recorded comparator name marks neither reverse nor fixed-width-uint64
	// ordering. For those two, Open uses base.ReverseComparer or
	// base.FixedWidthUint64Comparer whatever this field holds (see
	// TableReader.Open step 4). If nil, base.DefaultComparer is used.
	Comparer *base.Comparer

	// Logger receives diagnostic messages for conditions that are tolerated
	// but noteworthy: a missing optional meta-block, a global sequence number
	// recorded against an old format version, and similar warnings.
	Logger base.Logger

	// WarmUpIndexOnOpen, if true, touches every page of the table's mapped
	// file, which includes the index and the value dictionary, during Open so
	// that the first real read does not pay the page-fault cost.
	WarmUpIndexOnOpen bool

	// WarmUpValueOnOpen, if true, touches every page of the value store's
	// mmap region during Open.
	WarmUpValueOnOpen bool

	// IndexCacheRatio is accepted as configuration but Open does not read
	// it: the index has no lookup cache. It has no effect on read semantics.
	IndexCacheRatio float64

	// License, if non-nil, receives the table's license meta-block (if
	// present) during Open. The default is AlwaysValidLicense.
	License License

	// FS opens the table file; Open mmaps whatever it returns. The default
	// is vfs.Default.
	FS vfs.FS
}

// EnsureDefaults returns a copy of opts with every unset field given its
// default value. It is always safe to call, including on a zero Options.
func (opts Options) EnsureDefaults() Options {
	if opts.Comparer == nil {
		opts.Comparer = base.DefaultComparer
	}
	if opts.Logger == nil {
		opts.Logger = base.DefaultLogger{}
	}
	if opts.IndexCacheRatio == 0 {
		opts.IndexCacheRatio = 0.01
	}
	if opts.License == nil {
		opts.License = AlwaysValidLicense{}
	}
	if opts.FS == nil {
		opts.FS = vfs.Default
	}
	return opts
}

// ReadOptions configures an individual Get or NewIterator call.
type ReadOptions struct {
	// SkipFilters disables any block-level filtering a collaborator might
	// otherwise apply; the reader itself applies none, but the flag is
	// threaded through to match the external interface in spec §6.
	SkipFilters bool
}
