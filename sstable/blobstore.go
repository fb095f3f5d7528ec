// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sstable

import "github.com/coredb/sstable/sstable/blob"

// loadBlobStore constructs a blob.Store over a segment's slice of the raw
// value region, given the same segment's slice of the value-dictionary
// meta-block. Per spec §4.5 step 6 the value-dictionary block is paired with
// the data region to build the store; this reader's concrete value store
// (sstable/blob) repurposes those bytes as the block directory mapping
// record-id ranges to block offsets within data, since a block-chunked,
// independently-compressed store needs exactly that index and spec.md
// leaves the dictionary's internal format to the collaborator.
func loadBlobStore(data, dictionary []byte) (*blob.Store, error) {
	return blob.Load(data, dictionary)
}
