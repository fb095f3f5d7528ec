// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sstable

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coredb/sstable/vfs"
)

func TestEnsureDefaultsFillsFS(t *testing.T) {
	opts := Options{}.EnsureDefaults()
	require.Equal(t, vfs.Default, opts.FS)
}

func TestEnsureDefaultsPreservesCustomFS(t *testing.T) {
	custom := vfs.Default
	opts := Options{FS: custom}.EnsureDefaults()
	require.Equal(t, custom, opts.FS)
}
