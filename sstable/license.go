// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sstable

// License is the collaborator TableReader.Open consults when the table
// carries an optional license meta-block: merge folds the block's opaque
// bytes into whatever state the collaborator tracks, and valid reports
// whether that state currently permits the table to be opened. Policy is
// deliberately kept out of the core reader; see spec §9.
type License interface {
	Merge(data []byte) error
	Valid() bool
}

// AlwaysValidLicense is the default License: it accepts any license block
// and never rejects an Open.
type AlwaysValidLicense struct{}

func (AlwaysValidLicense) Merge([]byte) error { return nil }
func (AlwaysValidLicense) Valid() bool        { return true }
