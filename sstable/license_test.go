// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sstable

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coredb/sstable/internal/base"
)

type recordingLicense struct {
	merged  [][]byte
	invalid bool
}

func (l *recordingLicense) Merge(data []byte) error {
	l.merged = append(l.merged, append([]byte(nil), data...))
	return nil
}

func (l *recordingLicense) Valid() bool { return !l.invalid }

type rejectingLicense struct{}

func (rejectingLicense) Merge([]byte) error { return errors.New("boom") }
func (rejectingLicense) Valid() bool        { return true }

func TestOpenMergesLicenseBlock(t *testing.T) {
	dir := t.TempDir()
	path := buildSingleSegmentTable(t, dir, []testKey{
		{key: "apple", versions: []testVersion{{seq: 1, kind: base.InternalKeyKindSet, value: "red"}}},
	}, buildOpts{comparatorName: "leveldb.BytewiseComparator", globalSeqNum: 1, licenseBytes: []byte("entitlement-blob")})

	lic := &recordingLicense{}
	r, err := Open(path, Options{License: lic})
	require.NoError(t, err)
	defer r.Close()

	require.Len(t, lic.merged, 1)
	require.Equal(t, "entitlement-blob", string(lic.merged[0]))
}

func TestOpenFailsWhenLicenseInvalid(t *testing.T) {
	dir := t.TempDir()
	path := buildSingleSegmentTable(t, dir, []testKey{
		{key: "apple", versions: []testVersion{{seq: 1, kind: base.InternalKeyKindSet, value: "red"}}},
	}, buildOpts{comparatorName: "leveldb.BytewiseComparator", globalSeqNum: 1, licenseBytes: []byte("x")})

	lic := &recordingLicense{invalid: true}
	_, err := Open(path, Options{License: lic})
	require.Error(t, err)
}

func TestOpenFailsWhenLicenseMergeErrors(t *testing.T) {
	dir := t.TempDir()
	path := buildSingleSegmentTable(t, dir, []testKey{
		{key: "apple", versions: []testVersion{{seq: 1, kind: base.InternalKeyKindSet, value: "red"}}},
	}, buildOpts{comparatorName: "leveldb.BytewiseComparator", globalSeqNum: 1, licenseBytes: []byte("x")})

	_, err := Open(path, Options{License: rejectingLicense{}})
	require.Error(t, err)
}

func TestOpenDefaultLicenseAcceptsTableWithoutLicenseBlock(t *testing.T) {
	dir := t.TempDir()
	path := buildSingleSegmentTable(t, dir, []testKey{
		{key: "apple", versions: []testVersion{{seq: 1, kind: base.InternalKeyKindSet, value: "red"}}},
	}, buildOpts{comparatorName: "leveldb.BytewiseComparator", globalSeqNum: 1})

	r, err := Open(path, Options{})
	require.NoError(t, err)
	defer r.Close()
}
