// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sstable

import (
	"testing"

	"github.com/kr/pretty"
	"github.com/stretchr/testify/require"

	"github.com/coredb/sstable/internal/base"
)

type discardLogger struct{}

func (discardLogger) Infof(string, ...interface{})  {}
func (discardLogger) Fatalf(string, ...interface{}) {}

func TestPropertiesRoundTrip(t *testing.T) {
	data := EncodeProperties(map[string]string{
		propNumEntries:         "3",
		propDataSize:           "100",
		propIndexSize:          "40",
		propUserComparatorName: "leveldb.BytewiseComparator",
		"custom.key":           "custom-value",
	})

	props, err := DecodeProperties(data)
	require.NoError(t, err)

	expected := &TableProperties{
		NumEntries:         3,
		DataSize:           100,
		IndexSize:          40,
		UserComparatorName: "leveldb.BytewiseComparator",
		UserProperties: map[string]string{
			propNumEntries:         "3",
			propDataSize:           "100",
			propIndexSize:          "40",
			propUserComparatorName: "leveldb.BytewiseComparator",
			"custom.key":           "custom-value",
		},
	}
	if diff := pretty.Diff(expected, props); diff != nil {
		t.Fatalf("%s", diff)
	}
	require.Equal(t, "custom-value", props.UserProperties["custom.key"])
}

func TestGlobalSeqNumDisabledSentinelCoercesToZero(t *testing.T) {
	props := &TableProperties{UserProperties: map[string]string{
		propExternalSSTVersion: "2",
		propExternalSSTSeqNum:  "18446744073709551615", // ^uint64(0)
	}}
	require.Equal(t, base.SeqNumZero, globalSeqNum(props, discardLogger{}))
}

func TestGlobalSeqNumAbsent(t *testing.T) {
	props := &TableProperties{UserProperties: map[string]string{}}
	require.Equal(t, base.SeqNumZero, globalSeqNum(props, discardLogger{}))
}

func TestGlobalSeqNumRecorded(t *testing.T) {
	props := &TableProperties{UserProperties: map[string]string{
		propExternalSSTVersion: "2",
		propExternalSSTSeqNum:  "777",
	}}
	require.Equal(t, base.SeqNum(777), globalSeqNum(props, discardLogger{}))
}

func TestGlobalSeqNumOldVersionTolerated(t *testing.T) {
	props := &TableProperties{UserProperties: map[string]string{
		propExternalSSTVersion: "1",
		propExternalSSTSeqNum:  "55",
	}}
	require.Equal(t, base.SeqNum(55), globalSeqNum(props, discardLogger{}))
}
