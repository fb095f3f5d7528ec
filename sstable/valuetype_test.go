// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sstable

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coredb/sstable/internal/base"
)

func TestTypeVectorRoundTrip(t *testing.T) {
	types := []ValueType{ValueTypeZeroSeq, ValueTypeValue, ValueTypeDelete, ValueTypeMulti, ValueTypeValue}
	bits := EncodeTypeVector(types)

	tv, err := NewTypeVector(bits, len(types))
	require.NoError(t, err)
	for i, want := range types {
		require.Equal(t, want, tv.Get(i))
	}
}

func TestTypeVectorEmptyMeansZeroSeq(t *testing.T) {
	tv, err := NewTypeVector(nil, 5)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.Equal(t, ValueTypeZeroSeq, tv.Get(i))
	}
}

func TestTypeVectorTooShort(t *testing.T) {
	_, err := NewTypeVector([]byte{0x00}, 100)
	require.Error(t, err)
}

func TestPacked8RoundTrip(t *testing.T) {
	trailer := base.MakeTrailer(12345, base.InternalKeyKindSet)
	buf := encodePacked8(trailer)
	got := decodePacked8(buf[:])
	require.Equal(t, trailer, got)
	require.Equal(t, base.SeqNum(12345), got.SeqNum())
	require.Equal(t, base.InternalKeyKindSet, got.Kind())
}

func TestMultiValueRoundTrip(t *testing.T) {
	p1 := encodePacked8(base.MakeTrailer(30, base.InternalKeyKindSet))
	p2 := encodePacked8(base.MakeTrailer(20, base.InternalKeyKindDelete))
	records := [][]byte{
		append(append([]byte(nil), p1[:]...), "newest"...),
		append(append([]byte(nil), p2[:]...), ""...),
	}
	frame := EncodeMultiValue(records)

	got, err := DecodeMultiValue(frame)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, base.SeqNum(30), decodePacked8(got[0]).SeqNum())
	require.Equal(t, "newest", string(got[0][8:]))
	require.Equal(t, base.SeqNum(20), decodePacked8(got[1]).SeqNum())
	require.Equal(t, base.InternalKeyKindDelete, decodePacked8(got[1]).Kind())
}

func TestDecodeMultiValueRejectsZeroVersions(t *testing.T) {
	frame := EncodeMultiValue(nil)
	_, err := DecodeMultiValue(frame)
	require.Error(t, err)
}
