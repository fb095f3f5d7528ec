// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strconv"
	"unicode/utf8"
)

// Compare returns -1, 0, or +1 depending on whether a is 'less than', 'equal
// to' or 'greater than' b. Both a and b must be valid user keys.
type Compare func(a, b []byte) int

// FormatKey returns a formatter for the user key.
type FormatKey func(key []byte) fmt.Formatter

// DefaultFormatter is the default implementation of user key formatting:
// non-ASCII data is formatted as escaped hexadecimal values.
var DefaultFormatter FormatKey = func(key []byte) fmt.Formatter {
	return FormatBytes(key)
}

// Separator is used to construct sstable index blocks. A trivial
// implementation is `return append(dst, a...)`, but appending fewer bytes
// leads to smaller index blocks.
//
// Given keys a, b for which Compare(a, b) < 0, Separator produces a key k
// such that Compare(a, k) <= 0 and Compare(k, b) < 0.
type Separator func(dst, a, b []byte) []byte

// Comparer defines a total ordering over the space of []byte keys, along
// with helpers for building shortened separator keys and formatting keys for
// diagnostics.
type Comparer struct {
	// Compare orders two user keys. Defaults to bytes.Compare.
	Compare Compare
	// Separator generates shortened index-block separator keys. Defaults to
	// DefaultComparer.Separator.
	Separator Separator
	// FormatKey formats a user key for diagnostics. Defaults to
	// DefaultFormatter.
	FormatKey FormatKey
	// Name identifies the comparer. The on-disk format stores a comparator
	// name; Open does not compare it with this field.
	Name string
}

// EnsureDefaults returns a copy of c with every unset field replaced by its
// default. If c is nil, DefaultComparer is returned.
func (c *Comparer) EnsureDefaults() *Comparer {
	if c == nil {
		return DefaultComparer
	}
	if c.Name == "" {
		panic("invalid Comparer: Name not set")
	}
	if c.Compare != nil && c.Separator != nil && c.FormatKey != nil {
		return c
	}
	n := &Comparer{}
	*n = *c
	if n.Compare == nil {
		n.Compare = bytes.Compare
	}
	if n.Separator == nil {
		n.Separator = DefaultComparer.Separator
	}
	if n.FormatKey == nil {
		n.FormatKey = DefaultFormatter
	}
	return n
}

// DefaultComparer orders keys lexicographically by unsigned byte value,
// consistent with bytes.Compare. It is bit-for-bit compatible with LevelDB's
// and Pebble's built-in bytewise comparer.
var DefaultComparer = &Comparer{
	Compare: bytes.Compare,

	Separator: func(dst, a, b []byte) []byte {
		i, n := SharedPrefixLen(a, b), len(dst)
		dst = append(dst, a...)

		min := len(a)
		if min > len(b) {
			min = len(b)
		}
		if i >= min {
			return dst
		}
		if a[i] >= b[i] {
			return dst
		}
		if i < len(b)-1 || a[i]+1 < b[i] {
			i += n
			dst[i]++
			return dst[:i+1]
		}
		i += n + 1
		for ; i < len(dst); i++ {
			if dst[i] != 0xff {
				dst[i]++
				return dst[:i+1]
			}
		}
		return dst
	},

	FormatKey: DefaultFormatter,

	Name: "leveldb.BytewiseComparator",
}

// ReverseComparer orders keys by unsigned byte value in reverse: it is used
// for tables whose writer stored keys in descending order.
var ReverseComparer = &Comparer{
	Compare: func(a, b []byte) int {
		return bytes.Compare(b, a)
	},
	Separator: func(dst, a, b []byte) []byte {
		return append(dst, a...)
	},
	FormatKey: DefaultFormatter,
	Name:      "coredb.ReverseBytewiseComparator",
}

// FixedWidthUint64Comparer orders keys by interpreting each as a big-endian
// fixed-width unsigned integer. It is the index comparator for tables whose
// recorded comparator name marks fixed-width-uint64 keys.
var FixedWidthUint64Comparer = &Comparer{
	Compare: func(a, b []byte) int {
		var av, bv uint64
		for _, c := range a {
			av = av<<8 | uint64(c)
		}
		for _, c := range b {
			bv = bv<<8 | uint64(c)
		}
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	},
	Separator: func(dst, a, b []byte) []byte {
		return append(dst, a...)
	},
	FormatKey: DefaultFormatter,
	Name:      "coredb.FixedWidthUint64Comparator",
}

// SharedPrefixLen returns the largest i such that a[:i] equals b[:i].
func SharedPrefixLen(a, b []byte) int {
	i, n := 0, len(a)
	if n > len(b) {
		n = len(b)
	}
	asUint64 := func(c []byte, i int) uint64 {
		return binary.LittleEndian.Uint64(c[i:])
	}
	for i < n-7 && asUint64(a, i) == asUint64(b, i) {
		i += 8
	}
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

// FormatBytes formats a byte slice using hexadecimal escapes for non-ASCII
// data.
type FormatBytes []byte

const lowerhex = "0123456789abcdef"

// Format implements the fmt.Formatter interface.
func (p FormatBytes) Format(s fmt.State, c rune) {
	buf := make([]byte, 0, len(p))
	for _, b := range p {
		if b < utf8.RuneSelf && strconv.IsPrint(rune(b)) {
			buf = append(buf, b)
			continue
		}
		buf = append(buf, `\x`...)
		buf = append(buf, lowerhex[b>>4])
		buf = append(buf, lowerhex[b&0xF])
	}
	s.Write(buf)
}
