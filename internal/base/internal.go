// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import (
	"cmp"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/coredb/sstable/internal/invariants"
	"github.com/cockroachdb/redact"
)

// SeqNum is a sequence number defining precedence among versions of the same
// user key. A version with a higher sequence number takes precedence over a
// version with an equal user key and a lower sequence number. Sequence
// numbers are stored durably within the internal key trailer as a 7-byte
// (uint56) integer, giving a maximum sequence number of 2^56-1.
type SeqNum uint64

const (
	// SeqNumZero is the zero sequence number.
	SeqNumZero SeqNum = 0
	// SeqNumMax is the largest valid sequence number. It is used to
	// construct search keys and sentinel bounds that must sort before any
	// version written with a real sequence number.
	SeqNumMax SeqNum = 1<<56 - 1
)

func (s SeqNum) String() string {
	if s == SeqNumMax {
		return "inf"
	}
	return strconv.FormatUint(uint64(s), 10)
}

// SafeFormat implements redact.SafeFormatter.
func (s SeqNum) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Print(redact.SafeString(s.String()))
}

// InternalKeyKind enumerates the kind of an internal key's most recent
// mutation: a deletion tombstone, a set value, or a merge operand. These
// values are part of the on-disk format and must not be renumbered.
type InternalKeyKind uint8

const (
	InternalKeyKindDelete InternalKeyKind = 0
	InternalKeyKindSet    InternalKeyKind = 1
	InternalKeyKindMerge  InternalKeyKind = 2

	// InternalKeyKindRangeDelete marks a range deletion tombstone's start
	// key within the range-tombstone frame; it never appears as the kind of
	// a point key.
	InternalKeyKindRangeDelete InternalKeyKind = 15

	// InternalKeyKindSeparator marks keys synthesized for block index
	// entries; it never denotes a real point value.
	InternalKeyKindSeparator InternalKeyKind = 17

	// InternalKeyKindMax is the largest key kind that can appear in a valid
	// stored version.
	InternalKeyKindMax InternalKeyKind = InternalKeyKindMerge

	// InternalKeyKindInvalid marks a key that failed to decode.
	InternalKeyKindInvalid InternalKeyKind = 255
)

var internalKeyKindNames = map[InternalKeyKind]string{
	InternalKeyKindDelete:      "DEL",
	InternalKeyKindSet:         "SET",
	InternalKeyKindMerge:       "MERGE",
	InternalKeyKindRangeDelete: "RANGEDEL",
	InternalKeyKindSeparator:   "SEPARATOR",
	InternalKeyKindInvalid:     "INVALID",
}

func (k InternalKeyKind) String() string {
	if name, ok := internalKeyKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN:%d", uint8(k))
}

// SafeFormat implements redact.SafeFormatter.
func (k InternalKeyKind) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Print(redact.SafeString(k.String()))
}

// InternalKeyTrailer packs a SeqNum and an InternalKeyKind into the low 8
// bytes that follow every internal key's user-key bytes: the low byte holds
// the kind, and the upper 56 bits hold the sequence number.
type InternalKeyTrailer uint64

// MakeTrailer constructs an internal key trailer from the specified sequence
// number and kind.
func MakeTrailer(seqNum SeqNum, kind InternalKeyKind) InternalKeyTrailer {
	return (InternalKeyTrailer(seqNum) << 8) | InternalKeyTrailer(kind)
}

func (t InternalKeyTrailer) String() string {
	return fmt.Sprintf("%s,%s", SeqNum(t>>8), InternalKeyKind(t&0xff))
}

// SeqNum returns the sequence number component of the trailer.
func (t InternalKeyTrailer) SeqNum() SeqNum {
	return SeqNum(t >> 8)
}

// Kind returns the key kind component of the trailer.
func (t InternalKeyTrailer) Kind() InternalKeyKind {
	return InternalKeyKind(t & 0xff)
}

// InternalKey is a user key together with the trailer that records the
// sequence number and kind of the version it identifies.
//
// The encoded form is the user key followed by 8 little-endian trailer
// bytes: 1 byte of kind, then a 7-byte (uint56) sequence number.
type InternalKey struct {
	UserKey []byte
	Trailer InternalKeyTrailer
}

// InvalidInternalKey is returned by decoders when the encoded bytes are too
// short to hold a trailer.
var InvalidInternalKey = MakeInternalKey(nil, SeqNumZero, InternalKeyKindInvalid)

// MakeInternalKey constructs an internal key from a user key, sequence
// number and kind.
func MakeInternalKey(userKey []byte, seqNum SeqNum, kind InternalKeyKind) InternalKey {
	return InternalKey{UserKey: userKey, Trailer: MakeTrailer(seqNum, kind)}
}

// MakeSearchKey constructs an internal key appropriate for searching for the
// specified user key: it carries the maximal sequence number and kind so
// that it sorts before every other internal key sharing the user key.
func MakeSearchKey(userKey []byte) InternalKey {
	return MakeInternalKey(userKey, SeqNumMax, InternalKeyKindMax)
}

var kindsMap = map[string]InternalKeyKind{
	"DEL":       InternalKeyKindDelete,
	"SET":       InternalKeyKindSet,
	"MERGE":     InternalKeyKindMerge,
	"RANGEDEL":  InternalKeyKindRangeDelete,
	"SEPARATOR": InternalKeyKindSeparator,
	"INVALID":   InternalKeyKindInvalid,
}

// ParseSeqNum parses the string representation of a sequence number. "inf"
// is accepted as SeqNumMax.
func ParseSeqNum(s string) SeqNum {
	if s == "inf" {
		return SeqNumMax
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		panic(fmt.Sprintf("error parsing %q as seqnum: %s", s, err))
	}
	return SeqNum(n)
}

// ParseKind parses the string representation of an internal key kind.
func ParseKind(s string) InternalKeyKind {
	kind, ok := kindsMap[s]
	if !ok {
		panic(fmt.Sprintf("unknown kind: %q", s))
	}
	return kind
}

// InternalTrailerLen is the number of bytes used to encode InternalKey.Trailer.
const InternalTrailerLen = 8

// DecodeInternalKey decodes an encoded internal key produced by Encode.
func DecodeInternalKey(encodedKey []byte) InternalKey {
	n := len(encodedKey) - InternalTrailerLen
	if n < 0 {
		return InvalidInternalKey
	}
	trailer := InternalKeyTrailer(binary.LittleEndian.Uint64(encodedKey[n:]))
	return InternalKey{UserKey: encodedKey[:n:n], Trailer: trailer}
}

// InternalCompare compares two internal keys using the specified user key
// comparison function. For equal user keys, internal keys compare in
// descending trailer order, i.e. newer/higher-precedence versions sort
// first.
func InternalCompare(userCmp Compare, a, b InternalKey) int {
	if x := userCmp(a.UserKey, b.UserKey); x != 0 {
		return x
	}
	return cmp.Compare(b.Trailer, a.Trailer)
}

// Encode encodes the receiver into buf, which must be at least Size() bytes.
func (k InternalKey) Encode(buf []byte) {
	i := copy(buf, k.UserKey)
	binary.LittleEndian.PutUint64(buf[i:], uint64(k.Trailer))
}

// Size returns the encoded size of the key.
func (k InternalKey) Size() int {
	return len(k.UserKey) + InternalTrailerLen
}

// SeqNum returns the sequence number component of the key.
func (k InternalKey) SeqNum() SeqNum {
	return k.Trailer.SeqNum()
}

// Kind returns the kind component of the key.
func (k InternalKey) Kind() InternalKeyKind {
	return k.Trailer.Kind()
}

// Valid returns true if the key has a recognized kind.
func (k InternalKey) Valid() bool {
	return k.Kind() <= InternalKeyKindMax
}

// Clone clones the storage for the UserKey component of the key.
func (k InternalKey) Clone() InternalKey {
	if len(k.UserKey) == 0 {
		return k
	}
	return InternalKey{UserKey: append([]byte(nil), k.UserKey...), Trailer: k.Trailer}
}

func (k InternalKey) String() string {
	return fmt.Sprintf("%s#%s,%s", FormatBytes(k.UserKey), k.SeqNum(), k.Kind())
}

// Separator returns a separator key such that k <= x && x < other, where the
// ordering is consistent with cmp. The buf parameter may be used to store
// the returned InternalKey.UserKey; passing nil is valid.
func (k InternalKey) Separator(cmp Compare, sep Separator, buf []byte, other InternalKey) InternalKey {
	if invariants.Enabled && (len(k.UserKey) == 0 || len(other.UserKey) == 0) {
		panic(errors.AssertionFailedf("empty keys passed to Separator: %s, %s", k, other))
	}
	buf = sep(buf, k.UserKey, other.UserKey)
	if len(buf) <= len(k.UserKey) && cmp(k.UserKey, buf) < 0 {
		return MakeInternalKey(buf, SeqNumMax, InternalKeyKindSeparator)
	}
	return k
}

// ParseInternalKey parses the string representation of an internal key. The
// format is `<user-key>#<seq-num>,<kind>`.
func ParseInternalKey(s string) InternalKey {
	sep1 := strings.Index(s, "#")
	sep2 := strings.Index(s, ",")
	if sep1 == -1 || sep2 == -1 || sep2 < sep1 {
		panic(fmt.Sprintf("invalid internal key %q", s))
	}
	userKey := []byte(s[:sep1])
	seqNum := ParseSeqNum(s[sep1+1 : sep2])
	kind, ok := kindsMap[s[sep2+1:]]
	if !ok {
		panic(fmt.Sprintf("unknown kind: %q", s[sep2+1:]))
	}
	return MakeInternalKey(userKey, seqNum, kind)
}
