// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package block

import (
	"github.com/coredb/sstable/internal/base"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
)

// CompressionIndicator is the on-disk byte identifying a block's compression
// codec. These values are part of the file format and must not be reordered.
type CompressionIndicator byte

const (
	NoCompressionIndicator     CompressionIndicator = 0
	SnappyCompressionIndicator CompressionIndicator = 1
	ZstdCompressionIndicator   CompressionIndicator = 2
)

var zstdDecoder, _ = zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))

// DecompressInto decompresses compressed according to indicator, returning
// the decoded bytes. When indicator is NoCompressionIndicator, compressed is
// returned unmodified. dst, if non-nil and large enough, is reused to avoid
// an allocation.
func DecompressInto(indicator CompressionIndicator, compressed, dst []byte) ([]byte, error) {
	switch indicator {
	case NoCompressionIndicator:
		return compressed, nil
	case SnappyCompressionIndicator:
		n, err := snappy.DecodedLen(compressed)
		if err != nil {
			return nil, base.CorruptionErrorf("invalid snappy block: %s", err)
		}
		if cap(dst) < n {
			dst = make([]byte, n)
		}
		dst = dst[:n]
		decoded, err := snappy.Decode(dst, compressed)
		if err != nil {
			return nil, base.CorruptionErrorf("snappy decompression failed: %s", err)
		}
		return decoded, nil
	case ZstdCompressionIndicator:
		decoded, err := zstdDecoder.DecodeAll(compressed, dst[:0])
		if err != nil {
			return nil, base.CorruptionErrorf("zstd decompression failed: %s", err)
		}
		return decoded, nil
	default:
		return nil, base.CorruptionErrorf("unknown block compression indicator %d", byte(indicator))
	}
}

// Compress encodes raw according to indicator, for use by table-building
// test fixtures; production reads only ever decompress.
func Compress(indicator CompressionIndicator, raw []byte) ([]byte, error) {
	switch indicator {
	case NoCompressionIndicator:
		return raw, nil
	case SnappyCompressionIndicator:
		return snappy.Encode(nil, raw), nil
	case ZstdCompressionIndicator:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}
		out := enc.EncodeAll(raw, nil)
		_ = enc.Close()
		return out, nil
	default:
		return nil, base.CorruptionErrorf("unknown block compression indicator %d", byte(indicator))
	}
}

func (i CompressionIndicator) String() string {
	switch i {
	case NoCompressionIndicator:
		return "none"
	case SnappyCompressionIndicator:
		return "snappy"
	case ZstdCompressionIndicator:
		return "zstd"
	default:
		return "unknown"
	}
}
