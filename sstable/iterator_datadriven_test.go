// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sstable

import (
	"fmt"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"

	"github.com/coredb/sstable/internal/base"
)

// TestIteratorDataDriven drives a table's cursor through a small command
// language: define builds a table from "key:value" pairs (one per line,
// already in the table's stored order), and iter runs first/last/next/prev/
// seek-ge/seek-le commands against it, printing one line per command.
func TestIteratorDataDriven(t *testing.T) {
	var r *Reader
	datadriven.RunTest(t, "testdata/iterator", func(t *testing.T, d *datadriven.TestData) string {
		switch d.Cmd {
		case "define":
			if r != nil {
				r.Close()
			}
			var keys []testKey
			for _, line := range strings.Split(strings.TrimSpace(d.Input), "\n") {
				if line == "" {
					continue
				}
				parts := strings.SplitN(line, ":", 2)
				keys = append(keys, testKey{
					key:      parts[0],
					versions: []testVersion{{seq: 1, kind: base.InternalKeyKindSet, value: parts[1]}},
				})
			}
			dir := t.TempDir()
			path := buildSingleSegmentTable(t, dir, keys, buildOpts{
				comparatorName: "leveldb.BytewiseComparator",
				globalSeqNum:   1,
			})
			var err error
			r, err = Open(path, Options{})
			if err != nil {
				return fmt.Sprintf("error: %s", err)
			}
			return ""

		case "iter":
			it := r.NewIterator(ReadOptions{})
			defer it.Close()
			var buf strings.Builder
			for _, line := range strings.Split(strings.TrimSpace(d.Input), "\n") {
				fields := strings.Fields(line)
				if len(fields) == 0 {
					continue
				}
				switch fields[0] {
				case "first":
					it.SeekToFirst()
				case "last":
					it.SeekToLast()
				case "next":
					it.Next()
				case "prev":
					it.Prev()
				case "seek-ge":
					it.Seek(base.MakeInternalKey([]byte(fields[1]), base.SeqNumMax, base.InternalKeyKindMax))
				case "seek-le":
					it.SeekForPrev(base.MakeInternalKey([]byte(fields[1]), base.SeqNumZero, base.InternalKeyKindDelete))
				default:
					return fmt.Sprintf("unknown command: %s", fields[0])
				}
				if it.Valid() {
					fmt.Fprintf(&buf, "%s:%s\n", it.Key().UserKey, it.Value())
				} else if err := it.Status(); err != nil {
					fmt.Fprintf(&buf, "err=%s\n", err)
				} else {
					buf.WriteString(".\n")
				}
			}
			return buf.String()

		default:
			return fmt.Sprintf("unknown command: %s", d.Cmd)
		}
	})
}
