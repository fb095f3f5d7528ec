// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"fmt"
	"math"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/coredb/sstable/sstable"
)

func histogramCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "histogram <file>",
		Short: "Render a value-size histogram for a table (operator convenience only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openReader(args[0])
			if err != nil {
				return err
			}
			defer r.Close()

			const numBuckets = 32
			buckets := make([]float64, numBuckets)
			maxLen := 1
			it := r.NewIterator(sstable.ReadOptions{})
			defer it.Close()
			for it.SeekToFirst(); it.Valid(); it.Next() {
				if n := len(it.Value()); n > maxLen {
					maxLen = n
				}
			}
			for it.SeekToFirst(); it.Valid(); it.Next() {
				n := len(it.Value())
				b := int(math.Round(float64(n) / float64(maxLen) * (numBuckets - 1)))
				buckets[b]++
			}
			if err := it.Status(); err != nil {
				return err
			}

			fmt.Println(asciigraph.Plot(buckets, asciigraph.Height(12), asciigraph.Caption("value size distribution")))
			return nil
		},
	}
}
