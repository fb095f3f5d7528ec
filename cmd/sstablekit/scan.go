// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coredb/sstable/sstable"
)

func scanCmd() *cobra.Command {
	var reverse bool
	cmd := &cobra.Command{
		Use:   "scan <file>",
		Short: "Print every internal key and version stored in a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openReader(args[0])
			if err != nil {
				return err
			}
			defer r.Close()

			it := r.NewIterator(sstable.ReadOptions{})
			defer it.Close()

			if reverse {
				it.SeekToLast()
			} else {
				it.SeekToFirst()
			}
			for it.Valid() {
				k := it.Key()
				fmt.Printf("%s: %s\n", k.String(), it.Value())
				if reverse {
					it.Prev()
				} else {
					it.Next()
				}
			}
			return it.Status()
		},
	}
	cmd.Flags().BoolVar(&reverse, "reverse", false, "scan in reverse order")
	return cmd
}
