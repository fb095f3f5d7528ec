// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Command sstablekit is an operator tool for inspecting table files: it is
// ambient tooling, not part of the reader's programmatic contract.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coredb/sstable/sstable"
)

func main() {
	root := &cobra.Command{
		Use:   "sstablekit",
		Short: "Inspect coredb sstable files",
	}
	root.AddCommand(propertiesCmd(), scanCmd(), histogramCmd())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openReader(path string) (*sstable.Reader, error) {
	return sstable.Open(path, sstable.Options{})
}
