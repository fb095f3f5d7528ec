// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"os"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func propertiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "properties <file>",
		Short: "Render a table's properties",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openReader(args[0])
			if err != nil {
				return err
			}
			defer r.Close()

			props := r.Properties()
			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"property", "value"})
			table.Append([]string{"num-entries", strconv.FormatUint(props.NumEntries, 10)})
			table.Append([]string{"data-size", strconv.FormatUint(props.DataSize, 10)})
			table.Append([]string{"index-size", strconv.FormatUint(props.IndexSize, 10)})
			table.Append([]string{"comparator", props.UserComparatorName})

			keys := make([]string, 0, len(props.UserProperties))
			for k := range props.UserProperties {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				table.Append([]string{k, props.UserProperties[k]})
			}
			table.Render()
			return nil
		},
	}
}
