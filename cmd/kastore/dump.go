// Copyright 2023 The kastore Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/bpowers/kastore"
)

func newDumpCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "dump FILE",
		Short: "Print every key and array stored in a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := kastore.Load(args[0], g.options()...)
			if err != nil {
				return err
			}

			keys := make([]string, 0, len(data))
			for k := range data {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			out := cmd.OutOrStdout()
			for _, k := range keys {
				fmt.Fprintf(out, "%q: %v\n", k, data[k].Interface())
			}
			return nil
		},
	}
}
