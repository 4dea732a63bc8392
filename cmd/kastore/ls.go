// Copyright 2023 The kastore Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bpowers/kastore"
)

func newLsCmd(g *globalFlags) *cobra.Command {
	var long bool

	cmd := &cobra.Command{
		Use:   "ls FILE",
		Short: "List the keys stored in a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := kastore.Open(args[0], g.options()...)
			if err != nil {
				return err
			}
			defer func() {
				_ = f.Close()
			}()

			out := cmd.OutOrStdout()
			if !long {
				for _, k := range f.Keys() {
					fmt.Fprintln(out, k)
				}
				return nil
			}

			// the item table has everything ls needs; no array is read
			tw := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
			for _, it := range f.Items() {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", it.Type, it.Len, it.Len*uint64(it.Type.Size()), it.Key)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVarP(&long, "long", "l", false, "show type, length and size of each array")
	return cmd
}
