// Copyright 2023 The kastore Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bpowers/kastore"
)

func newInfoCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "info FILE",
		Short: "Print the header of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := kastore.Open(args[0], g.options()...)
			if err != nil {
				return err
			}
			defer func() {
				_ = f.Close()
			}()

			h := f.Header()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "version:     %d.%d\n", h.VersionMajor, h.VersionMinor)
			fmt.Fprintf(out, "file size:   %d\n", h.FileSize)
			fmt.Fprintf(out, "items:       %d\n", h.ItemCount)
			fmt.Fprintf(out, "fingerprint: %016x\n", f.Fingerprint())
			return nil
		},
	}
}
