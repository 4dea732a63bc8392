// Copyright 2023 The kastore Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bpowers/kastore"
)

type globalFlags struct {
	engine   string
	logLevel string
	logger   *slog.Logger
}

func (g *globalFlags) options() []kastore.Option {
	return []kastore.Option{
		kastore.WithEngine(kastore.Engine(g.engine)),
		kastore.WithLogger(g.logger),
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "kastore",
		Short: "Inspect and create kastore files",
		Long: `kastore works with kastore files: single-file containers of named,
one-dimensional numeric arrays.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var level slog.Level
			if err := level.UnmarshalText([]byte(g.logLevel)); err != nil {
				return fmt.Errorf("bad --log-level %q: %w", g.logLevel, err)
			}
			g.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

			for _, e := range kastore.Engines {
				if string(e) == g.engine {
					return nil
				}
			}
			return fmt.Errorf("%w %q (want one of %s)", kastore.ErrUnknownEngine, g.engine, engineNames())
		},
	}

	rootCmd.PersistentFlags().StringVarP(&g.engine, "engine", "e", string(kastore.DefaultEngine),
		"engine used to read and write files ("+engineNames()+")")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "minimum level of log messages written to stderr")

	rootCmd.AddCommand(
		newLsCmd(g),
		newDumpCmd(g),
		newInfoCmd(g),
		newGenCmd(g),
	)
	return rootCmd
}

func engineNames() string {
	names := make([]string, len(kastore.Engines))
	for i, e := range kastore.Engines {
		names[i] = string(e)
	}
	return strings.Join(names, ", ")
}
