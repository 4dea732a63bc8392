// Copyright 2023 The kastore Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package main

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/bpowers/kastore"
)

const (
	keyPrefix    = "pref_"
	keySuffixLen = 16
	maxArrayLen  = 1024
)

func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		var seedBytes [8]byte
		_, _ = crand.Read(seedBytes[:])
		seed = int64(binary.LittleEndian.Uint64(seedBytes[:]))
	}
	return rand.New(rand.NewSource(seed))
}

func newGenCmd(g *globalFlags) *cobra.Command {
	var (
		count int
		seed  int64
	)

	cmd := &cobra.Command{
		Use:   "gen FILE",
		Short: "Write a file of random arrays, for testing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 0 {
				return fmt.Errorf("bad --count %d: must not be negative", count)
			}
			data := randomData(newRand(seed), count)
			return kastore.Dump(args[0], data, g.options()...)
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 100, "number of arrays to generate")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 picks one at random)")
	return cmd
}

func randomData(rng *rand.Rand, count int) map[string]kastore.Array {
	data := make(map[string]kastore.Array, count)
	for len(data) < count {
		var buf [keySuffixLen / 2]byte
		_, _ = rng.Read(buf[:])
		key := fmt.Sprintf("%s%x", keyPrefix, buf)
		data[key] = randomArray(rng, kastore.Type(rng.Intn(int(kastore.Float64)+1)), rng.Intn(maxArrayLen))
	}
	return data
}

func randomArray(rng *rand.Rand, t kastore.Type, n int) kastore.Array {
	switch t {
	case kastore.Int8:
		v := make([]int8, n)
		for i := range v {
			v[i] = int8(rng.Uint32())
		}
		return kastore.NewArray(v)
	case kastore.Uint8:
		v := make([]uint8, n)
		_, _ = rng.Read(v)
		return kastore.NewArray(v)
	case kastore.Int32:
		v := make([]int32, n)
		for i := range v {
			v[i] = int32(rng.Uint32())
		}
		return kastore.NewArray(v)
	case kastore.Uint32:
		v := make([]uint32, n)
		for i := range v {
			v[i] = rng.Uint32()
		}
		return kastore.NewArray(v)
	case kastore.Int64:
		v := make([]int64, n)
		for i := range v {
			v[i] = int64(rng.Uint64())
		}
		return kastore.NewArray(v)
	case kastore.Uint64:
		v := make([]uint64, n)
		for i := range v {
			v[i] = rng.Uint64()
		}
		return kastore.NewArray(v)
	case kastore.Float32:
		v := make([]float32, n)
		for i := range v {
			v[i] = float32(rng.NormFloat64())
		}
		return kastore.NewArray(v)
	default:
		v := make([]float64, n)
		for i := range v {
			v[i] = rng.NormFloat64()
		}
		return kastore.NewArray(v)
	}
}
