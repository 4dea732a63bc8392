// Copyright 2023 The kastore Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package format

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewArray_Types(t *testing.T) {
	for _, tc := range []struct {
		a   Array
		typ Type
		len int
	}{
		{NewArray([]int8{1}), Int8, 1},
		{NewArray([]uint8{1, 2}), Uint8, 2},
		{NewArray([]int32{1, 2, 3}), Int32, 3},
		{NewArray([]uint32{}), Uint32, 0},
		{NewArray([]int64{1}), Int64, 1},
		{NewArray([]uint64(nil)), Uint64, 0},
		{NewArray([]float32{1}), Float32, 1},
		{NewArray([]float64{1, 2}), Float64, 2},
	} {
		assert.Equal(t, tc.typ, tc.a.Type())
		assert.Equal(t, tc.len, tc.a.Len())
		assert.Equal(t, uint64(tc.len*tc.typ.Size()), tc.a.ByteLen())
		assert.NotNil(t, tc.a.Interface())
	}
}

func TestValues(t *testing.T) {
	a := NewArray([]float32{1, 2})
	v, ok := Values[float32](a)
	require.True(t, ok)
	assert.Equal(t, []float32{1, 2}, v)

	_, ok = Values[float64](a)
	assert.False(t, ok)

	// the zero Array is an empty int8 array
	var zero Array
	assert.Equal(t, Int8, zero.Type())
	assert.Equal(t, 0, zero.Len())
	i8, ok := Values[int8](zero)
	require.True(t, ok)
	assert.Empty(t, i8)
	_, ok = Values[uint8](zero)
	assert.False(t, ok)
}

func TestArrayOf(t *testing.T) {
	a, err := ArrayOf([]uint64{7})
	require.NoError(t, err)
	assert.Equal(t, Uint64, a.Type())

	b, err := ArrayOf(a)
	require.NoError(t, err)
	assert.True(t, a.Equal(b))

	for _, bad := range []any{nil, 1, "1234", []int{1}, [][]float64{{0, 1}}, map[string]int{}} {
		_, err := ArrayOf(bad)
		var unsupported *UnsupportedTypeError
		assert.ErrorAs(t, err, &unsupported, "%T", bad)
	}
}

func TestArray_Equal(t *testing.T) {
	nan32 := float32(math.NaN())
	for _, tc := range []struct {
		a, b  Array
		equal bool
	}{
		{NewArray([]float64{math.NaN(), 1}), NewArray([]float64{math.NaN(), 1}), true},
		{NewArray([]float32{nan32}), NewArray([]float32{nan32}), true},
		{NewArray([]float64{math.NaN()}), NewArray([]float64{0}), false},
		{NewArray([]float64{0}), NewArray([]float32{0}), false},
		{NewArray([]int32{1, 2}), NewArray([]int32{1, 2}), true},
		{NewArray([]int32{1, 2}), NewArray([]int32{1, 3}), false},
		{NewArray([]int32{1}), NewArray([]int32{1, 2}), false},
		{NewArray([]uint8{}), NewArray([]uint8(nil)), true},
		{Array{}, NewArray([]int8{}), true},
	} {
		assert.Equal(t, tc.equal, tc.a.Equal(tc.b), "%v vs %v", tc.a.Interface(), tc.b.Interface())
	}
}

func TestArray_Clone(t *testing.T) {
	orig := []int64{1, 2, 3}
	a := NewArray(orig)
	c := a.Clone()
	orig[0] = 100
	v, ok := Values[int64](c)
	require.True(t, ok)
	assert.Equal(t, []int64{1, 2, 3}, v)

	for typ := Int8; typ < numTypes; typ++ {
		m := MakeArray(typ, 3)
		assert.True(t, m.Equal(m.Clone()), "%s", typ)
		assert.Equal(t, 3, m.Len())
	}
}

func TestEqualMaps(t *testing.T) {
	a := map[string]Array{"x": NewArray([]float64{1})}
	b := map[string]Array{"x": NewArray([]float64{1})}
	assert.True(t, EqualMaps(a, b))
	b["y"] = NewArray([]float64{})
	assert.False(t, EqualMaps(a, b))
	delete(b, "x")
	assert.False(t, EqualMaps(a, b))
}
