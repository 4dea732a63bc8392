// Copyright 2023 The kastore Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package reference

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bpowers/kastore/format"
)

type testWriter struct {
	inner            io.Writer
	writeShouldError bool
}

func (c *testWriter) Write(p []byte) (n int, err error) {
	if c.writeShouldError {
		return 0, errors.New("write failed")
	}
	return c.inner.Write(p)
}

func testData() map[string]format.Array {
	return map[string]format.Array{
		"":      format.NewArray([]float64{math.Inf(-1), math.NaN(), 0.25}),
		"int8":  format.NewArray([]int8{-128, 0, 127}),
		"u8":    format.NewArray([]uint8{0, 255}),
		"i32":   format.NewArray([]int32{math.MinInt32, -1, math.MaxInt32}),
		"u32":   format.NewArray([]uint32{0, math.MaxUint32}),
		"i64":   format.NewArray([]int64{math.MinInt64, math.MaxInt64}),
		"u64":   format.NewArray([]uint64{math.MaxUint64}),
		"f32":   format.NewArray([]float32{float32(math.NaN()), -0.5}),
		"empty": format.NewArray([]uint64{}),
	}
}

func TestEncode_WriteErrors(t *testing.T) {
	var buf bytes.Buffer
	w := &testWriter{
		inner:            &buf,
		writeShouldError: true,
	}
	err := New().Encode(w, testData())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, format.ErrFileFormat)
}

func TestEncode_InvalidKey(t *testing.T) {
	var buf bytes.Buffer
	err := New().Encode(&buf, map[string]format.Array{"\xc3": format.NewArray([]int8{})})
	assert.ErrorIs(t, err, format.ErrInvalidKey)
	assert.Zero(t, buf.Len())
}

func TestRoundTrip(t *testing.T) {
	data := testData()
	var buf bytes.Buffer
	require.NoError(t, New().Encode(&buf, data))

	h := format.Header{}
	require.NoError(t, h.UnmarshalBytes(buf.Bytes()))
	assert.Equal(t, uint64(buf.Len()), h.FileSize)
	assert.Equal(t, uint64(len(data)), h.ItemCount)

	// decoding must not depend on how the reader chunks its input
	result, err := New().Decode(iotest.OneByteReader(bytes.NewReader(buf.Bytes())))
	require.NoError(t, err)
	assert.True(t, format.EqualMaps(data, result))
}

func TestDecode_OwnsMemory(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New().Encode(&buf, map[string]format.Array{
		"a": format.NewArray([]uint8{1, 2, 3}),
	}))
	encoded := buf.Bytes()
	result, err := New().Decode(bytes.NewReader(encoded))
	require.NoError(t, err)

	for i := range encoded {
		encoded[i] = 0
	}
	v, ok := format.Values[uint8](result["a"])
	require.True(t, ok)
	assert.Equal(t, []uint8{1, 2, 3}, v)
}

func TestDecode_Errors(t *testing.T) {
	_, err := New().Decode(bytes.NewReader(nil))
	assert.ErrorIs(t, err, format.ErrFileFormat)

	readErr := errors.New("disk on fire")
	_, err = New().Decode(iotest.ErrReader(readErr))
	assert.ErrorIs(t, err, readErr)
	assert.NotErrorIs(t, err, format.ErrFileFormat)

	var buf bytes.Buffer
	require.NoError(t, New().Encode(&buf, testData()))
	_, err = New().Decode(io.MultiReader(bytes.NewReader(buf.Bytes()), iotest.ErrReader(readErr)))
	assert.ErrorIs(t, err, readErr)

	// trailing garbage
	_, err = New().Decode(io.MultiReader(bytes.NewReader(buf.Bytes()), bytes.NewReader([]byte{0})))
	assert.ErrorIs(t, err, format.ErrFileFormat)
}

// zeroReader is an endless stream of zero bytes that counts what it hands
// out.
type zeroReader struct {
	n int64
}

func (z *zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	z.n += int64(len(p))
	return len(p), nil
}

func TestDecode_StopsAtDeclaredSize(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New().Encode(&buf, testData()))

	trailer := &zeroReader{}
	_, err := New().Decode(io.MultiReader(bytes.NewReader(buf.Bytes()), trailer))
	assert.ErrorIs(t, err, format.ErrFileFormat)
	assert.LessOrEqual(t, trailer.n, int64(1))

	// a header claiming less than its own size
	short := append([]byte(nil), buf.Bytes()...)
	binary.LittleEndian.PutUint64(short[16:], 8)
	trailer = &zeroReader{}
	_, err = New().Decode(io.MultiReader(bytes.NewReader(short), trailer))
	assert.ErrorIs(t, err, format.ErrFileFormat)
	assert.Zero(t, trailer.n)

	// a header claiming far more than is present
	huge := append([]byte(nil), buf.Bytes()...)
	binary.LittleEndian.PutUint64(huge[16:], math.MaxUint64)
	_, err = New().Decode(bytes.NewReader(huge))
	assert.ErrorIs(t, err, format.ErrFileFormat)
}
