// Copyright 2023 The kastore Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package native is the fast kastore engine.  On little-endian hosts it
// moves array data with block copies and decodes arrays as zero-copy
// views over the container bytes.
package native

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"unsafe"

	"golang.org/x/sys/cpu"

	"github.com/bpowers/kastore/format"
	"github.com/bpowers/kastore/internal/unsafestring"
)

// the container format is little-endian, so host memory can be used as-is
const littleEndian = !cpu.IsBigEndian

// Engine implements format.Engine.
type Engine struct{}

var _ format.Engine = Engine{}

// New returns the native engine.
func New() Engine {
	return Engine{}
}

// Encode writes data to w with a single Write call.
func (e Engine) Encode(w io.Writer, data map[string]format.Array) error {
	buf, err := e.EncodeBytes(data)
	if err != nil {
		return err
	}
	n, err := w.Write(buf)
	if err != nil {
		return fmt.Errorf("write: %w", err)
	} else if n != len(buf) {
		return fmt.Errorf("short write of %d (wanted %d)", n, len(buf))
	}
	return nil
}

// EncodeBytes returns the encoded container for data.
func (Engine) EncodeBytes(data map[string]format.Array) ([]byte, error) {
	l, err := format.Plan(data)
	if err != nil {
		return nil, err
	}
	if l.FileSize > uint64(math.MaxInt) {
		return nil, fmt.Errorf("container of %d bytes too large to buffer", l.FileSize)
	}

	h := l.Header()
	buf := make([]byte, 0, int(l.FileSize))
	buf = h.AppendTo(buf)
	buf = format.AppendItems(buf, l.Items)
	for i := range l.Items {
		buf = append(buf, l.Items[i].Key...)
	}
	var zeroBuf [8]byte
	for i := range l.Items {
		buf = append(buf, zeroBuf[:l.Padding(i)]...)
		buf = appendArray(buf, l.Arrays[i])
	}

	if uint64(len(buf)) != h.FileSize {
		panic(fmt.Errorf("invariant broken: encoded %d bytes for a %d byte container", len(buf), h.FileSize))
	}
	return buf, nil
}

func appendArray(dst []byte, a format.Array) []byte {
	if littleEndian {
		return append(dst, rawBytes(a)...)
	}
	switch v := a.Interface().(type) {
	case []int8:
		for _, x := range v {
			dst = append(dst, byte(x))
		}
	case []uint8:
		dst = append(dst, v...)
	case []int32:
		for _, x := range v {
			dst = binary.LittleEndian.AppendUint32(dst, uint32(x))
		}
	case []uint32:
		for _, x := range v {
			dst = binary.LittleEndian.AppendUint32(dst, x)
		}
	case []int64:
		for _, x := range v {
			dst = binary.LittleEndian.AppendUint64(dst, uint64(x))
		}
	case []uint64:
		for _, x := range v {
			dst = binary.LittleEndian.AppendUint64(dst, x)
		}
	case []float32:
		for _, x := range v {
			dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(x))
		}
	case []float64:
		for _, x := range v {
			dst = binary.LittleEndian.AppendUint64(dst, math.Float64bits(x))
		}
	}
	return dst
}

// rawBytes returns a byte slice aliasing the memory of a's elements.
func rawBytes(a format.Array) []byte {
	switch v := a.Interface().(type) {
	case []int8:
		return asBytes(v)
	case []uint8:
		return v
	case []int32:
		return asBytes(v)
	case []uint32:
		return asBytes(v)
	case []int64:
		return asBytes(v)
	case []uint64:
		return asBytes(v)
	case []float32:
		return asBytes(v)
	case []float64:
		return asBytes(v)
	}
	return nil
}

func asBytes[T format.Element](v []T) []byte {
	if len(v) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(v))), len(v)*int(unsafe.Sizeof(zero)))
}

// Decode reads all of r and decodes it.  Arrays in the result share
// memory with a buffer private to this call.
func (Engine) Decode(r io.Reader) (map[string]format.Array, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("io.ReadAll: %w", err)
	}
	// buf is owned by the result, so keys can alias it
	c, err := Parse(buf, unsafestring.FromBytes)
	if err != nil {
		return nil, err
	}
	return c.Map(false), nil
}
