// Copyright 2023 The kastore Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package native

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/bpowers/kastore/format"
)

// Container is a fully validated container backed by a byte slice,
// usually a read-only file mapping.
type Container struct {
	Header format.Header
	Items  []format.Item
	data   []byte
}

// Parse validates the header and item table of data.  keyString converts
// key bytes to strings; if nil, keys are copied.
func Parse(data []byte, keyString func([]byte) string) (*Container, error) {
	var h format.Header
	if err := h.UnmarshalBytes(data); err != nil {
		return nil, err
	}
	if err := h.CheckFileSize(uint64(len(data))); err != nil {
		return nil, err
	}

	var items []format.Item
	var err error
	if keyString == nil {
		items, err = format.DecodeItems(data, h)
	} else {
		items, err = format.DecodeItemsWith(data, h, keyString)
	}
	if err != nil {
		return nil, err
	}

	return &Container{
		Header: h,
		Items:  items,
		data:   data,
	}, nil
}

// Bytes returns the encoded container.
func (c *Container) Bytes() []byte {
	return c.data
}

// Get returns the array stored under key as a view into the container.
func (c *Container) Get(key string) (format.Array, bool) {
	it, ok := format.Find(c.Items, key)
	if !ok {
		return format.Array{}, false
	}
	return c.Array(it), true
}

// Array returns the data for it.  When the host is little endian and the
// data is suitably aligned the result aliases the container; otherwise it
// is a copy.
func (c *Container) Array(it format.Item) format.Array {
	b := c.data[it.ArrayStart:it.ArrayEnd()]
	n := int(it.Len)
	if n == 0 {
		return format.MakeArray(it.Type, 0)
	}
	if !littleEndian || uintptr(unsafe.Pointer(&b[0]))%uintptr(it.Type.Size()) != 0 {
		a := format.MakeArray(it.Type, n)
		fill(a, b)
		return a
	}
	switch it.Type {
	case format.Int8:
		return format.NewArray(view[int8](b, n))
	case format.Uint8:
		return format.NewArray(b[:n:n])
	case format.Int32:
		return format.NewArray(view[int32](b, n))
	case format.Uint32:
		return format.NewArray(view[uint32](b, n))
	case format.Int64:
		return format.NewArray(view[int64](b, n))
	case format.Uint64:
		return format.NewArray(view[uint64](b, n))
	case format.Float32:
		return format.NewArray(view[float32](b, n))
	case format.Float64:
		return format.NewArray(view[float64](b, n))
	}
	panic("invariant broken: unvalidated type " + it.Type.String())
}

func view[T format.Element](b []byte, n int) []T {
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), n)
}

// fill decodes little-endian bytes into a's elements.
func fill(a format.Array, b []byte) {
	if littleEndian {
		copy(rawBytes(a), b)
		return
	}
	switch v := a.Interface().(type) {
	case []int8:
		for i := range v {
			v[i] = int8(b[i])
		}
	case []uint8:
		copy(v, b)
	case []int32:
		for i := range v {
			v[i] = int32(binary.LittleEndian.Uint32(b[4*i:]))
		}
	case []uint32:
		for i := range v {
			v[i] = binary.LittleEndian.Uint32(b[4*i:])
		}
	case []int64:
		for i := range v {
			v[i] = int64(binary.LittleEndian.Uint64(b[8*i:]))
		}
	case []uint64:
		for i := range v {
			v[i] = binary.LittleEndian.Uint64(b[8*i:])
		}
	case []float32:
		for i := range v {
			v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
		}
	case []float64:
		for i := range v {
			v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[8*i:]))
		}
	}
}

// Map returns every stored array keyed by name.  If clone is true the
// arrays own their memory and stay valid after the container's backing
// bytes go away.
func (c *Container) Map(clone bool) map[string]format.Array {
	result := make(map[string]format.Array, len(c.Items))
	for _, it := range c.Items {
		a := c.Array(it)
		if clone {
			a = a.Clone()
		}
		result[it.Key] = a
	}
	return result
}
