// Copyright 2023 The kastore Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package format

import "math"

// Array is a one-dimensional typed array.  The zero value is an empty
// int8 array.
type Array struct {
	typ    Type
	values any
}

// NewArray wraps values without copying them.
func NewArray[T Element](values []T) Array {
	var typ Type
	switch any(values).(type) {
	case []int8:
		typ = Int8
	case []uint8:
		typ = Uint8
	case []int32:
		typ = Int32
	case []uint32:
		typ = Uint32
	case []int64:
		typ = Int64
	case []uint64:
		typ = Uint64
	case []float32:
		typ = Float32
	case []float64:
		typ = Float64
	}
	if values == nil {
		values = []T{}
	}
	return Array{typ: typ, values: values}
}

// ArrayOf wraps v, which must be a slice of one of the Element types or an
// Array.
func ArrayOf(v any) (Array, error) {
	switch v := v.(type) {
	case Array:
		return v, nil
	case []int8:
		return NewArray(v), nil
	case []uint8:
		return NewArray(v), nil
	case []int32:
		return NewArray(v), nil
	case []uint32:
		return NewArray(v), nil
	case []int64:
		return NewArray(v), nil
	case []uint64:
		return NewArray(v), nil
	case []float32:
		return NewArray(v), nil
	case []float64:
		return NewArray(v), nil
	}
	return Array{}, &UnsupportedTypeError{Value: v}
}

// MakeArray allocates a zeroed array of n elements of type t.
func MakeArray(t Type, n int) Array {
	switch t {
	case Int8:
		return NewArray(make([]int8, n))
	case Uint8:
		return NewArray(make([]uint8, n))
	case Int32:
		return NewArray(make([]int32, n))
	case Uint32:
		return NewArray(make([]uint32, n))
	case Int64:
		return NewArray(make([]int64, n))
	case Uint64:
		return NewArray(make([]uint64, n))
	case Float32:
		return NewArray(make([]float32, n))
	case Float64:
		return NewArray(make([]float64, n))
	}
	panic("kastore: MakeArray called with unknown type " + t.String())
}

// Values returns the elements of a as a []T.  ok is false if T does not
// match a's element type.
func Values[T Element](a Array) (values []T, ok bool) {
	if a.values == nil {
		var zero []T
		if _, isInt8 := any(zero).([]int8); isInt8 {
			return []T{}, true
		}
		return nil, false
	}
	values, ok = a.values.([]T)
	return
}

func (a Array) Type() Type {
	return a.typ
}

// Interface returns the underlying slice, e.g. a []float64.
func (a Array) Interface() any {
	if a.values == nil {
		return []int8{}
	}
	return a.values
}

func (a Array) Len() int {
	switch v := a.values.(type) {
	case []int8:
		return len(v)
	case []uint8:
		return len(v)
	case []int32:
		return len(v)
	case []uint32:
		return len(v)
	case []int64:
		return len(v)
	case []uint64:
		return len(v)
	case []float32:
		return len(v)
	case []float64:
		return len(v)
	}
	return 0
}

// ByteLen is the number of payload bytes a occupies on disk.
func (a Array) ByteLen() uint64 {
	return uint64(a.Len()) * uint64(a.typ.Size())
}

// Clone returns a deep copy of a, detached from any backing file.
func (a Array) Clone() Array {
	switch v := a.values.(type) {
	case []int8:
		return NewArray(append([]int8{}, v...))
	case []uint8:
		return NewArray(append([]uint8{}, v...))
	case []int32:
		return NewArray(append([]int32{}, v...))
	case []uint32:
		return NewArray(append([]uint32{}, v...))
	case []int64:
		return NewArray(append([]int64{}, v...))
	case []uint64:
		return NewArray(append([]uint64{}, v...))
	case []float32:
		return NewArray(append([]float32{}, v...))
	case []float64:
		return NewArray(append([]float64{}, v...))
	}
	return NewArray([]int8{})
}

// Equal reports whether a and b have the same type and elements.  NaNs
// compare equal to each other.
func (a Array) Equal(b Array) bool {
	if a.typ != b.typ || a.Len() != b.Len() {
		return false
	}
	switch av := a.Interface().(type) {
	case []int8:
		return equal(av, b.Interface().([]int8))
	case []uint8:
		return equal(av, b.Interface().([]uint8))
	case []int32:
		return equal(av, b.Interface().([]int32))
	case []uint32:
		return equal(av, b.Interface().([]uint32))
	case []int64:
		return equal(av, b.Interface().([]int64))
	case []uint64:
		return equal(av, b.Interface().([]uint64))
	case []float32:
		bv := b.Interface().([]float32)
		for i := range av {
			if av[i] != bv[i] && !(isNaN32(av[i]) && isNaN32(bv[i])) {
				return false
			}
		}
		return true
	case []float64:
		bv := b.Interface().([]float64)
		for i := range av {
			if av[i] != bv[i] && !(math.IsNaN(av[i]) && math.IsNaN(bv[i])) {
				return false
			}
		}
		return true
	}
	return false
}

func isNaN32(f float32) bool {
	return f != f
}

func equal[T int8 | uint8 | int32 | uint32 | int64 | uint64](a, b []T) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// EqualMaps reports whether two key/array mappings hold the same keys and
// equal arrays.
func EqualMaps(a, b map[string]Array) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || !av.Equal(bv) {
			return false
		}
	}
	return true
}
