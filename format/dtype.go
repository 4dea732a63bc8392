// Copyright 2023 The kastore Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package format

import "fmt"

// Type identifies the element kind of an Array.  Its numeric value is
// the one-byte tag stored in the item table.
type Type uint8

const (
	Int8 Type = iota
	Uint8
	Int32
	Uint32
	Int64
	Uint64
	Float32
	Float64

	numTypes
)

var typeInfo = [numTypes]struct {
	name string
	size int
}{
	Int8:    {"int8", 1},
	Uint8:   {"uint8", 1},
	Int32:   {"int32", 4},
	Uint32:  {"uint32", 4},
	Int64:   {"int64", 8},
	Uint64:  {"uint64", 8},
	Float32: {"float32", 4},
	Float64: {"float64", 8},
}

// UnknownTypeError is returned for a type tag outside the registry.
type UnknownTypeError struct {
	Tag uint8
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown type tag %d", e.Tag)
}

// TypeFromTag resolves an on-disk type tag.
func TypeFromTag(tag uint8) (Type, error) {
	if tag >= uint8(numTypes) {
		return 0, &UnknownTypeError{Tag: tag}
	}
	return Type(tag), nil
}

// Tag returns the on-disk encoding of t.
func (t Type) Tag() uint8 {
	return uint8(t)
}

// Size returns the width in bytes of a single element.
func (t Type) Size() int {
	if t >= numTypes {
		return 0
	}
	return typeInfo[t].size
}

func (t Type) String() string {
	if t >= numTypes {
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
	return typeInfo[t].name
}

// Element is the set of Go types that can be stored in a container.
type Element interface {
	int8 | uint8 | int32 | uint32 | int64 | uint64 | float32 | float64
}
