// Copyright 2023 The kastore Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package format describes the kastore container: a single file holding
// a set of named, one-dimensional numeric arrays.
//
// A container looks like:
//
//	┌───────────────────┐
//	│ file header       │ 32 bytes
//	├───────────────────┤
//	│ item table        │ 40 bytes per item, sorted by key
//	│                   │
//	├───────────────────┤
//	│ key text          │ packed, in table order
//	├───────────────────┤
//	│ array data        │ in table order, each block aligned to
//	│                   │ its element width
//	│                   │
//	└───────────────────┘
//
// The header is:
//
//	 0    1    2    3    4    5    6    7
//	+----+----+----+----+----+----+----+----+
//	| magic: 0x89 K A S \r \n 0x1a \n       |
//	+----+----+----+----+----+----+----+----+
//	| major   | minor   | reserved          |
//	+----+----+----+----+----+----+----+----+
//	| file size                             |
//	+----+----+----+----+----+----+----+----+
//	| item count                            |
//	+----+----+----+----+----+----+----+----+
//
// and each item is:
//
//	+----+----+----+----+----+----+----+----+
//	|type| zero                             |
//	+----+----+----+----+----+----+----+----+
//	| key start                             |
//	+----+----+----+----+----+----+----+----+
//	| key length                            |
//	+----+----+----+----+----+----+----+----+
//	| array start                           |
//	+----+----+----+----+----+----+----+----+
//	| array length (elements)               |
//	+----+----+----+----+----+----+----+----+
//
// All integers are little endian.  The file size in the header must match
// the real length of the file exactly.
package format

import "io"

// Engine reads and writes containers.  Every Engine produces
// byte-identical output for the same input and reads any other Engine's
// output.
type Engine interface {
	Encode(w io.Writer, data map[string]Array) error
	Decode(r io.Reader) (map[string]Array, error)
}
