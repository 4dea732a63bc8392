// Copyright 2023 The kastore Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package format

import (
	"errors"
	"fmt"
	"sort"
	"unicode/utf8"
)

// ErrInvalidKey is returned when writing a key that isn't valid UTF-8.
var ErrInvalidKey = errors.New("kastore: key is not valid UTF-8")

// Layout is the placement of every key and array block of a container,
// computed before any byte is written.
type Layout struct {
	// Items is sorted by key.
	Items []Item
	// Arrays[i] holds the data described by Items[i].
	Arrays   []Array
	FileSize uint64
}

// Plan sorts the keys of data and assigns offsets to all key and array
// blocks.  Key blocks are packed directly after the item table; each
// array block then starts at a multiple of its element width.
func Plan(data map[string]Array) (*Layout, error) {
	keys := make([]string, 0, len(data))
	for k := range data {
		if !utf8.ValidString(k) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidKey, k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	l := &Layout{
		Items:  make([]Item, len(keys)),
		Arrays: make([]Array, len(keys)),
	}

	off := uint64(HeaderSize) + uint64(len(keys))*ItemSize
	for i, k := range keys {
		a := data[k]
		if a.Type() >= numTypes {
			return nil, fmt.Errorf("key %q: %w", k, &UnknownTypeError{Tag: a.Type().Tag()})
		}
		l.Arrays[i] = a
		l.Items[i] = Item{
			Key:      k,
			Type:     a.Type(),
			KeyStart: off,
			KeyLen:   uint64(len(k)),
			Len:      uint64(a.Len()),
		}
		off += uint64(len(k))
	}
	for i := range l.Items {
		it := &l.Items[i]
		off = align(off, uint64(it.Type.Size()))
		it.ArrayStart = off
		off += l.Arrays[i].ByteLen()
	}
	l.FileSize = off

	return l, nil
}

// Header returns the container header for l.
func (l *Layout) Header() Header {
	tableEnd := uint64(HeaderSize) + uint64(len(l.Items))*ItemSize
	return NewHeader(uint64(len(l.Items)), l.FileSize-tableEnd)
}

// Padding returns the number of zero bytes preceding the array block of
// item i.
func (l *Layout) Padding(i int) uint64 {
	var prevEnd uint64
	if i == 0 {
		if len(l.Items) == 0 {
			return 0
		}
		last := l.Items[len(l.Items)-1]
		prevEnd = last.KeyStart + last.KeyLen
	} else {
		prevEnd = l.Items[i-1].ArrayEnd()
	}
	return l.Items[i].ArrayStart - prevEnd
}

func align(off, width uint64) uint64 {
	return (off + width - 1) &^ (width - 1)
}

// CheckLayout verifies that the blocks described by items are in the
// order a conformant writer produces them: every key block in table order,
// then every array block in table order, none overlapping, all within
// [tableEnd, fileSize].
func CheckLayout(items []Item, tableEnd, fileSize uint64) error {
	prev := tableEnd
	for i := range items {
		it := &items[i]
		if it.KeyStart < prev {
			return formatErrorf("item %d: key block at %d overlaps previous block ending at %d", i, it.KeyStart, prev)
		}
		prev = it.KeyStart + it.KeyLen
	}
	for i := range items {
		it := &items[i]
		if it.ArrayStart < prev {
			return formatErrorf("item %d: array block at %d overlaps previous block ending at %d", i, it.ArrayStart, prev)
		}
		prev = it.ArrayEnd()
	}
	if prev > fileSize {
		return formatErrorf("blocks end at %d past end of %d byte file", prev, fileSize)
	}
	return nil
}
