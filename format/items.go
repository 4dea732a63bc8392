// Copyright 2023 The kastore Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package format

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"
	"unicode/utf8"
)

const (
	itemKeyStartOff   = 8
	itemKeyLenOff     = 16
	itemArrayStartOff = 24
	itemLenOff        = 32
)

// Item is the table record describing one stored array.
type Item struct {
	Key        string
	Type       Type
	KeyStart   uint64
	KeyLen     uint64
	ArrayStart uint64
	// Len is the number of elements, not bytes.
	Len uint64
}

// ArrayEnd is the offset one past the last byte of the item's array data.
func (it *Item) ArrayEnd() uint64 {
	return it.ArrayStart + it.Len*uint64(it.Type.Size())
}

func (it *Item) marshalTo(buf []byte) {
	_ = buf[ItemSize-1]
	buf[0] = it.Type.Tag()
	for i := 1; i < itemKeyStartOff; i++ {
		buf[i] = 0
	}
	binary.LittleEndian.PutUint64(buf[itemKeyStartOff:], it.KeyStart)
	binary.LittleEndian.PutUint64(buf[itemKeyLenOff:], it.KeyLen)
	binary.LittleEndian.PutUint64(buf[itemArrayStartOff:], it.ArrayStart)
	binary.LittleEndian.PutUint64(buf[itemLenOff:], it.Len)
}

// AppendItems appends the fixed-width table records for items, which must
// already be sorted by key.
func AppendItems(dst []byte, items []Item) []byte {
	var buf [ItemSize]byte
	for i := range items {
		items[i].marshalTo(buf[:])
		dst = append(dst, buf[:]...)
	}
	return dst
}

// DecodeItems parses and validates the item table of container, which
// must be the complete file contents described by h.  Keys are copied
// out of container.
func DecodeItems(container []byte, h Header) ([]Item, error) {
	return decodeItems(container, h, func(b []byte) string { return string(b) })
}

// DecodeItemsWith is DecodeItems with a caller-chosen conversion from key
// bytes to string, e.g. one that aliases a long-lived mapping.
func DecodeItemsWith(container []byte, h Header, keyString func([]byte) string) ([]Item, error) {
	return decodeItems(container, h, keyString)
}

func decodeItems(container []byte, h Header, keyString func([]byte) string) ([]Item, error) {
	size := uint64(len(container))
	if h.FileSize != size {
		return nil, formatErrorf("header declares file size %d but file is %d bytes", h.FileSize, size)
	}
	if size < HeaderSize || h.ItemCount > (size-HeaderSize)/ItemSize {
		return nil, formatErrorf("item table of %d entries doesn't fit in %d byte file", h.ItemCount, size)
	}
	tableEnd := h.TableEnd()

	items := make([]Item, h.ItemCount)
	var prevKey []byte
	for i := range items {
		off := HeaderSize + uint64(i)*ItemSize
		rec := container[off : off+ItemSize]

		typ, err := TypeFromTag(rec[0])
		if err != nil {
			return nil, &FileFormatError{Reason: fmt.Sprintf("item %d", i), cause: err}
		}
		it := Item{
			Type:       typ,
			KeyStart:   binary.LittleEndian.Uint64(rec[itemKeyStartOff:]),
			KeyLen:     binary.LittleEndian.Uint64(rec[itemKeyLenOff:]),
			ArrayStart: binary.LittleEndian.Uint64(rec[itemArrayStartOff:]),
			Len:        binary.LittleEndian.Uint64(rec[itemLenOff:]),
		}

		if it.KeyStart < tableEnd || it.KeyStart > size || it.KeyLen > size-it.KeyStart {
			return nil, formatErrorf("item %d: key [%d, +%d) outside payload [%d, %d)", i, it.KeyStart, it.KeyLen, tableEnd, size)
		}
		width := uint64(typ.Size())
		if it.ArrayStart < tableEnd || it.ArrayStart > size || it.Len > (size-it.ArrayStart)/width {
			return nil, formatErrorf("item %d: array of %d %s at %d outside payload [%d, %d)", i, it.Len, typ, it.ArrayStart, tableEnd, size)
		}

		key := container[it.KeyStart : it.KeyStart+it.KeyLen]
		if !utf8.Valid(key) {
			return nil, formatErrorf("item %d: key is not valid UTF-8", i)
		}
		if i > 0 && bytes.Compare(key, prevKey) <= 0 {
			return nil, formatErrorf("item %d: keys not in strictly increasing order", i)
		}
		prevKey = key
		it.Key = keyString(key)
		items[i] = it
	}

	if err := CheckLayout(items, tableEnd, size); err != nil {
		return nil, err
	}

	return items, nil
}

// Find looks up key in items, which must be sorted by key.
func Find(items []Item, key string) (Item, bool) {
	i := sort.Search(len(items), func(i int) bool {
		return items[i].Key >= key
	})
	if i < len(items) && items[i].Key == key {
		return items[i], true
	}
	return Item{}, false
}
