// Copyright 2021 The kastore Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package kastore

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/dgryski/go-farm"

	"github.com/bpowers/kastore/format"
	"github.com/bpowers/kastore/internal/engine/native"
	"github.com/bpowers/kastore/internal/mmap"
)

// File is a read-only container backed by a memory mapping.  Get returns
// arrays that own their memory.  View avoids the copy, but its arrays point
// into the mapping and must not be used after Close.
type File struct {
	path   string
	m      *mmap.Mapping
	c      *native.Container
	logger *slog.Logger
	closed atomic.Bool
}

// Open maps the container at path and validates its header and item
// table.  The engine option is ignored: Open always maps the file.
func Open(path string, opts ...Option) (*File, error) {
	o, _, err := newOptions(opts)
	if err != nil {
		return nil, err
	}

	m, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mmap.Open(%s): %w", path, err)
	}
	if err := m.AdviseRandom(); err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("madvise: %w", err)
	}

	c, err := native.Parse(m.Bytes(), nil)
	if err != nil {
		_ = m.Close()
		return nil, err
	}

	o.logger.Debug("opened container", "path", path, "items", len(c.Items), "bytes", m.Len())

	return &File{
		path:   path,
		m:      m,
		c:      c,
		logger: o.logger,
	}, nil
}

// Len returns the number of stored arrays.
func (f *File) Len() int {
	return len(f.c.Items)
}

// Header returns the decoded file header.
func (f *File) Header() format.Header {
	return f.c.Header
}

// Keys returns every key in ascending byte order.
func (f *File) Keys() []string {
	keys := make([]string, len(f.c.Items))
	for i := range f.c.Items {
		keys[i] = f.c.Items[i].Key
	}
	return keys
}

// Items returns the item table, sorted by key.
func (f *File) Items() []format.Item {
	return append([]format.Item(nil), f.c.Items...)
}

// Get looks up key with a binary search over the item table and returns a
// copy of its array.
func (f *File) Get(key string) (Array, bool) {
	a, ok := f.View(key)
	if !ok {
		return Array{}, false
	}
	return a.Clone(), true
}

// View is like Get, but the returned array is borrowed from the mapping
// whenever alignment allows.  Reading it after Close crashes the process.
func (f *File) View(key string) (Array, bool) {
	if f.closed.Load() {
		return Array{}, false
	}
	return f.c.Get(key)
}

// Fingerprint is a 64-bit farmhash of the whole file, useful for telling
// containers apart.
func (f *File) Fingerprint() uint64 {
	if f.closed.Load() {
		return 0
	}
	return farm.Fingerprint64(f.c.Bytes())
}

// Close unmaps the file.  It is safe to call more than once.
func (f *File) Close() error {
	if f.closed.Swap(true) {
		return nil
	}
	f.logger.Debug("closed container", "path", f.path)
	return f.m.Close()
}
