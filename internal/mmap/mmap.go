// Copyright 2023 The kastore Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package mmap maps whole files read-only into memory.
package mmap

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"
)

// ErrClosed is returned when using a Mapping after Close.
var ErrClosed = errors.New("mmap: mapping is closed")

// Mapping is a read-only view of a file's contents.
type Mapping struct {
	data   []byte
	closed atomic.Bool
	unmap  func([]byte) error
}

// Open maps the file at path.  An empty file yields an empty Mapping.
func Open(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("f.Stat: %w", err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("mmap %s: %w", path, errIsDir)
	}

	size := fi.Size()
	if size == 0 {
		return &Mapping{}, nil
	}
	if size < 0 || int64(int(size)) != size {
		return nil, fmt.Errorf("mmap %s: invalid file size %d", path, size)
	}

	data, unmap, err := osMap(f, int(size))
	if err != nil {
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}

	return &Mapping{
		data:  data,
		unmap: unmap,
	}, nil
}

// Bytes returns the mapped file contents.  The slice must not be written
// to, and must not be used after Close.
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

func (m *Mapping) Len() int {
	return len(m.data)
}

// AdviseRandom tells the kernel to expect random access.
func (m *Mapping) AdviseRandom() error {
	if m.closed.Load() {
		return ErrClosed
	}
	if len(m.data) == 0 {
		return nil
	}
	return osAdviseRandom(m.data)
}

// Close unmaps the file.  It is safe to call more than once.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	data := m.data
	m.data = nil
	if m.unmap != nil && data != nil {
		return m.unmap(data)
	}
	return nil
}
