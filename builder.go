// Copyright 2021 The kastore Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package kastore

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/bpowers/kastore/format"
)

var errFinalized = errors.New("kastore: builder already finalized")

// Builder collects key/array pairs and writes them to a container in one
// pass.  The whole key set is needed before writing because every offset
// in the file depends on it.
type Builder struct {
	resultPath string
	engineName Engine
	engine     format.Engine
	logger     *slog.Logger
	data       map[string]Array
	finalized  bool
}

// NewBuilder creates a Builder that writes the container at
// dataFilePath when finalized.
func NewBuilder(dataFilePath string, opts ...Option) (*Builder, error) {
	o, impl, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	// we want to write to a new file and do an atomic rename when we're done on disk
	dataFilePath, err = filepath.Abs(dataFilePath)
	if err != nil {
		return nil, fmt.Errorf("filepath.Abs: %w", err)
	}
	return &Builder{
		resultPath: dataFilePath,
		engineName: o.engine,
		engine:     impl,
		logger:     o.logger,
		data:       make(map[string]Array),
	}, nil
}

// Put adds a key/array pair.  Arrays are not copied, and must not be
// modified until Finalize returns.
func (b *Builder) Put(key string, a Array) error {
	if b.finalized {
		return errFinalized
	}
	if !utf8.ValidString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	if _, ok := b.data[key]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateKey, key)
	}
	b.data[key] = a
	return nil
}

// Len returns the number of arrays added so far.
func (b *Builder) Len() int {
	return len(b.data)
}

// Finalize encodes everything added with Put and moves the finished file
// into place.  Readers never observe a partially written container.
func (b *Builder) Finalize() error {
	if b.finalized {
		return errFinalized
	}
	b.finalized = true

	dir := filepath.Dir(b.resultPath)
	dataFile, err := os.CreateTemp(dir, "kastore-builder.*.kas")
	if err != nil {
		return fmt.Errorf("CreateTemp failed (may need permissions for dir %q containing dataFile): %w", dir, err)
	}
	tmpPath := dataFile.Name()
	ok := false
	defer func() {
		if !ok {
			_ = dataFile.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if err := b.engine.Encode(dataFile, b.data); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if err := dataFile.Sync(); err != nil {
		return fmt.Errorf("f.Sync: %w", err)
	}
	stat, err := dataFile.Stat()
	if err != nil {
		return fmt.Errorf("f.Stat: %w", err)
	}
	if err := dataFile.Close(); err != nil {
		return fmt.Errorf("f.Close: %w", err)
	}

	// make the file read-only
	if err := os.Chmod(tmpPath, 0444); err != nil {
		return fmt.Errorf("os.Chmod(0444): %w", err)
	}
	if err := os.Rename(tmpPath, b.resultPath); err != nil {
		return fmt.Errorf("os.Rename: %w", err)
	}
	ok = true

	b.logger.Debug("wrote container",
		"path", b.resultPath,
		"engine", b.engineName,
		"items", len(b.data),
		"bytes", stat.Size())

	// we're done with this -- nil it so it can be GC'd earlier
	b.data = nil
	return nil
}
