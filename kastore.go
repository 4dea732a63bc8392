// Copyright 2023 The kastore Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package kastore stores named, one-dimensional numeric arrays in a
// single file and reads them back losslessly.
//
// The container layout is described in package format.  Two engines
// implement it: EngineReference, a portable streaming implementation, and
// EngineNative, which uses block copies and memory mapping.  Either engine
// reads the other's files, and both write identical bytes.
package kastore

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/bpowers/kastore/format"
	"github.com/bpowers/kastore/internal/engine/native"
	"github.com/bpowers/kastore/internal/engine/reference"
	"github.com/bpowers/kastore/internal/mmap"
)

type (
	Array   = format.Array
	Type    = format.Type
	Element = format.Element

	FileFormatError      = format.FileFormatError
	VersionTooOldError   = format.VersionTooOldError
	VersionTooNewError   = format.VersionTooNewError
	UnsupportedTypeError = format.UnsupportedTypeError
)

const (
	Int8    = format.Int8
	Uint8   = format.Uint8
	Int32   = format.Int32
	Uint32  = format.Uint32
	Int64   = format.Int64
	Uint64  = format.Uint64
	Float32 = format.Float32
	Float64 = format.Float64
)

var (
	// ErrFileFormat matches every error caused by a malformed container.
	ErrFileFormat = format.ErrFileFormat
	// ErrInvalidKey is returned for keys that aren't valid UTF-8.
	ErrInvalidKey = format.ErrInvalidKey

	ErrUnknownEngine = errors.New("kastore: unknown engine")
	ErrDuplicateKey  = errors.New("kastore: duplicate key")
)

// NewArray wraps values without copying them.
func NewArray[T Element](values []T) Array {
	return format.NewArray(values)
}

// ArrayOf wraps v, which must be a slice of one of the supported element
// types.
func ArrayOf(v any) (Array, error) {
	return format.ArrayOf(v)
}

// Values returns a's elements as a []T, or false if a holds a different
// element type.
func Values[T Element](a Array) ([]T, bool) {
	return format.Values[T](a)
}

// Engine selects an implementation of the container format.
type Engine string

const (
	EngineReference Engine = "reference"
	EngineNative    Engine = "native"

	DefaultEngine = EngineNative
)

// Engines lists every valid Engine.
var Engines = []Engine{EngineReference, EngineNative}

func (e Engine) impl() (format.Engine, error) {
	switch e {
	case EngineReference:
		return reference.New(), nil
	case EngineNative:
		return native.New(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, string(e))
}

// Option configures Dump, Load, Open and NewBuilder.
type Option func(*options)

type options struct {
	engine Engine
	logger *slog.Logger
}

// WithEngine selects the engine used to encode or decode.  The default is
// DefaultEngine.
func WithEngine(e Engine) Option {
	return func(opts *options) {
		opts.engine = e
	}
}

// WithLogger sets an optional logger for progress updates.  If not
// provided, no logging output will be produced.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

func newOptions(opts []Option) (options, format.Engine, error) {
	o := options{
		engine: DefaultEngine,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	impl, err := o.engine.impl()
	if err != nil {
		return options{}, nil, err
	}
	return o, impl, nil
}

// EncodeContainer returns the encoded form of data.
func EncodeContainer(data map[string]Array, opts ...Option) ([]byte, error) {
	_, impl, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := impl.Encode(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeContainer decodes an encoded container.  The result does not
// share memory with buf.
func DecodeContainer(buf []byte, opts ...Option) (map[string]Array, error) {
	_, impl, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	return impl.Decode(bytes.NewReader(buf))
}

// Dump writes data to a new container at path, replacing any existing
// file atomically.
func Dump(path string, data map[string]Array, opts ...Option) error {
	b, err := NewBuilder(path, opts...)
	if err != nil {
		return err
	}
	for k, a := range data {
		if err := b.Put(k, a); err != nil {
			return err
		}
	}
	return b.Finalize()
}

// Load reads every array stored at path.  The returned arrays own their
// memory.
func Load(path string, opts ...Option) (map[string]Array, error) {
	o, impl, err := newOptions(opts)
	if err != nil {
		return nil, err
	}

	var data map[string]Array
	switch o.engine {
	case EngineNative:
		data, err = loadMapped(path)
	default:
		data, err = loadStream(path, impl)
	}
	if err != nil {
		return nil, err
	}

	o.logger.Debug("loaded container", "path", path, "engine", o.engine, "items", len(data))
	return data, nil
}

func loadMapped(path string) (map[string]Array, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mmap.Open(%s): %w", path, err)
	}
	defer func() {
		_ = m.Close()
	}()

	c, err := native.Parse(m.Bytes(), nil)
	if err != nil {
		return nil, err
	}
	return c.Map(true), nil
}

func loadStream(path string, impl format.Engine) (map[string]Array, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("os.Open(%s): %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	return impl.Decode(bufio.NewReader(f))
}
