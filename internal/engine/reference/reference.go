// Copyright 2023 The kastore Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package reference is the portable kastore engine.  It streams through
// bufio, converts every element with encoding/binary, and returns arrays
// that own their memory.
package reference

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/bpowers/kastore/format"
)

const defaultBufferSize = 1024 * 1024

// Engine implements format.Engine.
type Engine struct{}

var _ format.Engine = Engine{}

// New returns the reference engine.
func New() Engine {
	return Engine{}
}

// Encode writes data to w as a single container.
func (Engine) Encode(w io.Writer, data map[string]format.Array) error {
	l, err := format.Plan(data)
	if err != nil {
		return err
	}

	bw := bufio.NewWriterSize(w, defaultBufferSize)
	h := l.Header()
	written, err := h.WriteTo(bw)
	if err != nil {
		return fmt.Errorf("header.WriteTo: %w", err)
	}

	var rec [format.ItemSize]byte
	for i := range l.Items {
		n, err := bw.Write(format.AppendItems(rec[:0], l.Items[i:i+1]))
		if err != nil {
			return fmt.Errorf("bufio.Write item %d: %w", i, err)
		}
		written += int64(n)
	}
	for i := range l.Items {
		n, err := bw.WriteString(l.Items[i].Key)
		if err != nil {
			return fmt.Errorf("bufio.Write key %d: %w", i, err)
		}
		written += int64(n)
	}

	// zeroed buffer used as padding
	var zeroBuf [8]byte
	for i := range l.Items {
		pad := l.Padding(i)
		n, err := bw.Write(zeroBuf[:pad])
		if err != nil {
			return fmt.Errorf("bufio.Write padding %d: %w", i, err)
		}
		written += int64(n)
		m, err := writeArray(bw, l.Arrays[i])
		if err != nil {
			return fmt.Errorf("writeArray %d: %w", i, err)
		}
		written += m
	}

	if uint64(written) != h.FileSize {
		panic(fmt.Errorf("invariant broken: wrote %d bytes for a %d byte container", written, h.FileSize))
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("bufio.Flush: %w", err)
	}
	return nil
}

func writeArray(w *bufio.Writer, a format.Array) (int64, error) {
	var buf [8]byte
	var written int64
	put := func(b []byte) error {
		n, err := w.Write(b)
		written += int64(n)
		return err
	}

	switch v := a.Interface().(type) {
	case []int8:
		for _, x := range v {
			if err := w.WriteByte(byte(x)); err != nil {
				return written, err
			}
			written++
		}
	case []uint8:
		return writeBytes(w, v)
	case []int32:
		for _, x := range v {
			binary.LittleEndian.PutUint32(buf[:4], uint32(x))
			if err := put(buf[:4]); err != nil {
				return written, err
			}
		}
	case []uint32:
		for _, x := range v {
			binary.LittleEndian.PutUint32(buf[:4], x)
			if err := put(buf[:4]); err != nil {
				return written, err
			}
		}
	case []int64:
		for _, x := range v {
			binary.LittleEndian.PutUint64(buf[:8], uint64(x))
			if err := put(buf[:8]); err != nil {
				return written, err
			}
		}
	case []uint64:
		for _, x := range v {
			binary.LittleEndian.PutUint64(buf[:8], x)
			if err := put(buf[:8]); err != nil {
				return written, err
			}
		}
	case []float32:
		for _, x := range v {
			binary.LittleEndian.PutUint32(buf[:4], math.Float32bits(x))
			if err := put(buf[:4]); err != nil {
				return written, err
			}
		}
	case []float64:
		for _, x := range v {
			binary.LittleEndian.PutUint64(buf[:8], math.Float64bits(x))
			if err := put(buf[:8]); err != nil {
				return written, err
			}
		}
	default:
		return 0, &format.UnsupportedTypeError{Value: v}
	}
	return written, nil
}

func writeBytes(w *bufio.Writer, b []byte) (int64, error) {
	n, err := w.Write(b)
	return int64(n), err
}

// Decode reads one container from r.  r must be positioned at the start
// of the container and must end where the container ends.
func (Engine) Decode(r io.Reader) (map[string]format.Array, error) {
	var headerBuf [format.HeaderSize]byte
	n, err := io.ReadFull(r, headerBuf[:])
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("io.ReadFull: %w", err)
	}

	var h format.Header
	if err := h.UnmarshalBytes(headerBuf[:n]); err != nil {
		return nil, err
	}

	// read at most one byte past the declared size, enough to tell that
	// the input is too long without buffering all of it
	limit := int64(math.MaxInt64)
	if h.FileSize < format.HeaderSize {
		limit = 1
	} else if remaining := h.FileSize - format.HeaderSize; remaining < math.MaxInt64 {
		limit = int64(remaining) + 1
	}
	rest, err := io.ReadAll(io.LimitReader(r, limit))
	if err != nil {
		return nil, fmt.Errorf("io.ReadAll: %w", err)
	}
	if err := h.CheckFileSize(uint64(format.HeaderSize + len(rest))); err != nil {
		return nil, err
	}

	container := make([]byte, 0, format.HeaderSize+len(rest))
	container = append(container, headerBuf[:]...)
	container = append(container, rest...)

	items, err := format.DecodeItems(container, h)
	if err != nil {
		return nil, err
	}

	result := make(map[string]format.Array, len(items))
	for _, it := range items {
		result[it.Key] = readArray(it.Type, int(it.Len), container[it.ArrayStart:it.ArrayEnd()])
	}
	return result, nil
}

func readArray(typ format.Type, n int, b []byte) format.Array {
	switch typ {
	case format.Int8:
		v := make([]int8, n)
		for i := range v {
			v[i] = int8(b[i])
		}
		return format.NewArray(v)
	case format.Uint8:
		v := make([]uint8, n)
		copy(v, b)
		return format.NewArray(v)
	case format.Int32:
		v := make([]int32, n)
		for i := range v {
			v[i] = int32(binary.LittleEndian.Uint32(b[4*i:]))
		}
		return format.NewArray(v)
	case format.Uint32:
		v := make([]uint32, n)
		for i := range v {
			v[i] = binary.LittleEndian.Uint32(b[4*i:])
		}
		return format.NewArray(v)
	case format.Int64:
		v := make([]int64, n)
		for i := range v {
			v[i] = int64(binary.LittleEndian.Uint64(b[8*i:]))
		}
		return format.NewArray(v)
	case format.Uint64:
		v := make([]uint64, n)
		for i := range v {
			v[i] = binary.LittleEndian.Uint64(b[8*i:])
		}
		return format.NewArray(v)
	case format.Float32:
		v := make([]float32, n)
		for i := range v {
			v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
		}
		return format.NewArray(v)
	case format.Float64:
		v := make([]float64, n)
		for i := range v {
			v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[8*i:]))
		}
		return format.NewArray(v)
	}
	panic("invariant broken: unvalidated type " + typ.String())
}
