// Copyright 2023 The kastore Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package format

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

const (
	VersionMajor = 1
	VersionMinor = 0

	// MinVersionMajor and MaxVersionMajor bound the major versions this
	// package reads.  Minor versions within that range are additive.
	MinVersionMajor = 1
	MaxVersionMajor = 1

	HeaderSize = 32
	ItemSize   = 40

	headerVersionMajorOff = 8
	headerVersionMinorOff = 10
	headerFileSizeOff     = 16
	headerItemCountOff    = 24
)

// Magic is the 8-byte signature at the start of every container.
var Magic = [8]byte{0x89, 'K', 'A', 'S', '\r', '\n', 0x1a, '\n'}

// Header is the fixed-size block at the start of a container.
type Header struct {
	VersionMajor uint16
	VersionMinor uint16
	FileSize     uint64
	ItemCount    uint64
}

// NewHeader returns the header for a container of itemCount items whose
// key and array blocks take payloadSize bytes (padding included).
func NewHeader(itemCount, payloadSize uint64) Header {
	return Header{
		VersionMajor: VersionMajor,
		VersionMinor: VersionMinor,
		FileSize:     HeaderSize + itemCount*ItemSize + payloadSize,
		ItemCount:    itemCount,
	}
}

// TableEnd is the offset of the first byte after the item table.
func (h *Header) TableEnd() uint64 {
	return HeaderSize + h.ItemCount*ItemSize
}

// MarshalTo encodes h into the first HeaderSize bytes of buf.
func (h *Header) MarshalTo(buf []byte) error {
	if len(buf) < HeaderSize {
		return fmt.Errorf("header buffer too short: %d < %d", len(buf), HeaderSize)
	}
	buf = buf[:HeaderSize]
	copy(buf[:8], Magic[:])
	binary.LittleEndian.PutUint16(buf[headerVersionMajorOff:], h.VersionMajor)
	binary.LittleEndian.PutUint16(buf[headerVersionMinorOff:], h.VersionMinor)
	// reserved
	binary.LittleEndian.PutUint32(buf[12:16], 0)
	binary.LittleEndian.PutUint64(buf[headerFileSizeOff:], h.FileSize)
	binary.LittleEndian.PutUint64(buf[headerItemCountOff:], h.ItemCount)
	return nil
}

// AppendTo appends the encoded header to dst.
func (h *Header) AppendTo(dst []byte) []byte {
	var buf [HeaderSize]byte
	_ = h.MarshalTo(buf[:])
	return append(dst, buf[:]...)
}

func (h *Header) WriteTo(w io.Writer) (n int64, err error) {
	var buf [HeaderSize]byte
	_ = h.MarshalTo(buf[:])
	written, err := w.Write(buf[:])
	if err != nil {
		return int64(written), fmt.Errorf("write: %w", err)
	}
	return int64(written), nil
}

// UnmarshalBytes decodes the header at the start of headerBytes, checking
// the magic number and major version.  It does not check FileSize; see
// CheckFileSize.
func (h *Header) UnmarshalBytes(headerBytes []byte) error {
	if len(headerBytes) < HeaderSize {
		return formatErrorf("file too short for header: %d < %d bytes", len(headerBytes), HeaderSize)
	}
	headerBytes = headerBytes[:HeaderSize]

	if !bytes.Equal(headerBytes[:8], Magic[:]) {
		return formatErrorf("bad magic number %x: not a kastore file or corrupted", headerBytes[:8])
	}

	major := binary.LittleEndian.Uint16(headerBytes[headerVersionMajorOff:])
	minor := binary.LittleEndian.Uint16(headerBytes[headerVersionMinorOff:])
	if major < MinVersionMajor {
		return &VersionTooOldError{Major: major, Minor: minor, MinMajor: MinVersionMajor}
	}
	if major > MaxVersionMajor {
		return &VersionTooNewError{Major: major, Minor: minor, MaxMajor: MaxVersionMajor}
	}

	h.VersionMajor = major
	h.VersionMinor = minor
	h.FileSize = binary.LittleEndian.Uint64(headerBytes[headerFileSizeOff:])
	h.ItemCount = binary.LittleEndian.Uint64(headerBytes[headerItemCountOff:])
	return nil
}

// CheckFileSize verifies the declared file size against the number of
// bytes actually present.
func (h *Header) CheckFileSize(actual uint64) error {
	if h.FileSize != actual {
		return formatErrorf("header declares file size %d but file is %d bytes", h.FileSize, actual)
	}
	return nil
}
