// Copyright 2023 The kastore Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package format

import (
	"errors"
	"fmt"
)

// ErrFileFormat matches (via errors.Is) every structural problem found
// while decoding a container, including version skew.
var ErrFileFormat = errors.New("kastore: bad file format")

// FileFormatError describes a malformed container.
type FileFormatError struct {
	Reason string
	cause  error
}

func (e *FileFormatError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("kastore: bad file format: %s: %s", e.Reason, e.cause)
	}
	return "kastore: bad file format: " + e.Reason
}

func (e *FileFormatError) Unwrap() []error {
	if e.cause != nil {
		return []error{ErrFileFormat, e.cause}
	}
	return []error{ErrFileFormat}
}

func formatErrorf(format string, args ...any) error {
	return &FileFormatError{Reason: fmt.Sprintf(format, args...)}
}

// VersionTooOldError is returned for a container whose major version
// predates the oldest one this package reads.
type VersionTooOldError struct {
	Major    uint16
	Minor    uint16
	MinMajor uint16
}

func (e *VersionTooOldError) Error() string {
	return fmt.Sprintf("kastore: file version %d.%d is too old; oldest supported major version is %d",
		e.Major, e.Minor, e.MinMajor)
}

func (e *VersionTooOldError) Unwrap() error { return ErrFileFormat }

// VersionTooNewError is returned for a container written by a newer,
// incompatible release.
type VersionTooNewError struct {
	Major    uint16
	Minor    uint16
	MaxMajor uint16
}

func (e *VersionTooNewError) Error() string {
	return fmt.Sprintf("kastore: file version %d.%d is too new; newest supported major version is %d",
		e.Major, e.Minor, e.MaxMajor)
}

func (e *VersionTooNewError) Unwrap() error { return ErrFileFormat }

// UnsupportedTypeError is returned when a Go value can't be stored as an Array.
type UnsupportedTypeError struct {
	Value any
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("kastore: unsupported array type %T", e.Value)
}
