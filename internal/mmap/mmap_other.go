// Copyright 2023 The kastore Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

//go:build !unix

package mmap

import (
	"errors"
	"io"
	"os"
)

var errIsDir = errors.New("is a directory")

// osMap reads the file onto the heap on platforms without mmap support.
func osMap(f *os.File, size int) ([]byte, func([]byte) error, error) {
	data := make([]byte, size)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, nil, err
	}
	return data, nil, nil
}

func osAdviseRandom([]byte) error {
	return nil
}
