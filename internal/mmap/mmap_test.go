// Copyright 2023 The kastore Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package mmap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data")
	contents := []byte("hello, mapped world")
	require.NoError(t, os.WriteFile(path, contents, 0644))

	m, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, len(contents), m.Len())
	assert.Equal(t, contents, m.Bytes())
	assert.NoError(t, m.AdviseRandom())

	require.NoError(t, m.Close())
	// should be safe for multiple closes
	require.NoError(t, m.Close())
	assert.Nil(t, m.Bytes())
	assert.ErrorIs(t, m.AdviseRandom(), ErrClosed)
}

func TestOpen_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	m, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Len())
	assert.Empty(t, m.Bytes())
	assert.NoError(t, m.AdviseRandom())
	assert.NoError(t, m.Close())
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open("/doesnt/exist")
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Open(t.TempDir())
	assert.Error(t, err)
}
