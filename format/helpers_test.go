// Copyright 2023 The kastore Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package format

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// encode builds a container by hand, independent of any engine.
func encode(t testing.TB, data map[string]Array) []byte {
	l, err := Plan(data)
	require.NoError(t, err)

	h := l.Header()
	buf := bytes.NewBuffer(h.AppendTo(nil))
	buf.Write(AppendItems(nil, l.Items))
	for _, it := range l.Items {
		buf.WriteString(it.Key)
	}
	for i, a := range l.Arrays {
		buf.Write(make([]byte, l.Padding(i)))
		require.NoError(t, binary.Write(buf, binary.LittleEndian, a.Interface()))
	}
	require.Equal(t, int(h.FileSize), buf.Len())
	return buf.Bytes()
}

func decodeHeader(t testing.TB, container []byte) Header {
	var h Header
	require.NoError(t, h.UnmarshalBytes(container))
	return h
}
