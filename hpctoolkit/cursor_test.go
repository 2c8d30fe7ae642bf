// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hpctoolkit

import (
	"testing"

	"github.com/aclements/go-cct/cct"
	"github.com/stretchr/testify/require"
)

func TestCursorTypedReads(t *testing.T) {
	buf := make([]byte, 32)
	putU8(buf, 0, 0x42)
	putU16(buf, 2, 0x1234)
	putU32(buf, 4, 0xdeadbeef)
	putU64(buf, 8, 0x0123456789abcdef)

	c := newCursor("test", buf)

	u8, err := c.u8(0)
	require.NoError(t, err)
	require.Equal(t, uint8(0x42), u8)

	u16, err := c.u16(2)
	require.NoError(t, err)
	require.Equal(t, uint16(0x1234), u16)

	u32, err := c.u32(4)
	require.NoError(t, err)
	require.Equal(t, uint32(0xdeadbeef), u32)

	u64, err := c.u64(8)
	require.NoError(t, err)
	require.Equal(t, uint64(0x0123456789abcdef), u64)
}

func TestCursorOutOfBounds(t *testing.T) {
	c := newCursor("test", make([]byte, 4))
	_, err := c.u64(0)
	require.Error(t, err)
	require.True(t, cct.Is(err, cct.FormatErrorKind))
}

func TestCursorCString(t *testing.T) {
	buf := make([]byte, 16)
	putString(buf, 0, "hi")

	c := newCursor("test", buf)
	s, err := c.cstring(0)
	require.NoError(t, err)
	require.Equal(t, "hi", s)
}

func TestCursorCStringUnterminated(t *testing.T) {
	buf := []byte{'a', 'b', 'c'}
	c := newCursor("test", buf)
	_, err := c.cstring(0)
	require.Error(t, err)
}

func TestCursorCStringNonASCII(t *testing.T) {
	buf := []byte{'a', 0x80, 0}
	c := newCursor("test", buf)
	_, err := c.cstring(0)
	require.Error(t, err)
}

func TestRecordOffset(t *testing.T) {
	require.Equal(t, uint64(100), recordOffset(100, 0, 24))
	require.Equal(t, uint64(124), recordOffset(100, 1, 24))
	require.Equal(t, uint64(148), recordOffset(100, 2, 24))
}
