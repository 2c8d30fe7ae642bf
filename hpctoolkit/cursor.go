// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hpctoolkit

import (
	"encoding/binary"
	"math"

	"github.com/aclements/go-cct/cct"
)

// cursor is a random-access, bounds-checked, little-endian view over one
// whole-file byte buffer (spec.md §4.1). Unlike the teacher's bufDecoder,
// which consumes a buffer sequentially, a cursor is addressed by absolute
// file offset throughout, because meta.db/profile.db are a pointer graph,
// not a record stream: every field that names another location in the
// file does so with an absolute offset.
type cursor struct {
	op   string // operation name for error messages, e.g. "hpctoolkit.meta"
	data []byte
}

func newCursor(op string, data []byte) *cursor {
	return &cursor{op: op, data: data}
}

func (c *cursor) boundsError(offset, length uint64) error {
	return cct.NewError(cct.FormatErrorKind, c.op,
		"read of %d bytes at offset %d exceeds buffer of length %d", length, offset, len(c.data))
}

// slice returns the length bytes starting at offset.
func (c *cursor) slice(offset, length uint64) ([]byte, error) {
	if length > uint64(len(c.data)) || offset > uint64(len(c.data))-length {
		return nil, c.boundsError(offset, length)
	}
	return c.data[offset : offset+length], nil
}

func (c *cursor) u8(offset uint64) (uint8, error) {
	b, err := c.slice(offset, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *cursor) u16(offset uint64) (uint16, error) {
	b, err := c.slice(offset, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c *cursor) u32(offset uint64) (uint32, error) {
	b, err := c.slice(offset, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *cursor) u64(offset uint64) (uint64, error) {
	b, err := c.slice(offset, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (c *cursor) f64(offset uint64) (float64, error) {
	b, err := c.slice(offset, 8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}

// cstring reads a NUL-terminated 7-bit-ASCII string starting at offset.
func (c *cursor) cstring(offset uint64) (string, error) {
	if offset > uint64(len(c.data)) {
		return "", c.boundsError(offset, 0)
	}
	for i := offset; i < uint64(len(c.data)); i++ {
		b := c.data[i]
		if b == 0 {
			return string(c.data[offset:i]), nil
		}
		if b >= 0x80 {
			return "", cct.NewError(cct.FormatErrorKind, c.op,
				"non-ASCII byte 0x%02x in string at offset %d", b, offset)
		}
	}
	return "", cct.NewError(cct.FormatErrorKind, c.op,
		"unterminated string starting at offset %d", offset)
}

// recordOffset computes the absolute offset of the index'th record in a
// packed, homogeneous array of records beginning at base, each stride
// bytes wide. stride is supplied by the caller (read from the file, not
// computed from a schema) because hpctoolkit pads records for
// forward-compatible extension (spec.md §4.1).
func recordOffset(base uint64, index int, stride int) uint64 {
	return base + uint64(index)*uint64(stride)
}
