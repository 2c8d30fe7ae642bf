// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package hpctoolkit reads the pair of binary databases (meta.db,
// profile.db) an HPCToolkit v4 profiler run writes into a measurements
// directory, and assembles them into a cct.GraphFrame.
package hpctoolkit

import (
	"os"

	mmap "github.com/edsrzf/mmap-go"

	"github.com/aclements/go-cct/cct"
)

const fileHeaderOffset = 16 // bytes; shared by meta.db and profile.db

// Filters bounds the work a build does, per spec.md §4.4. A nil field
// means "no filter"; MinApplicationPercent/MinParentPercent are
// percentages in [0, 100].
type Filters struct {
	MaxDepth              *int
	MinApplicationPercent *float64
	MinParentPercent      *float64
}

func (f Filters) validate(op string) error {
	if f.MaxDepth != nil && *f.MaxDepth < 0 {
		return cct.NewError(cct.FilterErrorKind, op, "max depth %d is negative", *f.MaxDepth)
	}
	if f.MinApplicationPercent != nil && *f.MinApplicationPercent < 0 {
		return cct.NewError(cct.FilterErrorKind, op, "min application percent %v is negative", *f.MinApplicationPercent)
	}
	if f.MinParentPercent != nil && *f.MinParentPercent < 0 {
		return cct.NewError(cct.FilterErrorKind, op, "min parent percent %v is negative", *f.MinParentPercent)
	}
	return nil
}

// Reader holds the open, memory-mapped meta.db/profile.db pair for one
// measurements directory. Create one with Open; call Close when done.
type Reader struct {
	metaFile, profileFile *os.File
	meta, profile         mmap.MMap
}

// Open discovers meta.db and profile.db in dir (by the ASCII tag at byte
// offset 10, per spec.md §6.1's file discrimination rule, not by file
// name) and memory-maps both.
func Open(dir string) (*Reader, error) {
	const op = "hpctoolkit.Open"

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, cct.WrapError(cct.FileNotFoundErrorKind, op, err)
	}

	var metaPath, profilePath string
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		path := dir + string(os.PathSeparator) + ent.Name()
		tag, err := readTag(path)
		if err != nil {
			continue
		}
		switch tag {
		case "meta":
			metaPath = path
		case "prof":
			profilePath = path
		}
	}
	if metaPath == "" {
		return nil, cct.NewError(cct.FileNotFoundErrorKind, op, "meta.db not found in %s", dir)
	}
	if profilePath == "" {
		return nil, cct.NewError(cct.FileNotFoundErrorKind, op, "profile.db not found in %s", dir)
	}

	r := &Reader{}
	r.metaFile, r.meta, err = mapFile(metaPath)
	if err != nil {
		return nil, cct.WrapError(cct.FileNotFoundErrorKind, op, err)
	}
	r.profileFile, r.profile, err = mapFile(profilePath)
	if err != nil {
		r.Close()
		return nil, cct.WrapError(cct.FileNotFoundErrorKind, op, err)
	}
	return r, nil
}

func mapFile(path string) (*os.File, mmap.MMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return f, data, nil
}

// readTag reads the 4-byte ASCII tag at byte offset 10, where spec.md
// §6.1 says the file format discriminator lives.
func readTag(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf [4]byte
	if _, err := f.ReadAt(buf[:], 10); err != nil {
		return "", err
	}
	for _, b := range buf {
		if b < 0x20 || b >= 0x7f {
			return "", cct.NewError(cct.FormatErrorKind, "hpctoolkit.Open", "non-ASCII tag byte in %s", path)
		}
	}
	return string(buf[:]), nil
}

// Close unmaps both files. It is safe to call on a partially-opened
// Reader.
func (r *Reader) Close() error {
	var firstErr error
	if r.meta != nil {
		if err := r.meta.Unmap(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if r.metaFile != nil {
		if err := r.metaFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if r.profile != nil {
		if err := r.profile.Unmap(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if r.profileFile != nil {
		if err := r.profileFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Read parses the metric catalog, the summary profile, and the context
// tree (in that order — the tree walk needs both) and returns the
// resulting GraphFrame.
func (r *Reader) Read(filters Filters) (*cct.GraphFrame, error) {
	const op = "hpctoolkit.Read"
	if err := filters.validate(op); err != nil {
		return nil, err
	}

	metaCur := newCursor(op+".meta", r.meta)
	profileCur := newCursor(op+".profile", r.profile)

	cat, err := loadMetricCatalog(metaCur)
	if err != nil {
		return nil, err
	}
	summary, err := readSummaryProfile(profileCur, cat)
	if err != nil {
		return nil, err
	}

	d := newDicts()
	return buildTree(metaCur, d, cat, summary, filters)
}

// ReadV4 is the façade entry point spec.md §2 calls
// from_hpctoolkit_v4(dir, filters): open dir, read both databases, and
// build the tree in one call.
func ReadV4(dir string, filters Filters) (*cct.GraphFrame, error) {
	r, err := Open(dir)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return r.Read(filters)
}
