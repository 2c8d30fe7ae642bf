// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hpctoolkit

import (
	"regexp"
	"strings"

	"github.com/ianlancetaylor/demangle"
)

// sourceFile is a dictionary entry for a file_ptr flex field.
type sourceFile struct {
	Path string
}

// loadModule is a dictionary entry for a module_ptr flex field.
type loadModule struct {
	Path string
}

// function is a dictionary entry for a function_ptr flex field.
type function struct {
	Name     string
	Line     uint32
	Offset   uint64
	FileID   uint64 // 0 if absent
	ModuleID uint64 // 0 if absent
}

// dicts holds the three lazily-populated, offset-keyed dictionaries
// spec.md §4.2 describes: functions, source files, load modules. Each
// entry is parsed on first reference and cached under its absolute
// meta.db offset.
type dicts struct {
	functions   map[uint64]*function
	sourceFiles map[uint64]*sourceFile
	loadModules map[uint64]*loadModule
}

func newDicts() *dicts {
	return &dicts{
		functions:   map[uint64]*function{},
		sourceFiles: map[uint64]*sourceFile{},
		loadModules: map[uint64]*loadModule{},
	}
}

func (d *dicts) sourceFileAt(c *cursor, ptr uint64) (*sourceFile, error) {
	if sf, ok := d.sourceFiles[ptr]; ok {
		return sf, nil
	}
	pPath, err := c.u64(ptr + 8)
	if err != nil {
		return nil, err
	}
	path, err := c.cstring(pPath)
	if err != nil {
		return nil, err
	}
	sf := &sourceFile{Path: path}
	d.sourceFiles[ptr] = sf
	return sf, nil
}

func (d *dicts) loadModuleAt(c *cursor, ptr uint64) (*loadModule, error) {
	if lm, ok := d.loadModules[ptr]; ok {
		return lm, nil
	}
	pPath, err := c.u64(ptr + 8)
	if err != nil {
		return nil, err
	}
	path, err := c.cstring(pPath)
	if err != nil {
		return nil, err
	}
	lm := &loadModule{Path: path}
	d.loadModules[ptr] = lm
	return lm, nil
}

// functionAt parses (or returns the cached) function record at ptr:
// (pName: u64, pModule: u64, offset: u64, pFile: u64, line: u32).
func (d *dicts) functionAt(c *cursor, ptr uint64) (*function, error) {
	if fn, ok := d.functions[ptr]; ok {
		return fn, nil
	}

	pName, err := c.u64(ptr + 0)
	if err != nil {
		return nil, err
	}
	pModule, err := c.u64(ptr + 8)
	if err != nil {
		return nil, err
	}
	offset, err := c.u64(ptr + 16)
	if err != nil {
		return nil, err
	}
	pFile, err := c.u64(ptr + 24)
	if err != nil {
		return nil, err
	}
	line, err := c.u32(ptr + 32)
	if err != nil {
		return nil, err
	}

	rawName, err := c.cstring(pName)
	if err != nil {
		return nil, err
	}

	fn := &function{Name: cleanFunctionName(rawName), Line: line, Offset: offset}
	if pFile != 0 {
		if _, err := d.sourceFileAt(c, pFile); err != nil {
			return nil, err
		}
		fn.FileID = pFile
	}
	if pModule != 0 {
		if _, err := d.loadModuleAt(c, pModule); err != nil {
			return nil, err
		}
		fn.ModuleID = pModule
	}

	d.functions[ptr] = fn
	return fn, nil
}

var mpiPrefix = regexp.MustCompile(`^P?MPI_[a-zA-Z_]+`)
var mpiFull = regexp.MustCompile(`^P?MPI_.+$`)

// cleanFunctionName applies spec.md §2's demangle pass (the teacher's own
// ianlancetaylor/demangle, previously wired only into the out-of-scope
// memheat visualizer) followed by the original reader's four trims, in
// the original's order: MPI-prefix truncation, bracketed clone-suffix
// removal, dotted clone-index removal, and '@'-versioned-symbol removal
// (SPEC_FULL.md §4, supplemented from original_source/).
func cleanFunctionName(raw string) string {
	name := demangle.Filter(raw)

	if mpiFull.MatchString(name) {
		if loc := mpiPrefix.FindString(name); loc != "" {
			name = loc
		}
	}
	if idx := strings.Index(name, " ["); idx >= 0 {
		name = name[:idx]
	}
	if idx := strings.Index(name, "."); idx >= 0 {
		name = name[:idx]
	}
	if idx := strings.Index(name, "@"); idx >= 0 {
		name = name[:idx]
	}
	return name
}
