// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hpctoolkit

import (
	"fmt"

	"github.com/aclements/go-cct/cct"
)

const contextSectionIndex = 7

const entryPointKind = 1 // the "main" entry point; others are skipped

// lexicalType values meta.db's context records carry, mapped to cct.Kind
// (spec.md §4.3).
var lexicalKinds = map[uint8]cct.Kind{
	0: cct.KindFunction,
	1: cct.KindLoop,
	2: cct.KindLine,
	3: cct.KindInstruction,
}

// buildTree walks meta.db's Context section from its entry points,
// applying filters and populating a cct.Table from the summary profile
// as it goes.
func buildTree(c *cursor, d *dicts, cat *catalog, summary summaryProfile, filters Filters) (*cct.GraphFrame, error) {
	// Unlike Metrics (a (size, offset) pair), the Context directory slot
	// holds a single pointer: pContext.
	pContext, err := c.u64(fileHeaderOffset + contextSectionIndex*8)
	if err != nil {
		return nil, err
	}

	pEntryPoints, err := c.u64(pContext + 0)
	if err != nil {
		return nil, err
	}
	nEntryPoints, err := c.u16(pContext + 8)
	if err != nil {
		return nil, err
	}
	szEntryPoint, err := c.u8(pContext + 10)
	if err != nil {
		return nil, err
	}

	b := &treeBuilder{
		c:       c,
		d:       d,
		cat:     cat,
		summary: summary,
		filters: filters,
		tb:      cct.NewTableBuilder(),
		nextNID: 1,
	}

	for i := 0; i < int(nEntryPoints); i++ {
		off := recordOffset(pEntryPoints, i, int(szEntryPoint))
		szChildren, err := c.u64(off + 0)
		if err != nil {
			return nil, err
		}
		pChildren, err := c.u64(off + 8)
		if err != nil {
			return nil, err
		}
		ctxID, err := c.u32(off + 16)
		if err != nil {
			return nil, err
		}
		entryPoint, err := c.u16(off + 20)
		if err != nil {
			return nil, err
		}
		if entryPoint != entryPointKind {
			continue
		}

		root := cct.NewNode(int64(ctxID), 0, cct.Frame{Kind: cct.KindEntry, Name: "entry"})
		b.addRow(root, int64(ctxID))
		b.roots = append(b.roots, root)

		totalTime, haveTotal := 0.0, false
		if row, ok := summary[int64(ctxID)]; ok {
			if t, ok := row[cat.timeMetric]; ok {
				totalTime, haveTotal = t, true
			}
		}
		b.appTotalTime, b.haveAppTotal = totalTime, haveTotal

		if b.filters.MaxDepth != nil && *b.filters.MaxDepth == 0 {
			continue
		}
		if err := b.walkChildren(pChildren, szChildren, root, totalTime, haveTotal); err != nil {
			return nil, err
		}
	}

	inclusive, exclusive := metricNames(cat)
	table := b.tb.Build(inclusive, exclusive)

	return &cct.GraphFrame{Roots: b.roots, Table: table}, nil
}

type treeBuilder struct {
	c       *cursor
	d       *dicts
	cat     *catalog
	summary summaryProfile
	filters Filters

	tb      *cct.TableBuilder
	roots   []*cct.Node
	nextNID int64

	appTotalTime float64
	haveAppTotal bool
}

func (b *treeBuilder) nextID() int64 {
	id := b.nextNID
	b.nextNID++
	return id
}

func (b *treeBuilder) addRow(n *cct.Node, ctxID int64) {
	cells := map[string]interface{}{"name": n.Frame.Name, "type": n.Frame.Kind.String()}
	if row, ok := b.summary[ctxID]; ok {
		for k, v := range row {
			cells[k] = v
		}
	}
	b.tb.AddRow(n, cells)
}

// walkChildren mirrors the original reader's _parse_context: a packed
// array of context child records occupying [childrenOffset,
// childrenOffset+totalSize). Each record has a 24-byte fixed header
// (szChildren:u64, pChildren:u64, ctxId:u32, reserved:u16,
// lexicalType:u8, nFlexWords:u8) followed by an 8-byte reserved gap, so
// flex words start at +32; the record's total size — and hence the
// stride to the next sibling — is 32 + nFlexWords*8 and must be
// recomputed per record, not assumed constant.
func (b *treeBuilder) walkChildren(childrenOffset, totalSize uint64, parent *cct.Node, parentTime float64, haveParentTime bool) error {
	final := childrenOffset + totalSize
	for cur := childrenOffset; cur < final; {
		szChildren, err := b.c.u64(cur + 0)
		if err != nil {
			return err
		}
		pChildren, err := b.c.u64(cur + 8)
		if err != nil {
			return err
		}
		ctxID, err := b.c.u32(cur + 16)
		if err != nil {
			return err
		}
		lexicalType, err := b.c.u8(cur + 22)
		if err != nil {
			return err
		}
		nFlexWords, err := b.c.u8(cur + 23)
		if err != nil {
			return err
		}
		flexOffset := cur + 32
		cur += 32 + uint64(nFlexWords)*8

		myTime, haveMyTime := 0.0, false
		if row, ok := b.summary[int64(ctxID)]; ok {
			if t, ok := row[b.cat.timeMetric]; ok {
				myTime, haveMyTime = t, true
			}
		}

		if !b.passesFilters(myTime, haveMyTime, parentTime, haveParentTime) {
			continue
		}

		kind, ok := lexicalKinds[lexicalType]
		if !ok {
			return cct.NewError(cct.FormatErrorKind, "hpctoolkit.buildTree", "unrecognized lexical type %d", lexicalType)
		}

		name, err := b.frameName(kind, nFlexWords, flexOffset)
		if err != nil {
			return err
		}

		depth := parent.Depth + 1
		node := cct.NewNode(int64(ctxID), depth, cct.Frame{Kind: kind, Name: name})
		parent.AddChild(node)
		b.addRow(node, int64(ctxID))

		if b.filters.MaxDepth == nil || depth < *b.filters.MaxDepth {
			if err := b.walkChildren(pChildren, szChildren, node, myTime, haveMyTime); err != nil {
				return err
			}
		}
	}
	return nil
}

// passesFilters applies spec.md §4.4's three ordered pruning rules: a
// node with no time metric is dropped; then min-parent-percent; then
// min-application-percent.
func (b *treeBuilder) passesFilters(myTime float64, haveMyTime bool, parentTime float64, haveParentTime bool) bool {
	if !haveMyTime {
		return false
	}
	if b.filters.MinParentPercent != nil {
		if !haveParentTime || parentTime == 0 || myTime/parentTime*100.0 < *b.filters.MinParentPercent {
			return false
		}
	}
	if b.filters.MinApplicationPercent != nil {
		if !b.haveAppTotal || b.appTotalTime == 0 || myTime/b.appTotalTime*100.0 < *b.filters.MinApplicationPercent {
			return false
		}
	}
	return true
}

// frameName constructs a node's display name per spec.md §4.3: a
// function node names its (demangled, cleaned) function; an instruction
// node names its load module and offset; a loop or line node names its
// source file and line.
func (b *treeBuilder) frameName(kind cct.Kind, nFlexWords uint8, flexOffset uint64) (string, error) {
	if nFlexWords == 0 {
		return kind.String(), nil
	}

	switch kind {
	case cct.KindFunction:
		pFunction, err := b.c.u64(flexOffset)
		if err != nil {
			return "", err
		}
		fn, err := b.d.functionAt(b.c, pFunction)
		if err != nil {
			return "", err
		}
		return fn.Name, nil

	case cct.KindInstruction:
		pModule, err := b.c.u64(flexOffset + 0)
		if err != nil {
			return "", err
		}
		offset, err := b.c.u64(flexOffset + 8)
		if err != nil {
			return "", err
		}
		lm, err := b.d.loadModuleAt(b.c, pModule)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s:%d", lm.Path, offset), nil

	default: // loop, line
		pFile, err := b.c.u64(flexOffset + 0)
		if err != nil {
			return "", err
		}
		line, err := b.c.u32(flexOffset + 8)
		if err != nil {
			return "", err
		}
		sf, err := b.d.sourceFileAt(b.c, pFile)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s:%d", sf.Path, line), nil
	}
}

// metricNames splits the catalog into its inclusive and exclusive
// display-name lists, as cct.TableBuilder.Build expects.
func metricNames(cat *catalog) (inclusive, exclusive []string) {
	seen := map[string]bool{}
	for _, desc := range cat.byID {
		if seen[desc.DisplayName] {
			continue
		}
		seen[desc.DisplayName] = true
		if desc.Inclusive {
			inclusive = append(inclusive, desc.DisplayName)
		} else {
			exclusive = append(exclusive, desc.DisplayName)
		}
	}
	return inclusive, exclusive
}
