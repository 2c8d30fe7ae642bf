// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hpctoolkit

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func putU8(buf []byte, off uint64, v uint8)   { buf[off] = v }
func putU16(buf []byte, off uint64, v uint16) { binary.LittleEndian.PutUint16(buf[off:], v) }
func putU32(buf []byte, off uint64, v uint32) { binary.LittleEndian.PutUint32(buf[off:], v) }
func putU64(buf []byte, off uint64, v uint64) { binary.LittleEndian.PutUint64(buf[off:], v) }
func putF64(buf []byte, off uint64, v float64) {
	binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(v))
}
func putString(buf []byte, off uint64, s string) {
	copy(buf[off:], s)
	buf[off+uint64(len(s))] = 0
}

// buildMetaDB assembles a synthetic meta.db exercising one "time"-aliased
// metric (inclusive via "execution" scope, exclusive via "function"
// scope) and a two-level context tree: a synthetic entry root (ctxId 1)
// with two function children (ctxId 2 "Leaf_Func", ctxId 3 "Second_Func").
// The first child carries one flex word (a variable-stride record), so
// the second child's offset can only be found by actually honoring
// nFlexWords rather than assuming a fixed 32-byte stride.
func buildMetaDB() []byte {
	buf := make([]byte, 1000)
	putString(buf, 10, "meta")

	// Section directory.
	putU64(buf, fileHeaderOffset+4*8, 0)   // Metrics size (unused)
	putU64(buf, fileHeaderOffset+4*8+8, 200) // Metrics offset
	putU64(buf, fileHeaderOffset+7*8, 400)   // pContext

	// Metrics section header at 200.
	putU64(buf, 200, 220) // pMetrics
	putU32(buf, 208, 1)   // nMetrics
	putU8(buf, 212, 26)   // szMetric
	putU8(buf, 213, 10)   // szScopeInst

	// Metric record at 220.
	putU64(buf, 220, 260) // pName
	putU64(buf, 228, 280) // pScopeInsts
	putU64(buf, 236, 0)   // reserved
	putU16(buf, 244, 2)   // nScopeInsts
	putString(buf, 260, "realtime (ns)")

	// Scope instances at 280 (stride 10).
	putU64(buf, 280, 320) // pScope
	putU16(buf, 288, 1)   // propMetricID (inclusive)
	putU64(buf, 290, 340) // pScope
	putU16(buf, 298, 2)   // propMetricID (exclusive)

	// Scope-name structs.
	putU64(buf, 320, 380)
	putU64(buf, 340, 390)
	putString(buf, 380, "execution")
	putString(buf, 390, "function")

	// Context section at 400.
	putU64(buf, 400, 500) // pEntryPoints
	putU16(buf, 408, 1)   // nEntryPoints
	putU8(buf, 410, 22)   // szEntryPoint

	// Entry point record at 500. Its two children occupy
	// [600, 600+40+40) = [600, 680): the first is 32+1*8=40 bytes
	// (one flex word, the function's pName), the second is a leaf at
	// the correctly-computed offset 640, not the fixed-stride 632.
	putU64(buf, 500, 80)  // szChildren: total span of both child records (40+40)
	putU64(buf, 508, 600) // pChildren
	putU32(buf, 516, 1)   // ctxId
	putU16(buf, 520, 1)   // entryPoint == 1 (main)

	// First child record at 600: fixed header (24B) + 8B reserved gap
	// + 1 flex word (pFunction) = 40 bytes total, ending at 640.
	putU64(buf, 600, 0)   // szChildren (leaf)
	putU64(buf, 608, 0)   // pChildren
	putU32(buf, 616, 2)   // ctxId
	putU16(buf, 620, 0)   // reserved
	putU8(buf, 622, 0)    // lexicalType == function
	putU8(buf, 623, 1)    // nFlexWords
	putU64(buf, 632, 700) // pFunction (flex word starts at +32, not +24)

	// Second child record at 640 (only reachable by honoring the first
	// record's variable stride): fixed header + 1 flex word = 40 bytes.
	putU64(buf, 640, 0)   // szChildren (leaf)
	putU64(buf, 648, 0)   // pChildren
	putU32(buf, 656, 3)   // ctxId
	putU16(buf, 660, 0)   // reserved
	putU8(buf, 662, 0)    // lexicalType == function
	putU8(buf, 663, 1)    // nFlexWords
	putU64(buf, 672, 750) // pFunction

	// Function record at 700 (36 bytes).
	putU64(buf, 700, 800) // pName
	putU64(buf, 708, 0)   // pModule
	putU64(buf, 716, 0)   // offset
	putU64(buf, 724, 0)   // pFile
	putU32(buf, 732, 0)   // line
	putString(buf, 800, "Leaf_Func")

	// Second function record at 750 (36 bytes).
	putU64(buf, 750, 850) // pName
	putU64(buf, 758, 0)   // pModule
	putU64(buf, 766, 0)   // offset
	putU64(buf, 774, 0)   // pFile
	putU32(buf, 782, 0)   // line
	putString(buf, 850, "Second_Func")

	return buf
}

// buildProfileDB assembles the matching summary profile: ctx 1 carries
// only the inclusive time metric (100.0); ctx 2 carries both the
// inclusive (40.0) and exclusive (35.0) readings; ctx 3 carries only
// the inclusive (20.0) reading.
func buildProfileDB() []byte {
	buf := make([]byte, 450)
	putString(buf, 10, "prof")

	putU64(buf, fileHeaderOffset+8, 100) // pProfileInfos

	putU64(buf, 100, 200) // pProfiles

	putU64(buf, 200, 4)   // nValues
	putU64(buf, 208, 400) // pValues
	putU32(buf, 216, 3)   // nCtxs
	putU32(buf, 220, 0)   // reserved
	putU64(buf, 224, 300) // pCtxIndices

	// Context index (stride 12).
	putU32(buf, 300, 1) // ctxId
	putU64(buf, 304, 0) // startIndex
	putU32(buf, 312, 2) // ctxId
	putU64(buf, 316, 1) // startIndex
	putU32(buf, 324, 3) // ctxId
	putU64(buf, 328, 3) // startIndex

	// Values (stride 10).
	putU16(buf, 400, 1)
	putF64(buf, 402, 100.0)
	putU16(buf, 410, 1)
	putF64(buf, 412, 40.0)
	putU16(buf, 420, 2)
	putF64(buf, 422, 35.0)
	putU16(buf, 430, 1)
	putF64(buf, 432, 20.0)

	return buf
}

func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "meta.db"), buildMetaDB(), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "profile.db"), buildProfileDB(), 0o644))
	return dir
}

func TestReadV4EndToEnd(t *testing.T) {
	dir := writeFixture(t)

	gf, err := ReadV4(dir, Filters{})
	require.NoError(t, err)
	require.Len(t, gf.Roots, 1)

	root := gf.Roots[0]
	require.Equal(t, "entry", root.Frame.Name)
	require.Len(t, root.Children, 2)

	// The second child is only reachable by honoring the first child's
	// variable-length flex-word stride, not a fixed 32-byte one.
	child := root.Children[0]
	require.Equal(t, "Leaf_Func", child.Frame.Name)
	require.Equal(t, 1, child.Depth)

	second := root.Children[1]
	require.Equal(t, "Second_Func", second.Frame.Name)
	require.Equal(t, 1, second.Depth)

	rootRow, ok := gf.Table.RowForNode(root)
	require.True(t, ok)
	v, ok := gf.Table.F64("time (inc)", rootRow)
	require.True(t, ok)
	require.Equal(t, 100.0, v)

	childRow, ok := gf.Table.RowForNode(child)
	require.True(t, ok)
	inc, ok := gf.Table.F64("time (inc)", childRow)
	require.True(t, ok)
	require.Equal(t, 40.0, inc)
	exc, ok := gf.Table.F64("time", childRow)
	require.True(t, ok)
	require.Equal(t, 35.0, exc)

	secondRow, ok := gf.Table.RowForNode(second)
	require.True(t, ok)
	secondInc, ok := gf.Table.F64("time (inc)", secondRow)
	require.True(t, ok)
	require.Equal(t, 20.0, secondInc)
}

func TestReadV4MinParentPercentFilter(t *testing.T) {
	dir := writeFixture(t)

	minPct := 50.0 // child is 40% of parent's 100.0, below threshold
	gf, err := ReadV4(dir, Filters{MinParentPercent: &minPct})
	require.NoError(t, err)
	require.Len(t, gf.Roots, 1)
	require.Empty(t, gf.Roots[0].Children)
}

func TestOpenMissingDB(t *testing.T) {
	dir := t.TempDir()
	_, err := Open(dir)
	require.Error(t, err)
}
