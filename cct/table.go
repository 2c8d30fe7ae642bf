// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cct

import "strings"

// InclusiveSuffix is the canonical marker for an inclusive-metric column
// name. spec.md §9 notes two conventions appear in the source ("(inc)" and
// "(i)"); this package adopts " (inc)" as canonical per that section's own
// resolution.
const InclusiveSuffix = " (inc)"

// ColumnType is the materialized type of a Table column.
type ColumnType int

const (
	ColumnF64 ColumnType = iota
	ColumnI64
	ColumnString
)

func (t ColumnType) String() string {
	switch t {
	case ColumnF64:
		return "f64"
	case ColumnI64:
		return "i64"
	case ColumnString:
		return "string"
	default:
		return "unknown"
	}
}

// Column is one dense, typed column of a Table. Exactly one of f64/i64/str
// is populated, selected by Type. valid[i] is false for a cell that had no
// value in its row (a null).
type Column struct {
	Name  string
	Type  ColumnType
	f64   []float64
	i64   []int64
	str   []string
	valid []bool
}

// IsInclusive reports whether this column's name carries the inclusive
// marker (spec.md §3, §4.6).
func (c *Column) IsInclusive() bool {
	return strings.HasSuffix(c.Name, InclusiveSuffix)
}

// F64 returns the float64 value at row, and whether it's present. Only
// valid when c.Type == ColumnF64.
func (c *Column) F64(row int) (float64, bool) {
	if row < 0 || row >= len(c.valid) || !c.valid[row] {
		return 0, false
	}
	return c.f64[row], true
}

// I64 returns the int64 value at row, and whether it's present. Only valid
// when c.Type == ColumnI64.
func (c *Column) I64(row int) (int64, bool) {
	if row < 0 || row >= len(c.valid) || !c.valid[row] {
		return 0, false
	}
	return c.i64[row], true
}

// Str returns the string value at row, and whether it's present. Only
// valid when c.Type == ColumnString.
func (c *Column) Str(row int) (string, bool) {
	if row < 0 || row >= len(c.valid) || !c.valid[row] {
		return "", false
	}
	return c.str[row], true
}

// Table is the row-per-node, column-oriented, typed companion to a
// GraphFrame's tree (spec.md §3). Row order equals node-emission order
// (spec.md §5).
type Table struct {
	Columns          []*Column
	columnByName     map[string]*Column
	Rows             []*Node
	rowByNID         map[int64]int
	InclusiveMetrics []string
	ExclusiveMetrics []string
}

// Column looks up a column by name.
func (t *Table) Column(name string) (*Column, bool) {
	c, ok := t.columnByName[name]
	return c, ok
}

// RowForNode returns the row index for n, and whether n has a row.
func (t *Table) RowForNode(n *Node) (int, bool) {
	i, ok := t.rowByNID[n.NID]
	return i, ok
}

// F64 is a convenience that looks up column and row together.
func (t *Table) F64(col string, row int) (float64, bool) {
	c, ok := t.columnByName[col]
	if !ok {
		return 0, false
	}
	return c.F64(row)
}

// I64 is a convenience that looks up column and row together.
func (t *Table) I64(col string, row int) (int64, bool) {
	c, ok := t.columnByName[col]
	if !ok {
		return 0, false
	}
	return c.I64(row)
}

// Str is a convenience that looks up column and row together.
func (t *Table) Str(col string, row int) (string, bool) {
	c, ok := t.columnByName[col]
	if !ok {
		return "", false
	}
	return c.Str(row)
}

// row is one pass-one entry: an emitted node plus its sparse cell map.
// Cell values are float64, int64, or string; any other type panics when
// Build runs, which would indicate a reader bug, not bad input.
type row struct {
	node  *Node
	cells map[string]interface{}
}

// TableBuilder implements spec.md §4.6/§9's two-pass table construction:
// collect open rows as they're emitted, then promote and materialize
// dense typed columns in Build.
type TableBuilder struct {
	rows    []row
	colSeen map[string]bool
	colOrd  []string
}

// NewTableBuilder returns an empty TableBuilder.
func NewTableBuilder() *TableBuilder {
	return &TableBuilder{colSeen: map[string]bool{}}
}

// AddRow records one emitted node's cells. cells maps column name to a
// float64, int64, or string value; a column need not appear in every row.
func (b *TableBuilder) AddRow(n *Node, cells map[string]interface{}) {
	for name := range cells {
		if !b.colSeen[name] {
			b.colSeen[name] = true
			b.colOrd = append(b.colOrd, name)
		}
	}
	b.rows = append(b.rows, row{node: n, cells: cells})
}

// Build materializes the Table. inclusiveMetrics/exclusiveMetrics name the
// columns (beyond the always-present canonical ones) that should be
// classified as metrics in Table.InclusiveMetrics/ExclusiveMetrics; both
// lists are filtered down to columns that actually appear.
func (b *TableBuilder) Build(inclusiveMetrics, exclusiveMetrics []string) *Table {
	n := len(b.rows)
	t := &Table{
		columnByName: map[string]*Column{},
		Rows:         make([]*Node, n),
		rowByNID:     map[int64]int{},
	}
	for i, r := range b.rows {
		t.Rows[i] = r.node
		t.rowByNID[r.node.NID] = i
	}

	for _, name := range b.colOrd {
		col := &Column{Name: name, Type: inferColumnType(b.rows, name), valid: make([]bool, n)}
		switch col.Type {
		case ColumnF64:
			col.f64 = make([]float64, n)
		case ColumnI64:
			col.i64 = make([]int64, n)
		case ColumnString:
			col.str = make([]string, n)
		}
		for i, r := range b.rows {
			v, ok := r.cells[name]
			if !ok {
				continue
			}
			col.valid[i] = true
			switch col.Type {
			case ColumnF64:
				col.f64[i] = toF64(v)
			case ColumnI64:
				col.i64[i] = v.(int64)
			case ColumnString:
				col.str[i] = v.(string)
			}
		}
		t.Columns = append(t.Columns, col)
		t.columnByName[name] = col
	}

	t.InclusiveMetrics = filterPresent(t.columnByName, inclusiveMetrics)
	t.ExclusiveMetrics = filterPresent(t.columnByName, exclusiveMetrics)
	return t
}

// inferColumnType promotes a column to the most specific common type
// across all rows that set it: ColumnF64 wins over ColumnI64 only if a
// float value is present, string columns stay string (spec.md §4.6).
func inferColumnType(rows []row, name string) ColumnType {
	sawI64, sawF64, sawStr := false, false, false
	for _, r := range rows {
		v, ok := r.cells[name]
		if !ok {
			continue
		}
		switch v.(type) {
		case float64:
			sawF64 = true
		case int64:
			sawI64 = true
		case string:
			sawStr = true
		}
	}
	switch {
	case sawStr:
		return ColumnString
	case sawF64:
		return ColumnF64
	case sawI64:
		return ColumnI64
	default:
		return ColumnF64
	}
}

func toF64(v interface{}) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int64:
		return float64(x)
	default:
		panic("cct: table cell is not float64, int64, or string")
	}
}

func filterPresent(have map[string]*Column, want []string) []string {
	var out []string
	for _, name := range want {
		if _, ok := have[name]; ok {
			out = append(out, name)
		}
	}
	return out
}
