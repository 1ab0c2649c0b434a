// Package tabular provides the small in-memory relational table that the
// normalizer, the mapping engine and the query-result translator all share.
// Columns are ordered and order is significant: downstream positional
// mapping depends on it.
package tabular

import (
	"fmt"
	"strconv"
)

// Kind enumerates the closed set of cell value kinds.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindBool
	KindInt
	KindFloat
)

// Value is a tagged-variant table cell. The zero value is Null.
type Value struct {
	kind Kind
	s    string
	b    bool
	i    int64
	f    float64
}

func Null() Value           { return Value{} }
func String(s string) Value { return Value{kind: KindString, s: s} }
func Bool(b bool) Value     { return Value{kind: KindBool, b: b} }
func Int(i int64) Value     { return Value{kind: KindInt, i: i} }
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

func (v Value) Kind() Kind     { return v.kind }
func (v Value) IsNull() bool   { return v.kind == KindNull }
func (v Value) Str() string    { return v.s }
func (v Value) Bool() bool     { return v.b }
func (v Value) Int() int64     { return v.i }
func (v Value) Float() float64 { return v.f }

// Text returns the default string form of the value. Booleans render
// lower-cased, integers in base 10. Null renders empty.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	default:
		return ""
	}
}

// Table is an ordered set of named columns over rows of Values.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]Value
}

// NewTable creates an empty table with the given column names, preserving
// their order.
func NewTable(columns []string) *Table {
	idx := make(map[string]int, len(columns))
	cols := make([]string, len(columns))
	copy(cols, columns)
	for i, c := range cols {
		idx[c] = i
	}
	return &Table{columns: cols, index: idx}
}

// Columns returns the column names in declaration order. Callers must not
// modify the returned slice.
func (t *Table) Columns() []string { return t.columns }

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return len(t.rows) }

// Column returns the index of the named column.
func (t *Table) Column(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// AppendRow adds a row. The row must be exactly as wide as the table.
func (t *Table) AppendRow(row []Value) error {
	if len(row) != len(t.columns) {
		return fmt.Errorf("row has %d values, table has %d columns", len(row), len(t.columns))
	}
	t.rows = append(t.rows, row)
	return nil
}

// Row returns row i. Callers must not modify the returned slice.
func (t *Table) Row(i int) []Value { return t.rows[i] }

// Cell returns the value at row i, named column. The second return is
// false when the column does not exist.
func (t *Table) Cell(i int, column string) (Value, bool) {
	j, ok := t.index[column]
	if !ok {
		return Value{}, false
	}
	return t.rows[i][j], true
}

// CloneRow copies row i into a fresh slice.
func (t *Table) CloneRow(i int) []Value {
	out := make([]Value, len(t.rows[i]))
	copy(out, t.rows[i])
	return out
}
