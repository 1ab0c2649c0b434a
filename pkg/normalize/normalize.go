// Package normalize prepares raw observation tables for template-based
// graph mapping. It expands multi-valued fields into a flat cross-product,
// derives resource IRIs from cleaned labels, and projects the result into
// the column order a mapping template declares.
package normalize

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wildgraph/jaguarkg/pkg/tabular"
)

// ListSeparator is the inner separator of multi-valued fields.
const ListSeparator = ";"

// MissingColumnError reports a required source column that is absent from
// the input table. The normalizer fails fast on this: null-filling the
// column would silently misassign values to template parameters downstream.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing required column %q", e.Column)
}

// ErrEmptyDataset is returned only when Options.FailOnEmpty is set and the
// input table has no rows.
var ErrEmptyDataset = errors.New("input table has no rows")

// IRIColumn derives a new Target column holding ResourcePrefix + trimmed
// Source value for every row.
type IRIColumn struct {
	Source string
	Target string
}

// Options configures a normalization pass.
type Options struct {
	// ListColumns are processed in order; each cell is split on
	// ListSeparator and the table expands one row per substring.
	ListColumns []string

	// ResourcePrefix is the namespace every derived IRI starts with.
	ResourcePrefix string

	// IRIColumns are the categorical fields that get a derived IRI column.
	IRIColumns []IRIColumn

	// FailOnEmpty treats a zero-row input table as ErrEmptyDataset.
	// Off by default: an empty export normalizes to an empty table.
	FailOnEmpty bool
}

// Normalize expands every listed multi-valued column into its row-wise
// cross-product, trims each split value, and appends the derived IRI
// columns. The input table is not modified.
func Normalize(t *tabular.Table, opts Options) (*tabular.Table, error) {
	if opts.ResourcePrefix == "" {
		return nil, errors.New("resource prefix must not be empty")
	}
	for _, col := range opts.ListColumns {
		if _, ok := t.Column(col); !ok {
			return nil, &MissingColumnError{Column: col}
		}
	}
	for _, ic := range opts.IRIColumns {
		if _, ok := t.Column(ic.Source); !ok {
			return nil, &MissingColumnError{Column: ic.Source}
		}
	}
	if opts.FailOnEmpty && t.NumRows() == 0 {
		return nil, ErrEmptyDataset
	}

	// Sequential fold: each pass replaces the working table with its
	// expansion over one list column. After all passes every row carries
	// a single trimmed value per list column, and the row set is the full
	// cross-product of the original split values.
	work := copyTable(t)
	for _, col := range opts.ListColumns {
		work = explode(work, col)
	}

	return appendIRIColumns(work, opts)
}

func copyTable(t *tabular.Table) *tabular.Table {
	out := tabular.NewTable(t.Columns())
	for i := 0; i < t.NumRows(); i++ {
		_ = out.AppendRow(t.CloneRow(i))
	}
	return out
}

// explode splits each cell of the named column on ListSeparator and emits
// one row per trimmed substring, all other values copied unchanged. Null
// cells pass through as a single row with a Null in place.
func explode(t *tabular.Table, column string) *tabular.Table {
	out := tabular.NewTable(t.Columns())
	idx, _ := t.Column(column)
	for i := 0; i < t.NumRows(); i++ {
		cell := t.Row(i)[idx]
		if cell.IsNull() {
			_ = out.AppendRow(t.CloneRow(i))
			continue
		}
		for _, part := range strings.Split(cell.Text(), ListSeparator) {
			row := t.CloneRow(i)
			row[idx] = tabular.String(strings.TrimSpace(part))
			_ = out.AppendRow(row)
		}
	}
	return out
}

// appendIRIColumns widens the table with one derived column per IRIColumn.
// Values are trimmed before concatenation so that two rows with the same
// cleaned label produce byte-identical IRIs; the downstream mapping engine
// relies on that to deduplicate resources across rows.
func appendIRIColumns(t *tabular.Table, opts Options) (*tabular.Table, error) {
	columns := append([]string{}, t.Columns()...)
	for _, ic := range opts.IRIColumns {
		columns = append(columns, ic.Target)
	}
	out := tabular.NewTable(columns)

	for i := 0; i < t.NumRows(); i++ {
		row := t.CloneRow(i)
		for _, ic := range opts.IRIColumns {
			src, _ := t.Cell(i, ic.Source)
			row = append(row, DeriveIRI(opts.ResourcePrefix, src))
		}
		if err := out.AppendRow(row); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// DeriveIRI builds prefix + trimmed label. Internal characters other than
// the list separator are passed through uninterpreted. A Null label yields
// a Null IRI.
func DeriveIRI(prefix string, label tabular.Value) tabular.Value {
	if label.IsNull() {
		return tabular.Null()
	}
	return tabular.String(prefix + strings.TrimSpace(label.Text()))
}

// Project returns a new table holding exactly the given columns, in the
// given order. A missing column is a MissingColumnError: the caller's
// template maps columns positionally, so a silent drop would produce
// wrong graph data.
func Project(t *tabular.Table, columns []string) (*tabular.Table, error) {
	indices := make([]int, len(columns))
	for i, col := range columns {
		idx, ok := t.Column(col)
		if !ok {
			return nil, &MissingColumnError{Column: col}
		}
		indices[i] = idx
	}
	out := tabular.NewTable(columns)
	for i := 0; i < t.NumRows(); i++ {
		src := t.Row(i)
		row := make([]tabular.Value, len(indices))
		for j, idx := range indices {
			row[j] = src[idx]
		}
		if err := out.AppendRow(row); err != nil {
			return nil, err
		}
	}
	return out, nil
}
