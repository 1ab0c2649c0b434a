package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// ReadCSV reads a delimited text file with a header row into a Table.
// Every cell is read as a String value; empty cells become Null. Rows
// narrower than the header are an error.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	columns := make([]string, len(header))
	for i, col := range header {
		columns[i] = strings.TrimSpace(col)
	}
	t := NewTable(columns)

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if len(rec) < len(columns) {
			return nil, fmt.Errorf("row has %d columns, want at least %d", len(rec), len(columns))
		}
		row := make([]Value, len(columns))
		for i := range columns {
			if rec[i] == "" {
				row[i] = Null()
				continue
			}
			row[i] = String(rec[i])
		}
		if err := t.AppendRow(row); err != nil {
			return nil, err
		}
	}
	return t, nil
}
