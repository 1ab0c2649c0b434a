package tabular_test

import (
	"strings"
	"testing"

	"github.com/wildgraph/jaguarkg/pkg/tabular"
)

func TestReadCSV(t *testing.T) {
	t.Run("reads header and rows", func(t *testing.T) {
		in := "id,name\n1,Sombra\n2,Ixchel\n"
		got, err := tabular.ReadCSV(strings.NewReader(in))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cols := got.Columns(); len(cols) != 2 || cols[0] != "id" || cols[1] != "name" {
			t.Fatalf("unexpected columns: %#v", cols)
		}
		if got.NumRows() != 2 {
			t.Fatalf("want 2 rows, got %d", got.NumRows())
		}
		v, ok := got.Cell(1, "name")
		if !ok || v.Text() != "Ixchel" {
			t.Fatalf("unexpected cell: %#v", v)
		}
	})

	t.Run("trims header whitespace", func(t *testing.T) {
		in := " id , name \nx,y\n"
		got, err := tabular.ReadCSV(strings.NewReader(in))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := got.Column("name"); !ok {
			t.Fatalf("want trimmed column name, got %#v", got.Columns())
		}
	})

	t.Run("empty cells become null", func(t *testing.T) {
		in := "id,cause_of_death\nSombra,\n"
		got, err := tabular.ReadCSV(strings.NewReader(in))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		v, _ := got.Cell(0, "cause_of_death")
		if !v.IsNull() {
			t.Fatalf("want null, got %#v", v)
		}
	})

	t.Run("short row errors", func(t *testing.T) {
		in := "id,name,gender\nSombra\n"
		if _, err := tabular.ReadCSV(strings.NewReader(in)); err == nil {
			t.Fatalf("expected error")
		}
	})
}

func TestValueText(t *testing.T) {
	cases := []struct {
		name string
		in   tabular.Value
		want string
	}{
		{"null is empty", tabular.Null(), ""},
		{"string passes through", tabular.String("hi"), "hi"},
		{"bool is lower-case", tabular.Bool(true), "true"},
		{"int is base ten", tabular.Int(42), "42"},
		{"float is compact", tabular.Float(2.5), "2.5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.in.Text(); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestAppendRow(t *testing.T) {
	tbl := tabular.NewTable([]string{"a", "b"})
	if err := tbl.AppendRow([]tabular.Value{tabular.String("x")}); err == nil {
		t.Fatalf("expected width error")
	}
	if err := tbl.AppendRow([]tabular.Value{tabular.String("x"), tabular.Null()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tbl.NumRows() != 1 {
		t.Fatalf("want 1 row, got %d", tbl.NumRows())
	}
}
