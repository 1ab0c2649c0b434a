package sparqljson_test

import (
	"encoding/json"
	"testing"

	"github.com/wildgraph/jaguarkg/pkg/sparqljson"
	"github.com/wildgraph/jaguarkg/pkg/tabular"
)

func TestFromTable(t *testing.T) {
	t.Run("empty table keeps vars and empty bindings", func(t *testing.T) {
		tbl := tabular.NewTable([]string{"a", "b"})
		rs := sparqljson.FromTable(tbl)
		out, err := sparqljson.Marshal(rs)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var decoded struct {
			Head struct {
				Vars []string `json:"vars"`
			} `json:"head"`
			Results struct {
				Bindings []map[string]any `json:"bindings"`
			} `json:"results"`
		}
		if err := json.Unmarshal(out, &decoded); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if len(decoded.Head.Vars) != 2 || decoded.Head.Vars[0] != "a" || decoded.Head.Vars[1] != "b" {
			t.Fatalf("unexpected vars: %#v", decoded.Head.Vars)
		}
		if decoded.Results.Bindings == nil || len(decoded.Results.Bindings) != 0 {
			t.Fatalf("want empty non-null bindings array, got %#v", decoded.Results.Bindings)
		}
	})

	t.Run("classifies mixed row", func(t *testing.T) {
		tbl := tabular.NewTable([]string{"iri", "label", "killed", "count", "gone"})
		_ = tbl.AppendRow([]tabular.Value{
			tabular.String("http://example.org/resource#Sombra"),
			tabular.String("Sombra"),
			tabular.Bool(true),
			tabular.Int(3),
			tabular.Null(),
		})
		rs := sparqljson.FromTable(tbl)
		if len(rs.Results.Bindings) != 1 {
			t.Fatalf("want 1 binding, got %d", len(rs.Results.Bindings))
		}
		b := rs.Results.Bindings[0]

		if got := b["iri"]; got.Type != "uri" || got.Value != "http://example.org/resource#Sombra" {
			t.Fatalf("unexpected iri binding: %#v", got)
		}
		if got := b["label"]; got.Type != "literal" || got.Value != "Sombra" || got.Datatype != "" {
			t.Fatalf("unexpected label binding: %#v", got)
		}
		if got := b["killed"]; got.Value != "true" || got.Datatype != sparqljson.XSDBoolean {
			t.Fatalf("unexpected boolean binding: %#v", got)
		}
		if got := b["count"]; got.Value != "3" || got.Datatype != sparqljson.XSDInteger {
			t.Fatalf("unexpected integer binding: %#v", got)
		}
		if _, ok := b["gone"]; ok {
			t.Fatalf("null cell must be omitted, got %#v", b["gone"])
		}
	})

	t.Run("https IRIs are uri bindings", func(t *testing.T) {
		tbl := tabular.NewTable([]string{"v"})
		_ = tbl.AppendRow([]tabular.Value{tabular.String("https://example.org/x")})
		rs := sparqljson.FromTable(tbl)
		if got := rs.Results.Bindings[0]["v"]; got.Type != "uri" {
			t.Fatalf("unexpected binding: %#v", got)
		}
	})

	t.Run("float falls back to plain literal", func(t *testing.T) {
		tbl := tabular.NewTable([]string{"v"})
		_ = tbl.AppendRow([]tabular.Value{tabular.Float(2.5)})
		rs := sparqljson.FromTable(tbl)
		if got := rs.Results.Bindings[0]["v"]; got.Type != "literal" || got.Value != "2.5" || got.Datatype != "" {
			t.Fatalf("unexpected binding: %#v", got)
		}
	})
}
