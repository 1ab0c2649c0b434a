package graphstore

import (
	"testing"

	"github.com/aleksaelezovic/trigo/pkg/rdf"

	"github.com/wildgraph/jaguarkg/pkg/tabular"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestInsertAndCount(t *testing.T) {
	s := openStore(t)

	triples := []*rdf.Triple{
		rdf.NewTriple(
			rdf.NewNamedNode("http://example.org/resource#Sombra"),
			rdf.NewNamedNode("http://www.w3.org/2000/01/rdf-schema#label"),
			rdf.NewLiteral("Sombra"),
		),
		rdf.NewTriple(
			rdf.NewNamedNode("http://example.org/resource#Sombra"),
			rdf.NewNamedNode("http://example.org/ontology#wasKilled"),
			rdf.NewBooleanLiteral(false),
		),
	}
	if err := s.Insert(triples); err != nil {
		t.Fatalf("insert: %v", err)
	}
	count, err := s.Count()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("want 2 triples, got %d", count)
	}
}

func TestInsertDeduplicates(t *testing.T) {
	s := openStore(t)

	triple := rdf.NewTriple(
		rdf.NewNamedNode("http://example.org/resource#Ixchel"),
		rdf.NewNamedNode("http://www.w3.org/1999/02/22-rdf-syntax-ns#type"),
		rdf.NewNamedNode("http://example.org/ontology#Jaguar"),
	)
	if err := s.Insert([]*rdf.Triple{triple, triple}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	count, err := s.Count()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("want 1 triple after dedup, got %d", count)
	}
}

func TestLoadTurtle(t *testing.T) {
	s := openStore(t)

	doc := `
@prefix ont: <http://example.org/ontology#> .
@prefix : <http://example.org/resource#> .
:Sonora a ont:State ; ont:locatedInCountry :Mexico .
`
	if err := s.LoadTurtle(doc); err != nil {
		t.Fatalf("load turtle: %v", err)
	}
	count, err := s.Count()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("want 2 triples, got %d", count)
	}

	t.Run("malformed document errors", func(t *testing.T) {
		if err := s.LoadTurtle("<unterminated"); err == nil {
			t.Fatalf("expected error")
		}
	})
}

func TestQuery(t *testing.T) {
	s := openStore(t)

	if err := s.LoadTurtle(`
@prefix ont: <http://example.org/ontology#> .
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .
@prefix : <http://example.org/resource#> .
:Sombra a ont:Jaguar ; rdfs:label "Sombra" .
:Ixchel a ont:Jaguar ; rdfs:label "Ixchel" .
`); err != nil {
		t.Fatalf("load turtle: %v", err)
	}

	t.Run("select projects in query order", func(t *testing.T) {
		got, err := s.Query(`
PREFIX ont: <http://example.org/ontology#>
PREFIX rdfs: <http://www.w3.org/2000/01/rdf-schema#>
SELECT ?jaguar ?label WHERE {
  ?jaguar a ont:Jaguar .
  ?jaguar rdfs:label ?label .
}`)
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		cols := got.Columns()
		if len(cols) != 2 || cols[0] != "jaguar" || cols[1] != "label" {
			t.Fatalf("unexpected columns: %#v", cols)
		}
		if got.NumRows() != 2 {
			t.Fatalf("want 2 rows, got %d", got.NumRows())
		}
		for i := 0; i < got.NumRows(); i++ {
			iri, _ := got.Cell(i, "jaguar")
			if iri.Kind() != tabular.KindString || iri.Str() == "" {
				t.Fatalf("unexpected jaguar cell: %#v", iri)
			}
		}
	})

	t.Run("ask yields boolean table", func(t *testing.T) {
		got, err := s.Query(`
PREFIX ont: <http://example.org/ontology#>
ASK { ?x a ont:Jaguar }`)
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		cols := got.Columns()
		if len(cols) != 1 || cols[0] != "boolean" {
			t.Fatalf("unexpected columns: %#v", cols)
		}
		v, _ := got.Cell(0, "boolean")
		if !v.Bool() {
			t.Fatalf("want true, got %#v", v)
		}
	})

	t.Run("parse error surfaces", func(t *testing.T) {
		if _, err := s.Query("SELECT WHERE"); err == nil {
			t.Fatalf("expected error")
		}
	})
}
