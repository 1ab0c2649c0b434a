package ottr_test

import (
	"strings"
	"testing"

	"github.com/aleksaelezovic/trigo/pkg/rdf"

	"github.com/wildgraph/jaguarkg/pkg/ottr"
	"github.com/wildgraph/jaguarkg/pkg/tabular"
)

const demoTemplate = `
@prefix ottr: <http://ns.ottr.xyz/0.4/> .
@prefix ont:  <http://example.org/ontology#> .
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .
@prefix xsd:  <http://www.w3.org/2001/XMLSchema#> .

ont:JaguarInstance [
    ottr:IRI ?id,
    xsd:string ?name,
    xsd:boolean ?is_killed,
    xsd:date ?first_sighted
] :: {
    ottr:Triple(?id, a, ont:Jaguar),
    ottr:Triple(?id, rdfs:label, ?name),
    ottr:Triple(?id, ont:wasKilled, ?is_killed),
    ottr:Triple(?id, ont:hasMonitoringStartDate, ?first_sighted)
} .
`

func TestParse(t *testing.T) {
	t.Run("parses template head and body", func(t *testing.T) {
		tpl, err := ottr.Parse(demoTemplate)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tpl.IRI != "http://example.org/ontology#JaguarInstance" {
			t.Fatalf("unexpected template IRI: %q", tpl.IRI)
		}
		params := tpl.Parameters()
		want := []string{"id", "name", "is_killed", "first_sighted"}
		if len(params) != len(want) {
			t.Fatalf("unexpected parameters: %#v", params)
		}
		for i := range want {
			if params[i] != want[i] {
				t.Fatalf("parameter %d: got %q, want %q", i, params[i], want[i])
			}
		}
		if len(tpl.Patterns) != 4 {
			t.Fatalf("want 4 patterns, got %d", len(tpl.Patterns))
		}
	})

	t.Run("a keyword expands to rdf:type", func(t *testing.T) {
		tpl, err := ottr.Parse(demoTemplate)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		pred, ok := tpl.Patterns[0].Predicate.Term.(*rdf.NamedNode)
		if !ok || pred.IRI != "http://www.w3.org/1999/02/22-rdf-syntax-ns#type" {
			t.Fatalf("unexpected predicate: %#v", tpl.Patterns[0].Predicate.Term)
		}
	})

	t.Run("undeclared prefix errors", func(t *testing.T) {
		in := `ont:T [ ?x ] :: { ottr:Triple(?x, a, ont:Thing) } .`
		if _, err := ottr.Parse(in); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("non-triple instance errors", func(t *testing.T) {
		in := `
@prefix ottr: <http://ns.ottr.xyz/0.4/> .
@prefix ex: <http://example.org/> .
ex:T [ ?x ] :: { ex:Other(?x, a, ex:Thing) } .
`
		_, err := ottr.Parse(in)
		if err == nil || !strings.Contains(err.Error(), "ottr:Triple") {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("empty document errors", func(t *testing.T) {
		if _, err := ottr.Parse("  # nothing here\n"); err == nil {
			t.Fatalf("expected error")
		}
	})
}

func TestExpand(t *testing.T) {
	tpl, err := ottr.Parse(demoTemplate)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	newRow := func(t *testing.T, id, name, killed, sighted tabular.Value) *tabular.Table {
		t.Helper()
		tbl := tabular.NewTable([]string{"id", "name", "is_killed", "first_sighted"})
		if err := tbl.AppendRow([]tabular.Value{id, name, killed, sighted}); err != nil {
			t.Fatalf("append row: %v", err)
		}
		return tbl
	}

	t.Run("expands one row to four triples", func(t *testing.T) {
		tbl := newRow(t,
			tabular.String("http://example.org/resource#Sombra"),
			tabular.String("Sombra"),
			tabular.String("false"),
			tabular.String("2016-09-12"),
		)
		triples, err := tpl.Expand(tbl)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(triples) != 4 {
			t.Fatalf("want 4 triples, got %d", len(triples))
		}

		subj, ok := triples[0].Subject.(*rdf.NamedNode)
		if !ok || subj.IRI != "http://example.org/resource#Sombra" {
			t.Fatalf("unexpected subject: %#v", triples[0].Subject)
		}
		label, ok := triples[1].Object.(*rdf.Literal)
		if !ok || label.Value != "Sombra" {
			t.Fatalf("unexpected label object: %#v", triples[1].Object)
		}
		killed, ok := triples[2].Object.(*rdf.Literal)
		if !ok || killed.Value != "false" || killed.Datatype.IRI != rdf.XSDBoolean.IRI {
			t.Fatalf("unexpected killed object: %#v", triples[2].Object)
		}
		sighted, ok := triples[3].Object.(*rdf.Literal)
		if !ok || sighted.Value != "2016-09-12" || sighted.Datatype.IRI != rdf.XSDDate.IRI {
			t.Fatalf("unexpected sighted object: %#v", triples[3].Object)
		}
	})

	t.Run("null cell skips only its pattern", func(t *testing.T) {
		tbl := newRow(t,
			tabular.String("http://example.org/resource#Valerio"),
			tabular.Null(),
			tabular.String("false"),
			tabular.String("2018-03-04"),
		)
		triples, err := tpl.Expand(tbl)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(triples) != 3 {
			t.Fatalf("want 3 triples, got %d", len(triples))
		}
	})

	t.Run("missing parameter column errors", func(t *testing.T) {
		tbl := tabular.NewTable([]string{"id", "name"})
		if _, err := tpl.Expand(tbl); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("bad boolean errors with row context", func(t *testing.T) {
		tbl := newRow(t,
			tabular.String("http://example.org/resource#X"),
			tabular.String("X"),
			tabular.String("maybe"),
			tabular.String("2020-01-01"),
		)
		_, err := tpl.Expand(tbl)
		if err == nil || !strings.Contains(err.Error(), "is_killed") {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("bad date errors", func(t *testing.T) {
		tbl := newRow(t,
			tabular.String("http://example.org/resource#X"),
			tabular.String("X"),
			tabular.String("true"),
			tabular.String("12/09/2016"),
		)
		if _, err := tpl.Expand(tbl); err == nil {
			t.Fatalf("expected error")
		}
	})
}
