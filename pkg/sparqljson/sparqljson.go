// Package sparqljson translates tabular query results into the W3C SPARQL
// 1.1 JSON results format (https://www.w3.org/TR/sparql11-results-json/).
package sparqljson

import (
	"encoding/json"
	"strings"

	"github.com/wildgraph/jaguarkg/pkg/tabular"
)

const (
	// XSDBoolean and XSDInteger are the datatype IRIs attached to typed
	// literal bindings.
	XSDBoolean = "http://www.w3.org/2001/XMLSchema#boolean"
	XSDInteger = "http://www.w3.org/2001/XMLSchema#integer"
)

// ResultSet is the wire-format shape of a SELECT result.
type ResultSet struct {
	Head    Head    `json:"head"`
	Results Results `json:"results"`
}

// Head lists the query variables in the source table's column order.
type Head struct {
	Vars []string `json:"vars"`
}

// Results holds the ordered bindings.
type Results struct {
	Bindings []map[string]BindingValue `json:"bindings"`
}

// BindingValue is one typed value in a binding.
type BindingValue struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Datatype string `json:"datatype,omitempty"`
}

// FromTable converts a result table into a ResultSet. head.vars always
// reflects the table's column order, even when there are no rows. Each
// output row has one entry per non-null cell; null cells are omitted
// entirely rather than emitted as empty bindings. The input is not
// modified.
func FromTable(t *tabular.Table) *ResultSet {
	vars := append([]string{}, t.Columns()...)
	bindings := make([]map[string]BindingValue, 0, t.NumRows())
	for i := 0; i < t.NumRows(); i++ {
		row := t.Row(i)
		binding := make(map[string]BindingValue)
		for j, name := range t.Columns() {
			if row[j].IsNull() {
				continue
			}
			binding[name] = classify(row[j])
		}
		bindings = append(bindings, binding)
	}
	return &ResultSet{
		Head:    Head{Vars: vars},
		Results: Results{Bindings: bindings},
	}
}

// classify maps a cell to its wire type. Strings that look like HTTP(S)
// IRIs are resource references; booleans and integers are typed literals;
// everything else falls back to a plain literal of the default string form.
func classify(v tabular.Value) BindingValue {
	switch v.Kind() {
	case tabular.KindString:
		s := v.Str()
		if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
			return BindingValue{Type: "uri", Value: s}
		}
		return BindingValue{Type: "literal", Value: s}
	case tabular.KindBool:
		return BindingValue{Type: "literal", Value: v.Text(), Datatype: XSDBoolean}
	case tabular.KindInt:
		return BindingValue{Type: "literal", Value: v.Text(), Datatype: XSDInteger}
	default:
		return BindingValue{Type: "literal", Value: v.Text()}
	}
}

// Marshal renders a ResultSet as indented JSON.
func Marshal(rs *ResultSet) ([]byte, error) {
	return json.MarshalIndent(rs, "", "  ")
}
