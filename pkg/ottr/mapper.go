package ottr

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aleksaelezovic/trigo/pkg/rdf"

	"github.com/wildgraph/jaguarkg/pkg/tabular"
)

// Expand instantiates the template once per table row and returns the
// produced triples. The table must carry every declared parameter as a
// column; extra columns are ignored. A pattern whose argument is bound to
// a null cell is skipped for that row, so optional fields simply produce
// no triple. Duplicate triples across rows are emitted as-is; the graph
// store deduplicates them on insert.
func (t *Template) Expand(table *tabular.Table) ([]*rdf.Triple, error) {
	indices := make(map[string]int, len(t.Params))
	for _, param := range t.Params {
		idx, ok := table.Column(param.Name)
		if !ok {
			return nil, fmt.Errorf("table is missing template parameter column %q", param.Name)
		}
		indices[param.Name] = idx
	}
	types := make(map[string]ParamType, len(t.Params))
	for _, param := range t.Params {
		types[param.Name] = param.Type
	}

	var triples []*rdf.Triple
	for i := 0; i < table.NumRows(); i++ {
		row := table.Row(i)
	patterns:
		for _, pattern := range t.Patterns {
			args := [3]rdf.Term{}
			for slot, arg := range []Argument{pattern.Subject, pattern.Predicate, pattern.Object} {
				if arg.Var == "" {
					args[slot] = arg.Term
					continue
				}
				v := row[indices[arg.Var]]
				if v.IsNull() {
					continue patterns
				}
				term, err := valueToTerm(v, types[arg.Var])
				if err != nil {
					return nil, fmt.Errorf("row %d, parameter %q: %w", i, arg.Var, err)
				}
				args[slot] = term
			}
			triples = append(triples, rdf.NewTriple(args[0], args[1], args[2]))
		}
	}
	return triples, nil
}

// valueToTerm converts a table cell to an RDF term. A declared parameter
// type wins; TypeAuto infers from the runtime value, treating http(s)
// strings as resource references.
func valueToTerm(v tabular.Value, pt ParamType) (rdf.Term, error) {
	switch pt {
	case TypeIRI:
		return rdf.NewNamedNode(v.Text()), nil
	case TypeString:
		return rdf.NewLiteral(v.Text()), nil
	case TypeBoolean:
		if v.Kind() == tabular.KindBool {
			return rdf.NewBooleanLiteral(v.Bool()), nil
		}
		b, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(v.Text())))
		if err != nil {
			return nil, fmt.Errorf("not a boolean: %q", v.Text())
		}
		return rdf.NewBooleanLiteral(b), nil
	case TypeInteger:
		if v.Kind() == tabular.KindInt {
			return rdf.NewIntegerLiteral(v.Int()), nil
		}
		n, err := strconv.ParseInt(strings.TrimSpace(v.Text()), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("not an integer: %q", v.Text())
		}
		return rdf.NewIntegerLiteral(n), nil
	case TypeDate:
		s := strings.TrimSpace(v.Text())
		if _, err := time.Parse("2006-01-02", s); err != nil {
			return nil, fmt.Errorf("not a date: %q", v.Text())
		}
		return rdf.NewLiteralWithDatatype(s, rdf.XSDDate), nil
	default:
		return inferTerm(v), nil
	}
}

func inferTerm(v tabular.Value) rdf.Term {
	switch v.Kind() {
	case tabular.KindBool:
		return rdf.NewBooleanLiteral(v.Bool())
	case tabular.KindInt:
		return rdf.NewIntegerLiteral(v.Int())
	case tabular.KindFloat:
		return rdf.NewDoubleLiteral(v.Float())
	default:
		s := v.Text()
		if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
			return rdf.NewNamedNode(s)
		}
		return rdf.NewLiteral(s)
	}
}
