// Package graphstore wraps the embedded trigo triplestore behind the
// narrow surface the rest of the pipeline needs: insert triples, load an
// ontology, run a SPARQL query, get back a table.
package graphstore

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/aleksaelezovic/trigo/pkg/rdf"
	"github.com/aleksaelezovic/trigo/pkg/sparql/executor"
	"github.com/aleksaelezovic/trigo/pkg/sparql/optimizer"
	"github.com/aleksaelezovic/trigo/pkg/sparql/parser"
	"github.com/aleksaelezovic/trigo/pkg/store"

	"github.com/wildgraph/jaguarkg/pkg/tabular"
)

// Store is an in-memory RDF store with SPARQL querying. It is safe for
// concurrent readers once loading is done; the pipeline writes only
// during startup.
type Store struct {
	storage *memoryStorage
	triples *store.TripleStore
}

// Open creates an empty in-memory store.
func Open() (*Store, error) {
	storage, err := newMemoryStorage()
	if err != nil {
		return nil, err
	}
	codec := newTermCodec()
	return &Store{
		storage: storage,
		triples: store.NewTripleStore(storage, codec, codec),
	}, nil
}

// Close releases the underlying storage.
func (s *Store) Close() error { return s.triples.Close() }

// Insert adds triples to the default graph.
func (s *Store) Insert(triples []*rdf.Triple) error {
	for _, t := range triples {
		if err := s.triples.InsertTriple(t); err != nil {
			return fmt.Errorf("insert triple %s: %w", t, err)
		}
	}
	return nil
}

// LoadTurtle parses a Turtle document and inserts its triples.
func (s *Store) LoadTurtle(content string) error {
	triples, err := rdf.NewTurtleParser(content).Parse()
	if err != nil {
		return fmt.Errorf("parse turtle: %w", err)
	}
	return s.Insert(triples)
}

// Count returns the number of triples in the store.
func (s *Store) Count() (int64, error) { return s.triples.Count() }

// Query executes a SPARQL query and returns the bindings as a table whose
// columns follow the query's projection order. SELECT * columns are the
// variables seen in the bindings, sorted for determinism. ASK queries
// yield a single-column, single-row boolean table.
func (s *Store) Query(sparql string) (*tabular.Table, error) {
	q, err := parser.NewParser(strings.TrimSpace(sparql)).Parse()
	if err != nil {
		return nil, fmt.Errorf("parse query: %w", err)
	}

	count, _ := s.triples.Count()
	opt := optimizer.NewOptimizer(&optimizer.Statistics{TotalTriples: count})
	optimized, err := opt.Optimize(q)
	if err != nil {
		return nil, fmt.Errorf("optimize query: %w", err)
	}

	result, err := executor.NewExecutor(s.triples, "").Execute(optimized)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}

	switch r := result.(type) {
	case *executor.SelectResult:
		return selectToTable(r), nil
	case *executor.AskResult:
		t := tabular.NewTable([]string{"boolean"})
		_ = t.AppendRow([]tabular.Value{tabular.Bool(r.Result)})
		return t, nil
	default:
		return nil, fmt.Errorf("unsupported query form (only SELECT and ASK)")
	}
}

func selectToTable(r *executor.SelectResult) *tabular.Table {
	var columns []string
	if r.Variables == nil {
		seen := make(map[string]bool)
		for _, binding := range r.Bindings {
			for name := range binding.Vars {
				if !seen[name] {
					seen[name] = true
					columns = append(columns, name)
				}
			}
		}
		sort.Strings(columns)
	} else {
		for _, v := range r.Variables {
			columns = append(columns, v.Name)
		}
	}

	t := tabular.NewTable(columns)
	for _, binding := range r.Bindings {
		row := make([]tabular.Value, len(columns))
		for i, name := range columns {
			term, ok := binding.Vars[name]
			if !ok || term == nil {
				row[i] = tabular.Null()
				continue
			}
			row[i] = termToValue(term)
		}
		_ = t.AppendRow(row)
	}
	return t
}

// termToValue demotes an RDF term to a table cell. IRIs keep their http
// form so the wire-format translator classifies them as resource
// references; typed literals come back as native booleans, integers and
// floats; everything else is its lexical form.
func termToValue(term rdf.Term) tabular.Value {
	switch t := term.(type) {
	case *rdf.NamedNode:
		return tabular.String(t.IRI)
	case *rdf.BlankNode:
		return tabular.String("_:" + t.ID)
	case *rdf.Literal:
		if t.Datatype != nil {
			switch t.Datatype.IRI {
			case rdf.XSDBoolean.IRI:
				return tabular.Bool(t.Value == "true" || t.Value == "1")
			case rdf.XSDInteger.IRI:
				if n, err := strconv.ParseInt(t.Value, 10, 64); err == nil {
					return tabular.Int(n)
				}
			case rdf.XSDDouble.IRI, rdf.XSDDecimal.IRI:
				if f, err := strconv.ParseFloat(t.Value, 64); err == nil {
					return tabular.Float(f)
				}
			}
		}
		return tabular.String(t.Value)
	default:
		return tabular.String(term.String())
	}
}
