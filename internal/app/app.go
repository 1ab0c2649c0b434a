// Package app orchestrates startup and the command entry points: build the
// knowledge graph from the configured inputs, answer one-shot queries, and
// run the interactive agent loop.
package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/wildgraph/jaguarkg/internal/agent"
	"github.com/wildgraph/jaguarkg/internal/config"
	"github.com/wildgraph/jaguarkg/internal/graphstore"
	"github.com/wildgraph/jaguarkg/pkg/normalize"
	"github.com/wildgraph/jaguarkg/pkg/ottr"
	"github.com/wildgraph/jaguarkg/pkg/tabular"
)

// Graph is a fully-initialized knowledge graph plus the inputs the agent
// needs from the build step.
type Graph struct {
	Store    *graphstore.Store
	Ontology string

	RawRows        int
	NormalizedRows int
	Triples        int64
}

// Build runs the full startup pipeline: CSV → normalize → template →
// triples → store → ontology. Every failure aborts initialization; a
// partially-loaded graph is never returned.
func Build(cfg *config.Config) (*Graph, error) {
	f, err := os.Open(cfg.Data.CSV)
	if err != nil {
		return nil, fmt.Errorf("open source table: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	raw, err := tabular.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read source table %s: %w", cfg.Data.CSV, err)
	}

	iriColumns := make([]normalize.IRIColumn, 0, len(cfg.Graph.IRIColumns))
	for _, ic := range cfg.Graph.IRIColumns {
		iriColumns = append(iriColumns, normalize.IRIColumn{Source: ic.Source, Target: ic.Target})
	}
	normalized, err := normalize.Normalize(raw, normalize.Options{
		ListColumns:    cfg.Graph.ListColumns,
		ResourcePrefix: cfg.Graph.ResourcePrefix,
		IRIColumns:     iriColumns,
		FailOnEmpty:    cfg.Graph.FailOnEmpty,
	})
	if err != nil {
		return nil, fmt.Errorf("normalize %s: %w", cfg.Data.CSV, err)
	}

	templateText, err := os.ReadFile(cfg.Data.Template)
	if err != nil {
		return nil, fmt.Errorf("load mapping template: %w", err)
	}
	template, err := ottr.Parse(string(templateText))
	if err != nil {
		return nil, fmt.Errorf("parse mapping template %s: %w", cfg.Data.Template, err)
	}

	// The template's parameter list is the projection contract: exactly
	// those columns, in exactly that order.
	projected, err := normalize.Project(normalized, template.Parameters())
	if err != nil {
		return nil, fmt.Errorf("project %s to template parameters: %w", cfg.Data.CSV, err)
	}

	triples, err := template.Expand(projected)
	if err != nil {
		return nil, fmt.Errorf("map rows to triples: %w", err)
	}

	ontology, err := os.ReadFile(cfg.Data.Ontology)
	if err != nil {
		return nil, fmt.Errorf("load ontology: %w", err)
	}

	store, err := graphstore.Open()
	if err != nil {
		return nil, fmt.Errorf("open graph store: %w", err)
	}
	if err := store.Insert(triples); err != nil {
		_ = store.Close()
		return nil, err
	}
	if err := store.LoadTurtle(string(ontology)); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("load ontology %s: %w", cfg.Data.Ontology, err)
	}

	count, err := store.Count()
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &Graph{
		Store:          store,
		Ontology:       string(ontology),
		RawRows:        raw.NumRows(),
		NormalizedRows: projected.NumRows(),
		Triples:        count,
	}, nil
}

// RunBuild builds the graph and logs its shape. Used to validate the
// configured inputs without starting the agent.
func RunBuild(cfg *config.Config, out io.Writer) error {
	logger := log.New(out, "", log.LstdFlags)

	graph, err := Build(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = graph.Store.Close()
	}()

	logger.Printf("loaded %d raw records from %s", graph.RawRows, cfg.Data.CSV)
	logger.Printf("normalized to %d rows for mapping", graph.NormalizedRows)
	logger.Printf("knowledge graph ready: %d triples", graph.Triples)
	return nil
}

// RunQuery builds the graph and executes one SPARQL query, writing the
// wire-format JSON to out. On query failure it writes the structured
// error payload, the same behavior the agent tool boundary has.
func RunQuery(cfg *config.Config, sparql string, out io.Writer) error {
	graph, err := Build(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = graph.Store.Close()
	}()

	tool := agent.NewQueryTool(graph.Store, graph.Ontology)
	_, err = fmt.Fprintln(out, tool.Call(sparql))
	return err
}

// RunAsk builds the graph and runs the interactive agent loop over
// in/out until EOF.
func RunAsk(ctx context.Context, cfg *config.Config, agentCfg agent.Config, in io.Reader, out io.Writer) error {
	graph, err := Build(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = graph.Store.Close()
	}()

	tool := agent.NewQueryTool(graph.Store, graph.Ontology)
	a, err := agent.New(ctx, agentCfg, tool)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "jaguar knowledge graph ready (%d triples). Ask a question, or Ctrl-D to exit.\n", graph.Triples)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		answer, err := a.Ask(ctx, question)
		if err != nil {
			fmt.Fprintf(out, "error: %s\n", err)
			continue
		}
		fmt.Fprintln(out, answer)
	}
	return scanner.Err()
}
