package agent

import (
	"encoding/json"

	"github.com/wildgraph/jaguarkg/internal/graphstore"
	"github.com/wildgraph/jaguarkg/pkg/sparqljson"
	"google.golang.org/genai"
)

// ToolName is the function name the model calls to query the graph.
const ToolName = "query_jaguar_database"

const errorNote = "Query executed against the in-memory jaguar knowledge graph"

// QueryTool exposes the knowledge graph to the model as a single callable
// taking one SPARQL string. It holds an immutable reference to the store
// handle and no other state, so concurrent tool calls are safe.
type QueryTool struct {
	store       *graphstore.Store
	description string
}

// NewQueryTool binds a tool to a loaded store. The ontology text is
// embedded in the tool description so the model writes queries against
// the actual classes and properties in the graph instead of inventing
// them.
func NewQueryTool(store *graphstore.Store, ontology string) *QueryTool {
	return &QueryTool{store: store, description: buildDescription(ontology)}
}

// Declaration describes the tool to the model.
func (t *QueryTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        ToolName,
		Description: t.description,
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"sparql_query": {
					Type:        genai.TypeString,
					Description: "A valid SPARQL SELECT or ASK query aligned with the jaguar ontology.",
				},
			},
			Required: []string{"sparql_query"},
		},
	}
}

// Call executes one SPARQL query and returns a JSON string: either a
// SPARQL JSON result set, or the structured payload {error, query, note}
// when the store rejects or fails the query. Failures are returned as
// data, never propagated, so the model can read the message and retry
// with a corrected query.
func (t *QueryTool) Call(sparqlQuery string) string {
	table, err := t.store.Query(sparqlQuery)
	if err != nil {
		return errorPayload(err, sparqlQuery)
	}
	out, err := sparqljson.Marshal(sparqljson.FromTable(table))
	if err != nil {
		return errorPayload(err, sparqlQuery)
	}
	return string(out)
}

func errorPayload(err error, query string) string {
	payload := map[string]string{
		"error": err.Error(),
		"query": query,
		"note":  errorNote,
	}
	out, marshalErr := json.MarshalIndent(payload, "", "  ")
	if marshalErr != nil {
		// Unreachable for map[string]string, but keep the boundary total.
		return `{"error":"failed to encode error payload"}`
	}
	return string(out)
}

func buildDescription(ontology string) string {
	return `Query the jaguar knowledge graph using SPARQL. Use this tool whenever the user asks about jaguars, jaguar populations, conservation efforts, habitats, threats, monitoring or any related data. Generate a valid SPARQL query based on the ontology below; the tool returns raw SPARQL JSON results for you to interpret.

Ontology loaded in the graph:

` + ontology + `

Query guidance:
- Start with a simple query and only add complexity if needed.
- Always include the relevant prefixes in the query.
- Do not use classes or properties absent from the ontology.

Example, find a jaguar by name:
    @prefix ont: <http://example.org/ontology#>.
    @prefix : <http://example.org/resource#>.
    @prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#>.
    SELECT ?jaguar ?label WHERE {
      BIND(:Bandit AS ?jaguar)
      OPTIONAL { ?jaguar rdfs:label ?label . }
    }

Example, find killed jaguars:
    @prefix ont: <http://example.org/ontology#>.
    @prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#>.
    SELECT ?jaguar ?label ?causeOfDeath WHERE {
      ?jaguar a ont:Jaguar .
      ?jaguar ont:wasKilled true .
      OPTIONAL { ?jaguar rdfs:label ?label . }
      OPTIONAL { ?jaguar ont:causeOfDeath ?causeOfDeath . }
    }

Example, count jaguars:
    @prefix ont: <http://example.org/ontology#>.
    SELECT (COUNT(?jaguar) as ?count) WHERE { ?jaguar a ont:Jaguar . }`
}
