// Package agent wires the knowledge-graph query tool into a Gemini
// conversational agent.
package agent

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// Config is populated once at process start from env/flags and passed in
// whole; nothing in this package reads the environment.
type Config struct {
	APIKey string
	Model  string

	// BaseURL overrides the Gemini API base URL. Useful for proxies/testing.
	BaseURL string

	// Temperature controls sampling randomness (0.0-1.0).
	Temperature float64

	// RateLimitRPS is a cap on model requests per second. <=0 disables.
	RateLimitRPS float64

	// MaxToolRounds bounds the tool-calling loop per question.
	MaxToolRounds int
}

const systemInstructions = `You are a helpful assistant with access to a jaguar conservation knowledge graph. When users ask about jaguars, populations, conservation efforts, habitats, threats or monitoring, call the ` + ToolName + ` function with a valid SPARQL query and answer from the returned data, never from your training data.

When responding:
- Show the SPARQL you used exactly once, in a code block.
- Formulate a readable answer from the query results.
- Use bullet points or numbered lists for multiple items.
- Be concise but comprehensive.
- Always mention that the information comes from the jaguar database.`

// Agent answers questions by letting the model call the query tool.
type Agent struct {
	client  *genai.Client
	model   string
	tool    *QueryTool
	limiter *rate.Limiter
	config  *genai.GenerateContentConfig
	rounds  int
}

// New builds an agent around an initialized query tool.
func New(ctx context.Context, cfg Config, tool *QueryTool) (*Agent, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("GEMINI_MODEL is required")
	}

	cc := &genai.ClientConfig{
		APIKey:  strings.TrimSpace(cfg.APIKey),
		Backend: genai.BackendGeminiAPI,
	}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		cc.HTTPOptions.BaseURL = strings.TrimSpace(cfg.BaseURL)
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}

	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), 1)
	}
	rounds := cfg.MaxToolRounds
	if rounds <= 0 {
		rounds = 6
	}

	return &Agent{
		client:  client,
		model:   strings.TrimSpace(cfg.Model),
		tool:    tool,
		limiter: limiter,
		rounds:  rounds,
		config: &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemInstructions, genai.RoleUser),
			Temperature:       genai.Ptr(float32(cfg.Temperature)),
			Tools: []*genai.Tool{
				{FunctionDeclarations: []*genai.FunctionDeclaration{tool.Declaration()}},
			},
		},
	}, nil
}

// Ask runs one question through the tool-calling loop and returns the
// model's final text answer.
func (a *Agent) Ask(ctx context.Context, question string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(strings.TrimSpace(question), genai.RoleUser),
	}

	for round := 0; round < a.rounds; round++ {
		if a.limiter != nil {
			if err := a.limiter.Wait(ctx); err != nil {
				return "", err
			}
		}

		resp, err := a.client.Models.GenerateContent(ctx, a.model, contents, a.config)
		if err != nil {
			return "", classifyErr(err)
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
			return "", fmt.Errorf("model returned no candidates")
		}

		calls := resp.FunctionCalls()
		if len(calls) == 0 {
			return resp.Text(), nil
		}

		// Feed each tool result back as a function response and go again.
		contents = append(contents, resp.Candidates[0].Content)
		for _, call := range calls {
			result := a.dispatch(call)
			contents = append(contents, genai.NewContentFromParts(
				[]*genai.Part{genai.NewPartFromFunctionResponse(call.Name, map[string]any{"result": result})},
				genai.RoleUser,
			))
		}
	}
	return "", fmt.Errorf("no final answer after %d tool rounds", a.rounds)
}

func (a *Agent) dispatch(call *genai.FunctionCall) string {
	if call.Name != ToolName {
		return errorPayload(fmt.Errorf("unknown tool %q", call.Name), "")
	}
	query, _ := call.Args["sparql_query"].(string)
	if strings.TrimSpace(query) == "" {
		return errorPayload(errors.New("sparql_query argument is required"), query)
	}
	return a.tool.Call(strings.TrimSpace(query))
}

// TransientError marks a model-request failure as retryable by the caller.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	if e == nil || e.Err == nil {
		return "transient error"
	}
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func classifyErr(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == 429 || apiErr.Code/100 == 5 {
			return &TransientError{Err: err}
		}
		return err
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &TransientError{Err: err}
	}
	return err
}
