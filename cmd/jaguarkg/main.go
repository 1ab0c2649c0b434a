package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/wildgraph/jaguarkg/internal/agent"
	"github.com/wildgraph/jaguarkg/internal/app"
	"github.com/wildgraph/jaguarkg/internal/config"
	"github.com/wildgraph/jaguarkg/internal/util"
	"github.com/wildgraph/jaguarkg/internal/version"
)

func main() {
	ctx := context.Background()

	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	switch os.Args[1] {
	case "help", "-h", "--help":
		usage(os.Stdout)
		return
	case "version", "--version":
		fmt.Println(version.Current)
		return
	case "build":
		os.Exit(runBuild(os.Args[2:]))
	case "query":
		os.Exit(runQuery(os.Args[2:]))
	case "ask":
		os.Exit(runAsk(ctx, os.Args[2:]))
	default:
		_, _ = fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		usage(os.Stderr)
		os.Exit(2)
	}
}

func runBuild(args []string) int {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", "config.yaml", "Pipeline config file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "config error: %s\n", util.RedactSecrets(err.Error()))
		return 2
	}
	if err := app.RunBuild(cfg, os.Stdout); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "build failed: %s\n", util.RedactSecrets(err.Error()))
		return 1
	}
	return 0
}

func runQuery(args []string) int {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", "config.yaml", "Pipeline config file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		_, _ = fmt.Fprintln(os.Stderr, "query requires exactly one SPARQL query argument")
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "config error: %s\n", util.RedactSecrets(err.Error()))
		return 2
	}
	if err := app.RunQuery(cfg, fs.Arg(0), os.Stdout); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "query failed: %s\n", util.RedactSecrets(err.Error()))
		return 1
	}
	return 0
}

func runAsk(ctx context.Context, args []string) int {
	agentEnv, err := loadAgentConfigFromEnv()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "config error: %s\n", util.RedactSecrets(err.Error()))
		return 2
	}

	fs := flag.NewFlagSet("ask", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", "config.yaml", "Pipeline config file")
	model := fs.String("model", agentEnv.Model, "Gemini model name (env: GEMINI_MODEL)")
	baseURL := fs.String("base-url", agentEnv.BaseURL, "Gemini API base URL override (env: GEMINI_BASE_URL)")
	rps := fs.Float64("rate-limit-rps", agentEnv.RateLimitRPS, "Model request rate limit (RPS), 0 disables (env: RATE_LIMIT_RPS)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "config error: %s\n", util.RedactSecrets(err.Error()))
		return 2
	}

	agentCfg := agent.Config{
		APIKey:        agentEnv.APIKey,
		Model:         *model,
		BaseURL:       *baseURL,
		Temperature:   cfg.Agent.Temperature,
		RateLimitRPS:  *rps,
		MaxToolRounds: cfg.Agent.MaxToolRounds,
	}
	if agentCfg.Model == "" {
		agentCfg.Model = cfg.Agent.Model
	}
	if agentCfg.RateLimitRPS == 0 {
		agentCfg.RateLimitRPS = cfg.Agent.RateLimitRPS
	}

	if err := app.RunAsk(ctx, cfg, agentCfg, os.Stdin, os.Stdout); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "ask failed: %s\n", util.RedactSecrets(err.Error()))
		return 1
	}
	return 0
}

// loadConfig falls back to defaults when the default config file is
// absent, so the bundled demo works out of the box.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) && path == "config.yaml" {
		return config.DefaultConfig(), nil
	}
	return config.LoadFromFile(path)
}

func usage(w *os.File) {
	_, _ = fmt.Fprintln(w, "Usage: jaguarkg <command> [flags]")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "Commands:")
	_, _ = fmt.Fprintln(w, "  build    Build the knowledge graph from the configured inputs and report its shape")
	_, _ = fmt.Fprintln(w, "  query    Build the graph and run one SPARQL query, printing SPARQL JSON results")
	_, _ = fmt.Fprintln(w, "  ask      Build the graph and chat with the query agent (requires GEMINI_API_KEY)")
	_, _ = fmt.Fprintln(w, "  version  Print the version")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "Environment:")
	_, _ = fmt.Fprintln(w, "  GEMINI_API_KEY   API key for the ask command (required)")
	_, _ = fmt.Fprintln(w, "  GEMINI_MODEL     Model name override")
	_, _ = fmt.Fprintln(w, "  GEMINI_BASE_URL  API base URL override")
	_, _ = fmt.Fprintln(w, "  RATE_LIMIT_RPS   Model request rate limit")
}
