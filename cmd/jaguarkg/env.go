package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type agentEnv struct {
	APIKey       string
	Model        string
	BaseURL      string
	RateLimitRPS float64
}

func loadAgentConfigFromEnv() (agentEnv, error) {
	rateLimitRPS, err := envFloat("RATE_LIMIT_RPS", 0)
	if err != nil {
		return agentEnv{}, err
	}

	return agentEnv{
		APIKey:       strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		Model:        strings.TrimSpace(os.Getenv("GEMINI_MODEL")),
		BaseURL:      strings.TrimSpace(os.Getenv("GEMINI_BASE_URL")),
		RateLimitRPS: rateLimitRPS,
	}, nil
}

func envFloat(varName string, fallback float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(varName))
	if v == "" {
		return fallback, nil
	}
	out, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", varName, v, err)
	}
	return out, nil
}
