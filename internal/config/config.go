// Package config loads the pipeline configuration from a YAML file.
// Credentials never live here; they come from the environment via the
// command-line entry point.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the complete pipeline configuration.
type Config struct {
	Data  DataConfig  `yaml:"data"`
	Graph GraphConfig `yaml:"graph"`
	Agent AgentConfig `yaml:"agent"`
}

// DataConfig points at the three startup inputs.
type DataConfig struct {
	// CSV is the raw observation table (header row, ';' inner separator
	// for multi-valued fields).
	CSV string `yaml:"csv"`
	// Template is the stOTTR mapping template file.
	Template string `yaml:"template"`
	// Ontology is the Turtle ontology file loaded alongside the mapped data.
	Ontology string `yaml:"ontology"`
}

// IRIColumnConfig derives Target = prefix + trimmed Source per row.
type IRIColumnConfig struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
}

// GraphConfig drives the normalization pass.
type GraphConfig struct {
	// ResourcePrefix is the namespace prepended to every derived IRI.
	ResourcePrefix string `yaml:"resource_prefix"`
	// ListColumns are the multi-valued columns, in processing order.
	ListColumns []string `yaml:"list_columns"`
	// IRIColumns are the categorical fields that get derived IRI columns.
	IRIColumns []IRIColumnConfig `yaml:"iri_columns"`
	// FailOnEmpty treats a zero-row CSV as a startup error.
	FailOnEmpty bool `yaml:"fail_on_empty"`
}

// AgentConfig holds the non-secret agent settings.
type AgentConfig struct {
	Model         string  `yaml:"model"`
	Temperature   float64 `yaml:"temperature"`
	RateLimitRPS  float64 `yaml:"rate_limit_rps"`
	MaxToolRounds int     `yaml:"max_tool_rounds"`
}

// DefaultConfig returns the configuration for the bundled demo dataset.
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			CSV:      "data/jaguars.csv",
			Template: "data/jaguar_template.ottr",
			Ontology: "data/jaguar_ontology.ttl",
		},
		Graph: GraphConfig{
			ResourcePrefix: "http://example.org/resource#",
			ListColumns:    []string{"location", "monitoring_org", "threats", "monitoring_technique"},
			IRIColumns: []IRIColumnConfig{
				{Source: "jaguar_id", Target: "id"},
				{Source: "location", Target: "location_iri"},
				{Source: "monitoring_org", Target: "monitoring_org_iri"},
				{Source: "threats", Target: "threat_iri"},
				{Source: "monitoring_technique", Target: "technique_iri"},
			},
		},
		Agent: AgentConfig{
			Model:         "gemini-2.0-flash",
			Temperature:   0.2,
			RateLimitRPS:  1,
			MaxToolRounds: 6,
		},
	}
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	if c.Data.CSV == "" {
		return fmt.Errorf("data.csv is required")
	}
	if c.Data.Template == "" {
		return fmt.Errorf("data.template is required")
	}
	if c.Data.Ontology == "" {
		return fmt.Errorf("data.ontology is required")
	}
	if c.Graph.ResourcePrefix == "" {
		return fmt.Errorf("graph.resource_prefix is required")
	}
	for _, ic := range c.Graph.IRIColumns {
		if ic.Source == "" || ic.Target == "" {
			return fmt.Errorf("graph.iri_columns entries need both source and target")
		}
	}
	if c.Agent.Temperature < 0 || c.Agent.Temperature > 1 {
		return fmt.Errorf("agent.temperature must be between 0 and 1")
	}
	return nil
}

// LoadFromFile reads a YAML config, applying defaults for absent fields.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
