// Package config loads askpilot configuration from a YAML file with
// environment overrides. Missing file means defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all askpilot configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	LLM       LLMConfig       `yaml:"llm"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DatabaseConfig configures the SQLite store.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LLMConfig configures the Gemini execution engine and the per-role models.
type LLMConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	// StageTimeout bounds a single pipeline stage call, e.g. "120s".
	StageTimeout string `yaml:"stage_timeout"`

	ResearchModel  string `yaml:"research_model"`
	ExplainModel   string `yaml:"explain_model"`
	FactCheckModel string `yaml:"fact_check_model"`
	GuardModel     string `yaml:"guard_model"`
}

// EmbeddingConfig configures the embedding engine.
type EmbeddingConfig struct {
	Model string `yaml:"model"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8000",
		},
		Database: DatabaseConfig{
			Path: "data/askpilot.db",
		},
		LLM: LLMConfig{
			StageTimeout: "120s",
		},
		Embedding: EmbeddingConfig{
			Model: "gemini-embedding-001",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load loads configuration from a YAML file, applying defaults for anything
// unset and environment overrides last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides lets the environment win over file values.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("ASKPILOT_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("ASKPILOT_DB"); v != "" {
		c.Database.Path = v
	}
}

// StageTimeout parses the configured stage timeout, falling back to two
// minutes on a missing or malformed value.
func (c *Config) StageTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.StageTimeout)
	if err != nil || d <= 0 {
		return 2 * time.Minute
	}
	return d
}
