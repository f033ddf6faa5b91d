package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"
)

const defaultStepDelayMS = 1000

// Config is the top-level configuration structure.
type Config struct {
	Server          ServerConfig     `json:"server"`
	Providers       []ProviderConfig `json:"providers"`
	// DefaultProvider names the provider queried first; empty means the first listed.
	DefaultProvider string           `json:"default_provider,omitempty"`
	Fallbacks       []string         `json:"fallbacks,omitempty"`
	Retry           RetryConfig      `json:"retry"`
	Simulation      SimulationConfig `json:"simulation"`
	Redis           RedisConfig      `json:"redis"`
}

type ServerConfig struct {
	Addr     string `json:"addr"`
	LogLevel string `json:"log_level"`
}

type ProviderConfig struct {
	ID             string            `json:"id"`
	Type           string            `json:"type"`
	Name           string            `json:"name"`
	Endpoint       string            `json:"endpoint"`
	APIKey         string            `json:"api_key"`
	Model          string            `json:"model"`
	Extra          map[string]string `json:"extra,omitempty"`
	TimeoutSeconds int               `json:"timeout_seconds,omitempty"`
}

type RetryConfig struct {
	MaxAttempts       int `json:"max_attempts"`
	InitialIntervalMS int `json:"initial_interval_ms"`
	MaxIntervalMS     int `json:"max_interval_ms"`
}

type SimulationConfig struct {
	MaxSteps            int      `json:"max_steps"`
	StepDelayMS         *int     `json:"step_delay_ms"` // nil means the default, 0 disables pacing
	QueryTimeoutSeconds int      `json:"query_timeout_seconds"`
	SeedAction          string   `json:"seed_action"`
	Roles               []string `json:"roles,omitempty"`
	Animations          []string `json:"animations,omitempty"`
	Triggers            []string `json:"triggers,omitempty"`
}

type RedisConfig struct {
	URL string `json:"url"`
}

// StepDelay returns the pacing delay between steps.
func (s SimulationConfig) StepDelay() time.Duration {
	if s.StepDelayMS == nil {
		return defaultStepDelayMS * time.Millisecond
	}
	return time.Duration(*s.StepDelayMS) * time.Millisecond
}

// SetStepDelay overrides the pacing delay.
func (s *SimulationConfig) SetStepDelay(d time.Duration) {
	ms := int(d / time.Millisecond)
	s.StepDelayMS = &ms
}

// QueryTimeout returns the per-query timeout, zero meaning none.
func (s SimulationConfig) QueryTimeout() time.Duration {
	return time.Duration(s.QueryTimeoutSeconds) * time.Second
}

// Default returns the configuration used when no file is present:
// a local Ollama llama3 backend, 20 steps, one second between steps.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":3210"
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if len(c.Providers) == 0 {
		c.Providers = []ProviderConfig{{
			ID:       "ollama",
			Type:     "ollama",
			Name:     "Local Ollama",
			Endpoint: "http://localhost:11434",
			Model:    "llama3",
		}}
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = 1
	}
	if c.Simulation.MaxSteps == 0 {
		c.Simulation.MaxSteps = 20
	}
	if c.Simulation.StepDelayMS == nil {
		ms := defaultStepDelayMS
		c.Simulation.StepDelayMS = &ms
	}
}

// envVarRe matches ${VAR} and ${VAR:default} patterns.
var envVarRe = regexp.MustCompile(`\$\{(\w+)(?::([^}]*))?\}`)

// Load reads a JSON config file and substitutes environment variable references.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	// Substitute ${VAR} and ${VAR:default} with environment values.
	resolved := envVarRe.ReplaceAllStringFunc(string(data), func(match string) string {
		parts := envVarRe.FindStringSubmatch(match)
		name := parts[1]
		defaultVal := parts[2]
		if v := os.Getenv(name); v != "" {
			return v
		}
		return defaultVal
	})

	var cfg Config
	if err := json.Unmarshal([]byte(resolved), &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// LoadOrDefault loads path, falling back to Default when the file does not exist.
func LoadOrDefault(path string) (*Config, bool, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return Default(), false, nil
	}
	return nil, false, err
}
