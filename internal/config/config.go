package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the KPI advisor.
type Config struct {
	AI      AIConfig
	Memory  MemoryConfig
	Metrics MetricsConfig
}

// AIConfig configures the text-generation collaborator.
type AIConfig struct {
	BaseURL     string        // defaults to https://api.openai.com/v1
	Model       string        // OpenAI model identifier, e.g. "gpt-3.5-turbo"
	APIKey      string        // expanded from env var by Load
	Temperature float32       // sampling temperature, 0.7 unless overridden
	MaxTokens   int           // 0 lets the provider decide
	Timeout     time.Duration // per-request timeout
}

// MemoryConfig selects where the conversation memory lives.
type MemoryConfig struct {
	Backend string `yaml:"backend"` // "buffer", "sqlite" or "bolt"
	Path    string `yaml:"path"`    // database file for sqlite/bolt
	Session string `yaml:"session"` // conversation name inside the file
}

// MetricsConfig controls the optional Prometheus endpoint.
type MetricsConfig struct {
	ListenAddr string `yaml:"listen_addr"` // empty disables the endpoint
}

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultModel         = "gpt-3.5-turbo"
	defaultSession       = "default"

	// DefaultTemperature is the sampling temperature the advisor was tuned for.
	DefaultTemperature float32 = 0.7

	BackendBuffer = "buffer"
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
)

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	AI      rawAIConfig   `yaml:"ai"`
	Memory  MemoryConfig  `yaml:"memory"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type rawAIConfig struct {
	BaseURL     string   `yaml:"base_url"`
	Model       string   `yaml:"model"`
	APIKey      string   `yaml:"api_key"`
	Temperature *float32 `yaml:"temperature"`
	MaxTokens   int      `yaml:"max_tokens"`
	Timeout     string   `yaml:"timeout"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg, err := build(rawConfig{})
	if err != nil {
		// build only fails on malformed user input.
		panic(err)
	}
	return cfg
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg, err := build(raw)
	if err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault behaves like Load but falls back to Default when the file
// does not exist. Any other read or parse error is returned.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

func build(raw rawConfig) (*Config, error) {
	timeout := 60 * time.Second // default
	if raw.AI.Timeout != "" {
		d, err := time.ParseDuration(raw.AI.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse ai.timeout %q: %w", raw.AI.Timeout, err)
		}
		timeout = d
	}

	temperature := DefaultTemperature
	if raw.AI.Temperature != nil {
		temperature = *raw.AI.Temperature
	}

	baseURL := raw.AI.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	model := raw.AI.Model
	if model == "" {
		model = defaultModel
	}

	// The credential is optional in the file; fall back to the variable the
	// OpenAI SDKs read by convention.
	apiKey := raw.AI.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	mem := raw.Memory
	if mem.Backend == "" {
		mem.Backend = BackendBuffer
	}
	if mem.Session == "" {
		mem.Session = defaultSession
	}

	return &Config{
		AI: AIConfig{
			BaseURL:     baseURL,
			Model:       model,
			APIKey:      apiKey,
			Temperature: temperature,
			MaxTokens:   raw.AI.MaxTokens,
			Timeout:     timeout,
		},
		Memory:  mem,
		Metrics: raw.Metrics,
	}, nil
}

func validate(cfg *Config) error {
	if cfg.AI.Temperature < 0 || cfg.AI.Temperature > 2 {
		return fmt.Errorf("ai.temperature must be between 0 and 2, got %v", cfg.AI.Temperature)
	}
	if cfg.AI.MaxTokens < 0 {
		return fmt.Errorf("ai.max_tokens must not be negative, got %d", cfg.AI.MaxTokens)
	}
	if cfg.AI.Timeout <= 0 {
		return fmt.Errorf("ai.timeout must be positive, got %v", cfg.AI.Timeout)
	}

	switch cfg.Memory.Backend {
	case BackendBuffer:
	case BackendSQLite, BackendBolt:
		if cfg.Memory.Path == "" {
			return fmt.Errorf("memory.path is required when memory.backend is %q", cfg.Memory.Backend)
		}
	default:
		return fmt.Errorf("unknown memory.backend %q (want buffer, sqlite or bolt)", cfg.Memory.Backend)
	}

	return nil
}
