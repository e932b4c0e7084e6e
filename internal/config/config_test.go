package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
ai:
  model: gpt-4o-mini
  api_key: sk-test
  temperature: 0.2
  max_tokens: 512
  timeout: 15s
memory:
  backend: sqlite
  path: /tmp/advisor.db
  session: acme
metrics:
  listen_addr: ":9090"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AI.Model != "gpt-4o-mini" {
		t.Errorf("Model = %q, want gpt-4o-mini", cfg.AI.Model)
	}
	if cfg.AI.APIKey != "sk-test" {
		t.Errorf("APIKey = %q, want sk-test", cfg.AI.APIKey)
	}
	if cfg.AI.Temperature != 0.2 {
		t.Errorf("Temperature = %v, want 0.2", cfg.AI.Temperature)
	}
	if cfg.AI.MaxTokens != 512 {
		t.Errorf("MaxTokens = %d, want 512", cfg.AI.MaxTokens)
	}
	if cfg.AI.Timeout != 15*time.Second {
		t.Errorf("Timeout = %v, want 15s", cfg.AI.Timeout)
	}
	if cfg.AI.BaseURL != defaultOpenAIBaseURL {
		t.Errorf("BaseURL = %q, want default", cfg.AI.BaseURL)
	}
	if cfg.Memory.Backend != BackendSQLite || cfg.Memory.Path != "/tmp/advisor.db" || cfg.Memory.Session != "acme" {
		t.Errorf("Memory = %+v", cfg.Memory)
	}
	if cfg.Metrics.ListenAddr != ":9090" {
		t.Errorf("ListenAddr = %q, want :9090", cfg.Metrics.ListenAddr)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	path := writeConfig(t, "ai: {}\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AI.Temperature != DefaultTemperature {
		t.Errorf("Temperature = %v, want %v", cfg.AI.Temperature, DefaultTemperature)
	}
	if cfg.AI.Timeout != 60*time.Second {
		t.Errorf("Timeout = %v, want 60s", cfg.AI.Timeout)
	}
	if cfg.Memory.Backend != BackendBuffer {
		t.Errorf("Backend = %q, want buffer", cfg.Memory.Backend)
	}
	if cfg.Memory.Session != "default" {
		t.Errorf("Session = %q, want default", cfg.Memory.Session)
	}
}

func TestLoad_ZeroTemperatureIsKept(t *testing.T) {
	path := writeConfig(t, "ai:\n  temperature: 0\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AI.Temperature != 0 {
		t.Errorf("Temperature = %v, want 0", cfg.AI.Temperature)
	}
}

func TestLoad_ExpandsEnvAPIKey(t *testing.T) {
	t.Setenv("ADVISOR_TEST_KEY", "sk-from-env")
	path := writeConfig(t, "ai:\n  api_key: ${ADVISOR_TEST_KEY}\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AI.APIKey != "sk-from-env" {
		t.Errorf("APIKey = %q, want sk-from-env", cfg.AI.APIKey)
	}
}

func TestLoad_FallsBackToOpenAIKeyEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-fallback")
	path := writeConfig(t, "ai: {}\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AI.APIKey != "sk-fallback" {
		t.Errorf("APIKey = %q, want sk-fallback", cfg.AI.APIKey)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err == nil {
		t.Fatal("Load: expected error for missing file")
	}
}

func TestLoadOrDefault_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if cfg.AI.Temperature != DefaultTemperature {
		t.Errorf("Temperature = %v, want %v", cfg.AI.Temperature, DefaultTemperature)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "ai: [broken")

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load: expected error for invalid YAML")
	}
}

func TestLoad_InvalidTimeout(t *testing.T) {
	path := writeConfig(t, "ai:\n  timeout: soon\n")

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load: expected error for unparseable timeout")
	}
}

func TestLoad_TemperatureOutOfRange(t *testing.T) {
	path := writeConfig(t, "ai:\n  temperature: 3.5\n")

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load: expected validation error for temperature > 2")
	}
}

func TestLoad_SQLiteWithoutPath(t *testing.T) {
	path := writeConfig(t, "memory:\n  backend: sqlite\n")

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load: expected validation error when sqlite has no path")
	}
}

func TestLoad_UnknownBackend(t *testing.T) {
	path := writeConfig(t, "memory:\n  backend: redis\n")

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load: expected validation error for unknown backend")
	}
}
