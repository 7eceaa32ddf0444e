package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Metrics.Capacity != 1000 {
		t.Errorf("expected default capacity 1000, got %d", cfg.Metrics.Capacity)
	}
	if cfg.Storage.Type != "memory" {
		t.Errorf("expected default storage memory, got %q", cfg.Storage.Type)
	}
	if cfg.RequestTimeout() != 30*time.Second {
		t.Errorf("expected 30s request timeout, got %v", cfg.RequestTimeout())
	}
	if cfg.StepTimeout() != 0 {
		t.Errorf("step timeout must default to disabled, got %v", cfg.StepTimeout())
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ISSUEGATE_SERVER__PORT", "9090")
	t.Setenv("ISSUEGATE_LOG__LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("env override failed, got port %d", cfg.Server.Port)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("env override failed, got level %q", cfg.Log.Level)
	}
}

func TestLoad_EnvOverridesSnakeCaseKeys(t *testing.T) {
	t.Setenv("ISSUEGATE_TRACKER__API_KEY", "secret-from-env")
	t.Setenv("ISSUEGATE_PIPELINE__STEP_TIMEOUT", "15s")
	t.Setenv("ISSUEGATE_SERVER__REQUEST_TIMEOUT", "5s")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Tracker.APIKey != "secret-from-env" {
		t.Errorf("api key not set from env, got %q", cfg.Tracker.APIKey)
	}
	if cfg.StepTimeout() != 15*time.Second {
		t.Errorf("step timeout not set from env, got %v", cfg.StepTimeout())
	}
	if cfg.RequestTimeout() != 5*time.Second {
		t.Errorf("request timeout not set from env, got %v", cfg.RequestTimeout())
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `server:
  port: 7070
tracker:
  api_key: test-key
  base_url: https://tracker.local/graphql
storage:
  type: sqlite
  sqlite:
    path: /tmp/test.db
pipeline:
  step_timeout: 15s
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("file value ignored, got port %d", cfg.Server.Port)
	}
	if cfg.Tracker.APIKey != "test-key" || cfg.Tracker.BaseURL != "https://tracker.local/graphql" {
		t.Errorf("tracker config not loaded: %+v", cfg.Tracker)
	}
	if cfg.Storage.Type != "sqlite" || cfg.Storage.SQLite.Path != "/tmp/test.db" {
		t.Errorf("storage config not loaded: %+v", cfg.Storage)
	}
	if cfg.StepTimeout() != 15*time.Second {
		t.Errorf("step timeout not parsed, got %v", cfg.StepTimeout())
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/does/not/exist.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}
