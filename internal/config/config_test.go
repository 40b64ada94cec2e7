// ABOUTME: Tests for asksee configuration loading and path expansion.
// ABOUTME: Covers YAML parsing, defaults, environment overrides, and state paths.
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, key := range []string{"ASKSEE_API_URL", "ASKSEE_API_TIMEOUT", "ASKSEE_LOG_LEVEL", "ASKSEE_LOG_FILE"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return dir
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"tilde only", "~", home},
		{"tilde slash", "~/foo/bar", filepath.Join(home, "foo", "bar")},
		{"absolute", "/tmp/foo", "/tmp/foo"},
		{"relative", "foo/bar", "foo/bar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandPath(tt.input)
			if err != nil {
				t.Fatalf("ExpandPath(%q) error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLoadDefaultConfig(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.API.URL != "http://127.0.0.1:8000" {
		t.Errorf("expected default url, got %q", cfg.API.URL)
	}
	if cfg.API.Timeout != DefaultTimeout {
		t.Errorf("expected timeout %v, got %v", DefaultTimeout, cfg.API.Timeout)
	}
	if cfg.Viz.Dims != 2 || cfg.Viz.Limit != 300 {
		t.Errorf("expected dims 2 limit 300, got %d/%d", cfg.Viz.Dims, cfg.Viz.Limit)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected log level info, got %q", cfg.Log.Level)
	}
}

func TestLoadYAMLConfig(t *testing.T) {
	tmpDir := isolate(t)

	configDir := filepath.Join(tmpDir, "asksee")
	if err := os.MkdirAll(configDir, 0750); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}

	configData := `api:
  url: "https://kb.example.com/"
  timeout: 5s
viz:
  dims: 3
  limit: 500
log:
  level: DEBUG
  file: "~/asksee.log"
`
	configPath := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(configData), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.API.URL != "https://kb.example.com" {
		t.Errorf("expected trimmed url, got %q", cfg.API.URL)
	}
	if cfg.API.Timeout != 5*time.Second {
		t.Errorf("expected 5s timeout, got %v", cfg.API.Timeout)
	}
	if cfg.Viz.Dims != 3 || cfg.Viz.Limit != 500 {
		t.Errorf("expected dims 3 limit 500, got %d/%d", cfg.Viz.Dims, cfg.Viz.Limit)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected lowercased level, got %q", cfg.Log.Level)
	}

	home, _ := os.UserHomeDir()
	if got, err := cfg.LogPath(); err != nil {
		t.Fatalf("LogPath() error: %v", err)
	} else if got != filepath.Join(home, "asksee.log") {
		t.Errorf("LogPath() = %q", got)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	tmpDir := isolate(t)
	configDir := filepath.Join(tmpDir, "asksee")
	if err := os.MkdirAll(configDir, 0750); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte("api: [oops"), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := Load(); err == nil {
		t.Error("expected error for invalid yaml")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	isolate(t)
	cfg := &Config{API: APIConfig{URL: "http://from-file:8000"}}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	t.Setenv("ASKSEE_API_URL", "http://from-env:9000")
	t.Setenv("ASKSEE_LOG_LEVEL", "warn")

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded.API.URL != "http://from-env:9000" {
		t.Errorf("expected env url, got %q", loaded.API.URL)
	}
	if loaded.Log.Level != "warn" {
		t.Errorf("expected env log level, got %q", loaded.Log.Level)
	}
}

func TestSaveAndLoad(t *testing.T) {
	isolate(t)

	cfg := Default()
	cfg.API.URL = "https://saved.example.com"
	cfg.Viz.Limit = 800

	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if loaded.API.URL != "https://saved.example.com" {
		t.Errorf("expected url 'https://saved.example.com', got %q", loaded.API.URL)
	}
	if loaded.Viz.Limit != 800 {
		t.Errorf("expected limit 800, got %d", loaded.Viz.Limit)
	}
	if loaded.API.Timeout != DefaultTimeout {
		t.Errorf("expected timeout to round-trip, got %v", loaded.API.Timeout)
	}
}

func TestDefaultsNormalizeDims(t *testing.T) {
	cfg := &Config{Viz: VizConfig{Dims: 5, Limit: -1}}
	cfg.applyDefaults()
	if cfg.Viz.Dims != 2 {
		t.Errorf("expected dims 2, got %d", cfg.Viz.Dims)
	}
	if cfg.Viz.Limit != DefaultLimit {
		t.Errorf("expected default limit, got %d", cfg.Viz.Limit)
	}
}

func TestDefaultLogPath(t *testing.T) {
	stateDir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", stateDir)

	got, err := Default().LogPath()
	if err != nil {
		t.Fatalf("LogPath() error: %v", err)
	}
	if want := filepath.Join(stateDir, "asksee", "asksee.log"); got != want {
		t.Errorf("LogPath() = %q, want %q", got, want)
	}
}
