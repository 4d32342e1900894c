package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadAndValidate(t *testing.T) {
	path := writeConfig(t, `
[server]
port = 8080
host = "127.0.0.1"

[storage]
sqlite_path = "data/test.db"

[station]
latitude = 46.05
longitude = 14.51

[wx]
max_retries = 2
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}

	// Validate fills the omitted sections with defaults.
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "console" {
		t.Errorf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if cfg.Weather.APIBaseURL == "" {
		t.Error("expected a default weather API URL")
	}
	if cfg.Solver.SampleStepM != 10 || cfg.Solver.MaxTargetM != 3000 || cfg.Solver.DefaultZeroM != 100 {
		t.Errorf("unexpected solver defaults: %+v", cfg.Solver)
	}
	if cfg.Auth.SessionTTLHours != 24 {
		t.Errorf("expected session TTL default 24, got %d", cfg.Auth.SessionTTLHours)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"bad port", "[server]\nport = 0\n[storage]\nsqlite_path = \"x.db\""},
		{"bad log level", "[server]\nport = 8080\n[storage]\nsqlite_path = \"x.db\"\n[logging]\nlevel = \"verbose\""},
		{"missing sqlite path", "[server]\nport = 8080"},
		{"bad latitude", "[server]\nport = 8080\n[storage]\nsqlite_path = \"x.db\"\n[station]\nlatitude = 120.0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tc.body))
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if err := cfg.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestLoadWithFallbackMissing(t *testing.T) {
	if _, err := LoadWithFallback(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected an error when no config file exists")
	}
}
