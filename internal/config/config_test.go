package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{
		"TABRECON_DB_URL", "TABRECON_API_KEY", "TABRECON_REST_SCHEMA", "TABRECON_HTTP_TIMEOUT",
		"TABRECON_PROBE_COLUMN", "TABRECON_PROBE_CONCURRENCY", "TABRECON_LOG_LEVEL", "TABRECON_LOG_FORMAT",
	} {
		t.Setenv(k, "")
	}

	cfg := Load()
	if cfg.Store.URL != "" {
		t.Errorf("Store.URL = %q, want empty", cfg.Store.URL)
	}
	if cfg.Store.HTTPTimeout != 30*time.Second {
		t.Errorf("Store.HTTPTimeout = %v, want 30s", cfg.Store.HTTPTimeout)
	}
	if cfg.Probe.Column != DefaultProbeColumn {
		t.Errorf("Probe.Column = %q, want %q", cfg.Probe.Column, DefaultProbeColumn)
	}
	if cfg.Probe.Concurrency != 4 {
		t.Errorf("Probe.Concurrency = %d, want 4", cfg.Probe.Concurrency)
	}
	if cfg.Log.Level != "info" || cfg.Log.JSON {
		t.Errorf("Log = %+v", cfg.Log)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TABRECON_DB_URL", "https://example.supabase.co")
	t.Setenv("TABRECON_API_KEY", "anon-key")
	t.Setenv("TABRECON_REST_SCHEMA", "public")
	t.Setenv("TABRECON_HTTP_TIMEOUT", "5s")
	t.Setenv("TABRECON_PROBE_COLUMN", "zz_probe")
	t.Setenv("TABRECON_PROBE_CONCURRENCY", "8")
	t.Setenv("TABRECON_LOG_LEVEL", "debug")
	t.Setenv("TABRECON_LOG_FORMAT", "JSON")

	cfg := Load()
	if cfg.Store.URL != "https://example.supabase.co" || cfg.Store.APIKey != "anon-key" || cfg.Store.RESTSchema != "public" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Store.HTTPTimeout != 5*time.Second {
		t.Errorf("Store.HTTPTimeout = %v", cfg.Store.HTTPTimeout)
	}
	if cfg.Probe.Column != "zz_probe" || cfg.Probe.Concurrency != 8 {
		t.Errorf("Probe = %+v", cfg.Probe)
	}
	if cfg.Log.Level != "debug" || !cfg.Log.JSON {
		t.Errorf("Log = %+v", cfg.Log)
	}
}

func TestLoadInvalidNumbersFallBack(t *testing.T) {
	t.Setenv("TABRECON_PROBE_CONCURRENCY", "-2")
	t.Setenv("TABRECON_HTTP_TIMEOUT", "soon")

	cfg := Load()
	if cfg.Probe.Concurrency != 4 {
		t.Errorf("Probe.Concurrency = %d, want fallback 4", cfg.Probe.Concurrency)
	}
	if cfg.Store.HTTPTimeout != 30*time.Second {
		t.Errorf("Store.HTTPTimeout = %v, want fallback 30s", cfg.Store.HTTPTimeout)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("TABRECON_TEST_DOTENV=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TABRECON_TEST_DOTENV", "")
	os.Unsetenv("TABRECON_TEST_DOTENV")

	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv() error: %v", err)
	}
	if got := os.Getenv("TABRECON_TEST_DOTENV"); got != "from-file" {
		t.Errorf("TABRECON_TEST_DOTENV = %q, want from-file", got)
	}
}
