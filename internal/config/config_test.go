package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/dataloom-cli/internal/ai"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.BaseURL != ai.DefaultBaseURL {
		t.Errorf("base_url = %q", c.BaseURL)
	}
	if c.Model != "gpt-4o-mini" {
		t.Errorf("model = %q", c.Model)
	}
	if c.MaxTokens != 500 {
		t.Errorf("max_tokens = %d", c.MaxTokens)
	}
	if c.Clusters != 3 || c.Seed != 42 || c.MaxIter != 300 {
		t.Errorf("clustering defaults = %d/%d/%d", c.Clusters, c.Seed, c.MaxIter)
	}
	if c.OutputDir != "." {
		t.Errorf("output_dir = %q", c.OutputDir)
	}
	if c.HTTPTimeoutSec != 60 || c.RetryMaxAttempts != 3 {
		t.Errorf("http defaults = %d/%d", c.HTTPTimeoutSec, c.RetryMaxAttempts)
	}
	if c.RetryBaseDelayMs != 1000 || c.RetryMinDelayMs != 4000 || c.RetryMaxDelayMs != 10000 {
		t.Errorf("retry delays = %d/%d/%d", c.RetryBaseDelayMs, c.RetryMinDelayMs, c.RetryMaxDelayMs)
	}
	if c.LogLevel != "info" {
		t.Errorf("log_level = %q", c.LogLevel)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")

	want := &Global{
		BaseURL:          "http://127.0.0.1:9999/v1",
		Model:            "gpt-4o",
		MaxTokens:        256,
		Clusters:         5,
		Seed:             7,
		MaxIter:          50,
		OutputDir:        "reports",
		HTTPTimeoutSec:   10,
		RetryMaxAttempts: 2,
		RetryBaseDelayMs: 100,
		RetryMinDelayMs:  200,
		RetryMaxDelayMs:  300,
		LogLevel:         "debug",
	}
	if err := Save(want, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Model != want.Model || got.Clusters != want.Clusters || got.Seed != want.Seed {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.OutputDir != "reports" || got.RetryMaxDelayMs != 300 || got.LogLevel != "debug" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DATALOOM_MODEL", "gpt-4o")
	t.Setenv("DATALOOM_CLUSTERS", "4")

	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Model != "gpt-4o" {
		t.Errorf("model = %q, want env override", c.Model)
	}
	if c.Clusters != 4 {
		t.Errorf("clusters = %d, want env override", c.Clusters)
	}
}

func TestLoadRejectsNonPositiveClusters(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("clusters: 0\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, err := Load(path)
	var cfgErr *Error
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestTokenReadsEnvironmentOnly(t *testing.T) {
	t.Setenv("AIPROXY_TOKEN", "secret")
	got, err := Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if got != "secret" {
		t.Fatalf("token = %q", got)
	}

	t.Setenv("AIPROXY_TOKEN", "")
	_, err = Token()
	var cfgErr *Error
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected config error, got %v", err)
	}
}
