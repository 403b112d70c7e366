package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"greensprint/internal/config"
)

func TestLoadDefaultsExpandPathsAndEnvTopic(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("GREENSPRINT_NTFY_TOPIC", "greensprint-alerts")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "greensprint")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.APIBind != "127.0.0.1:7465" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.DatabasePath() != filepath.Join(wantData, "greensprint.db") {
		t.Fatalf("unexpected database path: %q", cfg.DatabasePath())
	}
	if cfg.Notifications.NtfyTopic != "greensprint-alerts" {
		t.Fatalf("expected topic from env, got %q", cfg.Notifications.NtfyTopic)
	}
	if !cfg.Scanning.RecordEvents {
		t.Fatal("expected scan event recording enabled by default")
	}
	if cfg.Notifications.Scans {
		t.Fatal("expected scan pushes disabled by default")
	}
	if cfg.Geo.DefaultRadiusKm != 5.0 {
		t.Fatalf("unexpected default radius: %v", cfg.Geo.DefaultRadiusKm)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadExplicitFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := strings.Join([]string{
		"[paths]",
		`data_dir = "` + filepath.Join(dir, "data") + `"`,
		`api_bind = "0.0.0.0:9999"`,
		`api_token = "secret"`,
		"",
		"[geo]",
		"default_radius_km = 2.5",
		"max_radius_km = 50.0",
		"",
		"[logging]",
		`format = "json"`,
		`level = "debug"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.Paths.APIBind != "0.0.0.0:9999" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.Paths.APIToken != "secret" {
		t.Fatalf("unexpected api token: %q", cfg.Paths.APIToken)
	}
	if cfg.Geo.DefaultRadiusKm != 2.5 || cfg.Geo.MaxRadiusKm != 50.0 {
		t.Fatalf("unexpected geo settings: %+v", cfg.Geo)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("unexpected logging format: %q", cfg.Logging.Format)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"zero rate limit", func(c *config.Config) { c.Scanning.RateLimitPerMinute = 0 }, "rate_limit_per_minute"},
		{"negative radius", func(c *config.Config) { c.Geo.DefaultRadiusKm = -1 }, "default_radius_km"},
		{"max below default", func(c *config.Config) { c.Geo.MaxRadiusKm = 1 }, "max_radius_km"},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "yaml" }, "logging.format"},
		{"zero milestone interval", func(c *config.Config) { c.Workflow.MilestoneCheckInterval = 0 }, "milestone_check_interval"},
	}
	for _, tc := range tests {
		cfg := config.Default()
		tc.mutate(&cfg)
		err := cfg.Validate()
		if err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: expected %q in error %q", tc.name, tc.want, err)
		}
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var cfg config.Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("sample config must parse: %v", err)
	}
	if cfg.Paths.APIBind != "127.0.0.1:7465" {
		t.Fatalf("sample api bind mismatch: %q", cfg.Paths.APIBind)
	}
}

func TestEnsureDirectoriesCreatesTree(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(dir, "data")
	cfg.Paths.LogDir = filepath.Join(dir, "logs")
	cfg.Paths.ImportDir = filepath.Join(dir, "import")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, p := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir, cfg.Paths.ImportDir} {
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q: %v", p, err)
		}
	}
}
