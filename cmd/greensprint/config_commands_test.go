package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigInitAndValidate(t *testing.T) {
	_, configPath, socketPath := newOfflineEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, socketPath, configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Config path: "+configPath)
	requireContains(t, out, "Configuration valid")

	tmp := t.TempDir()
	target := filepath.Join(tmp, "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, socketPath, configPath)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	_, _, err = runCLI(t, []string{"config", "init", "--path", target}, socketPath, configPath)
	if err == nil {
		t.Fatal("expected init without --overwrite to fail on existing file")
	}
	requireContains(t, err.Error(), "already exists")
}

func TestConfigShow(t *testing.T) {
	_, configPath, socketPath := newOfflineEnv(t)

	out, _, err := runCLI(t, []string{"config", "show"}, socketPath, configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "# "+configPath)
	requireContains(t, out, "[paths]")
	requireContains(t, out, "default_radius_km")
}
