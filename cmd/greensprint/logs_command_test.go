package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeDaemonLog(t *testing.T, logDir, content string) {
	t.Helper()
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		t.Fatalf("create log dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(logDir, "greensprint.log"), []byte(content), 0o644); err != nil {
		t.Fatalf("write log file: %v", err)
	}
}

func TestCLILogsWithoutDaemon(t *testing.T) {
	cfg, configPath, socketPath := newOfflineEnv(t)
	writeDaemonLog(t, cfg.Paths.LogDir, "line one\nline two\nline three\n")

	out, _, err := runCLI(t, []string{"logs", "-n", "2"}, socketPath, configPath)
	if err != nil {
		t.Fatalf("logs failed: %v", err)
	}
	requireContains(t, out, "line two")
	requireContains(t, out, "line three")
	if strings.Contains(out, "line one") {
		t.Fatalf("expected oldest line to be trimmed, got %q", out)
	}
}

func TestCLILogsEmpty(t *testing.T) {
	_, configPath, socketPath := newOfflineEnv(t)

	out, _, err := runCLI(t, []string{"logs"}, socketPath, configPath)
	if err != nil {
		t.Fatalf("logs failed: %v", err)
	}
	requireContains(t, out, "No log entries available")
}

func TestCLILogsThroughDaemon(t *testing.T) {
	env := setupCLITestEnv(t)
	writeDaemonLog(t, env.cfg.Paths.LogDir, "daemon says hi\n")

	out, _, err := runCLI(t, []string{"logs"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("logs failed: %v", err)
	}
	requireContains(t, out, "daemon says hi")
}
