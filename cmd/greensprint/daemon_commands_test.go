package main

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"greensprint/internal/api"
)

func TestCLIStatusWithoutDaemon(t *testing.T) {
	_, configPath, socketPath := newOfflineEnv(t)

	out, _, err := runCLI(t, []string{"status"}, socketPath, configPath)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	requireContains(t, out, "Daemon")
	requireContains(t, out, "Not running")
	requireContains(t, out, "Environment Checks")
	requireContains(t, out, "Records")
	requireContains(t, out, "Trees")

	out, _, err = runCLI(t, []string{"daemon", "stop"}, socketPath, configPath)
	if err != nil {
		t.Fatalf("stop without daemon failed: %v", err)
	}
	requireContains(t, out, "Daemon is not running")
}

func TestCLIStatusWithRunningDaemon(t *testing.T) {
	env := setupCLITestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := env.daemon.Start(ctx); err != nil {
		t.Fatalf("start daemon: %v", err)
	}

	_, _, err := runCLI(t, []string{"tree", "register",
		"--species", "Silver Birch", "--planter", "casey",
		"--lat", "48.2082", "--lng", "16.3738"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	out, _, err := runCLI(t, []string{"daemon", "status"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("daemon status failed: %v", err)
	}
	requireContains(t, out, "Running (pid")
	requireContains(t, out, "Trees")

	out, _, err = runCLI(t, []string{"--json", "status"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("json status failed: %v", err)
	}
	var status api.DaemonStatus
	if err := json.Unmarshal([]byte(out), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if !status.Running {
		t.Fatal("expected daemon to report running")
	}
	if status.PID <= 0 {
		t.Fatalf("expected a daemon pid, got %d", status.PID)
	}
	if !strings.HasSuffix(status.DBPath, "greensprint.db") {
		t.Fatalf("unexpected database path %q", status.DBPath)
	}
	if status.Summary.Trees != 1 {
		t.Fatalf("expected 1 tree in summary, got %d", status.Summary.Trees)
	}
	if len(status.Checks) == 0 {
		t.Fatal("expected environment checks from the running daemon")
	}
}
