package main

import (
	"testing"
)

func TestCLICommunityCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"tree", "register",
		"--species", "Hazel", "--planter", "casey"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("tree register: %v", err)
	}

	out, _, err := runCLI(t, []string{"post", "add", "first", "one", "in", "the", "ground",
		"--author", "casey"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("post add: %v", err)
	}
	requireContains(t, out, "Posted #")

	out, _, err = runCLI(t, []string{"post", "list"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("post list: %v", err)
	}
	requireContains(t, out, "casey: first one in the ground")

	out, _, err = runCLI(t, []string{"notifications", "casey", "--unread"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("notifications: %v", err)
	}
	requireContains(t, out, "Achievement unlocked: First Tree")
	requireContains(t, out, "*")

	out, _, err = runCLI(t, []string{"notifications", "casey", "--mark-read"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("notifications mark-read: %v", err)
	}
	requireContains(t, out, "Marked 1 notifications read")

	out, _, err = runCLI(t, []string{"notifications", "casey", "--unread"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("notifications after mark-read: %v", err)
	}
	requireContains(t, out, "No unread notifications")

	out, _, err = runCLI(t, []string{"awards", "casey"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("awards: %v", err)
	}
	requireContains(t, out, "First Tree (first-tree)")

	if _, _, err := runCLI(t, []string{"post", "add", "cheering", "from", "the", "sidelines",
		"--author", "robin"}, env.socketPath, env.configPath); err != nil {
		t.Fatalf("post add robin: %v", err)
	}
	out, _, err = runCLI(t, []string{"awards", "robin"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("awards for robin: %v", err)
	}
	requireContains(t, out, "No awards earned yet")

	if _, _, err := runCLI(t, []string{"awards", "nobody"}, env.socketPath, env.configPath); err == nil {
		t.Fatal("expected error for unknown user")
	}
}
