package main

import (
	"encoding/json"
	"strings"
	"testing"

	"greensprint/internal/api"
)

func TestCLICampaignAndNearbyCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"--json", "campaign", "add",
		"--name", "Creek Restoration", "--organizer", "rangers",
		"--goal", "2", "--lat", "52.51", "--lng", "13.40"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("campaign add: %v", err)
	}
	var campaign api.Campaign
	if err := json.Unmarshal([]byte(out), &campaign); err != nil {
		t.Fatalf("decode campaign output: %v\n%s", err, out)
	}
	if campaign.ID == "" {
		t.Fatal("expected campaign id")
	}

	for _, species := range []string{"Red Maple", "White Oak"} {
		_, _, err := runCLI(t, []string{"tree", "register",
			"--species", species, "--planter", "casey",
			"--campaign", campaign.ID,
			"--lat", "52.52", "--lng", "13.405"}, env.socketPath, env.configPath)
		if err != nil {
			t.Fatalf("register %s: %v", species, err)
		}
	}

	out, _, err = runCLI(t, []string{"campaign", "list"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("campaign list: %v", err)
	}
	requireContains(t, out, "Creek Restoration")
	requireContains(t, out, "Active")

	out, _, err = runCLI(t, []string{"campaign", "show", campaign.ID}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("campaign show: %v", err)
	}
	requireContains(t, out, "Campaign Creek Restoration")
	requireContains(t, out, "2 of 2 (100%)")

	out, _, err = runCLI(t, []string{"nearby", "trees",
		"--lat", "52.52", "--lng", "13.405", "--radius", "5"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("nearby trees: %v", err)
	}
	requireContains(t, out, "Red Maple")
	requireContains(t, out, "White Oak")

	out, _, err = runCLI(t, []string{"nearby", "campaigns",
		"--lat", "52.52", "--lng", "13.405", "--radius", "10"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("nearby campaigns: %v", err)
	}
	requireContains(t, out, "Creek Restoration")
	requireContains(t, out, "rangers")

	out, _, err = runCLI(t, []string{"nearby", "trees",
		"--lat", "-33.86", "--lng", "151.20"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("nearby trees far away: %v", err)
	}
	requireContains(t, out, "No trees within range")
}

func TestCLILeaderboardCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"leaderboard"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("leaderboard empty: %v", err)
	}
	requireContains(t, out, "No trees planted yet")

	for _, planter := range []string{"casey", "casey", "robin"} {
		_, _, err := runCLI(t, []string{"tree", "register",
			"--species", "Linden", "--planter", planter}, env.socketPath, env.configPath)
		if err != nil {
			t.Fatalf("register for %s: %v", planter, err)
		}
	}

	out, _, err = runCLI(t, []string{"leaderboard", "--period", "week"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	requireContains(t, out, "Top planters (week)")
	requireContains(t, out, "casey")
	if strings.Index(out, "casey") > strings.Index(out, "robin") {
		t.Fatalf("expected casey ranked above robin:\n%s", out)
	}

	_, _, err = runCLI(t, []string{"leaderboard", "--period", "fortnight"}, env.socketPath, env.configPath)
	if err == nil {
		t.Fatal("expected error for unknown period")
	}
}
