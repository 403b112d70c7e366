package main

import (
	"testing"

	"greensprint/internal/api"
)

func TestFormatDistance(t *testing.T) {
	cases := []struct {
		km   float64
		want string
	}{
		{0.042, "42 m"},
		{0.9996, "1000 m"},
		{1, "1.00 km"},
		{12.345, "12.35 km"},
	}
	for _, tc := range cases {
		if got := formatDistance(tc.km); got != tc.want {
			t.Fatalf("formatDistance(%v) = %q, want %q", tc.km, got, tc.want)
		}
	}
}

func TestFormatStatusLabel(t *testing.T) {
	cases := map[string]string{
		"active":       "Active",
		"removed":      "Removed",
		"in_progress":  "In Progress",
		"  completed ": "Completed",
		"":             "",
	}
	for input, want := range cases {
		if got := formatStatusLabel(input); got != want {
			t.Fatalf("formatStatusLabel(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestFormatDisplayTime(t *testing.T) {
	if got := formatDisplayTime("2026-04-12T09:30:00Z"); got != "2026-04-12 09:30" {
		t.Fatalf("unexpected rendering %q", got)
	}
	if got := formatDisplayTime("not-a-timestamp"); got != "not-a-timestamp" {
		t.Fatalf("expected passthrough for unparseable value, got %q", got)
	}
	if got := formatDisplayTime("  "); got != "" {
		t.Fatalf("expected empty output for blank value, got %q", got)
	}
}

func TestFormatLocation(t *testing.T) {
	lat := 52.52
	lng := 13.405
	if got := formatLocation(&lat, &lng); got != "52.52000, 13.40500" {
		t.Fatalf("unexpected location %q", got)
	}
	if got := formatLocation(nil, &lng); got != "-" {
		t.Fatalf("expected placeholder for missing coordinate, got %q", got)
	}
}

func TestBuildLeaderboardRows(t *testing.T) {
	rows := buildLeaderboardRows([]api.LeaderboardEntry{
		{Rank: 1, Username: "casey", DisplayName: "Casey Reed", Trees: 12},
		{Rank: 2, Username: "robin", Trees: 7},
	})
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][1] != "Casey Reed (casey)" {
		t.Fatalf("expected display name with username, got %q", rows[0][1])
	}
	if rows[1][1] != "robin" {
		t.Fatalf("expected bare username, got %q", rows[1][1])
	}
	if rows[0][2] != "12" || rows[1][0] != "2" {
		t.Fatalf("unexpected rank or count rendering: %v", rows)
	}
}
