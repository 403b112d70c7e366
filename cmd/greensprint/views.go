package main

import (
	"fmt"
	"strings"
	"time"

	"greensprint/internal/api"
)

func buildTreeRows(items []api.Tree) [][]string {
	rows := make([][]string, 0, len(items))
	for _, tree := range items {
		species := strings.TrimSpace(tree.Species)
		if species == "" {
			species = "Unknown"
		}
		rows = append(rows, []string{
			tree.Code,
			species,
			formatStatusLabel(tree.Status),
			tree.PlantedBy,
			formatDisplayTime(tree.PlantedAt),
			fmt.Sprintf("%d", tree.ScanCount),
		})
	}
	return rows
}

func buildNearbyTreeRows(items []api.NearbyTree) [][]string {
	rows := make([][]string, 0, len(items))
	for _, match := range items {
		rows = append(rows, []string{
			formatDistance(match.DistanceKm),
			match.Tree.Code,
			match.Tree.Species,
			match.Tree.PlantedBy,
		})
	}
	return rows
}

func buildNearbyCampaignRows(items []api.NearbyCampaign) [][]string {
	rows := make([][]string, 0, len(items))
	for _, match := range items {
		rows = append(rows, []string{
			formatDistance(match.DistanceKm),
			match.Campaign.Name,
			formatStatusLabel(match.Campaign.Status),
			match.Campaign.Organizer,
		})
	}
	return rows
}

func buildCampaignRows(items []api.Campaign) [][]string {
	rows := make([][]string, 0, len(items))
	for _, campaign := range items {
		rows = append(rows, []string{
			campaign.ID,
			campaign.Name,
			formatStatusLabel(campaign.Status),
			fmt.Sprintf("%d", campaign.GoalTrees),
			campaign.Organizer,
			formatDisplayTime(campaign.StartsAt),
		})
	}
	return rows
}

func buildLeaderboardRows(entries []api.LeaderboardEntry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Username
		if strings.TrimSpace(entry.DisplayName) != "" {
			name = fmt.Sprintf("%s (%s)", entry.DisplayName, entry.Username)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", entry.Rank),
			name,
			fmt.Sprintf("%d", entry.Trees),
		})
	}
	return rows
}

func buildSummaryRows(summary api.StoreSummary) [][]string {
	return [][]string{
		{"Trees", fmt.Sprintf("%d", summary.Trees)},
		{"Active trees", fmt.Sprintf("%d", summary.ActiveTrees)},
		{"Campaigns", fmt.Sprintf("%d", summary.Campaigns)},
		{"Active campaigns", fmt.Sprintf("%d", summary.ActiveCampaigns)},
		{"Users", fmt.Sprintf("%d", summary.Users)},
		{"Scan events", fmt.Sprintf("%d", summary.ScanEvents)},
		{"Posts", fmt.Sprintf("%d", summary.Posts)},
	}
}

func formatStatusLabel(status string) string {
	status = strings.TrimSpace(status)
	if status == "" {
		return ""
	}
	parts := strings.Split(status, "_")
	for i, part := range parts {
		lower := strings.ToLower(part)
		if lower == "" {
			continue
		}
		parts[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(parts, " ")
}

func formatDisplayTime(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC().Format("2006-01-02 15:04")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UTC().Format("2006-01-02 15:04")
	}
	return value
}

func formatDistance(km float64) string {
	if km < 1 {
		return fmt.Sprintf("%d m", int(km*1000+0.5))
	}
	return fmt.Sprintf("%.2f km", km)
}

func formatLocation(lat, lng *float64) string {
	if lat == nil || lng == nil {
		return "-"
	}
	return fmt.Sprintf("%.5f, %.5f", *lat, *lng)
}
