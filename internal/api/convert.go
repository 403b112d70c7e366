package api

import (
	"time"

	"greensprint/internal/community"
	"greensprint/internal/geo"
	"greensprint/internal/leaderboard"
	"greensprint/internal/preflight"
	"greensprint/internal/scan"
	"greensprint/internal/store"
)

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

// FromTree converts a tree record to its API representation.
func FromTree(tree *store.Tree) Tree {
	if tree == nil {
		return Tree{}
	}
	return Tree{
		ID:          tree.ID,
		Code:        tree.Code,
		Species:     tree.Species,
		Description: tree.Description,
		PlantedBy:   tree.PlantedBy,
		CampaignID:  tree.CampaignID,
		Lat:         tree.Lat,
		Lng:         tree.Lng,
		Status:      string(tree.Status),
		PlantedAt:   formatTime(tree.PlantedAt),
		CreatedAt:   formatTime(tree.CreatedAt),
		UpdatedAt:   formatTime(tree.UpdatedAt),
		ScanCount:   tree.ScanCount,
		LastScanAt:  formatTimePtr(tree.LastScanAt),
	}
}

// FromTrees converts a slice of tree records.
func FromTrees(items []*store.Tree) []Tree {
	out := make([]Tree, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		out = append(out, FromTree(item))
	}
	return out
}

// FromScanEvent converts a scan record to its API representation.
func FromScanEvent(event *store.ScanEvent) ScanEvent {
	if event == nil {
		return ScanEvent{}
	}
	return ScanEvent{
		ID:           event.ID,
		TreeID:       event.TreeID,
		ScannedBy:    event.ScannedBy,
		Lat:          event.Lat,
		Lng:          event.Lng,
		MatchedField: event.MatchedField,
		ScannedAt:    formatTime(event.ScannedAt),
	}
}

// FromScanEvents converts a slice of scan records.
func FromScanEvents(items []*store.ScanEvent) []ScanEvent {
	out := make([]ScanEvent, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		out = append(out, FromScanEvent(item))
	}
	return out
}

// FromCampaign converts a campaign record to its API representation.
func FromCampaign(campaign *store.Campaign) Campaign {
	if campaign == nil {
		return Campaign{}
	}
	return Campaign{
		ID:          campaign.ID,
		Name:        campaign.Name,
		Description: campaign.Description,
		Organizer:   campaign.Organizer,
		Lat:         campaign.Lat,
		Lng:         campaign.Lng,
		Status:      string(campaign.Status),
		GoalTrees:   campaign.GoalTrees,
		StartsAt:    formatTimePtr(campaign.StartsAt),
		EndsAt:      formatTimePtr(campaign.EndsAt),
		CreatedAt:   formatTime(campaign.CreatedAt),
	}
}

// FromCampaigns converts a slice of campaign records.
func FromCampaigns(items []*store.Campaign) []Campaign {
	out := make([]Campaign, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		out = append(out, FromCampaign(item))
	}
	return out
}

// FromUser converts a user record to its API representation.
func FromUser(user *store.User) User {
	if user == nil {
		return User{}
	}
	return User{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		JoinedAt:    formatTime(user.JoinedAt),
	}
}

// FromFeedEntry converts a feed entry, flattening the author username.
func FromFeedEntry(entry community.FeedEntry) Post {
	post := Post{
		Author: entry.AuthorUsername,
	}
	if entry.Post != nil {
		post.ID = entry.Post.ID
		post.Body = entry.Post.Body
		post.TreeID = entry.Post.TreeID
		post.CampaignID = entry.Post.CampaignID
		post.CreatedAt = formatTime(entry.Post.CreatedAt)
	}
	return post
}

// FromFeed converts a slice of feed entries.
func FromFeed(entries []community.FeedEntry) []Post {
	out := make([]Post, 0, len(entries))
	for _, entry := range entries {
		out = append(out, FromFeedEntry(entry))
	}
	return out
}

// FromNotification converts a notification record.
func FromNotification(note *store.Notification) Notification {
	if note == nil {
		return Notification{}
	}
	return Notification{
		ID:        note.ID,
		Kind:      string(note.Kind),
		Title:     note.Title,
		Body:      note.Body,
		Read:      note.Read,
		CreatedAt: formatTime(note.CreatedAt),
	}
}

// FromNotifications converts a slice of notification records.
func FromNotifications(items []*store.Notification) []Notification {
	out := make([]Notification, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		out = append(out, FromNotification(item))
	}
	return out
}

// FromAward converts an achievement award, resolving the display title from
// the catalog. Unknown codes keep the code as title so old rows still render.
func FromAward(award *store.AchievementAward) Award {
	if award == nil {
		return Award{}
	}
	title := award.Code
	if achievement, ok := community.AchievementByCode(award.Code); ok {
		title = achievement.Title
	}
	return Award{
		Code:      award.Code,
		Title:     title,
		AwardedAt: formatTime(award.AwardedAt),
	}
}

// FromAwards converts a slice of achievement awards.
func FromAwards(items []*store.AchievementAward) []Award {
	out := make([]Award, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		out = append(out, FromAward(item))
	}
	return out
}

// FromLeaderboard converts ranked leaderboard entries.
func FromLeaderboard(entries []leaderboard.Entry) []LeaderboardEntry {
	out := make([]LeaderboardEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, LeaderboardEntry{
			Rank:        entry.Rank,
			Username:    entry.Username,
			DisplayName: entry.DisplayName,
			Trees:       entry.Trees,
		})
	}
	return out
}

// NearbyTrees flattens geo matches into tree-plus-distance rows.
func NearbyTrees(matches []geo.Match[*store.Tree]) []NearbyTree {
	out := make([]NearbyTree, 0, len(matches))
	for _, match := range matches {
		out = append(out, NearbyTree{
			Tree:       FromTree(match.Value),
			DistanceKm: match.DistanceKm,
		})
	}
	return out
}

// NearbyCampaigns flattens geo matches into campaign-plus-distance rows.
func NearbyCampaigns(matches []geo.Match[*store.Campaign]) []NearbyCampaign {
	out := make([]NearbyCampaign, 0, len(matches))
	for _, match := range matches {
		out = append(out, NearbyCampaign{
			Campaign:   FromCampaign(match.Value),
			DistanceKm: match.DistanceKm,
		})
	}
	return out
}

// FromResolveResult converts a scan resolution outcome.
func FromResolveResult(result *scan.Result[store.Tree]) ResolveResult {
	if result == nil {
		return ResolveResult{}
	}
	return ResolveResult{
		Tree:         FromTree(result.Record),
		MatchedField: string(result.MatchedField),
		Candidate:    result.MatchedValue,
		Warning:      result.Warning,
	}
}

// FromSummary converts store counters for status payloads.
func FromSummary(summary store.Summary) StoreSummary {
	return StoreSummary{
		Trees:           summary.Trees,
		ActiveTrees:     summary.ActiveTrees,
		Campaigns:       summary.Campaigns,
		ActiveCampaigns: summary.ActiveCampaigns,
		Users:           summary.Users,
		ScanEvents:      summary.ScanEvents,
		Posts:           summary.Posts,
	}
}

// FromChecks converts preflight results for status payloads.
func FromChecks(results []preflight.Result) []CheckResult {
	out := make([]CheckResult, 0, len(results))
	for _, result := range results {
		out = append(out, CheckResult{
			Name:   result.Name,
			Passed: result.Passed,
			Detail: result.Detail,
		})
	}
	return out
}
