package store

import (
	"strings"
	"time"

	"greensprint/internal/geo"
	"greensprint/internal/scan"
)

// TreeStatus represents the lifecycle of a tree record.
type TreeStatus string

const (
	TreeStatusPending TreeStatus = "pending"
	TreeStatusActive  TreeStatus = "active"
	TreeStatusRemoved TreeStatus = "removed"
)

var allTreeStatuses = []TreeStatus{
	TreeStatusPending,
	TreeStatusActive,
	TreeStatusRemoved,
}

// ParseTreeStatus validates a raw status string.
func ParseTreeStatus(raw string) (TreeStatus, bool) {
	candidate := TreeStatus(strings.ToLower(strings.TrimSpace(raw)))
	for _, status := range allTreeStatuses {
		if candidate == status {
			return status, true
		}
	}
	return "", false
}

// CampaignStatus represents the lifecycle of a planting campaign.
type CampaignStatus string

const (
	CampaignStatusUpcoming  CampaignStatus = "upcoming"
	CampaignStatusActive    CampaignStatus = "active"
	CampaignStatusCompleted CampaignStatus = "completed"
)

var allCampaignStatuses = []CampaignStatus{
	CampaignStatusUpcoming,
	CampaignStatusActive,
	CampaignStatusCompleted,
}

// ParseCampaignStatus validates a raw status string.
func ParseCampaignStatus(raw string) (CampaignStatus, bool) {
	candidate := CampaignStatus(strings.ToLower(strings.TrimSpace(raw)))
	for _, status := range allCampaignStatuses {
		if candidate == status {
			return status, true
		}
	}
	return "", false
}

// NotificationKind classifies stored user notifications.
type NotificationKind string

const (
	NotificationScan        NotificationKind = "scan"
	NotificationAchievement NotificationKind = "achievement"
	NotificationCampaign    NotificationKind = "campaign"
	NotificationSystem      NotificationKind = "system"
)

// Tree is one registered tree record.
type Tree struct {
	ID          string
	Code        string
	Species     string
	Description string
	PlantedBy   string
	CampaignID  string
	Lat         *float64
	Lng         *float64
	Status      TreeStatus
	PlantedAt   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ScanCount   int64
	LastScanAt  *time.Time
}

// Location implements geo.Locatable. Trees missing either coordinate are
// unmapped.
func (t *Tree) Location() (geo.Point, bool) {
	if t == nil || t.Lat == nil || t.Lng == nil {
		return geo.Point{}, false
	}
	return geo.Point{Lat: *t.Lat, Lng: *t.Lng}, true
}

// LookupValue returns the column value the given scan field selects.
func (t *Tree) LookupValue(field scan.Field) string {
	if t == nil {
		return ""
	}
	if field == scan.FieldCode {
		return t.Code
	}
	return t.ID
}

// Campaign is one community planting campaign.
type Campaign struct {
	ID          string
	Name        string
	Description string
	Organizer   string
	Lat         *float64
	Lng         *float64
	Status      CampaignStatus
	GoalTrees   int64
	StartsAt    *time.Time
	EndsAt      *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Location implements geo.Locatable.
func (c *Campaign) Location() (geo.Point, bool) {
	if c == nil || c.Lat == nil || c.Lng == nil {
		return geo.Point{}, false
	}
	return geo.Point{Lat: *c.Lat, Lng: *c.Lng}, true
}

// User is one community member.
type User struct {
	ID          string
	Username    string
	DisplayName string
	JoinedAt    time.Time
}

// ScanEvent is one recorded resolution of a tree's code.
type ScanEvent struct {
	ID           int64
	TreeID       string
	ScannedBy    string
	Lat          *float64
	Lng          *float64
	MatchedField string
	ScannedAt    time.Time
}

// Post is one community feed entry, optionally referencing a tree or
// campaign.
type Post struct {
	ID         int64
	AuthorID   string
	Body       string
	TreeID     string
	CampaignID string
	CreatedAt  time.Time
}

// Notification is one stored per-user notification row.
type Notification struct {
	ID        int64
	UserID    string
	Kind      NotificationKind
	Title     string
	Body      string
	Read      bool
	CreatedAt time.Time
}

// AchievementAward records that a user earned an achievement.
type AchievementAward struct {
	UserID    string
	Code      string
	AwardedAt time.Time
}

// LeaderboardRow aggregates planting activity for one user.
type LeaderboardRow struct {
	UserID      string
	Username    string
	DisplayName string
	Trees       int64
}

// Summary counts records for status output.
type Summary struct {
	Trees           int
	ActiveTrees     int
	Campaigns       int
	ActiveCampaigns int
	Users           int
	ScanEvents      int
	Posts           int
}

// DatabaseHealth reports diagnostic information about the record database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	TableExists      bool
	ColumnsPresent   []string
	MissingColumns   []string
	SchemaVersion    string
	Error            string
}
