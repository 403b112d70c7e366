package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Tree describes a tree record in a transport-friendly format.
type Tree struct {
	ID          string   `json:"id"`
	Code        string   `json:"code"`
	Species     string   `json:"species"`
	Description string   `json:"description,omitempty"`
	PlantedBy   string   `json:"plantedBy,omitempty"`
	CampaignID  string   `json:"campaignId,omitempty"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
	Status      string   `json:"status"`
	PlantedAt   string   `json:"plantedAt,omitempty"`
	CreatedAt   string   `json:"createdAt,omitempty"`
	UpdatedAt   string   `json:"updatedAt,omitempty"`
	ScanCount   int64    `json:"scanCount"`
	LastScanAt  string   `json:"lastScanAt,omitempty"`
}

// ScanEvent describes one recorded scan of a tree.
type ScanEvent struct {
	ID           int64    `json:"id"`
	TreeID       string   `json:"treeId"`
	ScannedBy    string   `json:"scannedBy,omitempty"`
	Lat          *float64 `json:"lat"`
	Lng          *float64 `json:"lng"`
	MatchedField string   `json:"matchedField"`
	ScannedAt    string   `json:"scannedAt,omitempty"`
}

// Campaign describes a planting campaign.
type Campaign struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Organizer   string   `json:"organizer,omitempty"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
	Status      string   `json:"status"`
	GoalTrees   int64    `json:"goalTrees"`
	StartsAt    string   `json:"startsAt,omitempty"`
	EndsAt      string   `json:"endsAt,omitempty"`
	CreatedAt   string   `json:"createdAt,omitempty"`
}

// User describes a community member.
type User struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName,omitempty"`
	JoinedAt    string `json:"joinedAt,omitempty"`
}

// Post describes one community feed entry.
type Post struct {
	ID         int64  `json:"id"`
	Author     string `json:"author"`
	Body       string `json:"body"`
	TreeID     string `json:"treeId,omitempty"`
	CampaignID string `json:"campaignId,omitempty"`
	CreatedAt  string `json:"createdAt,omitempty"`
}

// Notification describes one per-user notification row.
type Notification struct {
	ID        int64  `json:"id"`
	Kind      string `json:"kind"`
	Title     string `json:"title"`
	Body      string `json:"body,omitempty"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// Award describes one earned achievement.
type Award struct {
	Code      string `json:"code"`
	Title     string `json:"title"`
	AwardedAt string `json:"awardedAt,omitempty"`
}

// LeaderboardEntry is one ranked leaderboard row.
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName,omitempty"`
	Trees       int64  `json:"trees"`
}

// NearbyTree pairs a tree with its distance from the search center.
type NearbyTree struct {
	Tree       Tree    `json:"tree"`
	DistanceKm float64 `json:"distanceKm"`
}

// NearbyCampaign pairs a campaign with its distance from the search center.
type NearbyCampaign struct {
	Campaign   Campaign `json:"campaign"`
	DistanceKm float64  `json:"distanceKm"`
}

// ResolveResult reports the outcome of a scan resolution.
type ResolveResult struct {
	Tree         Tree   `json:"tree"`
	MatchedField string `json:"matchedField"`
	Candidate    string `json:"candidate"`
	Warning      string `json:"warning,omitempty"`
}

// CheckResult mirrors one preflight check for status output.
type CheckResult struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// StoreSummary carries record counts for status output.
type StoreSummary struct {
	Trees           int `json:"trees"`
	ActiveTrees     int `json:"activeTrees"`
	Campaigns       int `json:"campaigns"`
	ActiveCampaigns int `json:"activeCampaigns"`
	Users           int `json:"users"`
	ScanEvents      int `json:"scanEvents"`
	Posts           int `json:"posts"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool          `json:"running"`
	PID          int           `json:"pid"`
	DBPath       string        `json:"dbPath"`
	LockFilePath string        `json:"lockFilePath"`
	Summary      StoreSummary  `json:"summary"`
	Checks       []CheckResult `json:"checks"`
}

// TreeListResponse wraps a collection of trees.
type TreeListResponse struct {
	Items []Tree `json:"items"`
}

// TreeResponse wraps a single tree.
type TreeResponse struct {
	Tree Tree `json:"tree"`
}

// TreeDetailResponse wraps a tree with its planter, campaign, and scan history.
type TreeDetailResponse struct {
	Tree     Tree        `json:"tree"`
	Planter  *User       `json:"planter,omitempty"`
	Campaign *Campaign   `json:"campaign,omitempty"`
	Scans    []ScanEvent `json:"scans"`
}

// ScanListResponse wraps a tree's scan history.
type ScanListResponse struct {
	Items []ScanEvent `json:"items"`
}

// NearbyTreesResponse wraps a proximity search result.
type NearbyTreesResponse struct {
	Items []NearbyTree `json:"items"`
}

// NearbyCampaignsResponse wraps a campaign proximity search result.
type NearbyCampaignsResponse struct {
	Items []NearbyCampaign `json:"items"`
}

// CampaignListResponse wraps a collection of campaigns.
type CampaignListResponse struct {
	Items []Campaign `json:"items"`
}

// CampaignResponse wraps a single campaign with progress counters.
type CampaignResponse struct {
	Campaign Campaign `json:"campaign"`
	Planted  int64    `json:"planted"`
	Percent  int      `json:"percent"`
}

// LeaderboardResponse wraps ranked leaderboard rows.
type LeaderboardResponse struct {
	Period  string             `json:"period"`
	Entries []LeaderboardEntry `json:"entries"`
}

// FeedResponse wraps community feed entries.
type FeedResponse struct {
	Items []Post `json:"items"`
}

// NotificationListResponse wraps a user's notifications.
type NotificationListResponse struct {
	Items []Notification `json:"items"`
}

// AwardListResponse wraps a user's achievements.
type AwardListResponse struct {
	Items []Award `json:"items"`
}
