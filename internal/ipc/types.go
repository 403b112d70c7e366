package ipc

import "greensprint/internal/api"

// DTO aliases so IPC callers work with the same shapes the HTTP API serves.
type (
	Tree             = api.Tree
	ScanEvent        = api.ScanEvent
	Campaign         = api.Campaign
	User             = api.User
	Post             = api.Post
	Notification     = api.Notification
	Award            = api.Award
	LeaderboardEntry = api.LeaderboardEntry
	NearbyTree       = api.NearbyTree
	NearbyCampaign   = api.NearbyCampaign
	ResolveResult    = api.ResolveResult
	CheckResult      = api.CheckResult
	StoreSummary     = api.StoreSummary
	DaemonStatus     = api.DaemonStatus
)

// StatusRequest asks the daemon for its runtime status.
type StatusRequest struct{}

// StatusResponse carries the daemon status snapshot.
type StatusResponse struct {
	Status DaemonStatus `json:"status"`
}

// StopRequest asks the daemon to shut down.
type StopRequest struct{}

// StopResponse acknowledges a stop request.
type StopResponse struct {
	Stopping bool `json:"stopping"`
}

// ScanRequest resolves a scanned identifier against the tree registry.
type ScanRequest struct {
	Raw         string   `json:"raw"`
	Scanner     string   `json:"scanner,omitempty"`
	Lat         *float64 `json:"lat,omitempty"`
	Lng         *float64 `json:"lng,omitempty"`
	RecordEvent bool     `json:"record_event"`
}

// ScanResponse carries the resolution outcome.
type ScanResponse struct {
	Result ResolveResult `json:"result"`
}

// TreeRegisterRequest registers a new tree.
type TreeRegisterRequest struct {
	Species     string   `json:"species"`
	Description string   `json:"description,omitempty"`
	Planter     string   `json:"planter"`
	CampaignID  string   `json:"campaign_id,omitempty"`
	Lat         *float64 `json:"lat,omitempty"`
	Lng         *float64 `json:"lng,omitempty"`
	PlantedAt   string   `json:"planted_at,omitempty"`
}

// TreeRegisterResponse carries the newly registered tree.
type TreeRegisterResponse struct {
	Tree Tree `json:"tree"`
}

// TreeListRequest lists trees with optional filters.
type TreeListRequest struct {
	Status     string `json:"status,omitempty"`
	Species    string `json:"species,omitempty"`
	PlantedBy  string `json:"planted_by,omitempty"`
	CampaignID string `json:"campaign_id,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

// TreeListResponse carries the matching trees.
type TreeListResponse struct {
	Trees []Tree `json:"trees"`
}

// TreeDescribeRequest fetches one tree with its planter, campaign, and scans.
type TreeDescribeRequest struct {
	ID string `json:"id"`
}

// TreeDescribeResponse carries the tree detail.
type TreeDescribeResponse struct {
	Tree     Tree        `json:"tree"`
	Planter  *User       `json:"planter,omitempty"`
	Campaign *Campaign   `json:"campaign,omitempty"`
	Scans    []ScanEvent `json:"scans"`
}

// TreeRemoveRequest removes a tree from the registry.
type TreeRemoveRequest struct {
	ID string `json:"id"`
}

// TreeRemoveResponse acknowledges the removal.
type TreeRemoveResponse struct {
	Removed bool `json:"removed"`
}

// NearbyTreesRequest searches for trees around a point.
type NearbyTreesRequest struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	RadiusKm float64 `json:"radius_km,omitempty"`
}

// NearbyTreesResponse carries trees ordered by ascending distance.
type NearbyTreesResponse struct {
	Trees []NearbyTree `json:"trees"`
}

// NearbyCampaignsRequest searches for campaigns around a point.
type NearbyCampaignsRequest struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	RadiusKm float64 `json:"radius_km,omitempty"`
}

// NearbyCampaignsResponse carries campaigns ordered by ascending distance.
type NearbyCampaignsResponse struct {
	Campaigns []NearbyCampaign `json:"campaigns"`
}

// CampaignCreateRequest creates a campaign.
type CampaignCreateRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Organizer   string   `json:"organizer,omitempty"`
	GoalTrees   int64    `json:"goal_trees,omitempty"`
	Lat         *float64 `json:"lat,omitempty"`
	Lng         *float64 `json:"lng,omitempty"`
	StartsAt    string   `json:"starts_at,omitempty"`
	EndsAt      string   `json:"ends_at,omitempty"`
}

// CampaignCreateResponse carries the created campaign.
type CampaignCreateResponse struct {
	Campaign Campaign `json:"campaign"`
}

// CampaignListRequest lists campaigns, optionally filtered by status.
type CampaignListRequest struct {
	Statuses []string `json:"statuses,omitempty"`
}

// CampaignListResponse carries the matching campaigns.
type CampaignListResponse struct {
	Campaigns []Campaign `json:"campaigns"`
}

// CampaignDescribeRequest fetches one campaign with its progress.
type CampaignDescribeRequest struct {
	ID string `json:"id"`
}

// CampaignDescribeResponse carries the campaign and its planting progress.
type CampaignDescribeResponse struct {
	Campaign Campaign `json:"campaign"`
	Planted  int64    `json:"planted"`
	Percent  int      `json:"percent"`
}

// LeaderboardRequest ranks planters over a period.
type LeaderboardRequest struct {
	Period string `json:"period,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// LeaderboardResponse carries the ranked entries.
type LeaderboardResponse struct {
	Period  string             `json:"period"`
	Entries []LeaderboardEntry `json:"entries"`
}

// FeedRequest fetches the most recent community posts.
type FeedRequest struct {
	Limit int `json:"limit,omitempty"`
}

// FeedResponse carries the posts, newest first.
type FeedResponse struct {
	Posts []Post `json:"posts"`
}

// PostAddRequest publishes a community post.
type PostAddRequest struct {
	Author     string `json:"author"`
	Body       string `json:"body"`
	TreeID     string `json:"tree_id,omitempty"`
	CampaignID string `json:"campaign_id,omitempty"`
}

// PostAddResponse carries the new post's identifier.
type PostAddResponse struct {
	ID int64 `json:"id"`
}

// NotificationsRequest lists a user's notifications.
type NotificationsRequest struct {
	Username   string `json:"username"`
	UnreadOnly bool   `json:"unread_only,omitempty"`
}

// NotificationsResponse carries the notifications, newest first.
type NotificationsResponse struct {
	Notifications []Notification `json:"notifications"`
}

// NotificationsReadRequest marks all of a user's notifications as read.
type NotificationsReadRequest struct {
	Username string `json:"username"`
}

// NotificationsReadResponse reports how many notifications were marked.
type NotificationsReadResponse struct {
	Marked int64 `json:"marked"`
}

// AwardsRequest lists a user's achievement awards.
type AwardsRequest struct {
	Username string `json:"username"`
}

// AwardsResponse carries the awards, newest first.
type AwardsResponse struct {
	Awards []Award `json:"awards"`
}

// ImportFileRequest imports one CSV file through the running daemon.
type ImportFileRequest struct {
	Path string `json:"path"`
}

// ImportFileResponse summarizes the import outcome.
type ImportFileResponse struct {
	File      string   `json:"file"`
	Imported  int      `json:"imported"`
	Failed    int      `json:"failed"`
	RowErrors []string `json:"row_errors,omitempty"`
}

// DatabaseHealthRequest asks for database diagnostics.
type DatabaseHealthRequest struct{}

// DatabaseHealthResponse carries the database diagnostics.
type DatabaseHealthResponse struct {
	DBPath           string   `json:"db_path"`
	DatabaseExists   bool     `json:"database_exists"`
	DatabaseReadable bool     `json:"database_readable"`
	TableExists      bool     `json:"table_exists"`
	ColumnsPresent   []string `json:"columns_present,omitempty"`
	MissingColumns   []string `json:"missing_columns,omitempty"`
	SchemaVersion    string   `json:"schema_version,omitempty"`
	Error            string   `json:"error,omitempty"`
}

// TestNotificationRequest sends a test message to the configured ntfy topic.
type TestNotificationRequest struct{}

// TestNotificationResponse reports the delivery outcome.
type TestNotificationResponse struct {
	Sent   bool   `json:"sent"`
	Detail string `json:"detail,omitempty"`
}

// LogTailRequest fetches daemon log lines. A negative offset requests the
// last Limit lines; WaitMillis bounds how long the daemon blocks for new
// output when following.
type LogTailRequest struct {
	Offset     int64 `json:"offset"`
	Limit      int   `json:"limit,omitempty"`
	Follow     bool  `json:"follow,omitempty"`
	WaitMillis int   `json:"wait_millis,omitempty"`
}

// LogTailResponse carries log lines and the offset to resume from.
type LogTailResponse struct {
	Lines  []string `json:"lines,omitempty"`
	Offset int64    `json:"offset"`
}
