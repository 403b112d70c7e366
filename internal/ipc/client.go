package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("GreenSprint.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// StopDaemon requests the daemon to shut down.
func (c *Client) StopDaemon() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("GreenSprint.StopDaemon", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Scan resolves raw scanned text against the registry.
func (c *Client) Scan(req ScanRequest) (*ScanResponse, error) {
	var resp ScanResponse
	if err := c.client.Call("GreenSprint.Scan", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TreeRegister registers a new tree.
func (c *Client) TreeRegister(req TreeRegisterRequest) (*TreeRegisterResponse, error) {
	var resp TreeRegisterResponse
	if err := c.client.Call("GreenSprint.TreeRegister", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TreeList returns trees matching the request filters.
func (c *Client) TreeList(req TreeListRequest) (*TreeListResponse, error) {
	var resp TreeListResponse
	if err := c.client.Call("GreenSprint.TreeList", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TreeDescribe returns one tree with its planter, campaign, and scans.
func (c *Client) TreeDescribe(id string) (*TreeDescribeResponse, error) {
	var resp TreeDescribeResponse
	if err := c.client.Call("GreenSprint.TreeDescribe", TreeDescribeRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TreeRemove removes a tree from the registry.
func (c *Client) TreeRemove(id string) (*TreeRemoveResponse, error) {
	var resp TreeRemoveResponse
	if err := c.client.Call("GreenSprint.TreeRemove", TreeRemoveRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// NearbyTrees returns trees within a radius of a point.
func (c *Client) NearbyTrees(req NearbyTreesRequest) (*NearbyTreesResponse, error) {
	var resp NearbyTreesResponse
	if err := c.client.Call("GreenSprint.NearbyTrees", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// NearbyCampaigns returns campaigns within a radius of a point.
func (c *Client) NearbyCampaigns(req NearbyCampaignsRequest) (*NearbyCampaignsResponse, error) {
	var resp NearbyCampaignsResponse
	if err := c.client.Call("GreenSprint.NearbyCampaigns", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CampaignCreate creates a campaign.
func (c *Client) CampaignCreate(req CampaignCreateRequest) (*CampaignCreateResponse, error) {
	var resp CampaignCreateResponse
	if err := c.client.Call("GreenSprint.CampaignCreate", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CampaignList returns campaigns optionally filtered by statuses.
func (c *Client) CampaignList(statuses []string) (*CampaignListResponse, error) {
	var resp CampaignListResponse
	req := CampaignListRequest{Statuses: statuses}
	if err := c.client.Call("GreenSprint.CampaignList", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CampaignDescribe returns one campaign with its planting progress.
func (c *Client) CampaignDescribe(id string) (*CampaignDescribeResponse, error) {
	var resp CampaignDescribeResponse
	if err := c.client.Call("GreenSprint.CampaignDescribe", CampaignDescribeRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Leaderboard returns ranked planters for a period.
func (c *Client) Leaderboard(period string, limit int) (*LeaderboardResponse, error) {
	var resp LeaderboardResponse
	req := LeaderboardRequest{Period: period, Limit: limit}
	if err := c.client.Call("GreenSprint.Leaderboard", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Feed returns the most recent community posts.
func (c *Client) Feed(limit int) (*FeedResponse, error) {
	var resp FeedResponse
	if err := c.client.Call("GreenSprint.Feed", FeedRequest{Limit: limit}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PostAdd publishes a community post.
func (c *Client) PostAdd(req PostAddRequest) (*PostAddResponse, error) {
	var resp PostAddResponse
	if err := c.client.Call("GreenSprint.PostAdd", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Notifications returns a user's notifications.
func (c *Client) Notifications(username string, unreadOnly bool) (*NotificationsResponse, error) {
	var resp NotificationsResponse
	req := NotificationsRequest{Username: username, UnreadOnly: unreadOnly}
	if err := c.client.Call("GreenSprint.Notifications", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// NotificationsRead marks all of a user's notifications as read.
func (c *Client) NotificationsRead(username string) (*NotificationsReadResponse, error) {
	var resp NotificationsReadResponse
	if err := c.client.Call("GreenSprint.NotificationsRead", NotificationsReadRequest{Username: username}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Awards returns a user's achievement awards.
func (c *Client) Awards(username string) (*AwardsResponse, error) {
	var resp AwardsResponse
	if err := c.client.Call("GreenSprint.Awards", AwardsRequest{Username: username}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ImportFile imports one CSV file through the running daemon.
func (c *Client) ImportFile(path string) (*ImportFileResponse, error) {
	var resp ImportFileResponse
	if err := c.client.Call("GreenSprint.ImportFile", ImportFileRequest{Path: path}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DatabaseHealth retrieves detailed database diagnostics.
func (c *Client) DatabaseHealth() (*DatabaseHealthResponse, error) {
	var resp DatabaseHealthResponse
	if err := c.client.Call("GreenSprint.DatabaseHealth", DatabaseHealthRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TestNotification triggers a notification test via the daemon.
func (c *Client) TestNotification() (*TestNotificationResponse, error) {
	var resp TestNotificationResponse
	if err := c.client.Call("GreenSprint.TestNotification", TestNotificationRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LogTail fetches daemon log lines starting at the requested offset.
func (c *Client) LogTail(req LogTailRequest) (*LogTailResponse, error) {
	var resp LogTailResponse
	if err := c.client.Call("GreenSprint.LogTail", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
