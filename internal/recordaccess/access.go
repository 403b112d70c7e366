package recordaccess

import (
	"context"
	"time"

	"greensprint/internal/api"
	"greensprint/internal/campaigns"
	"greensprint/internal/community"
	"greensprint/internal/config"
	"greensprint/internal/geo"
	"greensprint/internal/importer"
	"greensprint/internal/ipc"
	"greensprint/internal/leaderboard"
	"greensprint/internal/logging"
	"greensprint/internal/notify"
	"greensprint/internal/store"
	"greensprint/internal/trees"
)

// Access provides record operations regardless of IPC or direct store backing.
type Access interface {
	Summary(ctx context.Context) (api.StoreSummary, error)
	Scan(ctx context.Context, req ipc.ScanRequest) (api.ResolveResult, error)
	RegisterTree(ctx context.Context, req ipc.TreeRegisterRequest) (api.Tree, error)
	ListTrees(ctx context.Context, req ipc.TreeListRequest) ([]api.Tree, error)
	DescribeTree(ctx context.Context, id string) (*api.TreeDetailResponse, error)
	RemoveTree(ctx context.Context, id string) error
	NearbyTrees(ctx context.Context, lat, lng, radiusKm float64) ([]api.NearbyTree, error)
	NearbyCampaigns(ctx context.Context, lat, lng, radiusKm float64) ([]api.NearbyCampaign, error)
	CreateCampaign(ctx context.Context, req ipc.CampaignCreateRequest) (api.Campaign, error)
	ListCampaigns(ctx context.Context, statuses []string) ([]api.Campaign, error)
	CampaignProgress(ctx context.Context, id string) (api.CampaignResponse, error)
	Leaderboard(ctx context.Context, period string, limit int) (api.LeaderboardResponse, error)
	Feed(ctx context.Context, limit int) ([]api.Post, error)
	AddPost(ctx context.Context, req ipc.PostAddRequest) (int64, error)
	Notifications(ctx context.Context, username string, unreadOnly bool) ([]api.Notification, error)
	MarkNotificationsRead(ctx context.Context, username string) (int64, error)
	Awards(ctx context.Context, username string) ([]api.Award, error)
	ImportFile(ctx context.Context, path string) (ipc.ImportFileResponse, error)
	TestNotification(ctx context.Context) (bool, string, error)
}

// NewIPCAccess returns an Access backed by daemon IPC.
func NewIPCAccess(client *ipc.Client) Access {
	return &ipcAccess{client: client}
}

// NewStoreAccess returns an Access backed by direct DB access. It carries its
// own quiet service instances so CLI commands work without a running daemon.
func NewStoreAccess(cfg *config.Config, st *store.Store) Access {
	logger := logging.NewNop()
	notifier := notify.NewService(cfg)
	communitySvc := community.NewServiceWithDependencies(cfg, st, logger, notifier)
	treeSvc := trees.NewServiceWithDependencies(cfg, st, logger, notifier, communitySvc)
	return &storeAccess{
		cfg:       cfg,
		store:     st,
		notifier:  notifier,
		trees:     treeSvc,
		campaigns: campaigns.NewServiceWithDependencies(cfg, st, logger, notifier),
		community: communitySvc,
		board:     leaderboard.NewService(st, logger),
		importer:  importer.NewImporterWithDependencies(cfg, st, treeSvc, logger, notifier),
	}
}

type ipcAccess struct {
	client *ipc.Client
}

func (a *ipcAccess) Summary(_ context.Context) (api.StoreSummary, error) {
	resp, err := a.client.Status()
	if err != nil {
		return api.StoreSummary{}, err
	}
	return resp.Status.Summary, nil
}

func (a *ipcAccess) Scan(_ context.Context, req ipc.ScanRequest) (api.ResolveResult, error) {
	resp, err := a.client.Scan(req)
	if err != nil {
		return api.ResolveResult{}, err
	}
	return resp.Result, nil
}

func (a *ipcAccess) RegisterTree(_ context.Context, req ipc.TreeRegisterRequest) (api.Tree, error) {
	resp, err := a.client.TreeRegister(req)
	if err != nil {
		return api.Tree{}, err
	}
	return resp.Tree, nil
}

func (a *ipcAccess) ListTrees(_ context.Context, req ipc.TreeListRequest) ([]api.Tree, error) {
	resp, err := a.client.TreeList(req)
	if err != nil {
		return nil, err
	}
	return resp.Trees, nil
}

func (a *ipcAccess) DescribeTree(_ context.Context, id string) (*api.TreeDetailResponse, error) {
	resp, err := a.client.TreeDescribe(id)
	if err != nil {
		return nil, err
	}
	return &api.TreeDetailResponse{
		Tree:     resp.Tree,
		Planter:  resp.Planter,
		Campaign: resp.Campaign,
		Scans:    resp.Scans,
	}, nil
}

func (a *ipcAccess) RemoveTree(_ context.Context, id string) error {
	_, err := a.client.TreeRemove(id)
	return err
}

func (a *ipcAccess) NearbyTrees(_ context.Context, lat, lng, radiusKm float64) ([]api.NearbyTree, error) {
	resp, err := a.client.NearbyTrees(ipc.NearbyTreesRequest{Lat: lat, Lng: lng, RadiusKm: radiusKm})
	if err != nil {
		return nil, err
	}
	return resp.Trees, nil
}

func (a *ipcAccess) NearbyCampaigns(_ context.Context, lat, lng, radiusKm float64) ([]api.NearbyCampaign, error) {
	resp, err := a.client.NearbyCampaigns(ipc.NearbyCampaignsRequest{Lat: lat, Lng: lng, RadiusKm: radiusKm})
	if err != nil {
		return nil, err
	}
	return resp.Campaigns, nil
}

func (a *ipcAccess) CreateCampaign(_ context.Context, req ipc.CampaignCreateRequest) (api.Campaign, error) {
	resp, err := a.client.CampaignCreate(req)
	if err != nil {
		return api.Campaign{}, err
	}
	return resp.Campaign, nil
}

func (a *ipcAccess) ListCampaigns(_ context.Context, statuses []string) ([]api.Campaign, error) {
	resp, err := a.client.CampaignList(statuses)
	if err != nil {
		return nil, err
	}
	return resp.Campaigns, nil
}

func (a *ipcAccess) CampaignProgress(_ context.Context, id string) (api.CampaignResponse, error) {
	resp, err := a.client.CampaignDescribe(id)
	if err != nil {
		return api.CampaignResponse{}, err
	}
	return api.CampaignResponse{
		Campaign: resp.Campaign,
		Planted:  resp.Planted,
		Percent:  resp.Percent,
	}, nil
}

func (a *ipcAccess) Leaderboard(_ context.Context, period string, limit int) (api.LeaderboardResponse, error) {
	resp, err := a.client.Leaderboard(period, limit)
	if err != nil {
		return api.LeaderboardResponse{}, err
	}
	return api.LeaderboardResponse{Period: resp.Period, Entries: resp.Entries}, nil
}

func (a *ipcAccess) Feed(_ context.Context, limit int) ([]api.Post, error) {
	resp, err := a.client.Feed(limit)
	if err != nil {
		return nil, err
	}
	return resp.Posts, nil
}

func (a *ipcAccess) AddPost(_ context.Context, req ipc.PostAddRequest) (int64, error) {
	resp, err := a.client.PostAdd(req)
	if err != nil {
		return 0, err
	}
	return resp.ID, nil
}

func (a *ipcAccess) Notifications(_ context.Context, username string, unreadOnly bool) ([]api.Notification, error) {
	resp, err := a.client.Notifications(username, unreadOnly)
	if err != nil {
		return nil, err
	}
	return resp.Notifications, nil
}

func (a *ipcAccess) MarkNotificationsRead(_ context.Context, username string) (int64, error) {
	resp, err := a.client.NotificationsRead(username)
	if err != nil {
		return 0, err
	}
	return resp.Marked, nil
}

func (a *ipcAccess) Awards(_ context.Context, username string) ([]api.Award, error) {
	resp, err := a.client.Awards(username)
	if err != nil {
		return nil, err
	}
	return resp.Awards, nil
}

func (a *ipcAccess) ImportFile(_ context.Context, path string) (ipc.ImportFileResponse, error) {
	resp, err := a.client.ImportFile(path)
	if err != nil {
		return ipc.ImportFileResponse{}, err
	}
	return *resp, nil
}

func (a *ipcAccess) TestNotification(_ context.Context) (bool, string, error) {
	resp, err := a.client.TestNotification()
	if err != nil {
		return false, "", err
	}
	return resp.Sent, resp.Detail, nil
}

type storeAccess struct {
	cfg       *config.Config
	store     *store.Store
	notifier  notify.Service
	trees     *trees.Service
	campaigns *campaigns.Service
	community *community.Service
	board     *leaderboard.Service
	importer  *importer.Importer
}

func (a *storeAccess) Summary(ctx context.Context) (api.StoreSummary, error) {
	summary, err := a.store.Stats(ctx)
	if err != nil {
		return api.StoreSummary{}, err
	}
	return api.FromSummary(summary), nil
}

func (a *storeAccess) Scan(ctx context.Context, req ipc.ScanRequest) (api.ResolveResult, error) {
	opts := trees.ResolveOptions{
		Scanner: req.Scanner,
		NoEvent: !req.RecordEvent,
	}
	if req.Lat != nil && req.Lng != nil {
		opts.Location = &geo.Point{Lat: *req.Lat, Lng: *req.Lng}
	}
	result, err := a.trees.Resolve(ctx, req.Raw, opts)
	if err != nil {
		return api.ResolveResult{}, err
	}
	return api.FromResolveResult(result), nil
}

func (a *storeAccess) RegisterTree(ctx context.Context, req ipc.TreeRegisterRequest) (api.Tree, error) {
	register := trees.RegisterRequest{
		Species:     req.Species,
		Description: req.Description,
		Planter:     req.Planter,
		CampaignID:  req.CampaignID,
		Lat:         req.Lat,
		Lng:         req.Lng,
	}
	planted, err := parseOptionalTime(req.PlantedAt)
	if err != nil {
		return api.Tree{}, err
	}
	register.PlantedAt = planted
	tree, err := a.trees.Register(ctx, register)
	if err != nil {
		return api.Tree{}, err
	}
	return api.FromTree(tree), nil
}

func (a *storeAccess) ListTrees(ctx context.Context, req ipc.TreeListRequest) ([]api.Tree, error) {
	items, err := a.trees.List(ctx, store.ListTreesOptions{
		Status:     store.TreeStatus(req.Status),
		Species:    req.Species,
		PlantedBy:  req.PlantedBy,
		CampaignID: req.CampaignID,
		Limit:      req.Limit,
	})
	if err != nil {
		return nil, err
	}
	return api.FromTrees(items), nil
}

func (a *storeAccess) DescribeTree(ctx context.Context, id string) (*api.TreeDetailResponse, error) {
	details, err := a.trees.Describe(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := &api.TreeDetailResponse{
		Tree:  api.FromTree(details.Tree),
		Scans: api.FromScanEvents(details.Scans),
	}
	if details.Planter != nil {
		planter := api.FromUser(details.Planter)
		resp.Planter = &planter
	}
	if details.Campaign != nil {
		campaign := api.FromCampaign(details.Campaign)
		resp.Campaign = &campaign
	}
	return resp, nil
}

func (a *storeAccess) RemoveTree(ctx context.Context, id string) error {
	return a.trees.Remove(ctx, id)
}

func (a *storeAccess) NearbyTrees(ctx context.Context, lat, lng, radiusKm float64) ([]api.NearbyTree, error) {
	matches, err := a.trees.Nearby(ctx, geo.Point{Lat: lat, Lng: lng}, radiusKm)
	if err != nil {
		return nil, err
	}
	return api.NearbyTrees(matches), nil
}

func (a *storeAccess) NearbyCampaigns(ctx context.Context, lat, lng, radiusKm float64) ([]api.NearbyCampaign, error) {
	matches, err := a.campaigns.Nearby(ctx, geo.Point{Lat: lat, Lng: lng}, radiusKm)
	if err != nil {
		return nil, err
	}
	return api.NearbyCampaigns(matches), nil
}

func (a *storeAccess) CreateCampaign(ctx context.Context, req ipc.CampaignCreateRequest) (api.Campaign, error) {
	create := campaigns.CreateRequest{
		Name:        req.Name,
		Description: req.Description,
		Organizer:   req.Organizer,
		GoalTrees:   req.GoalTrees,
		Lat:         req.Lat,
		Lng:         req.Lng,
	}
	var err error
	if create.StartsAt, err = parseOptionalTime(req.StartsAt); err != nil {
		return api.Campaign{}, err
	}
	if create.EndsAt, err = parseOptionalTime(req.EndsAt); err != nil {
		return api.Campaign{}, err
	}
	campaign, err := a.campaigns.Create(ctx, create)
	if err != nil {
		return api.Campaign{}, err
	}
	return api.FromCampaign(campaign), nil
}

func parseOptionalTime(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func (a *storeAccess) ListCampaigns(ctx context.Context, statuses []string) ([]api.Campaign, error) {
	parsed := make([]store.CampaignStatus, 0, len(statuses))
	for _, raw := range statuses {
		if status, ok := store.ParseCampaignStatus(raw); ok {
			parsed = append(parsed, status)
		}
	}
	items, err := a.campaigns.List(ctx, parsed...)
	if err != nil {
		return nil, err
	}
	return api.FromCampaigns(items), nil
}

func (a *storeAccess) CampaignProgress(ctx context.Context, id string) (api.CampaignResponse, error) {
	progress, err := a.campaigns.Progress(ctx, id)
	if err != nil {
		return api.CampaignResponse{}, err
	}
	return api.CampaignResponse{
		Campaign: api.FromCampaign(progress.Campaign),
		Planted:  progress.Planted,
		Percent:  progress.Percent,
	}, nil
}

func (a *storeAccess) Leaderboard(ctx context.Context, period string, limit int) (api.LeaderboardResponse, error) {
	parsed, err := leaderboard.ParsePeriod(period)
	if err != nil {
		return api.LeaderboardResponse{}, err
	}
	entries, err := a.board.Top(ctx, parsed, limit)
	if err != nil {
		return api.LeaderboardResponse{}, err
	}
	return api.LeaderboardResponse{
		Period:  string(parsed),
		Entries: api.FromLeaderboard(entries),
	}, nil
}

func (a *storeAccess) Feed(ctx context.Context, limit int) ([]api.Post, error) {
	entries, err := a.community.Feed(ctx, limit)
	if err != nil {
		return nil, err
	}
	return api.FromFeed(entries), nil
}

func (a *storeAccess) AddPost(ctx context.Context, req ipc.PostAddRequest) (int64, error) {
	post, err := a.community.AddPost(ctx, req.Author, req.Body, req.TreeID, req.CampaignID)
	if err != nil {
		return 0, err
	}
	return post.ID, nil
}

func (a *storeAccess) Notifications(ctx context.Context, username string, unreadOnly bool) ([]api.Notification, error) {
	items, err := a.community.NotificationsFor(ctx, username, unreadOnly)
	if err != nil {
		return nil, err
	}
	return api.FromNotifications(items), nil
}

func (a *storeAccess) MarkNotificationsRead(ctx context.Context, username string) (int64, error) {
	return a.community.MarkRead(ctx, username)
}

func (a *storeAccess) Awards(ctx context.Context, username string) ([]api.Award, error) {
	items, err := a.community.AwardsFor(ctx, username)
	if err != nil {
		return nil, err
	}
	return api.FromAwards(items), nil
}

func (a *storeAccess) ImportFile(ctx context.Context, path string) (ipc.ImportFileResponse, error) {
	result, err := a.importer.ProcessFile(ctx, path)
	if err != nil {
		return ipc.ImportFileResponse{}, err
	}
	resp := ipc.ImportFileResponse{
		File:     result.File,
		Imported: result.Imported,
		Failed:   result.Failed,
	}
	for _, rowErr := range result.RowErrors {
		resp.RowErrors = append(resp.RowErrors, rowErr.Error())
	}
	return resp, nil
}

func (a *storeAccess) TestNotification(ctx context.Context) (bool, string, error) {
	if a.cfg.Notifications.NtfyTopic == "" {
		return false, "ntfy topic not configured", nil
	}
	if err := a.notifier.Publish(ctx, notify.EventTest, nil); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}
