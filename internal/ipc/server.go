package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"strings"
	"sync"
	"time"

	"log/slog"

	"greensprint/internal/api"
	"greensprint/internal/campaigns"
	"greensprint/internal/daemon"
	"greensprint/internal/geo"
	"greensprint/internal/leaderboard"
	"greensprint/internal/logging"
	"greensprint/internal/logs"
	"greensprint/internal/store"
	"greensprint/internal/trees"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logger, ctx: ctx}
	if err := rpcServer.RegisterName("GreenSprint", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed", logging.Error(err))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err))
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) log() *slog.Logger {
	if s.logger == nil {
		return logging.NewNop()
	}
	return s.logger.With(logging.String("component", "ipc"))
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status(s.ctx)
	resp.Status = DaemonStatus{
		Running:      status.Running,
		PID:          status.PID,
		DBPath:       status.DBPath,
		LockFilePath: status.LockFilePath,
		Summary:      api.FromSummary(status.Summary),
		Checks:       api.FromChecks(status.Checks),
	}
	return nil
}

func (s *service) StopDaemon(_ StopRequest, resp *StopResponse) error {
	s.log().Debug("daemon stop requested")
	s.daemon.Stop()
	resp.Stopping = true
	s.log().Info("daemon stopped via IPC")
	return nil
}

func (s *service) Scan(req ScanRequest, resp *ScanResponse) error {
	opts := trees.ResolveOptions{
		Scanner: req.Scanner,
		NoEvent: !req.RecordEvent,
	}
	if req.Lat != nil && req.Lng != nil {
		opts.Location = &geo.Point{Lat: *req.Lat, Lng: *req.Lng}
	}
	result, err := s.daemon.Scan(s.ctx, req.Raw, opts)
	if err != nil {
		return err
	}
	resp.Result = api.FromResolveResult(result)
	return nil
}

func (s *service) TreeRegister(req TreeRegisterRequest, resp *TreeRegisterResponse) error {
	register := trees.RegisterRequest{
		Species:     req.Species,
		Description: req.Description,
		Planter:     req.Planter,
		CampaignID:  req.CampaignID,
		Lat:         req.Lat,
		Lng:         req.Lng,
	}
	plantedAt, err := optionalTime(req.PlantedAt)
	if err != nil {
		return fmt.Errorf("invalid planted_at timestamp: %w", err)
	}
	register.PlantedAt = plantedAt
	tree, err := s.daemon.RegisterTree(s.ctx, register)
	if err != nil {
		return err
	}
	resp.Tree = api.FromTree(tree)
	s.log().Info("tree registered via IPC", logging.String("tree_id", resp.Tree.ID))
	return nil
}

func (s *service) TreeList(req TreeListRequest, resp *TreeListResponse) error {
	opts := store.ListTreesOptions{
		Status:     store.TreeStatus(strings.TrimSpace(req.Status)),
		Species:    req.Species,
		PlantedBy:  req.PlantedBy,
		CampaignID: req.CampaignID,
		Limit:      req.Limit,
	}
	items, err := s.daemon.ListTrees(s.ctx, opts)
	if err != nil {
		return err
	}
	resp.Trees = api.FromTrees(items)
	return nil
}

func (s *service) TreeDescribe(req TreeDescribeRequest, resp *TreeDescribeResponse) error {
	if strings.TrimSpace(req.ID) == "" {
		return errors.New("tree describe requires an id")
	}
	details, err := s.daemon.DescribeTree(s.ctx, req.ID)
	if err != nil {
		return err
	}
	resp.Tree = api.FromTree(details.Tree)
	if details.Planter != nil {
		planter := api.FromUser(details.Planter)
		resp.Planter = &planter
	}
	if details.Campaign != nil {
		campaign := api.FromCampaign(details.Campaign)
		resp.Campaign = &campaign
	}
	resp.Scans = api.FromScanEvents(details.Scans)
	return nil
}

func (s *service) TreeRemove(req TreeRemoveRequest, resp *TreeRemoveResponse) error {
	if strings.TrimSpace(req.ID) == "" {
		return errors.New("tree remove requires an id")
	}
	if err := s.daemon.RemoveTree(s.ctx, req.ID); err != nil {
		return err
	}
	resp.Removed = true
	s.log().Info("tree removed via IPC", logging.String("tree_id", req.ID))
	return nil
}

func (s *service) NearbyTrees(req NearbyTreesRequest, resp *NearbyTreesResponse) error {
	matches, err := s.daemon.NearbyTrees(s.ctx, geo.Point{Lat: req.Lat, Lng: req.Lng}, req.RadiusKm)
	if err != nil {
		return err
	}
	resp.Trees = api.NearbyTrees(matches)
	return nil
}

func (s *service) NearbyCampaigns(req NearbyCampaignsRequest, resp *NearbyCampaignsResponse) error {
	matches, err := s.daemon.NearbyCampaigns(s.ctx, geo.Point{Lat: req.Lat, Lng: req.Lng}, req.RadiusKm)
	if err != nil {
		return err
	}
	resp.Campaigns = api.NearbyCampaigns(matches)
	return nil
}

func (s *service) CampaignCreate(req CampaignCreateRequest, resp *CampaignCreateResponse) error {
	create := campaigns.CreateRequest{
		Name:        req.Name,
		Description: req.Description,
		Organizer:   req.Organizer,
		GoalTrees:   req.GoalTrees,
		Lat:         req.Lat,
		Lng:         req.Lng,
	}
	var err error
	if create.StartsAt, err = optionalTime(req.StartsAt); err != nil {
		return fmt.Errorf("invalid starts_at timestamp: %w", err)
	}
	if create.EndsAt, err = optionalTime(req.EndsAt); err != nil {
		return fmt.Errorf("invalid ends_at timestamp: %w", err)
	}
	campaign, err := s.daemon.CreateCampaign(s.ctx, create)
	if err != nil {
		return err
	}
	resp.Campaign = api.FromCampaign(campaign)
	s.log().Info("campaign created via IPC", logging.String("campaign_id", resp.Campaign.ID))
	return nil
}

func (s *service) CampaignList(req CampaignListRequest, resp *CampaignListResponse) error {
	statuses := make([]store.CampaignStatus, 0, len(req.Statuses))
	for _, raw := range req.Statuses {
		parsed, ok := store.ParseCampaignStatus(raw)
		if !ok {
			continue
		}
		statuses = append(statuses, parsed)
	}
	items, err := s.daemon.ListCampaigns(s.ctx, statuses...)
	if err != nil {
		return err
	}
	resp.Campaigns = api.FromCampaigns(items)
	return nil
}

func (s *service) CampaignDescribe(req CampaignDescribeRequest, resp *CampaignDescribeResponse) error {
	if strings.TrimSpace(req.ID) == "" {
		return errors.New("campaign describe requires an id")
	}
	progress, err := s.daemon.CampaignProgress(s.ctx, req.ID)
	if err != nil {
		return err
	}
	resp.Campaign = api.FromCampaign(progress.Campaign)
	resp.Planted = progress.Planted
	resp.Percent = progress.Percent
	return nil
}

func (s *service) Leaderboard(req LeaderboardRequest, resp *LeaderboardResponse) error {
	period, err := leaderboard.ParsePeriod(req.Period)
	if err != nil {
		return err
	}
	entries, err := s.daemon.Leaderboard(s.ctx, period, req.Limit)
	if err != nil {
		return err
	}
	resp.Period = string(period)
	resp.Entries = api.FromLeaderboard(entries)
	return nil
}

func (s *service) Feed(req FeedRequest, resp *FeedResponse) error {
	entries, err := s.daemon.Feed(s.ctx, req.Limit)
	if err != nil {
		return err
	}
	resp.Posts = api.FromFeed(entries)
	return nil
}

func (s *service) PostAdd(req PostAddRequest, resp *PostAddResponse) error {
	post, err := s.daemon.AddPost(s.ctx, req.Author, req.Body, req.TreeID, req.CampaignID)
	if err != nil {
		return err
	}
	resp.ID = post.ID
	return nil
}

func (s *service) Notifications(req NotificationsRequest, resp *NotificationsResponse) error {
	items, err := s.daemon.Notifications(s.ctx, req.Username, req.UnreadOnly)
	if err != nil {
		return err
	}
	resp.Notifications = api.FromNotifications(items)
	return nil
}

func (s *service) NotificationsRead(req NotificationsReadRequest, resp *NotificationsReadResponse) error {
	marked, err := s.daemon.MarkNotificationsRead(s.ctx, req.Username)
	if err != nil {
		return err
	}
	resp.Marked = marked
	return nil
}

func (s *service) Awards(req AwardsRequest, resp *AwardsResponse) error {
	items, err := s.daemon.Awards(s.ctx, req.Username)
	if err != nil {
		return err
	}
	resp.Awards = api.FromAwards(items)
	return nil
}

func (s *service) ImportFile(req ImportFileRequest, resp *ImportFileResponse) error {
	if strings.TrimSpace(req.Path) == "" {
		return errors.New("import requires a file path")
	}
	result, err := s.daemon.ImportFile(s.ctx, req.Path)
	if err != nil {
		return err
	}
	resp.File = result.File
	resp.Imported = result.Imported
	resp.Failed = result.Failed
	for _, rowErr := range result.RowErrors {
		resp.RowErrors = append(resp.RowErrors, rowErr.Error())
	}
	s.log().Info("file imported via IPC",
		logging.String("file", result.File),
		logging.Int("imported", result.Imported),
		logging.Int("failed", result.Failed))
	return nil
}

func (s *service) DatabaseHealth(_ DatabaseHealthRequest, resp *DatabaseHealthResponse) error {
	health, err := s.daemon.DatabaseHealth(s.ctx)
	resp.DBPath = health.DBPath
	resp.DatabaseExists = health.DatabaseExists
	resp.DatabaseReadable = health.DatabaseReadable
	resp.TableExists = health.TableExists
	resp.ColumnsPresent = append(resp.ColumnsPresent, health.ColumnsPresent...)
	resp.MissingColumns = append(resp.MissingColumns, health.MissingColumns...)
	resp.SchemaVersion = health.SchemaVersion
	resp.Error = health.Error
	return err
}

func (s *service) TestNotification(_ TestNotificationRequest, resp *TestNotificationResponse) error {
	sent, detail, err := s.daemon.TestNotification(s.ctx)
	resp.Sent = sent
	resp.Detail = detail
	return err
}

func (s *service) LogTail(req LogTailRequest, resp *LogTailResponse) error {
	logPath := s.daemon.LogPath()
	if logPath == "" {
		resp.Offset = 0
		return nil
	}

	wait := time.Duration(req.WaitMillis) * time.Millisecond
	if wait <= 0 && req.Follow {
		wait = time.Second
	}

	ctx := s.ctx
	if req.Follow && wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(s.ctx, wait+500*time.Millisecond)
		defer cancel()
	}

	result, err := logs.Tail(ctx, logPath, logs.TailOptions{
		Offset: req.Offset,
		Limit:  req.Limit,
		Follow: req.Follow,
		Wait:   wait,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			resp.Offset = result.Offset
			return nil
		}
		return err
	}
	resp.Lines = result.Lines
	resp.Offset = result.Offset
	return nil
}

func optionalTime(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
