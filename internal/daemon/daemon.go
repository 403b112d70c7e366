package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"greensprint/internal/campaigns"
	"greensprint/internal/community"
	"greensprint/internal/config"
	"greensprint/internal/geo"
	"greensprint/internal/importer"
	"greensprint/internal/leaderboard"
	"greensprint/internal/logging"
	"greensprint/internal/logs"
	"greensprint/internal/notify"
	"greensprint/internal/preflight"
	"greensprint/internal/scan"
	"greensprint/internal/store"
	"greensprint/internal/trees"
)

// Daemon coordinates the background services and enforces single-instance
// execution.
type Daemon struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     *store.Store
	notifier  notify.Service
	trees     *trees.Service
	campaigns *campaigns.Service
	community *community.Service
	board     *leaderboard.Service
	importer  *importer.Importer
	api       *apiServer

	lockPath string
	lock     *flock.Flock

	running  atomic.Bool
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	done     chan struct{}
	doneOnce sync.Once

	checksMu sync.Mutex
	checks   []preflight.Result
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	DBPath       string
	LockFilePath string
	Summary      store.Summary
	Checks       []preflight.Result
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || st == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, and logger")
	}

	notifier := notify.NewService(cfg)
	communitySvc := community.NewServiceWithDependencies(cfg, st, logger, notifier)
	treeSvc := trees.NewServiceWithDependencies(cfg, st, logger, notifier, communitySvc)
	campaignSvc := campaigns.NewServiceWithDependencies(cfg, st, logger, notifier)
	boardSvc := leaderboard.NewService(st, logger)
	imp := importer.NewImporterWithDependencies(cfg, st, treeSvc, logger, notifier)

	lockPath := filepath.Join(cfg.Paths.LogDir, "greensprintd.lock")
	d := &Daemon{
		cfg:       cfg,
		logger:    logging.NewComponentLogger(logger, "daemon"),
		store:     st,
		notifier:  notifier,
		trees:     treeSvc,
		campaigns: campaignSvc,
		community: communitySvc,
		board:     boardSvc,
		importer:  imp,
		lockPath:  lockPath,
		lock:      flock.New(lockPath),
		done:      make(chan struct{}),
	}

	apiSrv, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = apiSrv
	return d, nil
}

// Start acquires the daemon lock, runs preflight, and launches the API
// server and background loops.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another greensprint daemon instance is already running")
	}

	results := preflight.RunAll(ctx, d.cfg)
	d.setChecks(results)
	for _, result := range results {
		if result.Passed {
			continue
		}
		_ = d.lock.Unlock()
		return fmt.Errorf("preflight %s: %s", result.Name, result.Detail)
	}

	d.ctx, d.cancel = context.WithCancel(ctx)

	if err := d.api.start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return fmt.Errorf("start api server: %w", err)
	}

	if d.cfg.Import.Enabled {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			if err := d.importer.Run(d.ctx); err != nil && !errors.Is(err, context.Canceled) {
				d.logger.Error("importer stopped", logging.Error(err))
			}
		}()
	}

	d.wg.Add(1)
	go d.milestoneLoop()

	d.running.Store(true)
	d.logger.Info("greensprint daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	d.wg.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.doneOnce.Do(func() { close(d.done) })
	d.logger.Info("greensprint daemon stopped")
}

// Done is closed once the daemon has stopped. The process runtime selects on
// it so a stop request over IPC shuts the whole process down.
func (d *Daemon) Done() <-chan struct{} {
	return d.done
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// milestoneLoop periodically evaluates campaign progress so goal milestones
// announce close to when they are crossed rather than on the next write.
func (d *Daemon) milestoneLoop() {
	defer d.wg.Done()

	interval := time.Duration(d.cfg.Workflow.MilestoneCheckInterval) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}

	d.checkMilestones()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return
		case <-ticker.C:
			d.checkMilestones()
		}
	}
}

func (d *Daemon) checkMilestones() {
	if err := d.campaigns.CheckMilestones(d.ctx); err != nil && !errors.Is(err, context.Canceled) {
		d.logger.Warn("milestone check failed", logging.Error(err))
	}
}

func (d *Daemon) setChecks(results []preflight.Result) {
	d.checksMu.Lock()
	d.checks = append([]preflight.Result(nil), results...)
	d.checksMu.Unlock()
}

// Checks returns the preflight results captured at the last Start.
func (d *Daemon) Checks() []preflight.Result {
	d.checksMu.Lock()
	defer d.checksMu.Unlock()
	return append([]preflight.Result(nil), d.checks...)
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	summary, err := d.store.Stats(ctx)
	if err != nil {
		d.logger.Warn("stats unavailable", logging.Error(err))
	}
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		DBPath:       d.cfg.DatabasePath(),
		LockFilePath: d.lockPath,
		Summary:      summary,
		Checks:       d.Checks(),
	}
}

// Scan resolves a raw scan string against the registry.
func (d *Daemon) Scan(ctx context.Context, raw string, opts trees.ResolveOptions) (*scan.Result[store.Tree], error) {
	return d.trees.Resolve(ctx, raw, opts)
}

// RegisterTree adds a tree to the registry.
func (d *Daemon) RegisterTree(ctx context.Context, req trees.RegisterRequest) (*store.Tree, error) {
	return d.trees.Register(ctx, req)
}

// ListTrees returns trees filtered by the given options.
func (d *Daemon) ListTrees(ctx context.Context, opts store.ListTreesOptions) ([]*store.Tree, error) {
	return d.trees.List(ctx, opts)
}

// DescribeTree returns a tree with its planter, campaign, and scan history.
func (d *Daemon) DescribeTree(ctx context.Context, id string) (*trees.Details, error) {
	return d.trees.Describe(ctx, id)
}

// RemoveTree soft-deletes a tree.
func (d *Daemon) RemoveTree(ctx context.Context, id string) error {
	return d.trees.Remove(ctx, id)
}

// NearbyTrees searches for active trees around a point.
func (d *Daemon) NearbyTrees(ctx context.Context, center geo.Point, radiusKm float64) ([]geo.Match[*store.Tree], error) {
	return d.trees.Nearby(ctx, center, radiusKm)
}

// NearbyCampaigns searches for active campaigns around a point.
func (d *Daemon) NearbyCampaigns(ctx context.Context, center geo.Point, radiusKm float64) ([]geo.Match[*store.Campaign], error) {
	return d.campaigns.Nearby(ctx, center, radiusKm)
}

// CreateCampaign adds a campaign.
func (d *Daemon) CreateCampaign(ctx context.Context, req campaigns.CreateRequest) (*store.Campaign, error) {
	return d.campaigns.Create(ctx, req)
}

// ListCampaigns returns campaigns filtered by status.
func (d *Daemon) ListCampaigns(ctx context.Context, statuses ...store.CampaignStatus) ([]*store.Campaign, error) {
	return d.campaigns.List(ctx, statuses...)
}

// CampaignProgress returns one campaign with its progress counters.
func (d *Daemon) CampaignProgress(ctx context.Context, id string) (*campaigns.Progress, error) {
	return d.campaigns.Progress(ctx, id)
}

// Leaderboard returns the top planters for the period.
func (d *Daemon) Leaderboard(ctx context.Context, period leaderboard.Period, limit int) ([]leaderboard.Entry, error) {
	return d.board.Top(ctx, period, limit)
}

// Feed returns recent community posts.
func (d *Daemon) Feed(ctx context.Context, limit int) ([]community.FeedEntry, error) {
	return d.community.Feed(ctx, limit)
}

// AddPost publishes a community post.
func (d *Daemon) AddPost(ctx context.Context, author, body, treeID, campaignID string) (*store.Post, error) {
	return d.community.AddPost(ctx, author, body, treeID, campaignID)
}

// Notifications returns a user's stored notifications.
func (d *Daemon) Notifications(ctx context.Context, username string, unreadOnly bool) ([]*store.Notification, error) {
	return d.community.NotificationsFor(ctx, username, unreadOnly)
}

// MarkNotificationsRead marks all of a user's notifications read.
func (d *Daemon) MarkNotificationsRead(ctx context.Context, username string) (int64, error) {
	return d.community.MarkRead(ctx, username)
}

// Awards returns a user's earned achievements.
func (d *Daemon) Awards(ctx context.Context, username string) ([]*store.AchievementAward, error) {
	return d.community.AwardsFor(ctx, username)
}

// ImportFile runs one CSV file through the importer.
func (d *Daemon) ImportFile(ctx context.Context, path string) (*importer.Result, error) {
	return d.importer.ProcessFile(ctx, path)
}

// DatabaseHealth returns detailed database diagnostics.
func (d *Daemon) DatabaseHealth(ctx context.Context) (store.DatabaseHealth, error) {
	return d.store.CheckHealth(ctx)
}

// TestNotification triggers a test notification using the current
// configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	if err := d.notifier.Publish(ctx, notify.EventTest, nil); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

// LogPath returns the daemon's active log file, preferring the stable
// greensprint.log pointer and falling back to the newest run log. Empty when
// nothing has been written yet.
func (d *Daemon) LogPath() string {
	return logs.CurrentPath(d.cfg.Paths.LogDir)
}
