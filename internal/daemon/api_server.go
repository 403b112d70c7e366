package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"greensprint/internal/api"
	"greensprint/internal/campaigns"
	"greensprint/internal/config"
	"greensprint/internal/geo"
	"greensprint/internal/leaderboard"
	"greensprint/internal/logging"
	"greensprint/internal/services"
	"greensprint/internal/store"
	"greensprint/internal/trees"
)

type apiServer struct {
	bind        string
	logger      *slog.Logger
	daemon      *Daemon
	treeSvc     *api.TreeService
	campaignSvc *api.CampaignService
	scanLimiter *rate.Limiter

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || d == nil {
		return nil, nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	perMinute := cfg.Scanning.RateLimitPerMinute
	if perMinute <= 0 {
		perMinute = 60
	}
	burst := cfg.Scanning.RateBurst
	if burst <= 0 {
		burst = 1
	}

	srv := &apiServer{
		bind:        bind,
		logger:      logger,
		daemon:      d,
		treeSvc:     api.NewTreeService(d.store),
		campaignSvc: api.NewCampaignService(d.store),
		scanLimiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), burst),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", srv.handleStatus)
	mux.HandleFunc("/api/scan", srv.handleScan)
	mux.HandleFunc("/api/trees", srv.handleTrees)
	mux.HandleFunc("/api/trees/", srv.handleTreeItem)
	mux.HandleFunc("/api/nearby/trees", srv.handleNearbyTrees)
	mux.HandleFunc("/api/nearby/campaigns", srv.handleNearbyCampaigns)
	mux.HandleFunc("/api/campaigns", srv.handleCampaigns)
	mux.HandleFunc("/api/campaigns/", srv.handleCampaignItem)
	mux.HandleFunc("/api/leaderboard", srv.handleLeaderboard)
	mux.HandleFunc("/api/posts", srv.handlePosts)
	mux.HandleFunc("/api/users/", srv.handleUserSub)

	srv.server = &http.Server{
		Handler:           authMiddleware(cfg.Paths.APIToken, mux),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// addr returns the bound listen address, empty before start.
func (s *apiServer) addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status(r.Context())
	payload := api.DaemonStatus{
		Running:      status.Running,
		PID:          status.PID,
		DBPath:       status.DBPath,
		LockFilePath: status.LockFilePath,
		Summary:      api.FromSummary(status.Summary),
		Checks:       api.FromChecks(status.Checks),
	}
	s.writeJSON(w, http.StatusOK, payload)
}

type scanRequest struct {
	Raw     string   `json:"raw"`
	Scanner string   `json:"scanner,omitempty"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
	NoEvent bool     `json:"noEvent,omitempty"`
}

func (s *apiServer) handleScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.scanLimiter.Allow() {
		s.writeError(w, http.StatusTooManyRequests, "scan rate limit exceeded")
		return
	}

	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	opts := trees.ResolveOptions{Scanner: req.Scanner, NoEvent: req.NoEvent}
	if req.Lat != nil && req.Lng != nil {
		opts.Location = &geo.Point{Lat: *req.Lat, Lng: *req.Lng}
	}

	result, err := s.daemon.Scan(r.Context(), req.Raw, opts)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromResolveResult(result))
}

type registerTreeRequest struct {
	Species     string   `json:"species"`
	Description string   `json:"description,omitempty"`
	Planter     string   `json:"planter"`
	CampaignID  string   `json:"campaignId,omitempty"`
	Lat         *float64 `json:"lat,omitempty"`
	Lng         *float64 `json:"lng,omitempty"`
	PlantedAt   string   `json:"plantedAt,omitempty"`
}

func (s *apiServer) handleTrees(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		opts := store.ListTreesOptions{
			Status:     store.TreeStatus(strings.TrimSpace(r.URL.Query().Get("status"))),
			Species:    strings.TrimSpace(r.URL.Query().Get("species")),
			CampaignID: strings.TrimSpace(r.URL.Query().Get("campaign")),
			PlantedBy:  strings.TrimSpace(r.URL.Query().Get("planter")),
			Limit:      intQuery(r, "limit"),
			Offset:     intQuery(r, "offset"),
		}
		items, err := s.treeSvc.List(r.Context(), opts)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, api.TreeListResponse{Items: items})
	case http.MethodPost:
		var req registerTreeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		register := trees.RegisterRequest{
			Species:     req.Species,
			Description: req.Description,
			Planter:     req.Planter,
			CampaignID:  req.CampaignID,
			Lat:         req.Lat,
			Lng:         req.Lng,
		}
		if raw := strings.TrimSpace(req.PlantedAt); raw != "" {
			planted, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				s.writeError(w, http.StatusBadRequest, "invalid plantedAt timestamp")
				return
			}
			register.PlantedAt = &planted
		}
		tree, err := s.daemon.RegisterTree(r.Context(), register)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, api.TreeResponse{Tree: api.FromTree(tree)})
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *apiServer) handleTreeItem(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/trees/")
	if rest == "" {
		s.writeError(w, http.StatusNotFound, "tree not found")
		return
	}

	id, sub, _ := strings.Cut(rest, "/")
	switch {
	case sub == "" && r.Method == http.MethodGet:
		details, err := s.daemon.DescribeTree(r.Context(), id)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		resp := api.TreeDetailResponse{
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
		s.writeJSON(w, http.StatusOK, resp)
	case sub == "" && r.Method == http.MethodDelete:
		if err := s.daemon.RemoveTree(r.Context(), id); err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
	case sub == "scans" && r.Method == http.MethodGet:
		items, err := s.treeSvc.Scans(r.Context(), id, intQuery(r, "limit"))
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, api.ScanListResponse{Items: items})
	case sub != "" && sub != "scans":
		s.writeError(w, http.StatusNotFound, "tree not found")
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *apiServer) handleNearbyTrees(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	center, radius, err := nearbyQuery(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	matches, err := s.daemon.NearbyTrees(r.Context(), center, radius)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.NearbyTreesResponse{Items: api.NearbyTrees(matches)})
}

func (s *apiServer) handleNearbyCampaigns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	center, radius, err := nearbyQuery(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	matches, err := s.daemon.NearbyCampaigns(r.Context(), center, radius)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.NearbyCampaignsResponse{Items: api.NearbyCampaigns(matches)})
}

type createCampaignRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Organizer   string   `json:"organizer,omitempty"`
	Lat         *float64 `json:"lat,omitempty"`
	Lng         *float64 `json:"lng,omitempty"`
	GoalTrees   int64    `json:"goalTrees,omitempty"`
	StartsAt    string   `json:"startsAt,omitempty"`
	EndsAt      string   `json:"endsAt,omitempty"`
}

func (s *apiServer) handleCampaigns(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		var statuses []store.CampaignStatus
		for _, value := range r.URL.Query()["status"] {
			trimmed := strings.TrimSpace(value)
			if trimmed == "" {
				continue
			}
			statuses = append(statuses, store.CampaignStatus(trimmed))
		}
		items, err := s.campaignSvc.List(r.Context(), statuses...)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, api.CampaignListResponse{Items: items})
	case http.MethodPost:
		var req createCampaignRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		create := campaigns.CreateRequest{
			Name:        req.Name,
			Description: req.Description,
			Organizer:   req.Organizer,
			Lat:         req.Lat,
			Lng:         req.Lng,
			GoalTrees:   req.GoalTrees,
		}
		var err error
		if create.StartsAt, err = optionalTime(req.StartsAt); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid startsAt timestamp")
			return
		}
		if create.EndsAt, err = optionalTime(req.EndsAt); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid endsAt timestamp")
			return
		}
		campaign, err := s.daemon.CreateCampaign(r.Context(), create)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, api.CampaignResponse{Campaign: api.FromCampaign(campaign)})
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *apiServer) handleCampaignItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/campaigns/")
	if id == "" || strings.Contains(id, "/") {
		s.writeError(w, http.StatusNotFound, "campaign not found")
		return
	}
	progress, err := s.daemon.CampaignProgress(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.CampaignResponse{
		Campaign: api.FromCampaign(progress.Campaign),
		Planted:  progress.Planted,
		Percent:  progress.Percent,
	})
}

func (s *apiServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	period := leaderboard.Period(strings.TrimSpace(r.URL.Query().Get("period")))
	entries, err := s.daemon.Leaderboard(r.Context(), period, intQuery(r, "limit"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if period == "" {
		period = leaderboard.PeriodAll
	}
	s.writeJSON(w, http.StatusOK, api.LeaderboardResponse{
		Period:  string(period),
		Entries: api.FromLeaderboard(entries),
	})
}

type addPostRequest struct {
	Author     string `json:"author"`
	Body       string `json:"body"`
	TreeID     string `json:"treeId,omitempty"`
	CampaignID string `json:"campaignId,omitempty"`
}

func (s *apiServer) handlePosts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		entries, err := s.daemon.Feed(r.Context(), intQuery(r, "limit"))
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, api.FeedResponse{Items: api.FromFeed(entries)})
	case http.MethodPost:
		var req addPostRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		post, err := s.daemon.AddPost(r.Context(), req.Author, req.Body, req.TreeID, req.CampaignID)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, map[string]int64{"id": post.ID})
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *apiServer) handleUserSub(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/users/")
	username, sub, ok := strings.Cut(rest, "/")
	if username == "" || !ok {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch {
	case sub == "notifications" && r.Method == http.MethodGet:
		unread := r.URL.Query().Get("unread") == "1" || strings.EqualFold(r.URL.Query().Get("unread"), "true")
		items, err := s.daemon.Notifications(r.Context(), username, unread)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, api.NotificationListResponse{Items: api.FromNotifications(items)})
	case sub == "notifications/read" && r.Method == http.MethodPost:
		updated, err := s.daemon.MarkNotificationsRead(r.Context(), username)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]int64{"updated": updated})
	case sub == "awards" && r.Method == http.MethodGet:
		items, err := s.daemon.Awards(r.Context(), username)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, api.AwardListResponse{Items: api.FromAwards(items)})
	default:
		s.writeError(w, http.StatusNotFound, "not found")
	}
}

func nearbyQuery(r *http.Request) (geo.Point, float64, error) {
	query := r.URL.Query()
	lat, err := strconv.ParseFloat(strings.TrimSpace(query.Get("lat")), 64)
	if err != nil {
		return geo.Point{}, 0, errors.New("lat query parameter is required")
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(query.Get("lng")), 64)
	if err != nil {
		return geo.Point{}, 0, errors.New("lng query parameter is required")
	}
	radius := 0.0
	if raw := strings.TrimSpace(query.Get("radius_km")); raw != "" {
		radius, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return geo.Point{}, 0, errors.New("radius_km must be a number")
		}
	}
	return geo.Point{Lat: lat, Lng: lng}, radius, nil
}

func intQuery(r *http.Request, name string) int {
	value, _ := strconv.Atoi(r.URL.Query().Get(name))
	return value
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

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps service sentinel errors onto HTTP statuses so
// handlers never invent their own mapping.
func (s *apiServer) writeServiceError(w http.ResponseWriter, err error) {
	s.writeError(w, services.HTTPStatus(err), err.Error())
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String(logging.FieldComponent, "api-server"))
	}
	return logging.NewNop()
}
