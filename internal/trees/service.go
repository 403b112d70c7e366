package trees

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"greensprint/internal/community"
	"greensprint/internal/config"
	"greensprint/internal/geo"
	"greensprint/internal/logging"
	"greensprint/internal/notify"
	"greensprint/internal/scan"
	"greensprint/internal/services"
	"greensprint/internal/store"
	"greensprint/internal/textutil"
)

// Service manages tree records: registration, scan resolution, proximity
// search, and lifecycle changes.
type Service struct {
	cfg       *config.Config
	store     *store.Store
	logger    *slog.Logger
	notifier  notify.Service
	community *community.Service
	resolver  *scan.Resolver[store.Tree]
}

// NewService constructs the tree service with default dependencies.
func NewService(cfg *config.Config, st *store.Store, logger *slog.Logger) *Service {
	notifier := notify.NewService(cfg)
	return NewServiceWithDependencies(cfg, st, logger, notifier,
		community.NewServiceWithDependencies(cfg, st, logger, notifier))
}

// NewServiceWithDependencies allows injecting collaborators (used in tests).
func NewServiceWithDependencies(cfg *config.Config, st *store.Store, logger *slog.Logger, notifier notify.Service, communitySvc *community.Service) *Service {
	return &Service{
		cfg:       cfg,
		store:     st,
		logger:    logging.NewComponentLogger(logger, "trees"),
		notifier:  notifier,
		community: communitySvc,
		resolver:  scan.NewResolver[store.Tree](storeFinder{st}, storeRecorder{st}, logger),
	}
}

// storeFinder adapts the store's field lookup to the resolver's contract.
type storeFinder struct {
	store *store.Store
}

func (f storeFinder) Find(ctx context.Context, field scan.Field, value string) (*store.Tree, error) {
	return f.store.FindTreeByField(ctx, field, value)
}

// storeRecorder appends scan events for resolved trees. Creating the scanning
// user on first mention happens here so it stays inside the best-effort side
// effect rather than failing the resolution.
type storeRecorder struct {
	store *store.Store
}

func (r storeRecorder) RecordScan(ctx context.Context, tree *store.Tree, event scan.Event) error {
	record := &store.ScanEvent{
		TreeID:       tree.ID,
		MatchedField: string(event.Field),
	}
	if event.Location != nil {
		lat, lng := event.Location.Lat, event.Location.Lng
		record.Lat = &lat
		record.Lng = &lng
	}
	if actor := strings.TrimSpace(event.Actor); actor != "" {
		user, err := r.store.EnsureUser(ctx, uuid.NewString(), textutil.SanitizeToken(actor), actor)
		if err != nil {
			return fmt.Errorf("ensure scanning user: %w", err)
		}
		record.ScannedBy = user.ID
	}
	_, err := r.store.RecordScan(ctx, record)
	return err
}

// RegisterRequest describes a tree to add to the registry.
type RegisterRequest struct {
	Species     string
	Description string
	// Planter is the username credited with the planting; created on first
	// mention.
	Planter    string
	CampaignID string
	Lat        *float64
	Lng        *float64
	PlantedAt  *time.Time
	// Quiet suppresses the per-tree push notification. Bulk imports set it
	// and announce once at the end instead.
	Quiet bool
}

// Register validates the request, assigns a record ID and printed code, and
// persists the tree. Planting achievements are evaluated afterwards.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*store.Tree, error) {
	species := textutil.NormalizeSpecies(req.Species)
	if species == "" {
		return nil, services.Wrap(services.ErrValidation, "trees", "register", "species is required", nil)
	}
	if err := validateOptionalCoordinates(req.Lat, req.Lng); err != nil {
		return nil, services.Wrap(services.ErrValidation, "trees", "register", err.Error(), nil)
	}

	if req.CampaignID != "" {
		campaign, err := s.store.GetCampaignByID(ctx, req.CampaignID)
		if err != nil {
			return nil, services.Wrap(services.ErrUnavailable, "trees", "register", "look up campaign", err)
		}
		if campaign == nil {
			return nil, services.Wrap(services.ErrValidation, "trees", "register",
				fmt.Sprintf("campaign %s does not exist", req.CampaignID), nil)
		}
	}

	var planter *store.User
	if username := strings.TrimSpace(req.Planter); username != "" {
		var err error
		planter, err = s.store.EnsureUser(ctx, uuid.NewString(), textutil.SanitizeToken(username), username)
		if err != nil {
			return nil, services.Wrap(services.ErrUnavailable, "trees", "register", "ensure planter", err)
		}
	}

	code, err := uniqueCode(ctx, s.store)
	if err != nil {
		return nil, services.Wrap(services.ErrUnavailable, "trees", "register", "allocate code", err)
	}

	tree := &store.Tree{
		ID:          uuid.NewString(),
		Code:        code,
		Species:     species,
		Description: strings.TrimSpace(req.Description),
		CampaignID:  req.CampaignID,
		Lat:         req.Lat,
		Lng:         req.Lng,
		Status:      store.TreeStatusActive,
	}
	if planter != nil {
		tree.PlantedBy = planter.ID
	}
	if req.PlantedAt != nil {
		tree.PlantedAt = req.PlantedAt.UTC()
	}

	tree, err = s.store.InsertTree(ctx, tree)
	if err != nil {
		return nil, services.Wrap(services.ErrUnavailable, "trees", "register", "store tree", err)
	}

	s.logger.Info("tree registered",
		logging.String(logging.FieldTreeID, tree.ID),
		logging.String(logging.FieldTreeCode, tree.Code),
		logging.String("species", tree.Species),
	)

	if !req.Quiet {
		payload := notify.Payload{"species": tree.Species, "code": tree.Code}
		if planter != nil {
			payload["planter"] = planter.Username
		}
		if err := s.notifier.Publish(ctx, notify.EventTreeRegistered, payload); err != nil {
			s.logger.Warn("registration push failed", logging.Error(err))
		}
	}

	if planter != nil {
		if _, err := s.community.EvaluatePlanter(ctx, planter.ID); err != nil {
			s.logger.Warn("achievement evaluation failed",
				logging.String(logging.FieldActor, planter.Username),
				logging.Error(err),
			)
		}
	}
	return tree, nil
}

// ResolveOptions adjusts a single scan resolution.
type ResolveOptions struct {
	// Scanner is the username credited with the scan event.
	Scanner string
	// Location is the scanner's position, when known.
	Location *geo.Point
	// NoEvent suppresses the scan event even when recording is configured on.
	NoEvent bool
}

// Resolve turns raw scanned text into a tree record. Scan events are recorded
// per configuration; scanning achievements are evaluated when an event was
// recorded.
func (s *Service) Resolve(ctx context.Context, raw string, opts ResolveOptions) (*scan.Result[store.Tree], error) {
	record := s.cfg.Scanning.RecordEvents && !opts.NoEvent
	result, err := s.resolver.Resolve(ctx, raw, scan.Options{
		Actor:       opts.Scanner,
		Location:    opts.Location,
		RecordEvent: record,
	})
	if err != nil {
		return nil, err
	}

	if record && result.Warning == "" {
		s.afterScan(ctx, result, opts.Scanner)
	}
	return result, nil
}

// afterScan handles the follow-ups of a recorded scan event. Everything here
// is best effort; the resolution already succeeded.
func (s *Service) afterScan(ctx context.Context, result *scan.Result[store.Tree], scanner string) {
	tree := result.Record
	if err := s.notifier.Publish(ctx, notify.EventScanRecorded, notify.Payload{
		"species": tree.Species,
		"code":    tree.Code,
		"scanner": strings.TrimSpace(scanner),
	}); err != nil {
		s.logger.Warn("scan push failed", logging.Error(err))
	}

	username := textutil.SanitizeToken(scanner)
	if strings.TrimSpace(scanner) == "" {
		return
	}
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil || user == nil {
		return
	}
	if _, err := s.community.EvaluateScanner(ctx, user.ID); err != nil {
		s.logger.Warn("scanner achievement evaluation failed",
			logging.String(logging.FieldActor, username),
			logging.Error(err),
		)
	}
}

// Get fetches one tree by record ID or printed code.
func (s *Service) Get(ctx context.Context, id string) (*store.Tree, error) {
	var (
		tree *store.Tree
		err  error
	)
	if code := strings.ToUpper(strings.TrimSpace(id)); strings.HasPrefix(code, scan.NativeCodePrefix) {
		tree, err = s.store.GetTreeByCode(ctx, code)
	} else {
		tree, err = s.store.GetTreeByID(ctx, id)
	}
	if err != nil {
		return nil, services.Wrap(services.ErrUnavailable, "trees", "get", "load tree", err)
	}
	if tree == nil {
		return nil, services.Wrap(services.ErrNotFound, "trees", "get",
			fmt.Sprintf("no tree with id %s", id), nil)
	}
	return tree, nil
}

// Details bundles a tree with its context for display.
type Details struct {
	Tree     *store.Tree
	Planter  *store.User
	Campaign *store.Campaign
	Scans    []*store.ScanEvent
}

// Describe loads a tree together with its planter, campaign, and recent scan
// history.
func (s *Service) Describe(ctx context.Context, id string) (*Details, error) {
	tree, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	details := &Details{Tree: tree}

	if tree.PlantedBy != "" {
		if user, err := s.store.GetUserByID(ctx, tree.PlantedBy); err == nil {
			details.Planter = user
		}
	}
	if tree.CampaignID != "" {
		if campaign, err := s.store.GetCampaignByID(ctx, tree.CampaignID); err == nil {
			details.Campaign = campaign
		}
	}
	scans, err := s.store.ScansForTree(ctx, tree.ID, 20)
	if err != nil {
		return nil, services.Wrap(services.ErrUnavailable, "trees", "describe", "load scan history", err)
	}
	details.Scans = scans
	return details, nil
}

// List returns trees matching the filter options.
func (s *Service) List(ctx context.Context, opts store.ListTreesOptions) ([]*store.Tree, error) {
	trees, err := s.store.ListTrees(ctx, opts)
	if err != nil {
		return nil, services.Wrap(services.ErrUnavailable, "trees", "list", "list trees", err)
	}
	return trees, nil
}

// Remove marks a tree removed. Removed trees keep their history but drop out
// of searches, counts, and leaderboards.
func (s *Service) Remove(ctx context.Context, id string) error {
	tree, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if tree.Status == store.TreeStatusRemoved {
		return nil
	}
	tree.Status = store.TreeStatusRemoved
	if err := s.store.UpdateTree(ctx, tree); err != nil {
		return services.Wrap(services.ErrUnavailable, "trees", "remove", "update tree", err)
	}
	s.logger.Info("tree removed",
		logging.String(logging.FieldTreeID, tree.ID),
		logging.String(logging.FieldTreeCode, tree.Code),
	)
	return nil
}

// Nearby finds active trees within radiusKm of center, nearest first. A zero
// radius uses the configured default; radii beyond the configured maximum are
// rejected.
func (s *Service) Nearby(ctx context.Context, center geo.Point, radiusKm float64) ([]geo.Match[*store.Tree], error) {
	radius, err := s.searchRadius(radiusKm)
	if err != nil {
		return nil, err
	}
	if err := validateCoordinates(center.Lat, center.Lng); err != nil {
		return nil, services.Wrap(services.ErrValidation, "trees", "nearby", err.Error(), nil)
	}

	box := geo.BoxAround(center, radius)
	candidates, err := s.store.TreesInBox(ctx, box, store.TreeStatusActive)
	if err != nil {
		return nil, services.Wrap(services.ErrUnavailable, "trees", "nearby", "box query", err)
	}

	matches := geo.Nearest(center, radius, candidates)
	s.logger.Debug("proximity search",
		logging.Float64("radius_km", radius),
		logging.Int("box_candidates", len(candidates)),
		logging.Int("matches", len(matches)),
	)
	return matches, nil
}

func (s *Service) searchRadius(radiusKm float64) (float64, error) {
	if radiusKm == 0 {
		radiusKm = s.cfg.Geo.DefaultRadiusKm
	}
	if radiusKm <= 0 {
		return 0, services.Wrap(services.ErrValidation, "trees", "nearby", "radius must be positive", nil)
	}
	if max := s.cfg.Geo.MaxRadiusKm; max > 0 && radiusKm > max {
		return 0, services.Wrap(services.ErrValidation, "trees", "nearby",
			fmt.Sprintf("radius %.1f km exceeds the maximum of %.1f km", radiusKm, max), nil)
	}
	return radiusKm, nil
}

func validateCoordinates(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude %.4f out of range [-90, 90]", lat)
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("longitude %.4f out of range [-180, 180]", lng)
	}
	return nil
}

func validateOptionalCoordinates(lat, lng *float64) error {
	if (lat == nil) != (lng == nil) {
		return fmt.Errorf("latitude and longitude must be provided together")
	}
	if lat == nil {
		return nil
	}
	return validateCoordinates(*lat, *lng)
}
