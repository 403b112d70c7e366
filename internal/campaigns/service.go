package campaigns

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"greensprint/internal/config"
	"greensprint/internal/geo"
	"greensprint/internal/logging"
	"greensprint/internal/notify"
	"greensprint/internal/services"
	"greensprint/internal/store"
)

// milestonePercents are the progress crossings announced for goal campaigns.
var milestonePercents = []int{25, 50, 75, 100}

// Service manages planting campaigns.
type Service struct {
	cfg      *config.Config
	store    *store.Store
	logger   *slog.Logger
	notifier notify.Service
}

// NewService constructs the campaign service with default dependencies.
func NewService(cfg *config.Config, st *store.Store, logger *slog.Logger) *Service {
	return NewServiceWithDependencies(cfg, st, logger, notify.NewService(cfg))
}

// NewServiceWithDependencies allows injecting collaborators (used in tests).
func NewServiceWithDependencies(cfg *config.Config, st *store.Store, logger *slog.Logger, notifier notify.Service) *Service {
	return &Service{
		cfg:      cfg,
		store:    st,
		logger:   logging.NewComponentLogger(logger, "campaigns"),
		notifier: notifier,
	}
}

// CreateRequest describes a campaign to add.
type CreateRequest struct {
	Name        string
	Description string
	Organizer   string
	Lat         *float64
	Lng         *float64
	GoalTrees   int64
	StartsAt    *time.Time
	EndsAt      *time.Time
}

// Create validates and persists a campaign. Campaigns whose start date is in
// the future begin upcoming; everything else starts active.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*store.Campaign, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, services.Wrap(services.ErrValidation, "campaigns", "create", "name is required", nil)
	}
	if req.GoalTrees < 0 {
		return nil, services.Wrap(services.ErrValidation, "campaigns", "create", "goal must not be negative", nil)
	}
	if (req.Lat == nil) != (req.Lng == nil) {
		return nil, services.Wrap(services.ErrValidation, "campaigns", "create",
			"latitude and longitude must be provided together", nil)
	}
	if req.Lat != nil {
		if *req.Lat < -90 || *req.Lat > 90 || *req.Lng < -180 || *req.Lng > 180 {
			return nil, services.Wrap(services.ErrValidation, "campaigns", "create", "coordinates out of range", nil)
		}
	}
	if req.StartsAt != nil && req.EndsAt != nil && req.EndsAt.Before(*req.StartsAt) {
		return nil, services.Wrap(services.ErrValidation, "campaigns", "create", "end date precedes start date", nil)
	}

	status := store.CampaignStatusActive
	if req.StartsAt != nil && req.StartsAt.After(time.Now()) {
		status = store.CampaignStatusUpcoming
	}

	campaign, err := s.store.InsertCampaign(ctx, &store.Campaign{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Organizer:   strings.TrimSpace(req.Organizer),
		Lat:         req.Lat,
		Lng:         req.Lng,
		Status:      status,
		GoalTrees:   req.GoalTrees,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
	})
	if err != nil {
		return nil, services.Wrap(services.ErrUnavailable, "campaigns", "create", "store campaign", err)
	}

	s.logger.Info("campaign created",
		logging.String(logging.FieldCampaignID, campaign.ID),
		logging.String("name", campaign.Name),
		logging.Int64("goal_trees", campaign.GoalTrees),
	)
	return campaign, nil
}

// Get fetches one campaign by ID.
func (s *Service) Get(ctx context.Context, id string) (*store.Campaign, error) {
	campaign, err := s.store.GetCampaignByID(ctx, id)
	if err != nil {
		return nil, services.Wrap(services.ErrUnavailable, "campaigns", "get", "load campaign", err)
	}
	if campaign == nil {
		return nil, services.Wrap(services.ErrNotFound, "campaigns", "get",
			fmt.Sprintf("no campaign with id %s", id), nil)
	}
	return campaign, nil
}

// List returns campaigns, optionally filtered by status.
func (s *Service) List(ctx context.Context, statuses ...store.CampaignStatus) ([]*store.Campaign, error) {
	campaigns, err := s.store.ListCampaigns(ctx, statuses...)
	if err != nil {
		return nil, services.Wrap(services.ErrUnavailable, "campaigns", "list", "list campaigns", err)
	}
	return campaigns, nil
}

// Progress reports how far a campaign is toward its tree goal.
type Progress struct {
	Campaign *store.Campaign
	Planted  int64
	// Percent is 0 when the campaign has no goal.
	Percent int
}

// Progress computes a campaign's planting progress.
func (s *Service) Progress(ctx context.Context, id string) (*Progress, error) {
	campaign, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	planted, err := s.store.CountTreesForCampaign(ctx, campaign.ID)
	if err != nil {
		return nil, services.Wrap(services.ErrUnavailable, "campaigns", "progress", "count trees", err)
	}
	return &Progress{
		Campaign: campaign,
		Planted:  planted,
		Percent:  percentOf(planted, campaign.GoalTrees),
	}, nil
}

// Nearby finds active campaigns within radiusKm of center, nearest first.
func (s *Service) Nearby(ctx context.Context, center geo.Point, radiusKm float64) ([]geo.Match[*store.Campaign], error) {
	if radiusKm == 0 {
		radiusKm = s.cfg.Geo.DefaultRadiusKm
	}
	if radiusKm <= 0 {
		return nil, services.Wrap(services.ErrValidation, "campaigns", "nearby", "radius must be positive", nil)
	}
	if max := s.cfg.Geo.MaxRadiusKm; max > 0 && radiusKm > max {
		return nil, services.Wrap(services.ErrValidation, "campaigns", "nearby",
			fmt.Sprintf("radius %.1f km exceeds the maximum of %.1f km", radiusKm, max), nil)
	}
	if center.Lat < -90 || center.Lat > 90 || center.Lng < -180 || center.Lng > 180 {
		return nil, services.Wrap(services.ErrValidation, "campaigns", "nearby", "center coordinates out of range", nil)
	}

	box := geo.BoxAround(center, radiusKm)
	candidates, err := s.store.CampaignsInBox(ctx, box, store.CampaignStatusActive)
	if err != nil {
		return nil, services.Wrap(services.ErrUnavailable, "campaigns", "nearby", "box query", err)
	}
	return geo.Nearest(center, radiusKm, candidates), nil
}

// CheckMilestones announces progress crossings for every active goal
// campaign. Each milestone is announced exactly once; a campaign that
// reaches its goal is marked completed.
func (s *Service) CheckMilestones(ctx context.Context) error {
	active, err := s.store.ListCampaigns(ctx, store.CampaignStatusActive)
	if err != nil {
		return services.Wrap(services.ErrUnavailable, "campaigns", "milestones", "list active campaigns", err)
	}

	for _, campaign := range active {
		if campaign.GoalTrees <= 0 {
			continue
		}
		if err := s.checkCampaign(ctx, campaign); err != nil {
			s.logger.Warn("milestone check failed",
				logging.String(logging.FieldCampaignID, campaign.ID),
				logging.Error(err),
			)
		}
	}
	return nil
}

func (s *Service) checkCampaign(ctx context.Context, campaign *store.Campaign) error {
	planted, err := s.store.CountTreesForCampaign(ctx, campaign.ID)
	if err != nil {
		return fmt.Errorf("count trees: %w", err)
	}
	percent := percentOf(planted, campaign.GoalTrees)

	for _, milestone := range milestonePercents {
		if percent < milestone {
			break
		}
		recorded, err := s.store.MarkCampaignMilestone(ctx, campaign.ID, milestone)
		if err != nil {
			return fmt.Errorf("mark milestone: %w", err)
		}
		if !recorded {
			continue
		}
		s.announce(ctx, campaign, milestone, planted)
	}

	if percent >= 100 && campaign.Status != store.CampaignStatusCompleted {
		campaign.Status = store.CampaignStatusCompleted
		if err := s.store.UpdateCampaign(ctx, campaign); err != nil {
			return fmt.Errorf("complete campaign: %w", err)
		}
		s.logger.Info("campaign completed",
			logging.String(logging.FieldCampaignID, campaign.ID),
			logging.String("name", campaign.Name),
		)
	}
	return nil
}

// announce pushes the milestone and stores an in-app notification for every
// contributing planter. Best effort throughout.
func (s *Service) announce(ctx context.Context, campaign *store.Campaign, milestone int, planted int64) {
	s.logger.Info("campaign milestone reached",
		logging.String(logging.FieldCampaignID, campaign.ID),
		logging.String("name", campaign.Name),
		logging.Int("percent", milestone),
	)

	if err := s.notifier.Publish(ctx, notify.EventCampaignMilestone, notify.Payload{
		"campaign": campaign.Name,
		"percent":  strconv.Itoa(milestone),
		"planted":  strconv.FormatInt(planted, 10),
		"goal":     strconv.FormatInt(campaign.GoalTrees, 10),
	}); err != nil {
		s.logger.Warn("milestone push failed", logging.Error(err))
	}

	planters, err := s.store.PlantersForCampaign(ctx, campaign.ID)
	if err != nil {
		s.logger.Warn("milestone planter lookup failed", logging.Error(err))
		return
	}
	title := fmt.Sprintf("%s reached %d%% of its goal", campaign.Name, milestone)
	body := fmt.Sprintf("%d of %d trees planted", planted, campaign.GoalTrees)
	for _, planter := range planters {
		if _, err := s.store.InsertNotification(ctx, &store.Notification{
			UserID: planter,
			Kind:   store.NotificationCampaign,
			Title:  title,
			Body:   body,
		}); err != nil {
			s.logger.Warn("milestone notification not stored",
				logging.String("user_id", planter),
				logging.Error(err),
			)
		}
	}
}

func percentOf(planted, goal int64) int {
	if goal <= 0 {
		return 0
	}
	return int(planted * 100 / goal)
}
