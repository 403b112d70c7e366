package campaigns_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"greensprint/internal/campaigns"
	"greensprint/internal/config"
	"greensprint/internal/geo"
	"greensprint/internal/logging"
	"greensprint/internal/notify"
	"greensprint/internal/services"
	"greensprint/internal/store"
	"greensprint/internal/testsupport"
)

type capturingNotifier struct {
	payloads []notify.Payload
	events   []notify.Event
}

func (c *capturingNotifier) Publish(_ context.Context, event notify.Event, payload notify.Payload) error {
	c.events = append(c.events, event)
	c.payloads = append(c.payloads, payload)
	return nil
}

func newService(t *testing.T, cfg *config.Config, st *store.Store) (*campaigns.Service, *capturingNotifier) {
	t.Helper()
	notifier := &capturingNotifier{}
	return campaigns.NewServiceWithDependencies(cfg, st, logging.NewNop(), notifier), notifier
}

func plantForCampaign(t *testing.T, st *store.Store, campaignID, planterID string, count int) {
	t.Helper()
	for i := 0; i < count; i++ {
		tree := &store.Tree{
			ID:         uuid.NewString(),
			Code:       fmt.Sprintf("GS-%s%04d", campaignID[:4], i),
			Species:    "Quercus robur",
			CampaignID: campaignID,
			PlantedBy:  planterID,
		}
		if _, err := st.InsertTree(context.Background(), tree); err != nil {
			t.Fatalf("InsertTree failed: %v", err)
		}
	}
}

func TestCreateValidates(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	svc, _ := newService(t, cfg, st)

	ctx := context.Background()
	lat := 10.0
	starts := time.Now().Add(24 * time.Hour)
	ends := starts.Add(-time.Hour)
	tests := []struct {
		name string
		req  campaigns.CreateRequest
	}{
		{"missing name", campaigns.CreateRequest{Name: "  "}},
		{"negative goal", campaigns.CreateRequest{Name: "X", GoalTrees: -1}},
		{"lone latitude", campaigns.CreateRequest{Name: "X", Lat: &lat}},
		{"end before start", campaigns.CreateRequest{Name: "X", StartsAt: &starts, EndsAt: &ends}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, tc.req); !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateSetsStatusFromStart(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	svc, _ := newService(t, cfg, st)

	ctx := context.Background()
	current, err := svc.Create(ctx, campaigns.CreateRequest{Name: "Now", GoalTrees: 10})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if current.Status != store.CampaignStatusActive {
		t.Fatalf("expected active, got %s", current.Status)
	}

	starts := time.Now().Add(48 * time.Hour)
	future, err := svc.Create(ctx, campaigns.CreateRequest{Name: "Later", StartsAt: &starts})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if future.Status != store.CampaignStatusUpcoming {
		t.Fatalf("expected upcoming, got %s", future.Status)
	}
}

func TestProgress(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	svc, _ := newService(t, cfg, st)

	ctx := context.Background()
	campaign, err := svc.Create(ctx, campaigns.CreateRequest{Name: "Grove", GoalTrees: 8})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	planter := testsupport.NewUser(t, st, "gardener")
	plantForCampaign(t, st, campaign.ID, planter.ID, 2)

	progress, err := svc.Progress(ctx, campaign.ID)
	if err != nil {
		t.Fatalf("Progress failed: %v", err)
	}
	if progress.Planted != 2 || progress.Percent != 25 {
		t.Fatalf("unexpected progress: %#v", progress)
	}

	if _, err := svc.Progress(ctx, "missing"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestCheckMilestonesAnnouncesOnce(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	svc, notifier := newService(t, cfg, st)

	ctx := context.Background()
	campaign, err := svc.Create(ctx, campaigns.CreateRequest{Name: "Big Grove", GoalTrees: 4})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	planter := testsupport.NewUser(t, st, "digger")

	plantForCampaign(t, st, campaign.ID, planter.ID, 2)
	if err := svc.CheckMilestones(ctx); err != nil {
		t.Fatalf("CheckMilestones failed: %v", err)
	}
	// 2 of 4 crosses 25 and 50.
	if len(notifier.events) != 2 {
		t.Fatalf("expected 2 milestone pushes, got %d", len(notifier.events))
	}
	if notifier.payloads[0]["percent"] != "25" || notifier.payloads[1]["percent"] != "50" {
		t.Fatalf("unexpected milestone order: %v", notifier.payloads)
	}

	// Re-running does not re-announce.
	if err := svc.CheckMilestones(ctx); err != nil {
		t.Fatalf("CheckMilestones rerun failed: %v", err)
	}
	if len(notifier.events) != 2 {
		t.Fatalf("expected no new pushes on rerun, got %d", len(notifier.events))
	}

	notes, err := st.NotificationsForUser(ctx, planter.ID, true)
	if err != nil {
		t.Fatalf("NotificationsForUser failed: %v", err)
	}
	if len(notes) != 2 {
		t.Fatalf("expected 2 stored notifications, got %d", len(notes))
	}
	if notes[0].Kind != store.NotificationCampaign {
		t.Fatalf("unexpected notification kind %s", notes[0].Kind)
	}
}

func TestCheckMilestonesCompletesCampaign(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	svc, notifier := newService(t, cfg, st)

	ctx := context.Background()
	campaign, err := svc.Create(ctx, campaigns.CreateRequest{Name: "Tiny", GoalTrees: 2})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	planter := testsupport.NewUser(t, st, "finisher")
	plantForCampaign(t, st, campaign.ID, planter.ID, 2)

	if err := svc.CheckMilestones(ctx); err != nil {
		t.Fatalf("CheckMilestones failed: %v", err)
	}

	completed, err := svc.Get(ctx, campaign.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if completed.Status != store.CampaignStatusCompleted {
		t.Fatalf("expected completed, got %s", completed.Status)
	}
	// 2 of 2 crosses every milestone up to 100.
	if len(notifier.events) != 4 {
		t.Fatalf("expected 4 milestone pushes, got %d", len(notifier.events))
	}

	// Completed campaigns drop out of further checks.
	if err := svc.CheckMilestones(ctx); err != nil {
		t.Fatalf("CheckMilestones rerun failed: %v", err)
	}
	if len(notifier.events) != 4 {
		t.Fatalf("expected no pushes after completion, got %d", len(notifier.events))
	}
}

func TestNearbyCampaigns(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	svc, _ := newService(t, cfg, st)

	ctx := context.Background()
	center := geo.Point{Lat: 51.5074, Lng: -0.1278}

	lat1, lng1 := 51.51, -0.13
	if _, err := svc.Create(ctx, campaigns.CreateRequest{Name: "Close", Lat: &lat1, Lng: &lng1}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	lat2, lng2 := 48.8566, 2.3522
	if _, err := svc.Create(ctx, campaigns.CreateRequest{Name: "Paris", Lat: &lat2, Lng: &lng2}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	matches, err := svc.Nearby(ctx, center, 20)
	if err != nil {
		t.Fatalf("Nearby failed: %v", err)
	}
	if len(matches) != 1 || matches[0].Value.Name != "Close" {
		t.Fatalf("unexpected matches: %#v", matches)
	}

	if _, err := svc.Nearby(ctx, center, cfg.Geo.MaxRadiusKm+1); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error beyond max radius, got %v", err)
	}
}
