package community_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"greensprint/internal/community"
	"greensprint/internal/logging"
	"greensprint/internal/notify"
	"greensprint/internal/services"
	"greensprint/internal/store"
	"greensprint/internal/testsupport"
)

type capturingNotifier struct {
	events []notify.Event
}

func (c *capturingNotifier) Publish(_ context.Context, event notify.Event, _ notify.Payload) error {
	c.events = append(c.events, event)
	return nil
}

func TestAddPostValidates(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	svc := community.NewServiceWithDependencies(cfg, st, logging.NewNop(), &capturingNotifier{})

	ctx := context.Background()
	if _, err := svc.AddPost(ctx, "sam", "   ", "", ""); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for empty body, got %v", err)
	}
	if _, err := svc.AddPost(ctx, "sam", strings.Repeat("x", 2001), "", ""); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for oversized body, got %v", err)
	}
	if _, err := svc.AddPost(ctx, "sam", "hello", "missing-tree", ""); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for unknown tree, got %v", err)
	}

	tree := testsupport.NewTree(t, st, "Quercus robur", "GS-POST01")
	post, err := svc.AddPost(ctx, "sam", "Planted by the river", tree.ID, "")
	if err != nil {
		t.Fatalf("AddPost failed: %v", err)
	}
	if post.ID == 0 || post.TreeID != tree.ID {
		t.Fatalf("unexpected post: %#v", post)
	}

	feed, err := svc.Feed(ctx, 10)
	if err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	if len(feed) != 1 || feed[0].AuthorUsername != "sam" {
		t.Fatalf("unexpected feed: %#v", feed)
	}
}

func TestEvaluatePlanterAwardsThresholds(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	notifier := &capturingNotifier{}
	svc := community.NewServiceWithDependencies(cfg, st, logging.NewNop(), notifier)

	ctx := context.Background()
	planter := testsupport.NewUser(t, st, "rowan")

	earned, err := svc.EvaluatePlanter(ctx, planter.ID)
	if err != nil {
		t.Fatalf("EvaluatePlanter failed: %v", err)
	}
	if len(earned) != 0 {
		t.Fatalf("expected no awards before planting, got %v", earned)
	}

	for i := 0; i < 10; i++ {
		tree := &store.Tree{
			ID:        fmt.Sprintf("tree-%02d", i),
			Code:      fmt.Sprintf("GS-AW%04d", i),
			Species:   "Salix alba",
			PlantedBy: planter.ID,
		}
		if _, err := st.InsertTree(ctx, tree); err != nil {
			t.Fatalf("InsertTree failed: %v", err)
		}
	}

	earned, err = svc.EvaluatePlanter(ctx, planter.ID)
	if err != nil {
		t.Fatalf("EvaluatePlanter failed: %v", err)
	}
	if len(earned) != 2 {
		t.Fatalf("expected first-tree and ten-trees, got %v", earned)
	}
	if earned[0].Code != "first-tree" || earned[1].Code != "ten-trees" {
		t.Fatalf("unexpected award order: %v", earned)
	}

	// Re-evaluation must not re-award.
	earned, err = svc.EvaluatePlanter(ctx, planter.ID)
	if err != nil {
		t.Fatalf("repeat EvaluatePlanter failed: %v", err)
	}
	if len(earned) != 0 {
		t.Fatalf("expected idempotent evaluation, got %v", earned)
	}

	notes, err := svc.NotificationsFor(ctx, "rowan", true)
	if err != nil {
		t.Fatalf("NotificationsFor failed: %v", err)
	}
	if len(notes) != 2 {
		t.Fatalf("expected 2 unread achievement notifications, got %d", len(notes))
	}
	if notes[0].Kind != store.NotificationAchievement {
		t.Fatalf("unexpected notification kind: %s", notes[0].Kind)
	}

	if len(notifier.events) != 2 {
		t.Fatalf("expected 2 push events, got %d", len(notifier.events))
	}
	for _, event := range notifier.events {
		if event != notify.EventAchievement {
			t.Fatalf("unexpected push event %s", event)
		}
	}

	awards, err := svc.AwardsFor(ctx, "rowan")
	if err != nil {
		t.Fatalf("AwardsFor failed: %v", err)
	}
	if len(awards) != 2 {
		t.Fatalf("expected 2 stored awards, got %d", len(awards))
	}
}

func TestEvaluateScannerAwardsFirstScan(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	svc := community.NewServiceWithDependencies(cfg, st, logging.NewNop(), &capturingNotifier{})

	ctx := context.Background()
	scanner := testsupport.NewUser(t, st, "kit")
	tree := testsupport.NewTree(t, st, "Tilia cordata", "GS-SCAN01")

	if _, err := st.RecordScan(ctx, &store.ScanEvent{TreeID: tree.ID, ScannedBy: scanner.ID}); err != nil {
		t.Fatalf("RecordScan failed: %v", err)
	}

	earned, err := svc.EvaluateScanner(ctx, scanner.ID)
	if err != nil {
		t.Fatalf("EvaluateScanner failed: %v", err)
	}
	if len(earned) != 1 || earned[0].Code != "first-scan" {
		t.Fatalf("expected first-scan award, got %v", earned)
	}
}

func TestMarkRead(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	svc := community.NewServiceWithDependencies(cfg, st, logging.NewNop(), &capturingNotifier{})

	ctx := context.Background()
	user := testsupport.NewUser(t, st, "blair")
	if _, err := st.InsertNotification(ctx, &store.Notification{
		UserID: user.ID,
		Kind:   store.NotificationSystem,
		Title:  "Welcome",
	}); err != nil {
		t.Fatalf("InsertNotification failed: %v", err)
	}

	marked, err := svc.MarkRead(ctx, "blair")
	if err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	if marked != 1 {
		t.Fatalf("expected 1 marked, got %d", marked)
	}

	if _, err := svc.MarkRead(ctx, "nobody"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found for unknown user, got %v", err)
	}
}

func TestCatalogLookup(t *testing.T) {
	if len(community.Catalog()) != 5 {
		t.Fatalf("expected 5 achievements, got %d", len(community.Catalog()))
	}
	badge, ok := community.AchievementByCode("fifty-trees")
	if !ok || badge.Threshold != 50 {
		t.Fatalf("unexpected catalog entry: %#v %v", badge, ok)
	}
	if _, ok := community.AchievementByCode("no-such"); ok {
		t.Fatal("expected lookup miss")
	}
}
