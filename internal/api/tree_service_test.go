package api

import (
	"context"
	"errors"
	"testing"
	"time"

	"greensprint/internal/store"
)

type mockTreeReader struct {
	trees   []*store.Tree
	scans   []*store.ScanEvent
	listErr error
	getErr  error
}

func (m *mockTreeReader) ListTrees(context.Context, store.ListTreesOptions) ([]*store.Tree, error) {
	return m.trees, m.listErr
}

func (m *mockTreeReader) GetTreeByID(context.Context, string) (*store.Tree, error) {
	if len(m.trees) == 0 {
		return nil, m.getErr
	}
	return m.trees[0], m.getErr
}

func (m *mockTreeReader) ScansForTree(context.Context, string, int) ([]*store.ScanEvent, error) {
	return m.scans, m.listErr
}

func TestTreeService_List(t *testing.T) {
	now := time.Now().UTC()
	reader := &mockTreeReader{
		trees: []*store.Tree{{
			ID:        "abc",
			Code:      "GS-0F0F0F",
			Species:   "Tilia Cordata",
			Status:    store.TreeStatusActive,
			CreatedAt: now,
			UpdatedAt: now,
		}},
	}
	svc := NewTreeService(reader)
	got, err := svc.List(context.Background(), store.ListTreesOptions{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("unexpected item count: %d", len(got))
	}
	if got[0].Species != "Tilia Cordata" {
		t.Fatalf("unexpected species: %q", got[0].Species)
	}
	if got[0].Status != string(store.TreeStatusActive) {
		t.Fatalf("unexpected status: %q", got[0].Status)
	}
	if got[0].CreatedAt == "" || got[0].UpdatedAt == "" {
		t.Fatal("expected timestamps to be formatted")
	}
}

func TestTreeService_ListError(t *testing.T) {
	reader := &mockTreeReader{listErr: errors.New("boom")}
	svc := NewTreeService(reader)
	if _, err := svc.List(context.Background(), store.ListTreesOptions{}); err == nil {
		t.Fatal("expected error from reader")
	}
}

func TestTreeService_DescribeMissing(t *testing.T) {
	svc := NewTreeService(&mockTreeReader{})
	got, err := svc.Describe(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Describe returned error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing tree, got %+v", got)
	}
}

func TestTreeService_NilReader(t *testing.T) {
	if svc := NewTreeService(nil); svc != nil {
		t.Fatal("expected nil service for nil reader")
	}
}

type mockCampaignReader struct {
	campaigns []*store.Campaign
	planted   int64
}

func (m *mockCampaignReader) ListCampaigns(context.Context, ...store.CampaignStatus) ([]*store.Campaign, error) {
	return m.campaigns, nil
}

func (m *mockCampaignReader) GetCampaignByID(context.Context, string) (*store.Campaign, error) {
	if len(m.campaigns) == 0 {
		return nil, nil
	}
	return m.campaigns[0], nil
}

func (m *mockCampaignReader) CountTreesForCampaign(context.Context, string) (int64, error) {
	return m.planted, nil
}

func TestCampaignService_DescribeComputesPercent(t *testing.T) {
	reader := &mockCampaignReader{
		campaigns: []*store.Campaign{{
			ID:        "c1",
			Name:      "Spring Sprint",
			Status:    store.CampaignStatusActive,
			GoalTrees: 200,
		}},
		planted: 50,
	}
	svc := NewCampaignService(reader)
	got, err := svc.Describe(context.Background(), "c1")
	if err != nil {
		t.Fatalf("Describe returned error: %v", err)
	}
	if got == nil {
		t.Fatal("expected campaign response")
	}
	if got.Planted != 50 || got.Percent != 25 {
		t.Fatalf("unexpected progress: planted=%d percent=%d", got.Planted, got.Percent)
	}
}

func TestCampaignService_DescribeZeroGoal(t *testing.T) {
	reader := &mockCampaignReader{
		campaigns: []*store.Campaign{{ID: "c1", Name: "Open-ended"}},
		planted:   10,
	}
	svc := NewCampaignService(reader)
	got, err := svc.Describe(context.Background(), "c1")
	if err != nil {
		t.Fatalf("Describe returned error: %v", err)
	}
	if got.Percent != 0 {
		t.Fatalf("expected zero percent for goalless campaign, got %d", got.Percent)
	}
}
