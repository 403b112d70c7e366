package api

import (
	"context"

	"greensprint/internal/store"
)

// CampaignReader abstracts the store interactions needed for campaign API
// queries.
type CampaignReader interface {
	ListCampaigns(ctx context.Context, statuses ...store.CampaignStatus) ([]*store.Campaign, error)
	GetCampaignByID(ctx context.Context, id string) (*store.Campaign, error)
	CountTreesForCampaign(ctx context.Context, campaignID string) (int64, error)
}

// CampaignService exposes read-only campaign operations returning API DTOs.
type CampaignService struct {
	store CampaignReader
}

// NewCampaignService constructs a CampaignService around the provided reader.
func NewCampaignService(store CampaignReader) *CampaignService {
	if store == nil {
		return nil
	}
	return &CampaignService{store: store}
}

// List returns campaigns filtered by the given statuses.
func (s *CampaignService) List(ctx context.Context, statuses ...store.CampaignStatus) ([]Campaign, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	items, err := s.store.ListCampaigns(ctx, statuses...)
	if err != nil {
		return nil, err
	}
	return FromCampaigns(items), nil
}

// Describe fetches a single campaign with its progress counters.
func (s *CampaignService) Describe(ctx context.Context, id string) (*CampaignResponse, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	campaign, err := s.store.GetCampaignByID(ctx, id)
	if err != nil || campaign == nil {
		return nil, err
	}
	planted, err := s.store.CountTreesForCampaign(ctx, campaign.ID)
	if err != nil {
		return nil, err
	}
	resp := &CampaignResponse{
		Campaign: FromCampaign(campaign),
		Planted:  planted,
	}
	if campaign.GoalTrees > 0 {
		resp.Percent = int(planted * 100 / campaign.GoalTrees)
	}
	return resp, nil
}
