package api

import (
	"context"

	"greensprint/internal/store"
)

// TreeReader abstracts the store interactions needed for tree API queries.
type TreeReader interface {
	ListTrees(ctx context.Context, opts store.ListTreesOptions) ([]*store.Tree, error)
	GetTreeByID(ctx context.Context, id string) (*store.Tree, error)
	ScansForTree(ctx context.Context, treeID string, limit int) ([]*store.ScanEvent, error)
}

// TreeService exposes read-only tree operations returning API DTOs.
type TreeService struct {
	store TreeReader
}

// NewTreeService constructs a TreeService around the provided reader.
func NewTreeService(store TreeReader) *TreeService {
	if store == nil {
		return nil
	}
	return &TreeService{store: store}
}

// List returns trees filtered by the given options.
func (s *TreeService) List(ctx context.Context, opts store.ListTreesOptions) ([]Tree, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	items, err := s.store.ListTrees(ctx, opts)
	if err != nil {
		return nil, err
	}
	return FromTrees(items), nil
}

// Describe fetches a single tree by record ID.
func (s *TreeService) Describe(ctx context.Context, id string) (*Tree, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	tree, err := s.store.GetTreeByID(ctx, id)
	if err != nil || tree == nil {
		return nil, err
	}
	dto := FromTree(tree)
	return &dto, nil
}

// Scans fetches a tree's scan history, newest first.
func (s *TreeService) Scans(ctx context.Context, treeID string, limit int) ([]ScanEvent, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	events, err := s.store.ScansForTree(ctx, treeID, limit)
	if err != nil {
		return nil, err
	}
	return FromScanEvents(events), nil
}
