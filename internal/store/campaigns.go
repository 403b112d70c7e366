package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"greensprint/internal/geo"
)

const campaignColumns = "id, name, description, organizer, lat, lng, status, goal_trees, starts_at, ends_at, created_at, updated_at"

// InsertCampaign persists a new campaign. The caller supplies the ID.
func (s *Store) InsertCampaign(ctx context.Context, campaign *Campaign) (*Campaign, error) {
	if campaign == nil {
		return nil, errors.New("campaign is nil")
	}
	now := time.Now().UTC()
	campaign.CreatedAt = now
	campaign.UpdatedAt = now
	if campaign.Status == "" {
		campaign.Status = CampaignStatusUpcoming
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO campaigns (
            id, name, description, organizer, lat, lng, status, goal_trees,
            starts_at, ends_at, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		campaign.ID,
		campaign.Name,
		nullableString(campaign.Description),
		nullableString(campaign.Organizer),
		nullableFloat(campaign.Lat),
		nullableFloat(campaign.Lng),
		campaign.Status,
		campaign.GoalTrees,
		nullableTime(campaign.StartsAt),
		nullableTime(campaign.EndsAt),
		now.Format(time.RFC3339Nano),
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert campaign: %w", err)
	}
	return s.GetCampaignByID(ctx, campaign.ID)
}

// GetCampaignByID fetches a campaign by identifier.
func (s *Store) GetCampaignByID(ctx context.Context, id string) (*Campaign, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = ?`, id)
	campaign, err := scanCampaign(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	return campaign, nil
}

// GetCampaignByName fetches a campaign by exact name. Used by the importer to
// attach rows to a named campaign.
func (s *Store) GetCampaignByName(ctx context.Context, name string) (*Campaign, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE name = ? ORDER BY created_at LIMIT 1`, name)
	campaign, err := scanCampaign(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get campaign by name: %w", err)
	}
	return campaign, nil
}

// ListCampaigns returns campaigns, optionally filtered by status, newest first.
func (s *Store) ListCampaigns(ctx context.Context, statuses ...CampaignStatus) ([]*Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns`
	var args []any
	if len(statuses) > 0 {
		query += ` WHERE status IN (` + makePlaceholders(len(statuses)) + `)`
		for _, status := range statuses {
			args = append(args, status)
		}
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []*Campaign
	for rows.Next() {
		campaign, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, campaign)
	}
	return campaigns, rows.Err()
}

// UpdateCampaign persists changes to an existing campaign.
func (s *Store) UpdateCampaign(ctx context.Context, campaign *Campaign) error {
	if campaign == nil {
		return errors.New("campaign is nil")
	}
	campaign.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE campaigns
         SET name = ?, description = ?, organizer = ?, lat = ?, lng = ?,
             status = ?, goal_trees = ?, starts_at = ?, ends_at = ?, updated_at = ?
         WHERE id = ?`,
		campaign.Name,
		nullableString(campaign.Description),
		nullableString(campaign.Organizer),
		nullableFloat(campaign.Lat),
		nullableFloat(campaign.Lng),
		campaign.Status,
		campaign.GoalTrees,
		nullableTime(campaign.StartsAt),
		nullableTime(campaign.EndsAt),
		campaign.UpdatedAt.Format(time.RFC3339Nano),
		campaign.ID,
	)
	if err != nil {
		return fmt.Errorf("update campaign: %w", err)
	}
	return nil
}

// CampaignsInBox returns mapped campaigns of the given status inside a
// bounding box, for the coarse phase of a proximity search.
func (s *Store) CampaignsInBox(ctx context.Context, box geo.BoundingBox, status CampaignStatus) ([]*Campaign, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+campaignColumns+` FROM campaigns
         WHERE status = ?
           AND lat IS NOT NULL AND lng IS NOT NULL
           AND lat BETWEEN ? AND ?
           AND lng BETWEEN ? AND ?
         ORDER BY created_at, id`,
		status,
		box.LatMin,
		box.LatMax,
		box.LngMin,
		box.LngMax,
	)
	if err != nil {
		return nil, fmt.Errorf("campaigns in box: %w", err)
	}
	defer rows.Close()

	var campaigns []*Campaign
	for rows.Next() {
		campaign, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, campaign)
	}
	return campaigns, rows.Err()
}

// MarkCampaignMilestone records that a campaign reached a progress
// percentage. Marking the same milestone twice is a no-op; the bool reports
// whether this call recorded it.
func (s *Store) MarkCampaignMilestone(ctx context.Context, campaignID string, percent int) (bool, error) {
	if campaignID == "" {
		return false, errors.New("campaign id is empty")
	}
	res, err := s.db.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO campaign_milestones (campaign_id, percent, reached_at)
         VALUES (?, ?, ?)`,
		campaignID,
		percent,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return false, fmt.Errorf("mark milestone: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// MilestonesForCampaign returns the progress percentages already announced.
func (s *Store) MilestonesForCampaign(ctx context.Context, campaignID string) ([]int, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT percent FROM campaign_milestones WHERE campaign_id = ? ORDER BY percent`,
		campaignID,
	)
	if err != nil {
		return nil, fmt.Errorf("milestones for campaign: %w", err)
	}
	defer rows.Close()

	var percents []int
	for rows.Next() {
		var percent int
		if err := rows.Scan(&percent); err != nil {
			return nil, err
		}
		percents = append(percents, percent)
	}
	return percents, rows.Err()
}

// PlantersForCampaign returns the distinct users credited with non-removed
// trees in a campaign.
func (s *Store) PlantersForCampaign(ctx context.Context, campaignID string) ([]string, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT DISTINCT planted_by FROM trees
         WHERE campaign_id = ? AND planted_by IS NOT NULL AND planted_by != '' AND status != ?
         ORDER BY planted_by`,
		campaignID,
		TreeStatusRemoved,
	)
	if err != nil {
		return nil, fmt.Errorf("planters for campaign: %w", err)
	}
	defer rows.Close()

	var planters []string
	for rows.Next() {
		var planter string
		if err := rows.Scan(&planter); err != nil {
			return nil, err
		}
		planters = append(planters, planter)
	}
	return planters, rows.Err()
}

// CountTreesForCampaign counts non-removed trees attached to a campaign.
func (s *Store) CountTreesForCampaign(ctx context.Context, campaignID string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(1) FROM trees WHERE campaign_id = ? AND status != ?`,
		campaignID,
		TreeStatusRemoved,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count trees for campaign: %w", err)
	}
	return count, nil
}

func scanCampaign(sc scanner) (*Campaign, error) {
	var (
		id          string
		name        string
		description sql.NullString
		organizer   sql.NullString
		lat         sql.NullFloat64
		lng         sql.NullFloat64
		statusStr   string
		goalTrees   sql.NullInt64
		startsRaw   sql.NullString
		endsRaw     sql.NullString
		createdRaw  sql.NullString
		updatedRaw  sql.NullString
	)

	if err := sc.Scan(
		&id,
		&name,
		&description,
		&organizer,
		&lat,
		&lng,
		&statusStr,
		&goalTrees,
		&startsRaw,
		&endsRaw,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	campaign := &Campaign{
		ID:          id,
		Name:        name,
		Description: description.String,
		Organizer:   organizer.String,
		Status:      CampaignStatus(statusStr),
		GoalTrees:   goalTrees.Int64,
	}
	if lat.Valid {
		v := lat.Float64
		campaign.Lat = &v
	}
	if lng.Valid {
		v := lng.Float64
		campaign.Lng = &v
	}
	if startsRaw.Valid {
		if starts, err := parseTimeString(startsRaw.String); err == nil {
			campaign.StartsAt = &starts
		}
	}
	if endsRaw.Valid {
		if ends, err := parseTimeString(endsRaw.String); err == nil {
			campaign.EndsAt = &ends
		}
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		campaign.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		campaign.UpdatedAt = updated
	}
	return campaign, nil
}
