package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"greensprint/internal/geo"
	"greensprint/internal/scan"
)

const treeColumns = "id, qr_code, species, description, planted_by, campaign_id, lat, lng, status, planted_at, created_at, updated_at, scan_count, last_scan_at"

// InsertTree persists a new tree record. The caller supplies ID and Code;
// timestamps are stamped here.
func (s *Store) InsertTree(ctx context.Context, tree *Tree) (*Tree, error) {
	if tree == nil {
		return nil, errors.New("tree is nil")
	}
	now := time.Now().UTC()
	tree.CreatedAt = now
	tree.UpdatedAt = now
	if tree.Status == "" {
		tree.Status = TreeStatusActive
	}
	if tree.PlantedAt.IsZero() {
		tree.PlantedAt = now
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO trees (
            id, qr_code, species, description, planted_by, campaign_id,
            lat, lng, status, planted_at, created_at, updated_at, scan_count
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`,
		tree.ID,
		tree.Code,
		tree.Species,
		nullableString(tree.Description),
		nullableString(tree.PlantedBy),
		nullableString(tree.CampaignID),
		nullableFloat(tree.Lat),
		nullableFloat(tree.Lng),
		tree.Status,
		tree.PlantedAt.UTC().Format(time.RFC3339Nano),
		tree.CreatedAt.Format(time.RFC3339Nano),
		tree.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert tree: %w", err)
	}
	return s.GetTreeByID(ctx, tree.ID)
}

// GetTreeByID fetches a tree by record identifier.
func (s *Store) GetTreeByID(ctx context.Context, id string) (*Tree, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+treeColumns+` FROM trees WHERE id = ?`, id)
	tree, err := scanTree(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get tree: %w", err)
	}
	return tree, nil
}

// GetTreeByCode fetches a tree by its printed native code.
func (s *Store) GetTreeByCode(ctx context.Context, code string) (*Tree, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+treeColumns+` FROM trees WHERE qr_code = ?`, code)
	tree, err := scanTree(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get tree by code: %w", err)
	}
	return tree, nil
}

// FindTreeByField looks a tree up by one resolver lookup field. Misses are
// (nil, nil) so the resolver can continue down its candidate list.
func (s *Store) FindTreeByField(ctx context.Context, field scan.Field, value string) (*Tree, error) {
	switch field {
	case scan.FieldCode:
		return s.GetTreeByCode(ctx, value)
	case scan.FieldRecordID:
		return s.GetTreeByID(ctx, value)
	default:
		return nil, fmt.Errorf("unknown lookup field %q", field)
	}
}

// ListTreesOptions filters ListTrees. Zero values mean "no filter".
type ListTreesOptions struct {
	Status     TreeStatus
	Species    string
	CampaignID string
	PlantedBy  string
	Limit      int
	Offset     int
}

// ListTrees returns trees ordered by creation time, newest first.
func (s *Store) ListTrees(ctx context.Context, opts ListTreesOptions) ([]*Tree, error) {
	query := `SELECT ` + treeColumns + ` FROM trees`
	var (
		clauses []string
		args    []any
	)
	if opts.Status != "" {
		clauses = append(clauses, `status = ?`)
		args = append(args, opts.Status)
	}
	if opts.Species != "" {
		clauses = append(clauses, `species = ? COLLATE NOCASE`)
		args = append(args, opts.Species)
	}
	if opts.CampaignID != "" {
		clauses = append(clauses, `campaign_id = ?`)
		args = append(args, opts.CampaignID)
	}
	if opts.PlantedBy != "" {
		clauses = append(clauses, `planted_by = ?`)
		args = append(args, opts.PlantedBy)
	}
	for i, clause := range clauses {
		if i == 0 {
			query += ` WHERE ` + clause
		} else {
			query += ` AND ` + clause
		}
	}
	query += ` ORDER BY created_at DESC, id`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
		if opts.Offset > 0 {
			query += ` OFFSET ?`
			args = append(args, opts.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list trees: %w", err)
	}
	defer rows.Close()

	var trees []*Tree
	for rows.Next() {
		tree, err := scanTree(rows)
		if err != nil {
			return nil, err
		}
		trees = append(trees, tree)
	}
	return trees, rows.Err()
}

// UpdateTree persists changes to an existing tree record.
func (s *Store) UpdateTree(ctx context.Context, tree *Tree) error {
	if tree == nil {
		return errors.New("tree is nil")
	}
	tree.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE trees
         SET species = ?, description = ?, planted_by = ?, campaign_id = ?,
             lat = ?, lng = ?, status = ?, planted_at = ?, updated_at = ?
         WHERE id = ?`,
		tree.Species,
		nullableString(tree.Description),
		nullableString(tree.PlantedBy),
		nullableString(tree.CampaignID),
		nullableFloat(tree.Lat),
		nullableFloat(tree.Lng),
		tree.Status,
		tree.PlantedAt.UTC().Format(time.RFC3339Nano),
		tree.UpdatedAt.Format(time.RFC3339Nano),
		tree.ID,
	)
	if err != nil {
		return fmt.Errorf("update tree: %w", err)
	}
	return nil
}

// TreesInBox returns mapped trees of the given status inside a bounding box.
// This is the coarse phase of a proximity search; callers still apply the
// exact circle filter.
func (s *Store) TreesInBox(ctx context.Context, box geo.BoundingBox, status TreeStatus) ([]*Tree, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+treeColumns+` FROM trees
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
		return nil, fmt.Errorf("trees in box: %w", err)
	}
	defer rows.Close()

	var trees []*Tree
	for rows.Next() {
		tree, err := scanTree(rows)
		if err != nil {
			return nil, err
		}
		trees = append(trees, tree)
	}
	return trees, rows.Err()
}

// RecordScan appends a scan event and bumps the tree's scan counter in one
// transaction.
func (s *Store) RecordScan(ctx context.Context, event *ScanEvent) (*ScanEvent, error) {
	if event == nil {
		return nil, errors.New("event is nil")
	}
	if event.TreeID == "" {
		return nil, errors.New("event tree id is empty")
	}
	if event.ScannedAt.IsZero() {
		event.ScannedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin scan tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	timestamp := event.ScannedAt.UTC().Format(time.RFC3339Nano)
	res, err := tx.ExecContext(
		ctx,
		`INSERT INTO scan_events (tree_id, scanned_by, lat, lng, matched_field, scanned_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		event.TreeID,
		nullableString(event.ScannedBy),
		nullableFloat(event.Lat),
		nullableFloat(event.Lng),
		nullableString(event.MatchedField),
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert scan event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	if _, err := tx.ExecContext(
		ctx,
		`UPDATE trees SET scan_count = scan_count + 1, last_scan_at = ?, updated_at = ? WHERE id = ?`,
		timestamp,
		timestamp,
		event.TreeID,
	); err != nil {
		return nil, fmt.Errorf("bump scan count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit scan tx: %w", err)
	}
	event.ID = id
	return event, nil
}

// ScansForTree returns a tree's scan history, newest first.
func (s *Store) ScansForTree(ctx context.Context, treeID string, limit int) ([]*ScanEvent, error) {
	query := `SELECT id, tree_id, scanned_by, lat, lng, matched_field, scanned_at
              FROM scan_events WHERE tree_id = ? ORDER BY scanned_at DESC, id DESC`
	args := []any{treeID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("scans for tree: %w", err)
	}
	defer rows.Close()

	var events []*ScanEvent
	for rows.Next() {
		event, err := scanScanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// CountTreesByPlanter counts non-removed trees credited to a user.
func (s *Store) CountTreesByPlanter(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(1) FROM trees WHERE planted_by = ? AND status != ?`,
		userID,
		TreeStatusRemoved,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count trees by planter: %w", err)
	}
	return count, nil
}

// CountScansByUser counts scan events credited to a user.
func (s *Store) CountScansByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(1) FROM scan_events WHERE scanned_by = ?`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count scans by user: %w", err)
	}
	return count, nil
}

// LeaderboardTrees ranks users by non-removed trees planted since the cutoff.
// A zero cutoff ranks all time. Ties break on username so ranks are stable.
func (s *Store) LeaderboardTrees(ctx context.Context, since time.Time, limit int) ([]*LeaderboardRow, error) {
	query := `SELECT t.planted_by, u.username, COALESCE(u.display_name, ''), COUNT(1) AS trees
              FROM trees t
              JOIN users u ON u.id = t.planted_by
              WHERE t.planted_by IS NOT NULL AND t.planted_by != '' AND t.status != ?`
	args := []any{TreeStatusRemoved}
	if !since.IsZero() {
		query += ` AND t.created_at >= ?`
		args = append(args, since.UTC().Format(time.RFC3339Nano))
	}
	query += ` GROUP BY t.planted_by ORDER BY trees DESC, u.username`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	defer rows.Close()

	var ranks []*LeaderboardRow
	for rows.Next() {
		row := &LeaderboardRow{}
		if err := rows.Scan(&row.UserID, &row.Username, &row.DisplayName, &row.Trees); err != nil {
			return nil, err
		}
		ranks = append(ranks, row)
	}
	return ranks, rows.Err()
}

func scanTree(sc scanner) (*Tree, error) {
	var (
		id          string
		code        string
		species     string
		description sql.NullString
		plantedBy   sql.NullString
		campaignID  sql.NullString
		lat         sql.NullFloat64
		lng         sql.NullFloat64
		statusStr   string
		plantedRaw  sql.NullString
		createdRaw  sql.NullString
		updatedRaw  sql.NullString
		scanCount   sql.NullInt64
		lastScanRaw sql.NullString
	)

	if err := sc.Scan(
		&id,
		&code,
		&species,
		&description,
		&plantedBy,
		&campaignID,
		&lat,
		&lng,
		&statusStr,
		&plantedRaw,
		&createdRaw,
		&updatedRaw,
		&scanCount,
		&lastScanRaw,
	); err != nil {
		return nil, err
	}

	tree := &Tree{
		ID:          id,
		Code:        code,
		Species:     species,
		Description: description.String,
		PlantedBy:   plantedBy.String,
		CampaignID:  campaignID.String,
		Status:      TreeStatus(statusStr),
		ScanCount:   scanCount.Int64,
	}
	if lat.Valid {
		v := lat.Float64
		tree.Lat = &v
	}
	if lng.Valid {
		v := lng.Float64
		tree.Lng = &v
	}
	if planted, err := parseTimeString(plantedRaw.String); err == nil {
		tree.PlantedAt = planted
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		tree.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		tree.UpdatedAt = updated
	}
	if lastScanRaw.Valid {
		if lastScan, err := parseTimeString(lastScanRaw.String); err == nil {
			tree.LastScanAt = &lastScan
		}
	}
	return tree, nil
}

func scanScanEvent(sc scanner) (*ScanEvent, error) {
	var (
		id         int64
		treeID     string
		scannedBy  sql.NullString
		lat        sql.NullFloat64
		lng        sql.NullFloat64
		matched    sql.NullString
		scannedRaw sql.NullString
	)

	if err := sc.Scan(&id, &treeID, &scannedBy, &lat, &lng, &matched, &scannedRaw); err != nil {
		return nil, err
	}

	event := &ScanEvent{
		ID:           id,
		TreeID:       treeID,
		ScannedBy:    scannedBy.String,
		MatchedField: matched.String,
	}
	if lat.Valid {
		v := lat.Float64
		event.Lat = &v
	}
	if lng.Valid {
		v := lng.Float64
		event.Lng = &v
	}
	if scanned, err := parseTimeString(scannedRaw.String); err == nil {
		event.ScannedAt = scanned
	}
	return event, nil
}
