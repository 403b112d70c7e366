package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// InsertPost persists a community feed post.
func (s *Store) InsertPost(ctx context.Context, post *Post) (*Post, error) {
	if post == nil {
		return nil, errors.New("post is nil")
	}
	if post.AuthorID == "" {
		return nil, errors.New("post author id is empty")
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO posts (author_id, body, tree_id, campaign_id, created_at)
         VALUES (?, ?, ?, ?, ?)`,
		post.AuthorID,
		post.Body,
		nullableString(post.TreeID),
		nullableString(post.CampaignID),
		post.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	post.ID = id
	return post, nil
}

// ListPosts returns feed posts newest first. A zero limit returns everything.
func (s *Store) ListPosts(ctx context.Context, limit int) ([]*Post, error) {
	query := `SELECT id, author_id, body, tree_id, campaign_id, created_at
              FROM posts ORDER BY created_at DESC, id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []*Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// InsertNotification persists a notification addressed to a user.
func (s *Store) InsertNotification(ctx context.Context, note *Notification) (*Notification, error) {
	if note == nil {
		return nil, errors.New("notification is nil")
	}
	if note.UserID == "" {
		return nil, errors.New("notification user id is empty")
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO notifications (user_id, kind, title, body, is_read, created_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		note.UserID,
		note.Kind,
		note.Title,
		nullableString(note.Body),
		boolToInt(note.Read),
		note.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	note.ID = id
	return note, nil
}

// NotificationsForUser returns a user's notifications newest first. When
// unreadOnly is set, read notifications are skipped.
func (s *Store) NotificationsForUser(ctx context.Context, userID string, unreadOnly bool) ([]*Notification, error) {
	query := `SELECT id, user_id, kind, title, body, is_read, created_at
              FROM notifications WHERE user_id = ?`
	args := []any{userID}
	if unreadOnly {
		query += ` AND is_read = 0`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("notifications for user: %w", err)
	}
	defer rows.Close()

	var notes []*Notification
	for rows.Next() {
		note, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}

// MarkNotificationsRead marks all of a user's notifications read and returns
// how many changed.
func (s *Store) MarkNotificationsRead(ctx context.Context, userID string) (int64, error) {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE notifications SET is_read = 1 WHERE user_id = ? AND is_read = 0`,
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}

// AwardAchievement records an achievement for a user. Awarding the same code
// twice is a no-op; the bool reports whether this call created the award.
func (s *Store) AwardAchievement(ctx context.Context, userID, code string) (bool, error) {
	if userID == "" || code == "" {
		return false, errors.New("award needs user id and code")
	}
	res, err := s.db.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO achievement_awards (user_id, code, awarded_at)
         VALUES (?, ?, ?)`,
		userID,
		code,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return false, fmt.Errorf("award achievement: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// AwardsForUser returns a user's achievement awards in award order.
func (s *Store) AwardsForUser(ctx context.Context, userID string) ([]*AchievementAward, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT user_id, code, awarded_at FROM achievement_awards
         WHERE user_id = ? ORDER BY awarded_at, code`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("awards for user: %w", err)
	}
	defer rows.Close()

	var awards []*AchievementAward
	for rows.Next() {
		var (
			award      AchievementAward
			awardedRaw sql.NullString
		)
		if err := rows.Scan(&award.UserID, &award.Code, &awardedRaw); err != nil {
			return nil, err
		}
		if awarded, err := parseTimeString(awardedRaw.String); err == nil {
			award.AwardedAt = awarded
		}
		awards = append(awards, &award)
	}
	return awards, rows.Err()
}

func scanPost(sc scanner) (*Post, error) {
	var (
		id         int64
		authorID   string
		body       string
		treeID     sql.NullString
		campaignID sql.NullString
		createdRaw sql.NullString
	)
	if err := sc.Scan(&id, &authorID, &body, &treeID, &campaignID, &createdRaw); err != nil {
		return nil, err
	}
	post := &Post{
		ID:         id,
		AuthorID:   authorID,
		Body:       body,
		TreeID:     treeID.String,
		CampaignID: campaignID.String,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		post.CreatedAt = created
	}
	return post, nil
}

func scanNotification(sc scanner) (*Notification, error) {
	var (
		id         int64
		userID     string
		kindStr    string
		title      string
		body       sql.NullString
		isRead     int64
		createdRaw sql.NullString
	)
	if err := sc.Scan(&id, &userID, &kindStr, &title, &body, &isRead, &createdRaw); err != nil {
		return nil, err
	}
	note := &Notification{
		ID:     id,
		UserID: userID,
		Kind:   NotificationKind(kindStr),
		Title:  title,
		Body:   body.String,
		Read:   isRead != 0,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		note.CreatedAt = created
	}
	return note, nil
}
