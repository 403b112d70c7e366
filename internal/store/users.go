package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const userColumns = "id, username, display_name, joined_at"

// EnsureUser returns the user with the given username, creating one with the
// supplied id when none exists. Importers and scan handlers call this so a
// first mention of a person never fails.
func (s *Store) EnsureUser(ctx context.Context, id, username, displayName string) (*User, error) {
	if username == "" {
		return nil, errors.New("username is empty")
	}
	existing, err := s.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO users (id, username, display_name, joined_at) VALUES (?, ?, ?, ?)`,
		id,
		username,
		nullableString(displayName),
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return s.GetUserByUsername(ctx, username)
}

// GetUserByID fetches a user by identifier.
func (s *Store) GetUserByID(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// GetUserByUsername fetches a user by username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return user, nil
}

// ListUsers returns all users ordered by username.
func (s *Store) ListUsers(ctx context.Context) ([]*User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func scanUser(sc scanner) (*User, error) {
	var (
		id        string
		username  string
		display   sql.NullString
		joinedRaw sql.NullString
	)
	if err := sc.Scan(&id, &username, &display, &joinedRaw); err != nil {
		return nil, err
	}
	user := &User{
		ID:          id,
		Username:    username,
		DisplayName: display.String,
	}
	if joined, err := parseTimeString(joinedRaw.String); err == nil {
		user.JoinedAt = joined
	}
	return user, nil
}
