// Package leaderboard ranks community members by planting activity over a
// selectable time window.
package leaderboard

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"greensprint/internal/logging"
	"greensprint/internal/services"
	"greensprint/internal/store"
)

// Period selects the ranking window. Windows are rolling, measured back from
// the current time.
type Period string

const (
	PeriodAll   Period = "all"
	PeriodYear  Period = "year"
	PeriodMonth Period = "month"
	PeriodWeek  Period = "week"
)

const defaultLimit = 10

// ParsePeriod validates a raw period string. Empty input means all time.
func ParsePeriod(raw string) (Period, error) {
	switch Period(strings.ToLower(strings.TrimSpace(raw))) {
	case "", PeriodAll:
		return PeriodAll, nil
	case PeriodYear:
		return PeriodYear, nil
	case PeriodMonth:
		return PeriodMonth, nil
	case PeriodWeek:
		return PeriodWeek, nil
	default:
		return "", fmt.Errorf("unknown period %q (expected all, year, month, or week)", raw)
	}
}

// Since returns the cutoff for the window, or the zero time for all time.
func (p Period) Since(now time.Time) time.Time {
	switch p {
	case PeriodYear:
		return now.AddDate(0, 0, -365)
	case PeriodMonth:
		return now.AddDate(0, 0, -30)
	case PeriodWeek:
		return now.AddDate(0, 0, -7)
	default:
		return time.Time{}
	}
}

// Entry is one ranked row.
type Entry struct {
	Rank        int
	Username    string
	DisplayName string
	Trees       int64
}

// Service computes leaderboards from the record store.
type Service struct {
	store  *store.Store
	logger *slog.Logger
}

// NewService constructs the leaderboard service.
func NewService(st *store.Store, logger *slog.Logger) *Service {
	return &Service{
		store:  st,
		logger: logging.NewComponentLogger(logger, "leaderboard"),
	}
}

// Top returns the highest-ranked planters for the period. A zero limit uses
// the default of ten.
func (s *Service) Top(ctx context.Context, period Period, limit int) ([]Entry, error) {
	parsed, err := ParsePeriod(string(period))
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "leaderboard", "top", err.Error(), nil)
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	rows, err := s.store.LeaderboardTrees(ctx, parsed.Since(time.Now()), limit)
	if err != nil {
		return nil, services.Wrap(services.ErrUnavailable, "leaderboard", "top", "rank planters", err)
	}

	entries := make([]Entry, 0, len(rows))
	for i, row := range rows {
		entries = append(entries, Entry{
			Rank:        i + 1,
			Username:    row.Username,
			DisplayName: row.DisplayName,
			Trees:       row.Trees,
		})
	}
	return entries, nil
}
