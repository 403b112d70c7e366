package community

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"greensprint/internal/config"
	"greensprint/internal/logging"
	"greensprint/internal/notify"
	"greensprint/internal/services"
	"greensprint/internal/store"
)

const maxPostLength = 2000

// Service exposes feed posts, notifications, and achievement evaluation.
type Service struct {
	cfg      *config.Config
	store    *store.Store
	logger   *slog.Logger
	notifier notify.Service
}

// NewService constructs the community service with default dependencies.
func NewService(cfg *config.Config, st *store.Store, logger *slog.Logger) *Service {
	return NewServiceWithDependencies(cfg, st, logger, notify.NewService(cfg))
}

// NewServiceWithDependencies allows injecting collaborators (used in tests).
func NewServiceWithDependencies(cfg *config.Config, st *store.Store, logger *slog.Logger, notifier notify.Service) *Service {
	return &Service{
		cfg:      cfg,
		store:    st,
		logger:   logging.NewComponentLogger(logger, "community"),
		notifier: notifier,
	}
}

// FeedEntry is a post joined with its author for display.
type FeedEntry struct {
	Post           *store.Post
	AuthorUsername string
}

// AddPost validates and stores a feed post. Referenced trees and campaigns
// must exist; the author is created on first mention.
func (s *Service) AddPost(ctx context.Context, authorUsername, body, treeID, campaignID string) (*store.Post, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, services.Wrap(services.ErrValidation, "community", "add post", "post body is empty", nil)
	}
	if len(body) > maxPostLength {
		return nil, services.Wrap(services.ErrValidation, "community", "add post",
			fmt.Sprintf("post body exceeds %d characters", maxPostLength), nil)
	}
	author, err := s.ensureUser(ctx, authorUsername)
	if err != nil {
		return nil, err
	}

	if treeID != "" {
		tree, err := s.store.GetTreeByID(ctx, treeID)
		if err != nil {
			return nil, services.Wrap(services.ErrUnavailable, "community", "add post", "look up referenced tree", err)
		}
		if tree == nil {
			return nil, services.Wrap(services.ErrValidation, "community", "add post",
				fmt.Sprintf("referenced tree %s does not exist", treeID), nil)
		}
	}
	if campaignID != "" {
		campaign, err := s.store.GetCampaignByID(ctx, campaignID)
		if err != nil {
			return nil, services.Wrap(services.ErrUnavailable, "community", "add post", "look up referenced campaign", err)
		}
		if campaign == nil {
			return nil, services.Wrap(services.ErrValidation, "community", "add post",
				fmt.Sprintf("referenced campaign %s does not exist", campaignID), nil)
		}
	}

	post, err := s.store.InsertPost(ctx, &store.Post{
		AuthorID:   author.ID,
		Body:       body,
		TreeID:     treeID,
		CampaignID: campaignID,
	})
	if err != nil {
		return nil, services.Wrap(services.ErrUnavailable, "community", "add post", "store post", err)
	}
	s.logger.Info("post added",
		logging.String(logging.FieldActor, author.Username),
		logging.Int64("post_id", post.ID),
	)
	return post, nil
}

// Feed returns recent posts with author usernames resolved.
func (s *Service) Feed(ctx context.Context, limit int) ([]FeedEntry, error) {
	posts, err := s.store.ListPosts(ctx, limit)
	if err != nil {
		return nil, services.Wrap(services.ErrUnavailable, "community", "feed", "list posts", err)
	}
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrUnavailable, "community", "feed", "list users", err)
	}
	byID := make(map[string]string, len(users))
	for _, user := range users {
		byID[user.ID] = user.Username
	}

	entries := make([]FeedEntry, 0, len(posts))
	for _, post := range posts {
		entries = append(entries, FeedEntry{
			Post:           post,
			AuthorUsername: byID[post.AuthorID],
		})
	}
	return entries, nil
}

// NotificationsFor returns a user's stored notifications.
func (s *Service) NotificationsFor(ctx context.Context, username string, unreadOnly bool) ([]*store.Notification, error) {
	user, err := s.lookupUser(ctx, username)
	if err != nil {
		return nil, err
	}
	notes, err := s.store.NotificationsForUser(ctx, user.ID, unreadOnly)
	if err != nil {
		return nil, services.Wrap(services.ErrUnavailable, "community", "notifications", "list notifications", err)
	}
	return notes, nil
}

// MarkRead marks all of a user's notifications read and reports how many changed.
func (s *Service) MarkRead(ctx context.Context, username string) (int64, error) {
	user, err := s.lookupUser(ctx, username)
	if err != nil {
		return 0, err
	}
	marked, err := s.store.MarkNotificationsRead(ctx, user.ID)
	if err != nil {
		return 0, services.Wrap(services.ErrUnavailable, "community", "notifications", "mark read", err)
	}
	return marked, nil
}

// AwardsFor returns a user's earned achievements.
func (s *Service) AwardsFor(ctx context.Context, username string) ([]*store.AchievementAward, error) {
	user, err := s.lookupUser(ctx, username)
	if err != nil {
		return nil, err
	}
	awards, err := s.store.AwardsForUser(ctx, user.ID)
	if err != nil {
		return nil, services.Wrap(services.ErrUnavailable, "community", "achievements", "list awards", err)
	}
	return awards, nil
}

// EvaluatePlanter awards any planting achievements the user's current tree
// count has unlocked and returns the newly earned badges.
func (s *Service) EvaluatePlanter(ctx context.Context, userID string) ([]Achievement, error) {
	count, err := s.store.CountTreesByPlanter(ctx, userID)
	if err != nil {
		return nil, services.Wrap(services.ErrUnavailable, "community", "achievements", "count trees", err)
	}
	return s.award(ctx, userID, plantingAchievements, count)
}

// EvaluateScanner awards any scanning achievements the user's recorded scan
// count has unlocked and returns the newly earned badges.
func (s *Service) EvaluateScanner(ctx context.Context, userID string) ([]Achievement, error) {
	count, err := s.store.CountScansByUser(ctx, userID)
	if err != nil {
		return nil, services.Wrap(services.ErrUnavailable, "community", "achievements", "count scans", err)
	}
	return s.award(ctx, userID, scanningAchievements, count)
}

func (s *Service) award(ctx context.Context, userID string, catalog []Achievement, count int64) ([]Achievement, error) {
	var earned []Achievement
	for _, achievement := range catalog {
		if count < achievement.Threshold {
			continue
		}
		created, err := s.store.AwardAchievement(ctx, userID, achievement.Code)
		if err != nil {
			return earned, services.Wrap(services.ErrUnavailable, "community", "achievements", "store award", err)
		}
		if !created {
			continue
		}
		earned = append(earned, achievement)
		s.announce(ctx, userID, achievement)
	}
	return earned, nil
}

// announce records the in-app notification and pushes the ntfy event. Both
// are best effort; a failed announcement never revokes the award.
func (s *Service) announce(ctx context.Context, userID string, achievement Achievement) {
	if _, err := s.store.InsertNotification(ctx, &store.Notification{
		UserID: userID,
		Kind:   store.NotificationAchievement,
		Title:  fmt.Sprintf("Achievement unlocked: %s", achievement.Title),
	}); err != nil {
		s.logger.Warn("achievement notification not stored",
			logging.String("achievement", achievement.Code),
			logging.Error(err),
		)
	}

	username := userID
	if user, err := s.store.GetUserByID(ctx, userID); err == nil && user != nil {
		username = user.Username
	}
	if err := s.notifier.Publish(ctx, notify.EventAchievement, notify.Payload{
		"username":    username,
		"achievement": achievement.Title,
	}); err != nil {
		s.logger.Warn("achievement push failed",
			logging.String("achievement", achievement.Code),
			logging.Error(err),
		)
	}
	s.logger.Info("achievement awarded",
		logging.String(logging.FieldActor, username),
		logging.String("achievement", achievement.Code),
	)
}

func (s *Service) ensureUser(ctx context.Context, username string) (*store.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, services.Wrap(services.ErrValidation, "community", "user", "username is empty", nil)
	}
	user, err := s.store.EnsureUser(ctx, uuid.NewString(), username, "")
	if err != nil {
		return nil, services.Wrap(services.ErrUnavailable, "community", "user", "ensure user", err)
	}
	return user, nil
}

func (s *Service) lookupUser(ctx context.Context, username string) (*store.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, services.Wrap(services.ErrValidation, "community", "user", "username is empty", nil)
	}
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, services.Wrap(services.ErrUnavailable, "community", "user", "look up user", err)
	}
	if user == nil {
		return nil, services.Wrap(services.ErrNotFound, "community", "user",
			fmt.Sprintf("no user named %q", username), nil)
	}
	return user, nil
}
