package service

import (
	"context"
	"github.com/Chakyiu/chakyiu-blog/internal/cache"
	"github.com/Chakyiu/chakyiu-blog/internal/data"
	"github.com/Chakyiu/chakyiu-blog/internal/logger"
	"strconv"
	"time"
)

const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 100
)

// NotificationService is the inbox of the calling user. No operation reads
// or writes another user's notifications.
type NotificationService struct {
	repo  NotificationRepository
	cache cache.Store
	ttl   time.Duration
	log   logger.Logger
}

// NewNotificationService creates a NotificationService. store may be nil, in
// which case unread counts are always read from the repository.
func NewNotificationService(repo NotificationRepository, store cache.Store, ttl time.Duration, log logger.Logger) *NotificationService {
	return &NotificationService{repo: repo, cache: store, ttl: ttl, log: log}
}

// GetNotifications returns the actor's notifications, newest first.
func (s *NotificationService) GetNotifications(ctx context.Context, actor Actor, limit int) ([]*data.Notification, error) {
	if err := requireSignedIn(actor); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	if limit > maxNotificationLimit {
		limit = maxNotificationLimit
	}
	notifications, err := s.repo.GetNotificationsByUser(ctx, actor.ID, limit)
	if err != nil {
		return nil, InternalError("failed to load notifications", err)
	}
	return notifications, nil
}

// GetUnreadCount returns the number of unread notifications, served from the
// cache when possible.
func (s *NotificationService) GetUnreadCount(ctx context.Context, actor Actor) (int, error) {
	if err := requireSignedIn(actor); err != nil {
		return 0, err
	}
	key := unreadCountKey(actor.ID)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		if err != nil {
			s.log.Error(err, "Failed to read unread count from cache")
		} else if cached != nil {
			if n, err := strconv.Atoi(string(cached)); err == nil {
				return n, nil
			}
		}
	}

	count, err := s.repo.CountUnread(ctx, actor.ID)
	if err != nil {
		return 0, InternalError("failed to count notifications", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, []byte(strconv.Itoa(count)), s.ttl); err != nil {
			s.log.Error(err, "Failed to cache unread count")
		}
	}
	return count, nil
}

// MarkRead marks one of the actor's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, actor Actor, id string) error {
	if err := requireSignedIn(actor); err != nil {
		return err
	}
	if id == "" {
		return ValidationError("Notification id is required")
	}
	if err := s.repo.MarkRead(ctx, id, actor.ID); err != nil {
		return InternalError("failed to mark notification read", err)
	}
	invalidateUnread(ctx, s.cache, s.log, actor.ID)
	return nil
}

// MarkAllRead marks all of the actor's notifications as read and returns how
// many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, actor Actor) (int64, error) {
	if err := requireSignedIn(actor); err != nil {
		return 0, err
	}
	n, err := s.repo.MarkAllRead(ctx, actor.ID)
	if err != nil {
		return 0, InternalError("failed to mark notifications read", err)
	}
	invalidateUnread(ctx, s.cache, s.log, actor.ID)
	return n, nil
}
