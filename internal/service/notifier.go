package service

import (
	"context"
	"fmt"
	"github.com/Chakyiu/chakyiu-blog/internal/cache"
	"github.com/Chakyiu/chakyiu-blog/internal/data"
	"github.com/Chakyiu/chakyiu-blog/internal/logger"
	"time"
)

const notifyTimeout = 5 * time.Second

// Notifier records a notification for a user. Delivery is best-effort:
// implementations log failures and never report them to the caller.
type Notifier interface {
	Notify(ctx context.Context, userID string, typ data.NotificationType, message string, referenceID *string)
}

// NotificationRepository defines the storage operations for notifications.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *data.Notification) error
	GetNotificationsByUser(ctx context.Context, userID string, limit int) ([]*data.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

// Dispatcher writes notifications through the repository.
type Dispatcher struct {
	repo  NotificationRepository
	cache cache.Store
	log   logger.Logger
}

var _ Notifier = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher. store may be nil.
func NewDispatcher(repo NotificationRepository, store cache.Store, log logger.Logger) *Dispatcher {
	return &Dispatcher{repo: repo, cache: store, log: log}
}

// Notify inserts the notification and waits for the write. It runs after the
// triggering mutation has committed and outlives cancellation of the request
// that triggered it.
func (d *Dispatcher) Notify(ctx context.Context, userID string, typ data.NotificationType, message string, referenceID *string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	fields := map[string]interface{}{"user_id": userID, "type": string(typ)}
	if referenceID != nil {
		fields["reference_id"] = *referenceID
	}

	defer func() {
		if rec := recover(); rec != nil {
			d.log.With(fields).Error(NotificationDeliveryFailure(fmt.Errorf("panic: %v", rec)), "Notification dropped")
		}
	}()

	n := &data.Notification{
		UserID:      userID,
		Type:        typ,
		Message:     message,
		ReferenceID: referenceID,
	}
	if err := d.repo.CreateNotification(ctx, n); err != nil {
		d.log.With(fields).Error(NotificationDeliveryFailure(err), "Notification dropped")
		return
	}
	invalidateUnread(ctx, d.cache, d.log, userID)
}

func unreadCountKey(userID string) string {
	return "notifications:unread:" + userID
}

func invalidateUnread(ctx context.Context, store cache.Store, log logger.Logger, userID string) {
	if store == nil {
		return
	}
	if err := store.Delete(ctx, unreadCountKey(userID)); err != nil {
		log.With(map[string]interface{}{"user_id": userID}).Error(err, "Failed to invalidate unread count")
	}
}
