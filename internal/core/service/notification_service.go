package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/invoice-system/internal/core/domain"
	"github.com/99minutos/invoice-system/internal/core/ports"
	"github.com/99minutos/invoice-system/internal/pkg/metrics"
)

// NotificationService persists notifications and schedules their push
// delivery. The persisted record is authoritative; push is best-effort.
type NotificationService struct {
	repo   ports.NotificationRepository
	queue  ports.PushQueue
	logger zerolog.Logger
	now    func() time.Time
}

func NewNotificationService(repo ports.NotificationRepository, queue ports.PushQueue, logger zerolog.Logger) *NotificationService {
	return &NotificationService{
		repo:   repo,
		queue:  queue,
		logger: logger.With().Str("component", "notifications").Logger(),
		now:    time.Now,
	}
}

func (s *NotificationService) Record(ctx context.Context, recipientID, message string) (*domain.Notification, error) {
	n := domain.NewNotification(recipientID, message, s.now())
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("record notification: %w", err)
	}
	metrics.NotificationsCreatedTotal.Inc()
	return n, nil
}

func (s *NotificationService) Deliver(n *domain.Notification) {
	s.push(ports.PushMessage{
		Target: ports.PushTarget{UserID: n.UserID},
		Event:  domain.EventReceiveNotification,
		Payload: domain.ReceiveNotificationPayload{
			NotificationID: n.ID,
			Message:        n.Message,
			CreatedAt:      n.CreatedAt,
		},
	})
}

func (s *NotificationService) Broadcast(group, message string) {
	s.push(ports.PushMessage{
		Target: ports.PushTarget{Group: group},
		Event:  domain.EventReceiveNotification,
		Payload: domain.ReceiveNotificationPayload{
			Message:   message,
			CreatedAt: s.now().UTC(),
		},
	})
}

func (s *NotificationService) Notify(ctx context.Context, recipientID, message string) (*domain.Notification, error) {
	n, err := s.Record(ctx, recipientID, message)
	if err != nil {
		return nil, err
	}
	s.Deliver(n)
	return n, nil
}

func (s *NotificationService) List(ctx context.Context, actor domain.Principal) ([]*domain.Notification, error) {
	items, err := s.repo.ListByUser(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return items, nil
}

// MarkRead marks one notification read. The update event is pushed only when
// the notification was previously unread.
func (s *NotificationService) MarkRead(ctx context.Context, actor domain.Principal, notificationID string) (*domain.Notification, error) {
	n, err := s.owned(ctx, actor, notificationID)
	if err != nil {
		return nil, err
	}
	if n.IsRead {
		return n, nil
	}

	if err := s.repo.MarkRead(ctx, n.ID); err != nil {
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	n.IsRead = true

	if unread, ok := s.unreadCount(ctx, actor.ID); ok {
		s.push(ports.PushMessage{
			Target: ports.PushTarget{UserID: actor.ID},
			Event:  domain.EventNotificationUpdated,
			Payload: domain.NotificationUpdatedPayload{
				NotificationID: n.ID,
				IsRead:         true,
				UnreadCount:    unread,
			},
		})
	}
	return n, nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, actor domain.Principal) (int64, error) {
	marked, err := s.repo.MarkAllRead(ctx, actor.ID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}

	if unread, ok := s.unreadCount(ctx, actor.ID); ok {
		s.push(ports.PushMessage{
			Target:  ports.PushTarget{UserID: actor.ID},
			Event:   domain.EventAllNotificationsRead,
			Payload: domain.AllNotificationsReadPayload{UnreadCount: unread},
		})
	}
	return marked, nil
}

func (s *NotificationService) Delete(ctx context.Context, actor domain.Principal, notificationID string) error {
	n, err := s.owned(ctx, actor, notificationID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, n.ID); err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}

	if unread, ok := s.unreadCount(ctx, actor.ID); ok {
		s.push(ports.PushMessage{
			Target: ports.PushTarget{UserID: actor.ID},
			Event:  domain.EventNotificationDeleted,
			Payload: domain.NotificationDeletedPayload{
				NotificationID: n.ID,
				UnreadCount:    unread,
			},
		})
	}
	return nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, actor domain.Principal) (int64, error) {
	n, err := s.repo.CountUnread(ctx, actor.ID)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return n, nil
}

// owned loads a notification and checks that actor is its recipient.
func (s *NotificationService) owned(ctx context.Context, actor domain.Principal, notificationID string) (*domain.Notification, error) {
	n, err := s.repo.FindByID(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(n.UserID) {
		return nil, domain.ErrForbidden
	}
	return n, nil
}

func (s *NotificationService) unreadCount(ctx context.Context, userID string) (int64, bool) {
	n, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("unread count failed, skipping push")
		return 0, false
	}
	return n, true
}

func (s *NotificationService) push(msg ports.PushMessage) {
	if s.queue == nil {
		return
	}
	if !s.queue.Enqueue(msg) {
		metrics.PushDroppedTotal.Inc()
		s.logger.Warn().
			Str("target", msg.Target.Key()).
			Str("event", msg.Event).
			Msg("push queue full, delivery dropped")
	}
}
