package ports

import (
	"context"

	"github.com/99minutos/invoice-system/internal/core/domain"
)

// Notifier is the part of the dispatcher the invoice workflow depends on.
type Notifier interface {
	// Record persists a notification. Call it inside the workflow transaction.
	Record(ctx context.Context, recipientID, message string) (*domain.Notification, error)
	// Deliver schedules a push for an already committed notification.
	Deliver(n *domain.Notification)
	// Broadcast schedules a non-persisted push to a group.
	Broadcast(group, message string)
}

// NotificationService defines the notification use cases.
type NotificationService interface {
	Notifier

	// Notify records and delivers in one call.
	Notify(ctx context.Context, recipientID, message string) (*domain.Notification, error)
	List(ctx context.Context, actor domain.Principal) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, actor domain.Principal, notificationID string) (*domain.Notification, error)
	MarkAllRead(ctx context.Context, actor domain.Principal) (int64, error)
	Delete(ctx context.Context, actor domain.Principal, notificationID string) error
	UnreadCount(ctx context.Context, actor domain.Principal) (int64, error)
}
