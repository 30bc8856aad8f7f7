package domain

import "time"

// AdminsGroup is the push group every connected Admin belongs to.
const AdminsGroup = "Admins"

// Push event names.
const (
	EventReceiveNotification  = "ReceiveNotification"
	EventNotificationUpdated  = "NotificationUpdated"
	EventNotificationDeleted  = "NotificationDeleted"
	EventAllNotificationsRead = "AllNotificationsRead"
)

// ReceiveNotificationPayload is the data of a ReceiveNotification event.
// NotificationID is empty for group broadcasts that are not persisted.
type ReceiveNotificationPayload struct {
	NotificationID string    `json:"notificationId,omitempty"`
	Message        string    `json:"message"`
	CreatedAt      time.Time `json:"createdAt"`
}

// NotificationUpdatedPayload is the data of a NotificationUpdated event.
type NotificationUpdatedPayload struct {
	NotificationID string `json:"notificationId"`
	IsRead         bool   `json:"isRead"`
	UnreadCount    int64  `json:"unreadCount"`
}

// NotificationDeletedPayload is the data of a NotificationDeleted event.
type NotificationDeletedPayload struct {
	NotificationID string `json:"notificationId"`
	UnreadCount    int64  `json:"unreadCount"`
}

// AllNotificationsReadPayload is the data of an AllNotificationsRead event.
type AllNotificationsReadPayload struct {
	UnreadCount int64 `json:"unreadCount"`
}
