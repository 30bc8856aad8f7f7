package domain

import (
	"time"
	"unicode/utf8"
)

// MaxNotificationLength caps the stored message, in characters. It leaves room
// for the longest workflow message: a rejection carrying a full-length reason.
const MaxNotificationLength = 1000

// Notification is a persisted message for a single recipient.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	IsRead    bool      `json:"isRead"`
}

// NewNotification returns an unread notification, truncating message to
// MaxNotificationLength characters.
func NewNotification(userID, message string, at time.Time) *Notification {
	if utf8.RuneCountInString(message) > MaxNotificationLength {
		message = string([]rune(message)[:MaxNotificationLength])
	}
	return &Notification{
		UserID:    userID,
		Message:   message,
		CreatedAt: at.UTC(),
	}
}
