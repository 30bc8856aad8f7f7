package ports

import "context"

// PushTarget addresses either a single user or a named group.
type PushTarget struct {
	UserID string
	Group  string
}

// Key identifies the target for sharding and logging.
func (t PushTarget) Key() string {
	if t.Group != "" {
		return "group:" + t.Group
	}
	return "user:" + t.UserID
}

// PushMessage is a named event addressed to a target.
type PushMessage struct {
	Target  PushTarget
	Event   string
	Payload any
}

// Pusher delivers a message to every live connection of its target.
// Offline targets are not an error.
type Pusher interface {
	Push(ctx context.Context, msg PushMessage) error
}

// PushQueue accepts messages for asynchronous delivery. Enqueue never blocks
// and reports whether the message was accepted.
type PushQueue interface {
	Enqueue(msg PushMessage) bool
}
