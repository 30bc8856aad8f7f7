package push

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/99minutos/invoice-system/internal/core/domain"
	"github.com/99minutos/invoice-system/internal/core/ports"
)

func TestEnvelope_CarriesTargetEventAndPayload(t *testing.T) {
	raw, err := encodeEnvelope(ports.PushMessage{
		Target: ports.PushTarget{UserID: "u1"},
		Event:  domain.EventNotificationDeleted,
		Payload: domain.NotificationDeletedPayload{
			NotificationID: "n1",
			UnreadCount:    4,
		},
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	msg, err := decodeEnvelope(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Target.Key() != "user:u1" || msg.Event != domain.EventNotificationDeleted {
		t.Fatalf("unexpected message: %+v", msg)
	}

	// The payload is forwarded as raw JSON and written to sockets unchanged.
	frame, err := json.Marshal(Frame{Event: msg.Event, Data: msg.Payload})
	if err != nil {
		t.Fatalf("marshal frame: %v", err)
	}
	want := `{"event":"NotificationDeleted","data":{"notificationId":"n1","unreadCount":4}}`
	if string(frame) != want {
		t.Fatalf("got %s, want %s", frame, want)
	}
}

func TestDecodeEnvelope_RejectsIncomplete(t *testing.T) {
	for _, raw := range []string{`not json`, `{"event":"X"}`, `{"userId":"u1"}`} {
		if _, err := decodeEnvelope([]byte(raw)); err == nil {
			t.Errorf("%s: expected an error", raw)
		}
	}
}

func TestRedisBroker_PushEncodingFailure(t *testing.T) {
	b := NewRedisBroker(nil, nil, zerolog.Nop())

	err := b.Push(context.Background(), ports.PushMessage{
		Target:  ports.PushTarget{UserID: "u1"},
		Event:   "X",
		Payload: make(chan int),
	})
	if !errors.Is(err, domain.ErrDeliveryFailed) {
		t.Fatalf("expected ErrDeliveryFailed, got %v", err)
	}
}
