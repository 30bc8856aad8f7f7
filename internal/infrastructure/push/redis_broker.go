package push

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/99minutos/invoice-system/internal/core/domain"
	"github.com/99minutos/invoice-system/internal/core/ports"
)

// DefaultChannel is the Redis channel every instance publishes pushes to.
const DefaultChannel = "invoice:push"

type envelope struct {
	UserID string          `json:"userId,omitempty"`
	Group  string          `json:"group,omitempty"`
	Event  string          `json:"event"`
	Data   json.RawMessage `json:"data"`
}

// RedisBroker fans pushes out to every instance through Redis pub/sub. Push
// publishes; Run subscribes and hands received messages to the local pusher.
type RedisBroker struct {
	client  redis.UniversalClient
	local   ports.Pusher
	channel string
	logger  zerolog.Logger
}

func NewRedisBroker(client redis.UniversalClient, local ports.Pusher, logger zerolog.Logger) *RedisBroker {
	return &RedisBroker{
		client:  client,
		local:   local,
		channel: DefaultChannel,
		logger:  logger.With().Str("component", "push_broker").Logger(),
	}
}

func (b *RedisBroker) Push(ctx context.Context, msg ports.PushMessage) error {
	payload, err := encodeEnvelope(msg)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("%w: publish: %v", domain.ErrDeliveryFailed, err)
	}
	return nil
}

// Run blocks until ctx is cancelled, forwarding every published push to the
// local pusher. It returns an error only when the subscription cannot start.
func (b *RedisBroker) Run(ctx context.Context) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}
	b.logger.Info().Str("channel", b.channel).Msg("push fan-out subscribed")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			msg, err := decodeEnvelope([]byte(m.Payload))
			if err != nil {
				b.logger.Warn().Err(err).Msg("discarding malformed push")
				continue
			}
			if err := b.local.Push(ctx, msg); err != nil {
				b.logger.Warn().Err(err).Str("target", msg.Target.Key()).Msg("local push failed")
			}
		}
	}
}

func encodeEnvelope(msg ports.PushMessage) ([]byte, error) {
	data, err := json.Marshal(msg.Payload)
	if err != nil {
		return nil, fmt.Errorf("%w: encode payload: %v", domain.ErrDeliveryFailed, err)
	}
	out, err := json.Marshal(envelope{
		UserID: msg.Target.UserID,
		Group:  msg.Target.Group,
		Event:  msg.Event,
		Data:   data,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode envelope: %v", domain.ErrDeliveryFailed, err)
	}
	return out, nil
}

func decodeEnvelope(raw []byte) (ports.PushMessage, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return ports.PushMessage{}, err
	}
	if env.Event == "" || (env.UserID == "" && env.Group == "") {
		return ports.PushMessage{}, fmt.Errorf("envelope without event or target")
	}
	return ports.PushMessage{
		Target:  ports.PushTarget{UserID: env.UserID, Group: env.Group},
		Event:   env.Event,
		Payload: env.Data,
	}, nil
}
