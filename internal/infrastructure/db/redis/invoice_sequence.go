package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// sequenceTTL keeps a per-second counter around long enough to survive clock
// skew between instances.
const sequenceTTL = 2 * time.Minute

// InvoiceSequence hands out invoice number suffixes shared by every instance.
// Key format: invoice_seq:<yyyyMMddHHmmss>
type InvoiceSequence struct {
	client redis.UniversalClient
}

// NewInvoiceSequence creates an InvoiceSequence wrapping the given Redis client.
func NewInvoiceSequence(client redis.UniversalClient) *InvoiceSequence {
	return &InvoiceSequence{client: client}
}

// Next returns the next counter value for the second containing at, starting at 1.
func (s *InvoiceSequence) Next(ctx context.Context, at time.Time) (int64, error) {
	key := s.key(at)

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, sequenceTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("invoice sequence: %w", err)
	}
	return incr.Val(), nil
}

func (s *InvoiceSequence) key(at time.Time) string {
	return "invoice_seq:" + at.UTC().Format("20060102150405")
}
