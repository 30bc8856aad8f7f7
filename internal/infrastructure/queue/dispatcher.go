package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/invoice-system/internal/core/ports"
	"github.com/99minutos/invoice-system/internal/pkg/metrics"
)

const (
	defaultWorkers     = 4
	defaultBuffer      = 256
	defaultMaxAttempts = 3
	defaultBackoff     = 200 * time.Millisecond
	maxBackoff         = 5 * time.Second
)

// Options tunes the dispatcher. Zero values fall back to the defaults.
type Options struct {
	Workers     int
	QueueSize   int
	MaxAttempts int
	Backoff     time.Duration
}

// Dispatcher routes push messages to a fixed set of workers using consistent
// hashing on the push target, guaranteeing per-recipient ordering. It
// implements ports.PushQueue.
type Dispatcher struct {
	workers []chan ports.PushMessage
	pusher  ports.Pusher
	opts    Options
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher delivering through pusher.
func NewDispatcher(pusher ports.Pusher, opts Options, log zerolog.Logger) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultBuffer
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.Backoff <= 0 {
		opts.Backoff = defaultBackoff
	}

	d := &Dispatcher{
		workers: make([]chan ports.PushMessage, opts.Workers),
		pusher:  pusher,
		opts:    opts,
		log:     log.With().Str("component", "push_dispatcher").Logger(),
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.PushMessage, opts.QueueSize)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue hands msg to the worker responsible for its target. It never blocks
// and reports false when that worker's buffer is full.
func (d *Dispatcher) Enqueue(msg ports.PushMessage) bool {
	id := d.shardIndex(msg.Target.Key())
	select {
	case d.workers[id] <- msg:
		metrics.PushQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(float64(len(d.workers[id])))
		return true
	default:
		return false
	}
}

// shardIndex maps a target key deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.PushMessage) {
	defer d.wg.Done()
	depth := metrics.PushQueueDepth.WithLabelValues(strconv.Itoa(id))

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-ch:
			depth.Set(float64(len(ch)))
			d.deliver(ctx, id, msg)
		}
	}
}

// deliver pushes msg, retrying with exponential backoff up to MaxAttempts.
func (d *Dispatcher) deliver(ctx context.Context, id int, msg ports.PushMessage) {
	start := time.Now()
	defer func() {
		metrics.PushDeliveryDuration.WithLabelValues(msg.Event).Observe(time.Since(start).Seconds())
	}()

	backoff := d.opts.Backoff
	for attempt := 1; ; attempt++ {
		err := d.pusher.Push(ctx, msg)
		if err == nil {
			metrics.PushDeliveriesTotal.WithLabelValues("delivered").Inc()
			return
		}
		if attempt >= d.opts.MaxAttempts {
			metrics.PushDeliveriesTotal.WithLabelValues("failed").Inc()
			d.log.Error().Err(err).
				Str("target", msg.Target.Key()).
				Str("event", msg.Event).
				Int("worker_id", id).
				Int("attempts", attempt).
				Msg("push delivery failed")
			return
		}

		d.log.Debug().Err(err).Str("target", msg.Target.Key()).Int("attempt", attempt).Msg("push delivery retry")
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}
