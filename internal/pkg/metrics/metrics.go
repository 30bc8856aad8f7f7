// Package metrics defines and registers all custom Prometheus metrics for the
// invoice system. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics register with the default Prometheus registry on package load via
// promauto; importing the package is enough.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "invoice"

// ── Invoice metrics ───────────────────────────────────────────────────────────

// InvoicesCreatedTotal counts newly created invoices.
var InvoicesCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invoices_created_total",
		Help:      "Total number of invoices created.",
	},
)

// InvoiceTransitionsTotal counts applied status transitions.
// Labels:
//   - from, to: the invoice status before and after (e.g. "Pending", "Accepted")
//   - role: role of the actor, "Admin" or "User"
var InvoiceTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invoice_transitions_total",
		Help:      "Total number of invoice status transitions applied.",
	},
	[]string{"from", "to", "role"},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts authentication outcomes.
// Labels:
//   - operation: "register", "login", "refresh" or "revoke"
//   - result: "success" or "failure"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of authentication operations, by outcome.",
	},
	[]string{"operation", "result"},
)

// ── Notification and push metrics ─────────────────────────────────────────────

// NotificationsCreatedTotal counts persisted notifications.
var NotificationsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_created_total",
		Help:      "Total number of notifications persisted.",
	},
)

// PushQueueDepth tracks the number of messages waiting in each dispatcher shard.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var PushQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "push_queue_depth",
		Help:      "Current number of push messages pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// PushDeliveriesTotal counts push delivery outcomes after retries.
// Label:
//   - result: "delivered" or "failed"
var PushDeliveriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "push_deliveries_total",
		Help:      "Total number of push messages handled by the dispatcher, by result.",
	},
	[]string{"result"},
)

// PushDroppedTotal counts messages rejected because a shard buffer was full.
var PushDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "push_dropped_total",
		Help:      "Total number of push messages dropped on a full queue.",
	},
)

// PushDeliveryDuration measures a delivery from dequeue to the last attempt.
// Label:
//   - event: the push event name (e.g. "ReceiveNotification")
var PushDeliveryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "push_delivery_duration_seconds",
		Help:      "Duration of push delivery including retries.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"event"},
)

// WebSocketConnections tracks currently open push connections on this instance.
var WebSocketConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "websocket_connections",
		Help:      "Current number of open WebSocket push connections.",
	},
)
