// Package metrics holds the Prometheus collectors of the bot
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "codedrop",
			Subsystem: "bot",
			Name:      "updates_total",
			Help:      "Inbound updates by event kind",
		},
		[]string{"kind"},
	)

	RetrievalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "codedrop",
			Subsystem: "bot",
			Name:      "retrievals_total",
			Help:      "Code lookups by outcome",
		},
		[]string{"result"},
	)

	RegistrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "codedrop",
			Subsystem: "bot",
			Name:      "registrations_total",
			Help:      "Media registrations by outcome",
		},
		[]string{"result"},
	)

	BroadcastMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "codedrop",
			Subsystem: "broadcast",
			Name:      "messages_total",
			Help:      "Broadcast messages by delivery status",
		},
		[]string{"status"},
	)

	MediaExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "codedrop",
			Subsystem: "media",
			Name:      "expired_total",
			Help:      "Media records removed by the expiry sweep",
		},
	)

	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "codedrop",
			Subsystem: "bot",
			Name:      "queue_depth",
			Help:      "Updates waiting for a worker",
		},
	)
)
