package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FramesDelivered = promauto.NewCounter(prometheus.CounterOpts{Namespace: "transit_rt", Name: "frames_delivered_total", Help: "Frames delivered to live connections"})
	PublishFailures = promauto.NewCounter(prometheus.CounterOpts{Namespace: "transit_rt", Name: "publish_failures_total", Help: "Frame sends that failed on a member connection"})

	MessagesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "transit_rt", Name: "messages_dropped_total", Help: "Inbound frames dropped without delivery"},
		[]string{"reason"}, // malformed, unresolved, unknown_type
	)

	ConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{Namespace: "transit_rt", Name: "connections_active", Help: "Open websocket connections"})
	PickupsSeen       = promauto.NewCounter(prometheus.CounterOpts{Namespace: "transit_rt", Name: "pickups_seen_total", Help: "Pickup requests marked seen via live delivery"})
	LocationUpdates   = promauto.NewCounter(prometheus.CounterOpts{Namespace: "transit_rt", Name: "location_updates_total", Help: "Vehicle location samples accepted"})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "transit_rt", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "transit_rt",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
