package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todocollab_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "todocollab_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Business metrics
	SignIns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "todocollab_signins_total",
			Help: "Total successful sign-ins",
		},
	)

	RoomsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "todocollab_rooms_created_total",
			Help: "Total rooms created",
		},
	)

	RoomCreateConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "todocollab_room_create_conflicts_total",
			Help: "Total room creations rejected because the id was taken",
		},
	)

	TaskOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todocollab_task_operations_total",
			Help: "Total task mutations",
		},
		[]string{"op"}, // "add", "edit", "toggle", "delete"
	)

	// Rate limit metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todocollab_rate_limit_hits_total",
			Help: "Total rate limit hits",
		},
		[]string{"endpoint"},
	)

	// Websocket metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "todocollab_ws_connections",
			Help: "Open websocket connections",
		},
	)
)
