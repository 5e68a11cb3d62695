package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "foodcart_http_request_duration_seconds",
		Help:    "Time spent serving HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	GeocodeRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodcart_geocode_requests_total",
		Help: "Calls made to the external geocoding provider by outcome",
	}, []string{"outcome"})

	GeocodeCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodcart_geocode_cache_lookups_total",
		Help: "Geocode cache lookups by result (hit, miss, error)",
	}, []string{"result"})

	OrdersRegistered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foodcart_orders_registered_total",
		Help: "The total number of orders accepted through the public API",
	})

	AssignmentRenderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "foodcart_assignment_render_duration_seconds",
		Help:    "Time spent building the order assignment view",
		Buckets: prometheus.DefBuckets,
	})
)

// Outcome labels shared by the geocoding metrics.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeHit      = "hit"
	OutcomeMiss     = "miss"
	OutcomeNegative = "negative"
	OutcomeError    = "error"
)
