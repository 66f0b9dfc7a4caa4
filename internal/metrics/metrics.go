package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "inventory_catalog"

// Label names
const (
	LabelMethod    = "method"
	LabelPath      = "path"
	LabelStatus    = "status"
	LabelFieldType = "field_type"
	LabelMode      = "mode"
	LabelOperation = "operation"
	LabelResult    = "result"
)

// Custom ID generation modes
const (
	ModeSimple   = "simple"
	ModeAdvanced = "advanced"
	ModeFallback = "fallback"
)

// Versioned write operations
const (
	OperationFieldConfiguration = "field_configuration"
	OperationCustomID           = "custom_id"
)

// Token cache outcomes
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

// HTTPLatencyBuckets covers API latencies from 5ms to 5s.
var HTTPLatencyBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being served",
		},
	)
)

// Business Metrics
var (
	AggregationsComputed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "field_aggregations_total",
			Help:      "Number of per-field aggregations computed",
		},
		[]string{LabelFieldType},
	)

	CustomIDsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "custom_ids_generated_total",
			Help:      "Number of custom IDs generated",
		},
		[]string{LabelMode},
	)

	CustomIDElementsDefaulted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "custom_id_elements_defaulted_total",
			Help:      "Number of times a malformed custom ID element list was replaced by an empty list",
		},
	)

	ConcurrencyConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "concurrency_conflicts_total",
			Help:      "Number of configuration writes rejected for a stale version",
		},
		[]string{LabelOperation},
	)

	TokenCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_cache_lookups_total",
			Help:      "API token lookups by cache outcome",
		},
		[]string{LabelResult},
	)
)
