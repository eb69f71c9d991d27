package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route, method and status",
		},
		[]string{"route", "method", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route and method",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	AuthAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Register and login attempts by outcome",
		},
		[]string{"op", "outcome"},
	)
	TodoMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todo_mutations_total",
			Help: "Successful todo writes by operation",
		},
		[]string{"op"},
	)
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todo_cache_lookups_total",
			Help: "Todo list cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequests)
	prometheus.MustRegister(HTTPDuration)
	prometheus.MustRegister(AuthAttempts)
	prometheus.MustRegister(TodoMutations)
	prometheus.MustRegister(CacheLookups)
}
