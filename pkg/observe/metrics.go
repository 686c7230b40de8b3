package observe

import (
	"github.com/prometheus/client_golang/prometheus"
)

// SearchMetrics counts what the query controller does with its debounce
// window and in-flight requests.
type SearchMetrics struct {
	SearchesIssued     prometheus.Counter
	MutationsCoalesced prometheus.Counter
	StaleDropped       prometheus.Counter
	SearchErrors       prometheus.Counter
	SuggestCacheHits   prometheus.Counter
	SuggestCacheMisses prometheus.Counter
}

// NewSearchMetrics registers the controller-side counters with reg.
func NewSearchMetrics(reg prometheus.Registerer) *SearchMetrics {
	m := &SearchMetrics{
		SearchesIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "searchkit",
			Name:      "searches_issued_total",
			Help:      "Search requests actually sent to the backend.",
		}),
		MutationsCoalesced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "searchkit",
			Name:      "mutations_coalesced_total",
			Help:      "State mutations absorbed by the debounce window.",
		}),
		StaleDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "searchkit",
			Name:      "stale_responses_dropped_total",
			Help:      "Responses discarded because a newer request superseded them.",
		}),
		SearchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "searchkit",
			Name:      "search_errors_total",
			Help:      "Search requests that ended in a transport or server error.",
		}),
		SuggestCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "searchkit",
			Name:      "suggest_cache_hits_total",
			Help:      "Suggestion lookups answered from the session cache.",
		}),
		SuggestCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "searchkit",
			Name:      "suggest_cache_misses_total",
			Help:      "Suggestion lookups that went to the backend.",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.SearchesIssued,
			m.MutationsCoalesced,
			m.StaleDropped,
			m.SearchErrors,
			m.SuggestCacheHits,
			m.SuggestCacheMisses,
		)
	}
	return m
}

// ServerMetrics instruments the HTTP API.
type ServerMetrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewServerMetrics registers the server-side collectors with reg.
func NewServerMetrics(reg prometheus.Registerer) *ServerMetrics {
	m := &ServerMetrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "searchkit",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "searchkit",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
	if reg != nil {
		reg.MustRegister(m.RequestsTotal, m.RequestDuration)
	}
	return m
}
