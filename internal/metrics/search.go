package metrics

import "github.com/prometheus/client_golang/prometheus"

// Query understanding and retrieval Prometheus metrics.
var (
	QueryParseTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "matchmaker",
			Name:      "query_parse_total",
			Help:      "Query parses by path and outcome",
		},
		[]string{"path", "outcome"}, // path: llm|rule, outcome: ok|fallback
	)

	LLMRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "matchmaker",
			Name:      "llm_requests_total",
			Help:      "Total LLM collaborator requests",
		},
		[]string{"model", "status"},
	)

	LLMRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "matchmaker",
			Name:      "llm_request_duration_seconds",
			Help:      "LLM collaborator request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		},
		[]string{"model"},
	)

	RetrievalTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "matchmaker",
			Name:      "retrieval_total",
			Help:      "Candidate retrievals by source and status",
		},
		[]string{"source", "status"}, // source: structured|semantic, status: ok|error|skipped
	)

	FusedResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "matchmaker",
			Name:      "fused_results",
			Help:      "Number of results returned after fusion",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
	)
)

// RegisterSearchMetrics registers query/retrieval metrics explicitly (no init()).
func RegisterSearchMetrics() {
	prometheus.MustRegister(
		QueryParseTotal,
		LLMRequestsTotal,
		LLMRequestDuration,
		RetrievalTotal,
		FusedResults,
	)
}
