package metrics

import "github.com/prometheus/client_golang/prometheus"

// Candidate outcomes recorded by the match engine.
const (
	OutcomeMatched        = "matched"
	OutcomeBelowThreshold = "below_threshold"
	OutcomeEmbedFailed    = "embed_failed"
	OutcomePersistFailed  = "persist_failed"
	OutcomeReviewed       = "reviewed"
)

// Match engine Prometheus metrics.
var (
	MatchRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foundmatch",
			Name:      "match_runs_total",
			Help:      "Match runs by result",
		},
		[]string{"status"}, // "success" / "error"
	)

	MatchRunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "foundmatch",
			Name:      "match_run_duration_seconds",
			Help:      "Duration of a full match run",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	MatchCandidatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foundmatch",
			Name:      "match_candidates_total",
			Help:      "Candidates evaluated by outcome",
		},
		[]string{"outcome"},
	)

	MatchCompositeScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "foundmatch",
			Name:      "match_composite_score",
			Help:      "Composite scores of evaluated candidates",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		},
	)
)

var matchMetricsRegistered bool

// RegisterMatchMetrics registers match engine metrics. Must be called once from main.
func RegisterMatchMetrics() {
	if matchMetricsRegistered {
		return
	}
	prometheus.MustRegister(MatchRunsTotal)
	prometheus.MustRegister(MatchRunDuration)
	prometheus.MustRegister(MatchCandidatesTotal)
	prometheus.MustRegister(MatchCompositeScore)
	matchMetricsRegistered = true
}
