package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trust_analyses_total",
			Help: "Total number of analysis runs by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	OracleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trust_oracle_duration_seconds",
			Help:    "Duration of oracle calls in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60, 90},
		},
		[]string{"provider"},
	)

	ValidationWarnings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trust_validation_warnings_total",
			Help: "Total number of validation warnings by code",
		},
		[]string{"code"},
	)

	SnapshotCommits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trust_snapshot_commits_total",
			Help: "Total number of snapshot writes by result",
		},
		[]string{"result"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trust_active_sessions",
			Help: "Number of sessions held in memory",
		},
	)

	LoanQuotes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trust_loan_quotes_total",
			Help: "Total number of loan quotes computed",
		},
	)
)
