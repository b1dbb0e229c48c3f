package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	ScansRecorded       prometheus.Counter
	ViolationsCaught    prometheus.Counter
	PointsAwarded       prometheus.Counter
	ComplaintsSubmitted prometheus.Counter
	ComplaintsResolved  prometheus.Counter
	ResolutionBonuses   prometheus.Counter
	GuestMerges         prometheus.Counter
	RequestDuration     *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		ScansRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bisaathi_scans_recorded_total",
			Help: "Total verification lookups recorded in the ledger",
		}),
		ViolationsCaught: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bisaathi_violations_caught_total",
			Help: "Total non-compliant verification outcomes recorded",
		}),
		PointsAwarded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bisaathi_points_awarded_total",
			Help: "Total reward points granted across all award kinds",
		}),
		ComplaintsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bisaathi_complaints_submitted_total",
			Help: "Total complaints filed",
		}),
		ComplaintsResolved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bisaathi_complaints_resolved_total",
			Help: "Total complaints transitioned to resolved",
		}),
		ResolutionBonuses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bisaathi_resolution_bonuses_total",
			Help: "Total one-shot resolution bonuses paid out",
		}),
		GuestMerges: promauto.NewCounter(prometheus.CounterOpts{
			Name: "bisaathi_guest_merges_total",
			Help: "Total guest snapshots merged into accounts",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bisaathi_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status class",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

// AddPoints records granted points.
func (m *Metrics) AddPoints(points int) {
	m.PointsAwarded.Add(float64(points))
}
