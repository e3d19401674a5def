package service

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/timetable-engine/internal/models"
)

// Metrics encapsulates Prometheus instrumentation for solves.
type Metrics struct {
	registry *prometheus.Registry
	handler  http.Handler

	solveDuration *prometheus.HistogramVec
	solveTotal    *prometheus.CounterVec
	unassigned    prometheus.Counter
	lastScore     prometheus.Gauge
	sectionsBuilt prometheus.Counter
}

// NewMetrics registers the engine collectors on a private registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	solveDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "timetable_solve_duration_seconds",
		Help:    "Duration of schedule solves in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"algorithm"})

	solveTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_solves_total",
		Help: "Total schedule solves by algorithm",
	}, []string{"algorithm"})

	unassigned := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_unassigned_total",
		Help: "Total unassigned (student, course) pairs across solves",
	})

	lastScore := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "timetable_last_score",
		Help: "Score of the most recent schedule",
	})

	sectionsBuilt := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_sections_total",
		Help: "Total sections materialized across solves",
	})

	registry.MustRegister(solveDuration, solveTotal, unassigned, lastScore, sectionsBuilt)

	return &Metrics{
		registry:      registry,
		handler:       promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		solveDuration: solveDuration,
		solveTotal:    solveTotal,
		unassigned:    unassigned,
		lastScore:     lastScore,
		sectionsBuilt: sectionsBuilt,
	}
}

// Handler exposes the /metrics endpoint for the registry.
func (m *Metrics) Handler() http.Handler {
	return m.handler
}

// ObserveSolve records one completed solve.
func (m *Metrics) ObserveSolve(schedule *models.Schedule, elapsed time.Duration) {
	algorithm := schedule.Metadata.Algorithm
	m.solveDuration.WithLabelValues(algorithm).Observe(elapsed.Seconds())
	m.solveTotal.WithLabelValues(algorithm).Inc()
	m.unassigned.Add(float64(len(schedule.Unassigned)))
	m.lastScore.Set(schedule.Metadata.Score)
	m.sectionsBuilt.Add(float64(len(schedule.Sections)))
}
