package metrics

import (
	"time"

	"github.com/mdiasanta/req-hunter/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "reqhunter"

// Collector records scrape activity as prometheus metrics.
type Collector struct {
	runsTotal      *prometheus.CounterVec
	runDuration    *prometheus.HistogramVec
	sourceScrapes  *prometheus.CounterVec
	sourceDuration *prometheus.HistogramVec
	jobsFoundTotal *prometheus.CounterVec
	jobsNewTotal   *prometheus.CounterVec
	schedulerSkips prometheus.Counter
}

// New registers the collectors on reg. Use prometheus.DefaultRegisterer in
// the server and a fresh registry in tests.
func New(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		runsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scrape",
			Name:      "runs_total",
			Help:      "Count of scrape runs by trigger and status",
		}, []string{"trigger", "status"}),
		runDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scrape",
			Name:      "run_duration_seconds",
			Help:      "Duration of complete scrape runs",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}, []string{"trigger"}),
		sourceScrapes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "scrapes_total",
			Help:      "Count of per-source scrapes by strategy and status",
		}, []string{"source", "strategy", "status"}),
		sourceDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "scrape_duration_seconds",
			Help:      "Duration of a single source scrape",
			Buckets:   []float64{0.5, 1, 5, 15, 30, 60, 120, 300},
		}, []string{"strategy"}),
		jobsFoundTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "found_total",
			Help:      "Job candidates extracted per source",
		}, []string{"source"}),
		jobsNewTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "new_total",
			Help:      "Jobs stored for the first time per source",
		}, []string{"source"}),
		schedulerSkips: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "overlap_skips_total",
			Help:      "Ticks skipped because a run was still in progress",
		}),
	}
}

// ObserveSource records one source scrape.
func (c *Collector) ObserveSource(source, strategy string, found, inserted int, err error, elapsed time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	c.sourceScrapes.WithLabelValues(source, strategy, status).Inc()
	c.sourceDuration.WithLabelValues(strategy).Observe(elapsed.Seconds())
	c.jobsFoundTotal.WithLabelValues(source).Add(float64(found))
	c.jobsNewTotal.WithLabelValues(source).Add(float64(inserted))
}

// ObserveRun records a finished run. A nil result means the run aborted.
func (c *Collector) ObserveRun(trigger string, result *domain.ScrapeResult, err error, elapsed time.Duration) {
	status := "success"
	switch {
	case err != nil:
		status = "failure"
	case result != nil && len(result.Errors) > 0:
		status = "partial"
	}
	c.runsTotal.WithLabelValues(trigger, status).Inc()
	c.runDuration.WithLabelValues(trigger).Observe(elapsed.Seconds())
}

// ObserveSkip counts a scheduler tick skipped due to an overlapping run.
func (c *Collector) ObserveSkip() {
	c.schedulerSkips.Inc()
}
