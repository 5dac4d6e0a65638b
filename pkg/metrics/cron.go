package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const unknownLabel = "unknown"

// CronJobMetrics records runs of the integrity audit jobs, labelled by job.
type CronJobMetrics struct {
	duration *prometheus.HistogramVec
	runs     *prometheus.CounterVec
	failures *prometheus.CounterVec
	findings *prometheus.GaugeVec
}

// NewCronJobMetrics registers on reg. A nil registerer yields a no-op recorder.
func NewCronJobMetrics(reg prometheus.Registerer) *CronJobMetrics {
	if reg == nil {
		return &CronJobMetrics{}
	}
	byJob := []string{"job"}
	m := &CronJobMetrics{
		// Audits scan whole tables, so the buckets reach into minutes.
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cron_job_duration_seconds",
			Help:    "Wall time of one audit job run.",
			Buckets: []float64{.05, .25, 1, 5, 15, 60, 180},
		}, byJob),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cron_job_success_total",
			Help: "Audit job runs that completed without error.",
		}, byJob),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cron_job_failure_total",
			Help: "Audit job runs that returned an error, panicked or timed out.",
		}, byJob),
		findings: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cron_job_findings",
			Help: "Problems reported by the last run of an audit job.",
		}, byJob),
	}
	reg.MustRegister(m.duration, m.runs, m.failures, m.findings)
	return m
}

func (c *CronJobMetrics) ObserveDuration(job string, d time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(job)).Observe(d.Seconds())
}

func (c *CronJobMetrics) IncSuccess(job string) {
	if c == nil || c.runs == nil {
		return
	}
	c.runs.WithLabelValues(normalizeLabel(job)).Inc()
}

func (c *CronJobMetrics) IncFailure(job string) {
	if c == nil || c.failures == nil {
		return
	}
	c.failures.WithLabelValues(normalizeLabel(job)).Inc()
}

// SetFindings overwrites the job's gauge with the count from its last run.
func (c *CronJobMetrics) SetFindings(job string, n int) {
	if c == nil || c.findings == nil {
		return
	}
	c.findings.WithLabelValues(normalizeLabel(job)).Set(float64(n))
}

// normalizeLabel keeps empty label values out of the exported series.
func normalizeLabel(value string) string {
	if value == "" {
		return unknownLabel
	}
	return value
}
