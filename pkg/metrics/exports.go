package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ExportJobMetrics records processing outcomes for queued export jobs.
type ExportJobMetrics struct {
	duration  prometheus.Histogram
	success   prometheus.Counter
	failure   prometheus.Counter
	malformed prometheus.Counter
}

// NewExportJobMetrics registers the export job metrics on the provided
// registerer.
func NewExportJobMetrics(reg prometheus.Registerer) *ExportJobMetrics {
	if reg == nil {
		return &ExportJobMetrics{}
	}
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "export_job_duration_seconds",
		Help:    "Duration of export job processing in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	success := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "export_job_success",
		Help: "Export jobs processed successfully.",
	})
	failure := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "export_job_failure",
		Help: "Export jobs that failed and were redelivered.",
	})
	malformed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "export_job_malformed_messages",
		Help: "Export job messages dropped because no job id could be decoded.",
	})
	reg.MustRegister(duration, success, failure, malformed)
	return &ExportJobMetrics{
		duration:  duration,
		success:   success,
		failure:   failure,
		malformed: malformed,
	}
}

// ObserveDuration records how long a job spent in ProcessJob.
func (e *ExportJobMetrics) ObserveDuration(duration time.Duration) {
	if e == nil || e.duration == nil {
		return
	}
	e.duration.Observe(duration.Seconds())
}

// IncSuccess increments the processed counter.
func (e *ExportJobMetrics) IncSuccess() {
	if e == nil || e.success == nil {
		return
	}
	e.success.Inc()
}

// IncFailure increments the failed counter.
func (e *ExportJobMetrics) IncFailure() {
	if e == nil || e.failure == nil {
		return
	}
	e.failure.Inc()
}

// IncMalformed increments the dropped-message counter.
func (e *ExportJobMetrics) IncMalformed() {
	if e == nil || e.malformed == nil {
		return
	}
	e.malformed.Inc()
}
