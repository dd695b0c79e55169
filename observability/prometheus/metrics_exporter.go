package prometheus

import (
	"errors"
	"fmt"
	"time"

	"github.com/vgjs-go/jobsystem/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// ExporterOptions controls collector configuration.
type ExporterOptions struct {
	DurationBuckets []float64
}

// MetricsExporter adapts core.Metrics to Prometheus collectors.
type MetricsExporter struct {
	jobDurationSeconds *prom.HistogramVec
	jobPanicTotal      *prom.CounterVec
	jobsScheduledTotal *prom.CounterVec
	jobsCompletedTotal *prom.CounterVec
	queueDepth         *prom.GaugeVec
}

var _ core.Metrics = (*MetricsExporter)(nil)

// NewMetricsExporter creates and registers Prometheus collectors for
// core.Metrics.
func NewMetricsExporter(namespace string, reg prom.Registerer, opts ExporterOptions) (*MetricsExporter, error) {
	if namespace == "" {
		namespace = "jobsystem"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	buckets := opts.DurationBuckets
	if len(buckets) == 0 {
		buckets = prom.DefBuckets
	}

	durationVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "job_duration_seconds",
		Help:      "Job execution slice duration in seconds.",
		Buckets:   buckets,
	}, []string{"worker", "kind"})
	panicVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "job_panic_total",
		Help:      "Total number of job panics.",
	}, []string{"worker"})
	scheduledVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "jobs_scheduled_total",
		Help:      "Total number of jobs scheduled.",
	}, []string{"worker"})
	completedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "jobs_completed_total",
		Help:      "Total number of jobs whose children counter reached zero.",
	}, []string{"worker"})
	queueDepthVec := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "queue_depth",
		Help:      "Current queue depth.",
	}, []string{"worker"})

	var err error
	if durationVec, err = registerCollector(reg, durationVec); err != nil {
		return nil, err
	}
	if panicVec, err = registerCollector(reg, panicVec); err != nil {
		return nil, err
	}
	if scheduledVec, err = registerCollector(reg, scheduledVec); err != nil {
		return nil, err
	}
	if completedVec, err = registerCollector(reg, completedVec); err != nil {
		return nil, err
	}
	if queueDepthVec, err = registerCollector(reg, queueDepthVec); err != nil {
		return nil, err
	}

	return &MetricsExporter{
		jobDurationSeconds: durationVec,
		jobPanicTotal:      panicVec,
		jobsScheduledTotal: scheduledVec,
		jobsCompletedTotal: completedVec,
		queueDepth:         queueDepthVec,
	}, nil
}

// ObserveJobDuration records a job's execution slice duration. workerIndex
// of -1 (the shared queue has no single owning worker) is reported under the
// "shared" label.
func (m *MetricsExporter) ObserveJobDuration(workerIndex int, kind core.Kind, d time.Duration) {
	if m == nil {
		return
	}
	m.jobDurationSeconds.WithLabelValues(workerLabel(workerIndex), kindLabel(kind)).Observe(d.Seconds())
}

// IncJobPanic records a job panic.
func (m *MetricsExporter) IncJobPanic(workerIndex int) {
	if m == nil {
		return
	}
	m.jobPanicTotal.WithLabelValues(workerLabel(workerIndex)).Inc()
}

// SetQueueDepth records the current depth of a worker's local queue, or of
// the shared queue when workerIndex is -1.
func (m *MetricsExporter) SetQueueDepth(workerIndex int, depth int) {
	if m == nil {
		return
	}
	m.queueDepth.WithLabelValues(workerLabel(workerIndex)).Set(float64(depth))
}

// IncJobsScheduled records a job being pushed onto a queue.
func (m *MetricsExporter) IncJobsScheduled(workerIndex int) {
	if m == nil {
		return
	}
	m.jobsScheduledTotal.WithLabelValues(workerLabel(workerIndex)).Inc()
}

// IncJobsCompleted records a job's children counter reaching zero.
func (m *MetricsExporter) IncJobsCompleted(workerIndex int) {
	if m == nil {
		return
	}
	m.jobsCompletedTotal.WithLabelValues(workerLabel(workerIndex)).Inc()
}

func workerLabel(workerIndex int) string {
	if workerIndex < 0 {
		return "shared"
	}
	return fmt.Sprintf("%d", workerIndex)
}

func kindLabel(kind core.Kind) string {
	if kind == core.KindResumable {
		return "resumable"
	}
	return "leaf"
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
