package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WorkerMetrics covers the document indexing pipeline. The worker runs as a
// single service, so the service name is baked in as a constant label
// instead of being threaded through every call.
type WorkerMetrics struct {
	registry *prometheus.Registry

	processed     *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	inFlight      prometheus.Gauge
	queueLag      prometheus.Histogram
	chunksIndexed prometheus.Histogram
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	serviceLabel := prometheus.Labels{"service": service}

	return &WorkerMetrics{
		registry: registry,
		processed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "examai",
			Subsystem:   "worker",
			Name:        "document_process_total",
			Help:        "Processed documents by outcome.",
			ConstLabels: serviceLabel,
		}, []string{"status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   "examai",
			Subsystem:   "worker",
			Name:        "document_process_duration_seconds",
			Help:        "End-to-end processing time per document.",
			ConstLabels: serviceLabel,
			Buckets:     []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"status"}),
		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   "examai",
			Subsystem:   "worker",
			Name:        "document_process_in_flight",
			Help:        "Documents currently being processed.",
			ConstLabels: serviceLabel,
		}),
		queueLag: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "examai",
			Subsystem:   "worker",
			Name:        "queue_lag_seconds",
			Help:        "Time a document waited between upload and pickup.",
			ConstLabels: serviceLabel,
			Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		}),
		chunksIndexed: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "examai",
			Subsystem:   "worker",
			Name:        "chunks_indexed",
			Help:        "Chunks produced per successfully processed document.",
			ConstLabels: serviceLabel,
			Buckets:     []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartDocument() {
	m.inFlight.Inc()
}

func (m *WorkerMetrics) FinishDocument(duration time.Duration, err error) {
	m.inFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}
	m.processed.WithLabelValues(status).Inc()
	m.duration.WithLabelValues(status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveQueueLag(lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.Observe(lag.Seconds())
}

func (m *WorkerMetrics) ObserveChunksIndexed(chunks int) {
	if chunks <= 0 {
		return
	}
	m.chunksIndexed.Observe(float64(chunks))
}
