package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	processTotal      *prometheus.CounterVec
	processDuration   *prometheus.HistogramVec
	processInFlight   prometheus.Gauge
	observationsCount *prometheus.HistogramVec
	alertsTotal       *prometheus.CounterVec
	malformedTotal    *prometheus.CounterVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	processTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medrec",
			Subsystem: "worker",
			Name:      "document_process_total",
			Help:      "Total processed documents by status.",
		},
		[]string{"service", "status"},
	)
	processDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "medrec",
			Subsystem: "worker",
			Name:      "document_process_duration_seconds",
			Help:      "Document processing duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	processInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "medrec",
			Subsystem: "worker",
			Name:      "document_process_in_flight",
			Help:      "Number of in-flight document processing tasks.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	observationsCount := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "medrec",
			Subsystem: "extraction",
			Name:      "observations_per_document",
			Help:      "Distribution of normalized lab observations per document.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21, 34},
		},
		[]string{"service"},
	)
	alertsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medrec",
			Subsystem: "extraction",
			Name:      "alerts_total",
			Help:      "Total derived health alerts by type.",
		},
		[]string{"service", "type"},
	)
	malformedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medrec",
			Subsystem: "extraction",
			Name:      "malformed_total",
			Help:      "Total extractions with no recoverable JSON object.",
		},
		[]string{"service"},
	)

	registry.MustRegister(processTotal, processDuration, processInFlight, observationsCount, alertsTotal, malformedTotal)

	return &WorkerMetrics{
		registry:          registry,
		processTotal:      processTotal,
		processDuration:   processDuration,
		processInFlight:   processInFlight,
		observationsCount: observationsCount,
		alertsTotal:       alertsTotal,
		malformedTotal:    malformedTotal,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartDocument() {
	m.processInFlight.Inc()
}

func (m *WorkerMetrics) FinishDocument(service string, duration time.Duration, err error) {
	m.processInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.processTotal.WithLabelValues(service, status).Inc()
	m.processDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveObservations(service string, count int) {
	m.observationsCount.WithLabelValues(service).Observe(float64(count))
}

func (m *WorkerMetrics) RecordAlert(service, alertType string) {
	m.alertsTotal.WithLabelValues(service, alertType).Inc()
}

func (m *WorkerMetrics) RecordMalformed(service string) {
	m.malformedTotal.WithLabelValues(service).Inc()
}
