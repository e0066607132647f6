package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var (
	registry     *prometheus.Registry
	registryOnce sync.Once
	enabled      bool

	SessionsCreated      *prometheus.CounterVec
	CredentialRequests   *prometheus.CounterVec
	TranscriptionResults *prometheus.CounterVec
	GradingRequests      *prometheus.CounterVec
	GradingDuration      *prometheus.HistogramVec
	ReportsRendered      *prometheus.CounterVec
	SessionsCompleted    prometheus.Counter
)

// Init creates the registry and collectors. Safe to call more than once.
func Init(logger logrus.FieldLogger) {
	registryOnce.Do(func() {
		registry = prometheus.NewRegistry()

		SessionsCreated = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trainer_sessions_created_total",
				Help: "Training sessions created, by persona",
			},
			[]string{"persona"},
		)

		CredentialRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trainer_credential_requests_total",
				Help: "Ephemeral voice credential requests, by outcome",
			},
			[]string{"status"},
		)

		TranscriptionResults = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trainer_transcriptions_total",
				Help: "Server-side audio transcriptions, by outcome",
			},
			[]string{"status"},
		)

		GradingRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trainer_grading_requests_total",
				Help: "Grading calls to the language model, by provider and outcome",
			},
			[]string{"provider", "status"},
		)

		GradingDuration = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "trainer_grading_duration_seconds",
				Help:    "Latency of grading calls",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
			},
			[]string{"provider"},
		)

		ReportsRendered = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trainer_reports_rendered_total",
				Help: "PDF reports rendered, by trigger and outcome",
			},
			[]string{"trigger", "status"},
		)

		SessionsCompleted = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "trainer_sessions_completed_total",
				Help: "Sessions that reached the completed state",
			},
		)

		registry.MustRegister(
			SessionsCreated,
			CredentialRequests,
			TranscriptionResults,
			GradingRequests,
			GradingDuration,
			ReportsRendered,
			SessionsCompleted,
		)

		enabled = true
		logger.Info("Prometheus metrics initialized")
	})
}

// Handler exposes the private registry.
func Handler() http.Handler {
	if registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		Registry:          registry,
	})
}

// Enabled reports whether Init ran.
func Enabled() bool {
	return enabled
}

// RecordSessionCreated counts a new session.
func RecordSessionCreated(persona string) {
	if enabled {
		SessionsCreated.WithLabelValues(persona).Inc()
	}
}

// RecordCredential counts an ephemeral credential attempt.
func RecordCredential(status string) {
	if enabled {
		CredentialRequests.WithLabelValues(status).Inc()
	}
}

// RecordTranscription counts a transcription attempt.
func RecordTranscription(status string) {
	if enabled {
		TranscriptionResults.WithLabelValues(status).Inc()
	}
}

// ObserveGrading starts a timer; call the returned func with the outcome.
func ObserveGrading(provider string) func(status string) {
	if !enabled {
		return func(string) {}
	}

	start := time.Now()
	return func(status string) {
		GradingDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
		GradingRequests.WithLabelValues(provider, status).Inc()
	}
}

// RecordReport counts a render attempt.
func RecordReport(trigger, status string) {
	if enabled {
		ReportsRendered.WithLabelValues(trigger, status).Inc()
	}
}

// RecordSessionCompleted counts a graded session.
func RecordSessionCompleted() {
	if enabled {
		SessionsCompleted.Inc()
	}
}
