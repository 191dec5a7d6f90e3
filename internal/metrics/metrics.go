package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the withdraw service
type Metrics struct {
	// Withdrawal pipeline metrics
	WithdrawalsTotal   *prometheus.CounterVec
	WithdrawalDuration *prometheus.HistogramVec

	// Destination probing metrics
	ProbeAttemptsTotal *prometheus.CounterVec
	CandidatesPerRun   prometheus.Histogram

	// Provider metrics
	ProviderRequestsTotal   *prometheus.CounterVec
	ProviderRequestDuration *prometheus.HistogramVec
}

// New creates all metrics and registers them with reg
func New(reg prometheus.Registerer, namespace string) *Metrics {
	if namespace == "" {
		namespace = "withdraw_service"
	}
	factory := promauto.With(reg)

	return &Metrics{
		WithdrawalsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "withdrawals_total",
				Help:      "Total number of withdrawal runs by outcome reason",
			},
			[]string{"reason"},
		),

		WithdrawalDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "withdrawal_duration_seconds",
				Help:      "Duration of full withdrawal runs in seconds",
				Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"outcome"},
		),

		ProbeAttemptsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "probe_attempts_total",
				Help:      "Total number of preview/create parameter-shape attempts",
			},
			[]string{"stage", "outcome"}, // stage: preview|create
		),

		CandidatesPerRun: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "candidates_per_run",
				Help:      "Number of ranked destination candidates per withdrawal run",
				Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
			},
		),

		ProviderRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_requests_total",
				Help:      "Total number of requests to the payments provider",
			},
			[]string{"endpoint", "status"},
		),

		ProviderRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "provider_request_duration_seconds",
				Help:      "Duration of provider requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
	}
}

// RecordWithdrawal records the outcome of one full withdrawal run
func (m *Metrics) RecordWithdrawal(reason string, ok bool, durationSeconds float64) {
	m.WithdrawalsTotal.WithLabelValues(reason).Inc()

	outcome := "failure"
	if ok {
		outcome = "success"
	}
	m.WithdrawalDuration.WithLabelValues(outcome).Observe(durationSeconds)
}

// RecordProbeAttempt records one preview/create parameter-shape attempt
func (m *Metrics) RecordProbeAttempt(stage, outcome string) {
	m.ProbeAttemptsTotal.WithLabelValues(stage, outcome).Inc()
}

// RecordCandidates records how many candidates a run produced
func (m *Metrics) RecordCandidates(n int) {
	m.CandidatesPerRun.Observe(float64(n))
}

// RecordProviderRequest records one request to the payments provider
func (m *Metrics) RecordProviderRequest(endpoint, status string, durationSeconds float64) {
	m.ProviderRequestsTotal.WithLabelValues(endpoint, status).Inc()
	m.ProviderRequestDuration.WithLabelValues(endpoint).Observe(durationSeconds)
}
