package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SubmitterMetrics tracks the batch submission daemon. Each instance carries
// its own registry so tests can create them freely.
type SubmitterMetrics struct {
	registry *prometheus.Registry

	batchSubmissionsTotal   *prometheus.CounterVec
	batchSubmissionFailures *prometheus.CounterVec
	lastSubmittedBatchTime  *prometheus.GaugeVec
	resubmissionsTotal      prometheus.Counter
	clearedNoncesTotal      prometheus.Counter
	pendingNonce            prometheus.Gauge
	latestNonce             prometheus.Gauge
}

func NewSubmitterMetrics() *SubmitterMetrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &SubmitterMetrics{
		registry: registry,
		batchSubmissionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bs_batch_submissions_total",
			Help: "Total number of confirmed batch submissions per role",
		}, []string{"role"}),
		batchSubmissionFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bs_batch_submission_failures_total",
			Help: "Total number of failed batch submission attempts per role",
		}, []string{"role"}),
		lastSubmittedBatchTime: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "bs_last_submitted_batch_timestamp_seconds",
			Help: "Unix timestamp of the last confirmed batch submission per role",
		}, []string{"role"}),
		resubmissionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "bs_resubmissions_total",
			Help: "Total number of fee-bumped replacement transactions broadcast",
		}),
		clearedNoncesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "bs_cleared_nonces_total",
			Help: "Total number of stuck nonces cleared with self-transfers at startup",
		}),
		pendingNonce: factory.NewGauge(prometheus.GaugeOpts{
			Name: "bs_pending_nonce",
			Help: "The submitter account's pending transaction count",
		}),
		latestNonce: factory.NewGauge(prometheus.GaugeOpts{
			Name: "bs_latest_nonce",
			Help: "The submitter account's mined transaction count",
		}),
	}
}

// Registry returns the gatherer backing this metrics set, for serving.
func (sm *SubmitterMetrics) Registry() prometheus.Gatherer {
	return sm.registry
}

func (sm *SubmitterMetrics) RecordBatchSubmitted(role string) {
	sm.batchSubmissionsTotal.WithLabelValues(role).Inc()
	sm.lastSubmittedBatchTime.WithLabelValues(role).Set(float64(time.Now().Unix()))
}

func (sm *SubmitterMetrics) IncrementBatchSubmissionFailures(role string) {
	sm.batchSubmissionFailures.WithLabelValues(role).Inc()
}

func (sm *SubmitterMetrics) IncrementResubmissions() {
	sm.resubmissionsTotal.Inc()
}

func (sm *SubmitterMetrics) IncrementClearedNonces() {
	sm.clearedNoncesTotal.Inc()
}

func (sm *SubmitterMetrics) RecordNonceCounts(pending, latest uint64) {
	sm.pendingNonce.Set(float64(pending))
	sm.latestNonce.Set(float64(latest))
}
