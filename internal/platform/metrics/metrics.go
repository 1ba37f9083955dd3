package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the negotiation engine.
type Metrics struct {
	RequestTransitions  *prometheus.CounterVec
	ItemDecisions       *prometheus.CounterVec
	ValidationFailures  *prometheus.CounterVec
	OperationDuration   *prometheus.HistogramVec
	AttributesCreated   *prometheus.CounterVec
	SuccessionsRepaired prometheus.Counter
	MessagesHandled     *prometheus.CounterVec
	LockWait            prometheus.Histogram
	HTTPDuration        *prometheus.HistogramVec
}

// New creates and registers all metrics on reg. A nil reg uses the default
// registerer; tests pass a fresh prometheus.NewRegistry().
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		RequestTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "parley_request_transitions_total",
			Help: "Request status transitions by direction and new status",
		}, []string{"direction", "status"}),
		ItemDecisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "parley_item_decisions_total",
			Help: "Per-item accept/reject outcomes by item type",
		}, []string{"item_type", "result"}),
		ValidationFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "parley_validation_failures_total",
			Help: "Validation failures by operation and result code",
		}, []string{"operation", "code"}),
		OperationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "parley_operation_duration_seconds",
			Help:    "Controller operation latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		AttributesCreated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "parley_attributes_created_total",
			Help: "Local attributes written by origin (own, successor, shared, peer)",
		}, []string{"origin"}),
		SuccessionsRepaired: f.NewCounter(prometheus.CounterOpts{
			Name: "parley_successions_repaired_total",
			Help: "Half-written successions completed by the repair pass",
		}),
		MessagesHandled: f.NewCounterVec(prometheus.CounterOpts{
			Name: "parley_messages_handled_total",
			Help: "Inbound envelopes by kind and outcome",
		}, []string{"kind", "outcome"}),
		LockWait: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "parley_request_lock_wait_seconds",
			Help:    "Time spent waiting for a per-request lock",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "parley_http_request_duration_seconds",
			Help:    "API latency by method, route pattern and status code",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

func (m *Metrics) IncrementTransition(direction, status string) {
	m.RequestTransitions.WithLabelValues(direction, status).Inc()
}

func (m *Metrics) IncrementItemDecision(itemType, result string) {
	m.ItemDecisions.WithLabelValues(itemType, result).Inc()
}

func (m *Metrics) IncrementValidationFailure(operation, code string) {
	m.ValidationFailures.WithLabelValues(operation, code).Inc()
}

func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementAttributeCreated(origin string) {
	m.AttributesCreated.WithLabelValues(origin).Inc()
}

func (m *Metrics) IncrementMessageHandled(kind, outcome string) {
	m.MessagesHandled.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) ObserveLockWait(start time.Time) {
	m.LockWait.Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveHTTPRequest(method, route string, status int, start time.Time) {
	m.HTTPDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
}
