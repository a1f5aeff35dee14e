package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request kinds recorded by the ask handler.
const (
	KindQuestion = "question"
	KindFollowUp = "follow_up"
	KindReset    = "reset"
)

// Outcomes shared by ask requests and broadcast sends.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Recorder tracks ask requests and scheduled broadcasts. A nil Recorder is a no-op.
type Recorder struct {
	askRequests *prometheus.CounterVec
	askDuration *prometheus.HistogramVec
	broadcasts  *prometheus.CounterVec
}

// NewRecorder registers the bot metrics on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Recorder{
		askRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mica",
			Subsystem: "ask",
			Name:      "requests_total",
			Help:      "Answer service calls by kind and outcome",
		}, []string{"kind", "outcome"}),
		askDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mica",
			Subsystem: "ask",
			Name:      "duration_seconds",
			Help:      "Wall-clock time spent waiting on the answer service",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 80},
		}, []string{"kind"}),
		broadcasts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mica",
			Subsystem: "broadcast",
			Name:      "messages_total",
			Help:      "Scheduled messages sent to chat threads by outcome",
		}, []string{"outcome"}),
	}
}

// ObserveAsk records one answer service call.
func (r *Recorder) ObserveAsk(kind, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.askRequests.WithLabelValues(kind, outcome).Inc()
	r.askDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// ObserveBroadcast records one per-thread send.
func (r *Recorder) ObserveBroadcast(outcome string) {
	if r == nil {
		return
	}
	r.broadcasts.WithLabelValues(outcome).Inc()
}
