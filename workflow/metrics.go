package workflow

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/kova98/saletracker/enums"
)

type metrics struct {
	submissions *prometheus.CounterVec
	duration    prometheus.Histogram
	calls       *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "saletracker",
			Name:      "submissions_total",
			Help:      "Submissions by outcome and failing step.",
		}, []string{"outcome", "step"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "saletracker",
			Name:      "submission_duration_seconds",
			Help:      "Wall time of a submission from trigger to outcome.",
			Buckets:   prometheus.DefBuckets,
		}),
		calls: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "saletracker",
			Name:      "api_call_duration_seconds",
			Help:      "Duration of remote calls by step and result.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"step", "result"}),
	}
}

func (m *metrics) observeOutcome(out Outcome, elapsed time.Duration) {
	m.submissions.WithLabelValues(string(out.State), string(out.Step)).Inc()
	m.duration.Observe(elapsed.Seconds())
}

func (m *metrics) observeCall(step enums.Step, err error, elapsed time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.calls.WithLabelValues(string(step), result).Observe(elapsed.Seconds())
}
