package client

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics records per call outcomes. A nil *metrics is a no-op.
type metrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	if reg == nil {
		return nil, nil
	}

	m := &metrics{
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "xhttp",
				Subsystem: "client",
				Name:      "calls_total",
				Help:      "Total number of outbound calls by operation, method and outcome.",
			},
			[]string{"op", "method", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "xhttp",
				Subsystem: "client",
				Name:      "call_duration_seconds",
				Help:      "Duration of outbound calls in seconds, body read included.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"op", "method"},
		),
	}

	if err := reg.Register(m.calls); err != nil {
		return nil, fmt.Errorf("registering calls counter: %w", err)
	}
	if err := reg.Register(m.duration); err != nil {
		reg.Unregister(m.calls)
		return nil, fmt.Errorf("registering duration histogram: %w", err)
	}

	return m, nil
}

// outcome is "ok" for completed calls and the failure kind otherwise.
func outcome(res Result) string {
	if res.Err == nil {
		return "ok"
	}

	return KindOf(res.Err).String()
}

func (m *metrics) observe(cl call, res Result, elapsed time.Duration) {
	if m == nil {
		return
	}

	m.calls.WithLabelValues(cl.op, cl.method.String(), outcome(res)).Inc()
	m.duration.WithLabelValues(cl.op, cl.method.String()).Observe(elapsed.Seconds())
}
