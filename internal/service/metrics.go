package service

import (
	"context"
	"strconv"

	"github.com/alexanderramin/casework/internal/gateway"
	"github.com/prometheus/client_golang/prometheus"
)

// MetricsObserver records engine use cases and gateway calls as Prometheus
// metrics. It satisfies both UseCaseObserver and gateway.Observer.
type MetricsObserver struct {
	useCaseDuration *prometheus.HistogramVec
	useCaseTotal    *prometheus.CounterVec
	callDuration    *prometheus.HistogramVec
	callTotal       *prometheus.CounterVec
}

var _ gateway.Observer = (*MetricsObserver)(nil)

// NewMetricsObserver creates the collectors and registers them on reg.
func NewMetricsObserver(reg prometheus.Registerer) *MetricsObserver {
	m := &MetricsObserver{
		useCaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "casework",
			Name:      "use_case_duration_seconds",
			Help:      "Duration of reconciliation engine operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"use_case"}),
		useCaseTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "casework",
			Name:      "use_cases_total",
			Help:      "Reconciliation engine operations by outcome.",
		}, []string{"use_case", "outcome"}),
		callDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "casework",
			Name:      "gateway_call_duration_seconds",
			Help:      "Latency of calls to the system of record and renderer.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		callTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "casework",
			Name:      "gateway_calls_total",
			Help:      "Calls to the system of record and renderer by status.",
		}, []string{"op", "status"}),
	}
	reg.MustRegister(m.useCaseDuration, m.useCaseTotal, m.callDuration, m.callTotal)
	return m
}

func (m *MetricsObserver) ObserveUseCase(_ context.Context, event UseCaseEvent) {
	m.useCaseDuration.WithLabelValues(event.Name).Observe(event.Duration.Seconds())
	m.useCaseTotal.WithLabelValues(event.Name, outcome(event.Success)).Inc()
}

func (m *MetricsObserver) OnCallComplete(event gateway.CallEvent) {
	m.callDuration.WithLabelValues(event.Op).Observe(float64(event.LatencyMs) / 1000)
	status := "error"
	if event.Status != 0 {
		status = strconv.Itoa(event.Status)
	}
	m.callTotal.WithLabelValues(event.Op, status).Inc()
}

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
