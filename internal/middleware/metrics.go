package middleware

import (
	"context"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	requests         *prometheus.CounterVec
	latency          *prometheus.HistogramVec
	PaymentsRecorded prometheus.Counter
	AmountSettled    prometheus.Counter
}

// NewMetrics registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "settleup",
			Name:      "rpc_requests_total",
			Help:      "RPC calls by procedure and result code.",
		}, []string{"procedure", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "settleup",
			Name:      "rpc_duration_seconds",
			Help:      "RPC latency by procedure.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		PaymentsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "settleup",
			Name:      "payments_recorded_total",
			Help:      "Payments recorded through MarkPaid.",
		}),
		AmountSettled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "settleup",
			Name:      "amount_settled_total",
			Help:      "Sum of recorded payment amounts, in group currency units.",
		}),
	}
	reg.MustRegister(m.requests, m.latency, m.PaymentsRecorded, m.AmountSettled)
	return m
}

// ObservePayment counts a recorded payment. Safe on a nil receiver.
func (m *Metrics) ObservePayment(amount float64) {
	if m == nil {
		return
	}
	m.PaymentsRecorded.Inc()
	m.AmountSettled.Add(amount)
}

// Interceptor records a request count and latency for every unary RPC.
func (m *Metrics) Interceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			procedure := req.Spec().Procedure
			code := "ok"
			if err != nil {
				code = connect.CodeOf(err).String()
			}
			m.requests.WithLabelValues(procedure, code).Inc()
			m.latency.WithLabelValues(procedure).Observe(time.Since(start).Seconds())
			return resp, err
		}
	}
}
