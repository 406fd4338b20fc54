package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "farmloan"

// Registry holds the service collectors on a private prometheus registry.
type Registry struct {
	reg *prometheus.Registry

	Decisions       *prometheus.CounterVec
	Transitions     *prometheus.CounterVec
	Disbursements   *prometheus.CounterVec
	LedgerAppends   prometheus.Counter
	AppendDuration  prometheus.Histogram
	VerifyFailures  prometheus.Counter
	LedgerHalted    prometheus.Gauge
	RequestDuration *prometheus.HistogramVec
}

func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		Decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "decisions_total",
			Help: "Loan decisions by resulting status.",
		}, []string{"status"}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "status_transitions_total",
			Help: "Status writes by target status and actor role.",
		}, []string{"to", "role"}),
		Disbursements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "disbursements_total",
			Help: "Release attempts by outcome.",
		}, []string{"outcome"}),
		LedgerAppends: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "ledger_appends_total",
			Help: "Committed ledger entries.",
		}),
		AppendDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "ledger_append_seconds",
			Help:    "Time spent inside a serialized ledger append.",
			Buckets: prometheus.DefBuckets,
		}),
		VerifyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "ledger_verify_failures_total",
			Help: "Chain verifications that found a mismatch.",
		}),
		LedgerHalted: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "ledger_halted",
			Help: "1 while appends are halted after an integrity violation.",
		}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_seconds",
			Help:    "HTTP latency by route and status code.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "code"}),
	}
	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.Decisions, r.Transitions, r.Disbursements,
		r.LedgerAppends, r.AppendDuration, r.VerifyFailures, r.LedgerHalted,
		r.RequestDuration,
	)
	return r
}

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

// The helpers below are nil-safe so usecases can run without metrics in tests.

func (r *Registry) ObserveDecision(status string) {
	if r != nil {
		r.Decisions.WithLabelValues(status).Inc()
	}
}

func (r *Registry) ObserveTransition(to, role string) {
	if r != nil {
		r.Transitions.WithLabelValues(to, role).Inc()
	}
}

func (r *Registry) ObserveDisbursement(outcome string) {
	if r != nil {
		r.Disbursements.WithLabelValues(outcome).Inc()
	}
}

func (r *Registry) ObserveAppend(d time.Duration) {
	if r != nil {
		r.LedgerAppends.Inc()
		r.AppendDuration.Observe(d.Seconds())
	}
}

func (r *Registry) ObserveVerifyFailure() {
	if r != nil {
		r.VerifyFailures.Inc()
	}
}

func (r *Registry) SetHalted(halted bool) {
	if r == nil {
		return
	}
	v := 0.0
	if halted {
		v = 1
	}
	r.LedgerHalted.Set(v)
}

func (r *Registry) ObserveRequest(method, route, code string, d time.Duration) {
	if r != nil {
		r.RequestDuration.WithLabelValues(method, route, code).Observe(d.Seconds())
	}
}
