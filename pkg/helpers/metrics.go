package helpers

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels shared by the auth counters
const (
	OutcomeSuccess     = "success"
	OutcomeConflict    = "conflict"
	OutcomeInvalid     = "invalid"
	OutcomeUnknown     = "unknown_email"
	OutcomeBadPassword = "bad_password"
	OutcomeInactive    = "inactive"
	OutcomeError       = "error"
)

// Metrics groups the service's Prometheus collectors on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	Registrations   *prometheus.CounterVec
	Logins          *prometheus.CounterVec
	PasswordChanges *prometheus.CounterVec
	GateRejections  *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics builds the collectors; dashes in namespace become underscores.
func NewMetrics(namespace string) *Metrics {
	namespace = strings.ReplaceAll(namespace, "-", "_")
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		Registrations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_registrations_total",
			Help:      "Registration attempts by outcome",
		}, []string{"outcome"}),
		Logins: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_logins_total",
			Help:      "Login attempts by outcome",
		}, []string{"outcome"}),
		PasswordChanges: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_password_changes_total",
			Help:      "Password change attempts by outcome",
		}, []string{"outcome"}),
		GateRejections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_gate_rejections_total",
			Help:      "Requests stopped by the authorization gate",
		}, []string{"reason"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "route", "status"}),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Inc is nil-safe so callers never need to check whether metrics are enabled.
func Inc(v *prometheus.CounterVec, label string) {
	if v == nil {
		return
	}
	v.WithLabelValues(label).Inc()
}

func (m *Metrics) Registration(outcome string) {
	if m != nil {
		Inc(m.Registrations, outcome)
	}
}

func (m *Metrics) Login(outcome string) {
	if m != nil {
		Inc(m.Logins, outcome)
	}
}

func (m *Metrics) PasswordChange(outcome string) {
	if m != nil {
		Inc(m.PasswordChanges, outcome)
	}
}

func (m *Metrics) GateRejection(reason string) {
	if m != nil {
		Inc(m.GateRejections, reason)
	}
}
