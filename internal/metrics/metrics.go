package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "crewdesk"

const (
	LeadCreated = "created"
	LeadInvalid = "invalid"
	LeadFailed  = "failed"
	LeadLimited = "limited"
)

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry          *prometheus.Registry
	gateDecisions     *prometheus.CounterVec
	leadSubmissions   *prometheus.CounterVec
	leadNotifications *prometheus.CounterVec
	assignmentActions *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	metrics := &Metrics{
		registry: registry,
		gateDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gate_decisions_total",
			Help:      "Access gate outcomes by action.",
		}, []string{"action"}),
		leadSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lead_submissions_total",
			Help:      "Public lead submissions by result.",
		}, []string{"result"}),
		leadNotifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lead_notifications_total",
			Help:      "Lead notification deliveries by result.",
		}, []string{"result"}),
		assignmentActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assignment_actions_total",
			Help:      "Worker check-in, check-out and completion toggles.",
		}, []string{"action"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		metrics.gateDecisions,
		metrics.leadSubmissions,
		metrics.leadNotifications,
		metrics.assignmentActions,
	)
	return metrics
}

func (metrics *Metrics) GateDecision(action string) {
	metrics.gateDecisions.WithLabelValues(action).Inc()
}

func (metrics *Metrics) LeadSubmission(result string) {
	metrics.leadSubmissions.WithLabelValues(result).Inc()
}

func (metrics *Metrics) LeadNotification(result string) {
	metrics.leadNotifications.WithLabelValues(result).Inc()
}

func (metrics *Metrics) AssignmentAction(action string) {
	metrics.assignmentActions.WithLabelValues(action).Inc()
}

func (metrics *Metrics) Registry() *prometheus.Registry {
	return metrics.registry
}

func (metrics *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(metrics.registry, promhttp.HandlerOpts{})
}
