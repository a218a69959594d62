package simbackend

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the simulator's Prometheus collectors.
type Metrics struct {
	WorkflowsSubmitted  *prometheus.CounterVec
	ActivitiesCompleted *prometheus.CounterVec
	StatusRequests      *prometheus.CounterVec
	PendingWorkflows    prometheus.Gauge
}

// NewMetrics registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		WorkflowsSubmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fairsim_workflows_submitted_total",
				Help: "Total number of workflows submitted",
			},
			[]string{"mode"},
		),
		ActivitiesCompleted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fairsim_activities_completed_total",
				Help: "Total number of activities completed by the simulated workers",
			},
			[]string{"mode"},
		),
		StatusRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fairsim_http_requests_total",
				Help: "Total number of API requests",
			},
			[]string{"endpoint", "status"},
		),
		PendingWorkflows: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "fairsim_workflows_pending",
				Help: "Workflows with activities left to run",
			},
		),
	}
}
