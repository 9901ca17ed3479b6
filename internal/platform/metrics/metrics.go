// Package metrics registers the Prometheus instruments exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	HTTPDuration *prometheus.HistogramVec

	LocationReports    prometheus.Counter
	SOSDispatches      *prometheus.CounterVec
	RespondersNotified prometheus.Counter
	UsersRegistered    prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		HTTPDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "healthstack_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status code",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
		LocationReports: promauto.NewCounter(prometheus.CounterOpts{
			Name: "healthstack_location_reports_total",
			Help: "Total presence location reports accepted",
		}),
		SOSDispatches: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "healthstack_sos_dispatches_total",
			Help: "SOS dispatch attempts by outcome",
		}, []string{"outcome"}),
		RespondersNotified: promauto.NewCounter(prometheus.CounterOpts{
			Name: "healthstack_sos_responders_notified_total",
			Help: "Total responders notified across all SOS dispatches",
		}),
		UsersRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "healthstack_users_registered_total",
			Help: "Total users registered",
		}),
	}
}

// Dispatch outcomes recorded on SOSDispatches.
const (
	OutcomeNotified      = "notified"
	OutcomeNoContacts    = "no_contacts"
	OutcomeNoResponders  = "no_responders"
	OutcomeDispatchError = "dispatch_error"
	OutcomeInvalid       = "invalid"
	OutcomeError         = "error"
)

// ObserveSOSDispatch records one dispatch attempt.
func (m *Metrics) ObserveSOSDispatch(outcome string, notified int) {
	if m == nil {
		return
	}
	m.SOSDispatches.WithLabelValues(outcome).Inc()
	if notified > 0 {
		m.RespondersNotified.Add(float64(notified))
	}
}

// IncrementLocationReports records one accepted presence report.
func (m *Metrics) IncrementLocationReports() {
	if m == nil {
		return
	}
	m.LocationReports.Inc()
}

// IncrementUsersRegistered records one successful registration.
func (m *Metrics) IncrementUsersRegistered() {
	if m == nil {
		return
	}
	m.UsersRegistered.Inc()
}
