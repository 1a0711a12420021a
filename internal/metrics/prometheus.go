package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	navigationSessions *prometheus.GaugeVec
	directionsRequests *prometheus.CounterVec
	placeSearches      prometheus.Counter
	remindersSent      prometheus.Counter
}

func NewMetrics() *Metrics {
	metrics := &Metrics{
		navigationSessions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "navigation_sessions",
			Help: "The number of live navigation sessions",
		}, []string{"transport_mode"}),
		directionsRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "directions_requests_total",
			Help: "The total number of directions requests issued upstream",
		}, []string{"transport_mode"}),
		placeSearches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "place_searches_total",
			Help: "The total number of place autocomplete searches",
		}),
		remindersSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trip_reminders_sent_total",
			Help: "The total number of scheduled trip reminders sent",
		}),
	}
	metrics.register()
	return metrics
}

func (m *Metrics) register() {
	prometheus.MustRegister(m.navigationSessions)
	prometheus.MustRegister(m.directionsRequests)
	prometheus.MustRegister(m.placeSearches)
	prometheus.MustRegister(m.remindersSent)
}

func (m *Metrics) IncrementNavigationSessions(transportMode string) {
	m.navigationSessions.WithLabelValues(transportMode).Inc()
}

func (m *Metrics) DecrementNavigationSessions(transportMode string) {
	m.navigationSessions.WithLabelValues(transportMode).Dec()
}

func (m *Metrics) IncrementDirectionsRequests(transportMode string) {
	m.directionsRequests.WithLabelValues(transportMode).Inc()
}

func (m *Metrics) IncrementPlaceSearches() {
	m.placeSearches.Inc()
}

func (m *Metrics) IncrementRemindersSent() {
	m.remindersSent.Inc()
}
