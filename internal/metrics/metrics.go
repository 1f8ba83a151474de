// Package metrics exposes Prometheus metrics for the tooldex service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all tooldex Prometheus metrics.
type Metrics struct {
	// Redirect metrics
	ClicksRecorded prometheus.Counter
	ClicksDropped  prometheus.Counter
	RedirectErrors prometheus.Counter

	// Moderation metrics
	Decisions   *prometheus.CounterVec
	Submissions prometheus.Counter

	// Bootstrap metrics
	BootstrapAttempts *prometheus.CounterVec
}

// New registers and returns the service metrics.
func New() *Metrics {
	return &Metrics{
		ClicksRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tooldex_clicks_recorded_total",
			Help: "Outbound clicks recorded for tracking",
		}),
		ClicksDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tooldex_clicks_dropped_total",
			Help: "Outbound clicks dropped because the buffer was full",
		}),
		RedirectErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tooldex_redirect_errors_total",
			Help: "Redirect requests rejected for missing or invalid URLs",
		}),
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tooldex_moderation_decisions_total",
			Help: "Moderator decisions by resulting status",
		}, []string{"status"}),
		Submissions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tooldex_submissions_received_total",
			Help: "Submissions accepted through the intake endpoint",
		}),
		BootstrapAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tooldex_bootstrap_attempts_total",
			Help: "Admin bootstrap attempts by outcome",
		}, []string{"outcome"}),
	}
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}
