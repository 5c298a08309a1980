package http

import "github.com/prometheus/client_golang/prometheus"

// Login outcome labels.
const (
	outcomeSuccess            = "success"
	outcomeInvalidCredentials = "invalid_credentials"
	outcomeEmailNotConfirmed  = "email_not_confirmed"
	outcomeInvalidRequest     = "invalid_request"
	outcomeError              = "error"
)

type Metrics struct {
	Logins   *prometheus.CounterVec
	Requests *prometheus.CounterVec
}

// NewMetrics creates the API metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "eduxperience",
				Name:      "logins_total",
				Help:      "Password sign-in attempts by outcome.",
			},
			[]string{"outcome"},
		),
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "eduxperience",
				Name:      "http_requests_total",
				Help:      "Total HTTP requests processed.",
			},
			[]string{"method", "route", "status"},
		),
	}
	reg.MustRegister(m.Logins, m.Requests)
	return m
}
