package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Kick outcome label values.
const (
	OutcomeAccepted = "accepted"
	OutcomeFailed   = "failed"
)

// Countdown is the read side of the timer the metrics observe.
type Countdown interface {
	Expired() bool
	ExpiredCount() uint64
	Duration() time.Duration
	SleptTime() time.Duration
}

// Metrics owns a dedicated registry with the switch collectors.
type Metrics struct {
	registry *prometheus.Registry

	kicks          *prometheus.CounterVec
	statusRequests prometheus.Counter
}

// New registers collectors that read countdown on every scrape.
func New(countdown Countdown) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		kicks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alarmclock_kicks_total",
				Help: "Total number of kicks by outcome",
			},
			[]string{"outcome"},
		),
		statusRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "alarmclock_status_requests_total",
			Help: "Total number of status requests",
		}),
	}

	m.registry.MustRegister(
		m.kicks,
		m.statusRequests,
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "alarmclock_expired",
				Help: "1 when the countdown ran out without a kick, 0 otherwise",
			},
			func() float64 {
				if countdown.Expired() {
					return 1
				}

				return 0
			},
		),
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "alarmclock_expired_count",
				Help: "Number of expirations since the last kick",
			},
			func() float64 { return float64(countdown.ExpiredCount()) },
		),
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "alarmclock_countdown_seconds",
				Help: "Configured countdown in seconds",
			},
			func() float64 { return countdown.Duration().Seconds() },
		),
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "alarmclock_slept_seconds",
				Help: "Total time the countdown worker spent waiting",
			},
			func() float64 { return countdown.SleptTime().Seconds() },
		),
	)

	// Pre-create both series so dashboards see zeros.
	m.kicks.WithLabelValues(OutcomeAccepted)
	m.kicks.WithLabelValues(OutcomeFailed)

	return m
}

// ObserveKick counts a kick by its outcome.
func (m *Metrics) ObserveKick(err error) {
	outcome := OutcomeAccepted
	if err != nil {
		outcome = OutcomeFailed
	}

	m.kicks.WithLabelValues(outcome).Inc()
}

// ObserveStatus counts a status request.
func (m *Metrics) ObserveStatus() {
	m.statusRequests.Inc()
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
