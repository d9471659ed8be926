package interceptors

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "equiptrack"
	metricsSubsystem = "gateway"
)

// Исходы refresh для метрики refreshes_total.
const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
	outcomeNoToken = "no_refresh_token"
	outcomeStale   = "stale_token"
)

// Metrics — счётчики исходящего трафика и шлюза обновления токена.
// Все методы безопасны для nil-получателя.
type Metrics struct {
	requests  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	refreshes *prometheus.CounterVec
	queued    prometheus.Counter
	expired   prometheus.Counter
}

// NewMetrics создаёт коллекторы и регистрирует их в reg (если reg != nil).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "upstream_requests_total",
			Help:      "Outbound attempts to the EquipTrack API by method and status code.",
		}, []string{"method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "upstream_request_duration_seconds",
			Help:      "Outbound attempt latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "refreshes_total",
			Help:      "Access token recoveries by outcome.",
		}, []string{"outcome"}),
		queued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "refresh_waiters_total",
			Help:      "Requests that waited for an in-flight refresh.",
		}),
		expired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "sessions_expired_total",
			Help:      "Sessions ended because the credentials could not be recovered.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.requests, m.duration, m.refreshes, m.queued, m.expired)
	}

	return m
}

// SessionExpired учитывает завершённую сессию.
func (m *Metrics) SessionExpired() {
	if m == nil {
		return
	}
	m.expired.Inc()
}

func (m *Metrics) refresh(outcome string) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) waiter() {
	if m == nil {
		return
	}
	m.queued.Inc()
}

func (m *Metrics) attempt(method, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, code).Inc()
	m.duration.WithLabelValues(method).Observe(d.Seconds())
}

// WithMetrics учитывает каждую попытку: код ответа или "error" для сбоя транспорта.
func WithMetrics(m *Metrics) Interceptor {
	return func(next http.RoundTripper) http.RoundTripper {
		if m == nil {
			return next
		}

		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(req)

			code := "error"
			if err == nil {
				code = strconv.Itoa(resp.StatusCode)
			}
			m.attempt(req.Method, code, time.Since(start))

			return resp, err
		})
	}
}
