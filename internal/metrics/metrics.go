// Package metrics содержит коллекторы Prometheus для игры и HTTP.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "powerrush"

type Metrics struct {
	registry *prometheus.Registry

	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	roundsStarted  prometheus.Counter
	roundsFinished *prometheus.CounterVec
	clicks         *prometheus.CounterVec
	requiredClicks prometheus.Histogram
	prizesLeft     prometheus.Gauge
	prizeHeals     prometheus.Counter
	activeSessions prometheus.Gauge
}

// New Отдельный реестр на экземпляр, чтобы тесты не делили глобальное состояние
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"method", "route"}),
		roundsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "round",
			Name:      "started_total",
			Help:      "Rounds that entered the countdown.",
		}),
		roundsFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "round",
			Name:      "finished_total",
			Help:      "Finished rounds by result.",
		}, []string{"result"}),
		clicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "round",
			Name:      "clicks_total",
			Help:      "Clicks by anti-cheat verdict.",
		}, []string{"verdict"}),
		requiredClicks: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "round",
			Name:      "required_clicks",
			Help:      "Required click targets drawn for rounds.",
			Buckets:   prometheus.LinearBuckets(25, 25, 16),
		}),
		prizesLeft: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "prize",
			Name:      "remaining",
			Help:      "Prizes left in the pool.",
		}),
		prizeHeals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "prize",
			Name:      "counter_repairs_total",
			Help:      "Times the remaining counter was reset because no numbers were free.",
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "round",
			Name:      "active_sessions",
			Help:      "Round machines held in memory.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.roundsStarted,
		m.roundsFinished,
		m.clicks,
		m.requiredClicks,
		m.prizesLeft,
		m.prizeHeals,
		m.activeSessions,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveHTTP(method, route string, status int, seconds float64) {
	m.httpRequests.WithLabelValues(method, route, statusClass(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(seconds)
}

func (m *Metrics) RoundStarted(required int) {
	m.roundsStarted.Inc()
	m.requiredClicks.Observe(float64(required))
}

func (m *Metrics) RoundFinished(result string) {
	m.roundsFinished.WithLabelValues(result).Inc()
}

func (m *Metrics) Click(verdict string) {
	m.clicks.WithLabelValues(verdict).Inc()
}

func (m *Metrics) PrizesRemaining(n int) {
	m.prizesLeft.Set(float64(n))
}

func (m *Metrics) PrizeCounterRepaired() {
	m.prizeHeals.Inc()
}

func (m *Metrics) ActiveSessions(n int) {
	m.activeSessions.Set(float64(n))
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
