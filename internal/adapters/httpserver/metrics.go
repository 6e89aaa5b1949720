package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"energytrader/internal/ports"
)

// Settlement outcome label values.
const (
	outcomeCompleted           = "completed"
	outcomeUnknownUser         = "unknown_user"
	outcomeInvalidAmount       = "invalid_amount"
	outcomeInvalidPrice        = "invalid_price"
	outcomeSelfTrade           = "self_trade"
	outcomeFutureTimestamp     = "future_timestamp"
	outcomeInsufficientBalance = "insufficient_balance"
	outcomeInternal            = "internal"
)

// Metrics records settlement outcomes and HTTP request durations.
type Metrics struct {
	registry    *prometheus.Registry
	settlements *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// NewMetrics creates a Metrics instance with its own registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		settlements: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "energytrader_settlements_total",
			Help: "Settlement attempts by outcome",
		}, []string{"outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "energytrader_http_request_duration_seconds",
			Help:    "HTTP request duration by method, route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// Handler returns the /metrics endpoint handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordSettlement counts one settlement attempt by outcome.
func (m *Metrics) RecordSettlement(outcome string) {
	m.settlements.WithLabelValues(outcome).Inc()
}

// Middleware records request duration using the route pattern so path
// parameters don't explode label cardinality.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.duration.WithLabelValues(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}

// outcomeForError maps a settlement error kind to its counter label.
func outcomeForError(err error) string {
	switch {
	case errors.Is(err, ports.ErrUnknownUser):
		return outcomeUnknownUser
	case errors.Is(err, ports.ErrInvalidAmount):
		return outcomeInvalidAmount
	case errors.Is(err, ports.ErrInvalidPrice):
		return outcomeInvalidPrice
	case errors.Is(err, ports.ErrSelfTrade):
		return outcomeSelfTrade
	case errors.Is(err, ports.ErrFutureTimestamp):
		return outcomeFutureTimestamp
	case errors.Is(err, ports.ErrInsufficientBalance):
		return outcomeInsufficientBalance
	default:
		return outcomeInternal
	}
}
