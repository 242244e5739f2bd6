package metrics

import (
	"context"
	"strconv"
	"time"

	apperrors "volunteer-hub/internal/shared/errors"
	"volunteer-hub/internal/shared/eventbus"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "volunteer_hub"

// Metrics owns a private registry so that several instances can coexist in tests.
type Metrics struct {
	Registry *prometheus.Registry

	httpInFlight prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	domainEvents *prometheus.CounterVec
}

// New registers the HTTP and domain collectors plus the Go runtime collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
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
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		}, []string{"method", "route"}),
		domainEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "domain",
			Name:      "events_total",
			Help:      "Domain events published, by type.",
		}, []string{"type"}),
	}
	m.Registry.MustRegister(
		m.httpInFlight, m.httpRequests, m.httpDuration, m.domainEvents,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Middleware records request count and latency labelled by the matched route
// template, not the raw path.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = apperrors.HTTPStatus(err)
			}
		}
		route := c.Route().Path
		method := c.Method()
		m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
}

// ObserveEvents counts every event published on the bus.
func (m *Metrics) ObserveEvents(bus *eventbus.EventBus) {
	bus.Subscribe(eventbus.Wildcard, func(ctx context.Context, event eventbus.Event) error {
		m.domainEvents.WithLabelValues(event.Type).Inc()
		return nil
	})
}

// EventCount returns the counter value for an event type.
func (m *Metrics) EventCount(eventType string) prometheus.Counter {
	return m.domainEvents.WithLabelValues(eventType)
}

// RequestCount returns the request counter for a label set.
func (m *Metrics) RequestCount(method, route, status string) prometheus.Counter {
	return m.httpRequests.WithLabelValues(method, route, status)
}
