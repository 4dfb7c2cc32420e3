package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouteCollector bundles Prometheus metrics for the route API surface and
// provides helpers to wire them into the gin router.
type RouteCollector struct {
	gatherer prometheus.Gatherer

	HTTPRequests  *prometheus.CounterVec
	HTTPDurations *prometheus.HistogramVec

	SolvesTotal   *prometheus.CounterVec
	SolveDuration prometheus.Histogram

	WaypointCount prometheus.Gauge
	RingSize      prometheus.Gauge
}

// NewRouteCollector registers route metrics against the provided registerer,
// defaulting to the global Prometheus registry when nil.
func NewRouteCollector(reg prometheus.Registerer) (*RouteCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "e6b_http_requests_total",
		Help: "Total number of handled HTTP requests, labeled by route, method, and status code.",
	}, []string{"route", "method", "status"})
	requests, err := registerCounterVec(reg, requests, "e6b_http_requests_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "e6b_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"route", "method"})
	durations, err = registerHistogramVec(reg, durations, "e6b_http_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	solves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "e6b_route_solves_total",
		Help: "Total number of route solve attempts, labeled by outcome.",
	}, []string{"outcome"})
	solves, err = registerCounterVec(reg, solves, "e6b_route_solves_total")
	if err != nil {
		return nil, err
	}

	solveDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "e6b_route_solve_duration_seconds",
		Help:    "Duration of route solve computations.",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	})
	solveDuration, err = registerHistogram(reg, solveDuration, "e6b_route_solve_duration_seconds")
	if err != nil {
		return nil, err
	}

	waypoints, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "e6b_waypoints",
		Help: "Current number of waypoints in the knowledge base.",
	}), "e6b_waypoints")
	if err != nil {
		return nil, err
	}
	ringSize, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "e6b_ring_size",
		Help: "Configured ring size N.",
	}), "e6b_ring_size")
	if err != nil {
		return nil, err
	}

	return &RouteCollector{
		gatherer:      gatherer,
		HTTPRequests:  requests,
		HTTPDurations: durations,
		SolvesTotal:   solves,
		SolveDuration: solveDuration,
		WaypointCount: waypoints,
		RingSize:      ringSize,
	}, nil
}

// GinMiddleware records request counts and durations for every handled route.
func (c *RouteCollector) GinMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		if c == nil {
			return
		}

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(ctx.Writer.Status())

		if c.HTTPRequests != nil {
			c.HTTPRequests.WithLabelValues(route, ctx.Request.Method, status).Inc()
		}
		if c.HTTPDurations != nil {
			c.HTTPDurations.WithLabelValues(route, ctx.Request.Method).Observe(time.Since(start).Seconds())
		}
	}
}

// RecordSolve satisfies the planner's metrics recorder interface so solve
// outcomes and durations are driven directly from the service.
func (c *RouteCollector) RecordSolve(outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	if c.SolvesTotal != nil {
		c.SolvesTotal.WithLabelValues(outcome).Inc()
	}
	if c.SolveDuration != nil {
		c.SolveDuration.Observe(elapsed.Seconds())
	}
}

// SetWaypointCount drives the waypoint gauge from the knowledge base.
func (c *RouteCollector) SetWaypointCount(n int) {
	if c == nil || c.WaypointCount == nil {
		return
	}
	c.WaypointCount.Set(float64(n))
}

// SetRingSize records the configured ring size.
func (c *RouteCollector) SetRingSize(n int) {
	if c == nil || c.RingSize == nil {
		return
	}
	c.RingSize.Set(float64(n))
}

// Handler exposes a ready-to-use /metrics handler.
func (c *RouteCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
