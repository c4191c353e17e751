package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for pricing observations.
const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
)

// Collector exposes Prometheus metrics for pricing requests and the HTTP
// adapter on a private registry.
type Collector struct {
	registry        *prometheus.Registry
	pricingTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
}

// NewCollector constructs a collector with default histograms/counters.
func NewCollector() (*Collector, error) {
	registry := prometheus.NewRegistry()

	pricingTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "optionpricer",
		Subsystem: "pricing",
		Name:      "requests_total",
		Help:      "Pricing requests by source and outcome.",
	}, []string{"source", "outcome"})

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "optionpricer",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency distribution for inbound HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "optionpricer",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of inbound HTTP requests.",
	}, []string{"method", "path", "status"})

	for _, c := range []prometheus.Collector{pricingTotal, requestDuration, requestTotal} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return &Collector{
		registry:        registry,
		pricingTotal:    pricingTotal,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
	}, nil
}

// ObservePricing counts one pricing attempt from source ("rest", "batch", ...).
func (c *Collector) ObservePricing(source, outcome string) {
	c.pricingTotal.WithLabelValues(source, outcome).Inc()
}

// Registry returns the underlying registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// PricingCounter returns the pricing counter, mainly for tests.
func (c *Collector) PricingCounter() *prometheus.CounterVec {
	return c.pricingTotal
}

// Handler returns an HTTP handler for exposing Prometheus metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// GinMiddleware records method, route template and status of every request.
func (c *Collector) GinMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		ctx.Next()

		path := ctx.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(ctx.Writer.Status())

		c.requestTotal.WithLabelValues(ctx.Request.Method, path, status).Inc()
		c.requestDuration.WithLabelValues(ctx.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}
