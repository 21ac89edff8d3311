package middleware

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inventa/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/metric"
)

// routeUnmatched labels requests that matched no route
const routeUnmatched = "unmatched"

type httpMetrics struct {
	requests metric.Int64Counter
	latency  metric.Float64Histogram
	inFlight metric.Int64UpDownCounter
}

func newHTTPMetrics(meter metric.Meter) (*httpMetrics, error) {
	var m httpMetrics
	var errs [3]error
	m.requests, errs[0] = meter.Int64Counter("http_server_request_total",
		metric.WithDescription("HTTP requests by method, route and status"),
		metric.WithUnit("{request}"))
	m.latency, errs[1] = telemetry.SecondsHistogram(meter, "http_server_request_duration_seconds",
		"HTTP request latency by method and route", telemetry.HTTPDurationBuckets)
	m.inFlight, errs[2] = meter.Int64UpDownCounter("http_server_active_requests",
		metric.WithDescription("HTTP requests currently being served"),
		metric.WithUnit("{request}"))
	if err := errors.Join(errs[:]...); err != nil {
		return nil, err
	}
	return &m, nil
}

// HTTPMetrics records request count, latency and in-flight requests.
// It is a pass-through when mp is nil or disabled.
func HTTPMetrics(mp *telemetry.MeterProvider) gin.HandlerFunc {
	if !mp.IsEnabled() {
		return func(c *gin.Context) { c.Next() }
	}
	return HTTPMetricsWithMeter(mp.Meter("http.server"))
}

// HTTPMetricsWithMeter records HTTP metrics on meter. Requests are labelled
// with the route template, never the raw path, to bound cardinality.
func HTTPMetricsWithMeter(meter metric.Meter) gin.HandlerFunc {
	m, err := newHTTPMetrics(meter)
	if err != nil {
		return func(c *gin.Context) { c.Next() }
	}
	return m.handle
}

func (m *httpMetrics) handle(c *gin.Context) {
	ctx := c.Request.Context()
	start := time.Now()
	m.inFlight.Add(ctx, 1)
	defer m.inFlight.Add(ctx, -1)

	c.Next()

	route := c.FullPath()
	if route == "" {
		route = routeUnmatched
	}
	method := telemetry.AttrHTTPMethod.String(c.Request.Method)
	routeAttr := telemetry.AttrHTTPRoute.String(route)

	m.requests.Add(ctx, 1, metric.WithAttributes(method, routeAttr,
		telemetry.AttrHTTPStatusCode.Int(c.Writer.Status())))
	m.latency.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(method, routeAttr))
}
