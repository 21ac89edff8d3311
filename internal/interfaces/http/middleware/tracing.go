package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys set by AnnotateSpan
const (
	SpanAttrRequestID  = attribute.Key("inventa.request_id")
	SpanAttrActorID    = attribute.Key("inventa.actor_id")
	SpanAttrReplayed   = attribute.Key("inventa.idempotent_replay")
	SpanAttrStatusCode = attribute.Key("http.response.status_code")
)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// Tracing starts one server span per request via otelgin, named
// "METHOD route" (e.g. "GET /api/v1/products/:id"). Disabled, it is a no-op.
func Tracing(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return otelgin.Middleware(cfg.ServiceName)
}

// AnnotateSpan decorates the request span once the rest of the chain has run:
// request id, resolved actor, idempotent replays, and an error status for
// any 4xx/5xx. Place it directly after Tracing.
func AnnotateSpan() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}

		attrs := make([]attribute.KeyValue, 0, 4)
		if id := GetRequestID(c); id != "" {
			attrs = append(attrs, SpanAttrRequestID.String(id))
		}
		if actor := GetActorID(c); actor != nil {
			attrs = append(attrs, SpanAttrActorID.String(strconv.FormatUint(*actor, 10)))
		}
		if c.Writer.Header().Get(IdempotentReplayHeader) == "true" {
			attrs = append(attrs, SpanAttrReplayed.Bool(true))
		}

		if status := c.Writer.Status(); status >= http.StatusBadRequest {
			attrs = append(attrs, SpanAttrStatusCode.Int(status))
			span.SetStatus(codes.Error, http.StatusText(status))
		}
		span.SetAttributes(attrs...)
	}
}
