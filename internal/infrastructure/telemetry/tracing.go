package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of spans started by the service layer
const TracerName = "github.com/inventa/backend"

// StartSpan starts an internal span from the global provider, so it is a
// no-op until tracing is set up. The caller must End the span.
//
//	ctx, span := telemetry.StartSpan(ctx, "audit.products.update", telemetry.AttrAuditTable.String("products"))
//	defer span.End()
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// ID is an id attribute; OpenTelemetry has no unsigned integer type
func ID(key attribute.Key, id uint64) attribute.KeyValue {
	return key.Int64(int64(id))
}

// Fail records err on span and marks it failed. A nil err is ignored.
func Fail(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
