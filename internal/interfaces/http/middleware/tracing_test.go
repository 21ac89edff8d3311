package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inventa/backend/internal/infrastructure/auth"
	"github.com/inventa/backend/internal/infrastructure/cache"
	"github.com/inventa/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

// recordSpans installs a recording tracer provider for the duration of t
func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
		otel.SetTracerProvider(previous)
	})
	return sr
}

// onlySpan returns the single ended span, failing if there are more or none
func onlySpan(t *testing.T, sr *tracetest.SpanRecorder) sdktrace.ReadOnlySpan {
	t.Helper()
	ended := sr.Ended()
	require.Len(t, ended, 1)
	return ended[0]
}

func attrsOf(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value, len(span.Attributes()))
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

var enabledTracing = TracingConfig{Enabled: true, ServiceName: "inventa-test"}

func TestTracing_DisabledRecordsNothing(t *testing.T) {
	sr := recordSpans(t)

	r := gin.New()
	r.Use(Tracing(TracingConfig{}), AnnotateSpan())
	r.GET("/products", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sr.Ended())
}

func TestAnnotateSpan_RequestAndActor(t *testing.T) {
	sr := recordSpans(t)
	resolver := auth.NewActorResolver(config.JWTConfig{Secret: "test-secret-key-at-least-32-chars"})
	token, err := resolver.IssueToken(9, time.Minute)
	require.NoError(t, err)

	r := gin.New()
	r.Use(RequestID(), Tracing(enabledTracing), AnnotateSpan(), Actor(resolver, nil))
	r.GET("/products/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/products/5", nil)
	req.Header.Set(RequestIDHeader, "req-abc")
	req.Header.Set(AuthHeaderKey, "Bearer "+token)
	r.ServeHTTP(httptest.NewRecorder(), req)

	span := onlySpan(t, sr)
	assert.Equal(t, "GET /products/:id", span.Name())
	assert.Equal(t, codes.Unset, span.Status().Code)

	attrs := attrsOf(span)
	assert.Equal(t, "req-abc", attrs[SpanAttrRequestID].AsString())
	assert.Equal(t, "9", attrs[SpanAttrActorID].AsString())
	assert.NotContains(t, attrs, SpanAttrReplayed)
}

func TestAnnotateSpan_ErrorStatus(t *testing.T) {
	tests := []struct {
		status int
		code   codes.Code
	}{
		{http.StatusOK, codes.Unset},
		{http.StatusCreated, codes.Unset},
		{http.StatusNotFound, codes.Error},
		{http.StatusUnprocessableEntity, codes.Error},
		{http.StatusInternalServerError, codes.Error},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			sr := recordSpans(t)
			r := gin.New()
			r.Use(Tracing(enabledTracing), AnnotateSpan())
			r.GET("/products", func(c *gin.Context) { c.Status(tt.status) })

			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/products", nil))

			span := onlySpan(t, sr)
			assert.Equal(t, tt.code, span.Status().Code)
			if tt.status >= 400 && tt.status < 500 {
				assert.Equal(t, http.StatusText(tt.status), span.Status().Description)
			}
			if tt.code == codes.Error {
				assert.Equal(t, int64(tt.status), attrsOf(span)[SpanAttrStatusCode].AsInt64())
			}
		})
	}
}

func TestAnnotateSpan_UnauthorizedActor(t *testing.T) {
	sr := recordSpans(t)
	resolver := auth.NewActorResolver(config.JWTConfig{Secret: "test-secret-key-at-least-32-chars"})

	r := gin.New()
	r.Use(Tracing(enabledTracing), AnnotateSpan(), Actor(resolver, nil))
	r.GET("/products", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set(AuthHeaderKey, "Bearer not-a-token")
	r.ServeHTTP(httptest.NewRecorder(), req)

	span := onlySpan(t, sr)
	assert.Equal(t, codes.Error, span.Status().Code)
	assert.NotContains(t, attrsOf(span), SpanAttrActorID)
}

func TestAnnotateSpan_MarksIdempotentReplay(t *testing.T) {
	sr := recordSpans(t)
	store := cache.NewMemoryStore(time.Minute)
	t.Cleanup(func() { _ = store.Close() })

	r := gin.New()
	r.Use(Tracing(enabledTracing), AnnotateSpan(), Idempotency(store, time.Minute, zap.NewNop()))
	r.POST("/products", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"id": 1})
	})

	send := func() {
		req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(`{"name":"Widget"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(IdempotencyKeyHeader, "create-widget")
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	send()
	send()

	ended := sr.Ended()
	require.Len(t, ended, 2)
	assert.NotContains(t, attrsOf(ended[0]), SpanAttrReplayed)
	assert.True(t, attrsOf(ended[1])[SpanAttrReplayed].AsBool())
}

func TestAnnotateSpan_WithoutTracing(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), AnnotateSpan())
	r.GET("/products", func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
