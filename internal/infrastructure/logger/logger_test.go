package logger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestNew(t *testing.T) {
	t.Run("console logger", func(t *testing.T) {
		l, err := New(DefaultConfig())
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
		assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("json logger writing to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		l, err := New(Config{Level: "debug", Format: "json", Output: path})
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("unwritable file fails", func(t *testing.T) {
		_, err := New(Config{Output: filepath.Join(t.TempDir(), "missing", "app.log")})
		assert.Error(t, err)
	})
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("nonsense"))
}

func TestContextLogger(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	ctx := WithContext(context.Background(), zap.New(core))
	ctx = WithRequestID(ctx, "req-1")
	ctx = WithActorID(ctx, 9)

	L(ctx).With(zap.String("component", "test")).Info("hello")

	require.Equal(t, 1, recorded.Len())
	fields := recorded.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, uint64(9), fields["actor_id"])
	assert.Equal(t, "test", fields["component"])
}

func TestFromContext_DefaultsToNop(t *testing.T) {
	l := FromContext(context.Background())
	require.NotNil(t, l)
	_, ok := GetActorID(context.Background())
	assert.False(t, ok)
}

func TestAccessLog(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	r := gin.New()
	r.Use(AccessLog(base, SkipPaths("/health")), Recovery(base))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/products/:id", func(c *gin.Context) {
		L(c.Request.Context()).Info("inside handler")
		c.Status(http.StatusOK)
	})
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	for _, path := range []string{"/health", "/products/4?page=2", "/missing", "/panic"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	access := recorded.FilterMessage("HTTP Request").All()
	require.Len(t, access, 3)
	assert.Equal(t, zapcore.InfoLevel, access[0].Level)
	assert.Equal(t, zapcore.WarnLevel, access[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, access[2].Level)

	first := access[0].ContextMap()
	assert.Equal(t, "/products/:id", first["route"])
	assert.Equal(t, "/products/4", first["path"])
	assert.Equal(t, "page=2", first["query"])
	assert.Equal(t, int64(http.StatusInternalServerError), access[2].ContextMap()["status"])

	assert.Equal(t, "inside handler", recorded.All()[0].Message)
	assert.Equal(t, 1, recorded.FilterMessage("Panic recovered").Len())
}

func TestAccessLog_SkippedPathStillLogsFailures(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.InfoLevel)

	r := gin.New()
	r.Use(AccessLog(zap.New(core), SkipPaths("/health")))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusServiceUnavailable) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, 1, recorded.FilterMessage("HTTP Request").Len())
}

var errDuplicate = errors.New("UNIQUE constraint failed: products.name")

func TestGormLogger_Trace(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Info,
		WithSlowThreshold(10*time.Millisecond),
		WithExpectedErrors(func(err error) bool { return errors.Is(err, errDuplicate) }),
	)
	sql := func() (string, int64) { return "SELECT * FROM products", 1 }

	gl.Trace(context.Background(), time.Now(), sql, nil)
	gl.Trace(context.Background(), time.Now(), sql, gormlogger.ErrRecordNotFound)
	gl.Trace(context.Background(), time.Now(), sql, errors.New("syntax error"))
	gl.Trace(context.Background(), time.Now(), sql, errDuplicate)
	gl.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)

	assert.Equal(t, 1, recorded.FilterMessage("SQL Query").Len())
	assert.Equal(t, 1, recorded.FilterMessage("SQL Error").Len())
	require.Equal(t, 1, recorded.FilterMessage("SQL Warning").Len())
	assert.Equal(t, zapcore.WarnLevel, recorded.FilterMessage("SQL Warning").All()[0].Level)
	assert.Equal(t, 1, recorded.FilterMessage("Slow SQL").Len())

	silent := gl.LogMode(gormlogger.Silent)
	silent.Trace(context.Background(), time.Now(), sql, errors.New("ignored"))
	assert.Equal(t, 4, recorded.Len())
}

func TestGormLogger_UsesRequestLogger(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.NewNop(), gormlogger.Warn)

	ctx := WithContext(context.Background(), zap.New(core))
	ctx = WithRequestID(ctx, "req-7")
	ctx = WithActorID(ctx, 3)
	gl.Trace(ctx, time.Now(), func() (string, int64) { return "INSERT INTO audits", 0 }, errors.New("disk full"))

	require.Equal(t, 1, recorded.Len())
	fields := recorded.All()[0].ContextMap()
	assert.Equal(t, "req-7", fields["request_id"])
	assert.Equal(t, uint64(3), fields["actor_id"])
	assert.Equal(t, "INSERT INTO audits", fields["sql"])
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel(""))
}
