package logger

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// AccessLogOption configures AccessLog
type AccessLogOption func(*accessLog)

// SkipPaths suppresses the access entry for successful requests to paths,
// e.g. a health endpoint polled by the orchestrator. Failures still log.
func SkipPaths(paths ...string) AccessLogOption {
	return func(a *accessLog) { a.skip = append(a.skip, paths...) }
}

type accessLog struct {
	base *zap.Logger
	skip []string
}

// AccessLog writes one entry per request and stores a request-scoped logger
// in the request context, so handlers and services can use L(ctx).
// It must run after the request ID middleware.
func AccessLog(base *zap.Logger, opts ...AccessLogOption) gin.HandlerFunc {
	a := &accessLog{base: base}
	for _, opt := range opts {
		opt(a)
	}
	return a.handle
}

func (a *accessLog) handle(c *gin.Context) {
	start := time.Now()
	req := c.Request
	scoped := a.base.With(zap.String("method", req.Method), zap.String("path", req.URL.Path))
	c.Request = req.WithContext(WithContext(req.Context(), scoped))

	c.Next()

	status := c.Writer.Status()
	if status < http.StatusBadRequest && slices.Contains(a.skip, req.URL.Path) {
		return
	}

	fields := []zap.Field{
		zap.Int("status", status),
		zap.Duration("latency", time.Since(start)),
		zap.String("client_ip", c.ClientIP()),
		zap.Int("body_size", c.Writer.Size()),
	}
	if route := c.FullPath(); route != "" {
		fields = append(fields, zap.String("route", route))
	}
	if req.URL.RawQuery != "" {
		fields = append(fields, zap.String("query", req.URL.RawQuery))
	}
	if len(c.Errors) > 0 {
		fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
	}

	if ce := L(c.Request.Context()).Zap().Check(statusLevel(status), "HTTP Request"); ce != nil {
		ce.Write(fields...)
	}
}

func statusLevel(status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

// Recovery turns a handler panic into a logged 500. Entries carry the
// request id when RequestID ran first.
func Recovery(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}
			L(WithContext(c.Request.Context(), base)).Error("Panic recovered",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Any("panic", recovered),
				zap.Stack("stacktrace"),
			)
			c.AbortWithStatus(http.StatusInternalServerError)
		}()
		c.Next()
	}
}
