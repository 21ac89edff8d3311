package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// GormOption configures a GormLogger
type GormOption func(*GormLogger)

// WithExpectedErrors marks errors the repositories turn into user-facing
// results (unique-index conflicts). They are logged at warn instead of error.
func WithExpectedErrors(expected func(error) bool) GormOption {
	return func(l *GormLogger) { l.expected = expected }
}

// WithSlowThreshold sets the duration after which a statement is reported as slow
func WithSlowThreshold(d time.Duration) GormOption {
	return func(l *GormLogger) { l.slowThreshold = d }
}

// GormLogger adapts zap to gorm's logger.Interface.
// Statements run inside a request are logged through the request's logger,
// so they carry its request, actor and trace fields.
type GormLogger struct {
	base          *zap.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
	expected      func(error) bool
}

// NewGormLogger creates a gorm logger writing to base
func NewGormLogger(base *zap.Logger, level gormlogger.LogLevel, opts ...GormOption) *GormLogger {
	l := &GormLogger{base: base.Named("gorm"), level: level}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Info {
		l.forContext(ctx).Sugar().Infof(msg, data...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Warn {
		l.forContext(ctx).Sugar().Warnf(msg, data...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Error {
		l.forContext(ctx).Sugar().Errorf(msg, data...)
	}
}

// Trace reports one statement. Missing rows are a normal lookup result and
// are not logged.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= gormlogger.Silent || errors.Is(err, gormlogger.ErrRecordNotFound) {
		return
	}

	elapsed := time.Since(begin)
	slow := l.slowThreshold > 0 && elapsed > l.slowThreshold
	expected := err != nil && l.expected != nil && l.expected(err)

	var (
		log func(string, ...zap.Field)
		msg string
	)
	switch {
	case err != nil && !expected && l.level >= gormlogger.Error:
		log, msg = l.forContext(ctx).Error, "SQL Error"
	case (expected || slow) && l.level >= gormlogger.Warn:
		log, msg = l.forContext(ctx).Warn, "SQL Warning"
		if !expected {
			msg = "Slow SQL"
		}
	case err == nil && l.level >= gormlogger.Info:
		log, msg = l.forContext(ctx).Debug, "SQL Query"
	default:
		return
	}

	sql, rows := fc()
	fields := []zap.Field{
		zap.String("sql", sql),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	}
	if slow {
		fields = append(fields, zap.Duration("threshold", l.slowThreshold))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	log(msg, fields...)
}

// forContext prefers the request logger stored by AccessLog
func (l *GormLogger) forContext(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return l.base
	}
	if _, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return L(ctx).Zap().Named("gorm")
	}
	if requestID := GetRequestID(ctx); requestID != "" {
		return l.base.With(zap.String("request_id", requestID))
	}
	return l.base
}

// MapGormLogLevel maps the database.log_level setting to a gorm level
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
