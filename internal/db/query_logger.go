package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/vikasavnish/mandacarubroker/internal/utils"
)

const slowQueryThreshold = 100 * time.Millisecond

// QueryLogger implements gorm's logger.Interface on top of zerolog
type QueryLogger struct {
	logger zerolog.Logger
	level  gormlogger.LogLevel
}

// NewQueryLogger creates a new query logger
func NewQueryLogger(logger zerolog.Logger) *QueryLogger {
	return &QueryLogger{
		logger: logger,
		level:  gormlogger.Warn,
	}
}

func (ql *QueryLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *ql
	clone.level = level
	return &clone
}

func (ql *QueryLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if ql.level >= gormlogger.Info {
		ql.withRequest(ctx, ql.logger.Info()).Msg(fmt.Sprintf(msg, args...))
	}
}

func (ql *QueryLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if ql.level >= gormlogger.Warn {
		ql.withRequest(ctx, ql.logger.Warn()).Msg(fmt.Sprintf(msg, args...))
	}
}

func (ql *QueryLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if ql.level >= gormlogger.Error {
		ql.withRequest(ctx, ql.logger.Error()).Msg(fmt.Sprintf(msg, args...))
	}
}

// Trace is called by gorm after every statement
func (ql *QueryLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if ql.level <= gormlogger.Silent {
		return
	}

	duration := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && ql.level >= gormlogger.Error:
		ql.withRequest(ctx, ql.logger.Error()).
			Err(err).
			Str("sql", sql).
			Int64("rows", rows).
			Int64("duration_ms", duration.Milliseconds()).
			Msg("Query failed")
	case duration > slowQueryThreshold && ql.level >= gormlogger.Warn:
		ql.withRequest(ctx, ql.logger.Warn()).
			Str("sql", sql).
			Int64("rows", rows).
			Int64("duration_ms", duration.Milliseconds()).
			Msg("Slow query detected")
	case ql.level >= gormlogger.Info:
		ql.withRequest(ctx, ql.logger.Debug()).
			Str("sql", sql).
			Int64("rows", rows).
			Int64("duration_ms", duration.Milliseconds()).
			Msg("Query executed")
	}
}

func (ql *QueryLogger) withRequest(ctx context.Context, event *zerolog.Event) *zerolog.Event {
	if requestID := utils.GetRequestIDFromContext(ctx); requestID != "" {
		event = event.Str("request_id", requestID)
	}
	return event
}
