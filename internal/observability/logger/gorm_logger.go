package logger

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

const maxLoggedSQL = 2048

var procedureCall = regexp.MustCompile(`(?i)\bFROM\s+([a-z_][a-z0-9_]*)\s*\(`)

// GormLoggerConfig configures the GORM zap logger.
type GormLoggerConfig struct {
	Level                gormlogger.LogLevel
	SlowThreshold        time.Duration
	IgnoreRecordNotFound bool
}

func DefaultGormLoggerConfig() GormLoggerConfig {
	return GormLoggerConfig{
		Level:                gormlogger.Warn,
		SlowThreshold:        200 * time.Millisecond,
		IgnoreRecordNotFound: true,
	}
}

// GormLogger routes GORM output through the request-scoped zap logger, so
// query lines carry the request, company and user ids of the caller.
// Bound parameters are never logged.
type GormLogger struct {
	cfg GormLoggerConfig
}

func NewGormLogger(cfg GormLoggerConfig) *GormLogger {
	return &GormLogger{cfg: cfg}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	next := *l
	next.cfg.Level = level
	return &next
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	l.message(ctx, gormlogger.Info, zapcore.InfoLevel, msg, data)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.message(ctx, gormlogger.Warn, zapcore.WarnLevel, msg, data)
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.message(ctx, gormlogger.Error, zapcore.ErrorLevel, msg, data)
}

func (l *GormLogger) message(ctx context.Context, threshold gormlogger.LogLevel, level zapcore.Level, msg string, data []interface{}) {
	if l.cfg.Level < threshold {
		return
	}
	if len(data) > 0 {
		msg = fmt.Sprintf(msg, data...)
	}
	if ce := FromContext(ctx).Check(level, msg); ce != nil {
		ce.Write(zap.String("component", "gorm"))
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	level, ok := l.traceLevel(elapsed, err)
	if !ok {
		return
	}

	sql, rows := fc()
	fields := queryFields(sql, rows, elapsed)
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	if level == zapcore.WarnLevel {
		fields = append(fields, zap.Bool("slow", true))
	}
	if ce := FromContext(ctx).Check(level, "db.query"); ce != nil {
		ce.Write(fields...)
	}
}

// traceLevel decides whether a finished statement is logged and at which
// level: failures first, then slow statements, then everything at debug.
func (l *GormLogger) traceLevel(elapsed time.Duration, err error) (zapcore.Level, bool) {
	if l.cfg.Level <= gormlogger.Silent {
		return 0, false
	}
	if err != nil && !(l.cfg.IgnoreRecordNotFound && errors.Is(err, gormlogger.ErrRecordNotFound)) {
		return zapcore.ErrorLevel, l.cfg.Level >= gormlogger.Error
	}
	if l.cfg.SlowThreshold > 0 && elapsed > l.cfg.SlowThreshold && l.cfg.Level >= gormlogger.Warn {
		return zapcore.WarnLevel, true
	}
	return zapcore.DebugLevel, l.cfg.Level >= gormlogger.Info
}

// ParamsFilter drops bound values; statements are logged with placeholders.
func (l *GormLogger) ParamsFilter(_ context.Context, sql string, _ ...interface{}) (string, []interface{}) {
	return sql, nil
}

func queryFields(sql string, rows int64, elapsed time.Duration) []zap.Field {
	sql = strings.Join(strings.Fields(sql), " ")
	op := statementKind(sql)

	fields := make([]zap.Field, 0, 7)
	fields = append(fields,
		zap.String("component", "gorm"),
		zap.String("operation", op),
		zap.Int64("duration_ms", elapsed.Milliseconds()),
	)
	if op == "SELECT" {
		if m := procedureCall.FindStringSubmatch(sql); m != nil {
			fields = append(fields, zap.String("procedure", strings.ToLower(m[1])))
		}
	}
	if len(sql) > maxLoggedSQL {
		sql = sql[:maxLoggedSQL] + "..."
	}
	fields = append(fields, zap.String("sql", sql))
	if rows >= 0 {
		fields = append(fields, zap.Int64("rows_affected", rows))
	}
	return fields
}

// statementKind returns the leading top-level DML verb. Parenthesized
// text, such as CTE bodies and subqueries, is skipped.
func statementKind(sql string) string {
	var top strings.Builder
	depth := 0
	for _, r := range sql {
		switch {
		case r == '(':
			depth++
			top.WriteByte(' ')
		case r == ')':
			if depth > 0 {
				depth--
			}
			top.WriteByte(' ')
		case depth == 0:
			top.WriteRune(r)
		}
	}
	for _, token := range strings.Fields(strings.ToUpper(top.String())) {
		switch token {
		case "SELECT", "INSERT", "UPDATE", "DELETE", "MERGE":
			return token
		}
	}
	return "UNKNOWN"
}

var _ gormlogger.Interface = (*GormLogger)(nil)
