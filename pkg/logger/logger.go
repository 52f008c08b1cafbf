// Package logger provides structured logging for the AccuNode client.
// The concrete implementation is zap; everything else in the module depends
// only on the Logger interface so tests can pass a nop logger.
package logger

import (
	"context"
	"strings"

	"github.com/accunode/accunode-go/pkg/constants"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Fields is a bag of structured key-value pairs attached to a log entry.
type Fields map[string]interface{}

// Logger is the logging interface used across the module.
type Logger interface {
	// Debug logs a debug message
	Debug(ctx context.Context, msg string, fields ...Fields)

	// Info logs an informational message
	Info(ctx context.Context, msg string, fields ...Fields)

	// Warn logs a warning message
	Warn(ctx context.Context, msg string, fields ...Fields)

	// Error logs an error message
	Error(ctx context.Context, msg string, err error, fields ...Fields)

	// WithFields returns a logger with additional base fields
	WithFields(fields Fields) Logger

	// WithComponent returns a logger tagged for a specific component
	WithComponent(component string) Logger
}

type zapLogger struct {
	*zap.Logger
}

// NewZapLogger builds the production logger: JSON encoding, ISO-8601
// timestamps, stderr-free stdout output.
func NewZapLogger(level string) (Logger, error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig = encoderConfig
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	zl, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &zapLogger{zl}, nil
}

func (l *zapLogger) Debug(ctx context.Context, msg string, fields ...Fields) {
	l.Logger.Debug(msg, l.convertFields(ctx, fields...)...)
}

func (l *zapLogger) Info(ctx context.Context, msg string, fields ...Fields) {
	l.Logger.Info(msg, l.convertFields(ctx, fields...)...)
}

func (l *zapLogger) Warn(ctx context.Context, msg string, fields ...Fields) {
	l.Logger.Warn(msg, l.convertFields(ctx, fields...)...)
}

func (l *zapLogger) Error(ctx context.Context, msg string, err error, fields ...Fields) {
	zf := l.convertFields(ctx, fields...)
	if err != nil {
		zf = append(zf, zap.Error(err))
	}
	l.Logger.Error(msg, zf...)
}

func (l *zapLogger) WithFields(fields Fields) Logger {
	return &zapLogger{l.Logger.With(l.convertFields(context.Background(), fields)...)}
}

func (l *zapLogger) WithComponent(component string) Logger {
	return &zapLogger{l.Logger.With(zap.String("component", component))}
}

func (l *zapLogger) convertFields(ctx context.Context, fields ...Fields) []zap.Field {
	zapFields := make([]zap.Field, 0)
	if ctx != nil {
		if requestID, ok := ctx.Value(constants.ContextKeyRequestID).(string); ok {
			zapFields = append(zapFields, zap.String("request_id", requestID))
		}
		if userID, ok := ctx.Value(constants.ContextKeyUserID).(string); ok {
			zapFields = append(zapFields, zap.String("user_id", userID))
		}
	}
	for _, f := range fields {
		for k, v := range f {
			zapFields = append(zapFields, zap.Any(k, sanitizeValue(k, v)))
		}
	}
	return zapFields
}

// sensitiveKeys lists field keys whose values are masked before logging.
var sensitiveKeys = []string{
	"password",
	"secret",
	"token",
	"authorization",
	"refresh_token",
	"access_token",
}

func sanitizeValue(key string, value interface{}) interface{} {
	keyLower := strings.ToLower(key)
	for _, sensitive := range sensitiveKeys {
		if strings.Contains(keyLower, sensitive) {
			if str, ok := value.(string); ok && len(str) > 0 {
				return maskString(str)
			}
			return "***REDACTED***"
		}
	}
	return value
}

func maskString(s string) string {
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "***" + s[len(s)-4:]
}
