// Package obslog provides the structured logger used across the
// forecasting engine. It wraps zap.SugaredLogger with region/component
// tagging so every diagnostic line on the error stream names the region
// and component that produced it, per the error-handling design.
package obslog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.SugaredLogger for application-wide logging.
type Logger struct {
	*zap.SugaredLogger
}

// New creates a logger with the specified level. development selects a
// human-readable console encoder; otherwise a production JSON encoder is
// used, matching the way downstream tooling consumes forecaster logs.
func New(level string, development bool) (*Logger, error) {
	var config zap.Config

	if development {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
		config.Encoding = "json"
	}

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)

	base, err := config.Build(
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	if err != nil {
		return nil, err
	}

	return &Logger{SugaredLogger: base.Sugar()}, nil
}

// NewProduction creates a production logger (JSON, info level), the
// default for the CLI's non-debug runs.
func NewProduction() (*Logger, error) {
	return New("info", false)
}

// NewDevelopment creates a development logger (console, debug level).
func NewDevelopment() (*Logger, error) {
	return New("debug", true)
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	return l.SugaredLogger.Sync()
}

// WithRegion returns a logger tagged with the region under forecast.
func (l *Logger) WithRegion(region string) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With("region", region)}
}

// WithComponent returns a logger tagged with the producing component
// (e.g. "climate", "clidengo", "sarimax", "assemble").
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With("component", component)}
}

// WithError returns a logger with an error field attached.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With("error", err.Error())}
}
