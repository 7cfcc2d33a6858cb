// Package log provides the logger used across the SDK.
//
// It wraps zap's sugared logger behind a small interface so that packages can accept any logger.
package log

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the logging interface accepted by the SDK packages.
type Logger interface {
	Debug(args ...interface{})
	Debugf(template string, args ...interface{})
	Info(args ...interface{})
	Infof(template string, args ...interface{})
	Warning(args ...interface{})
	Warningf(template string, args ...interface{})
	Error(args ...interface{})
	Errorf(template string, args ...interface{})
	With(key string, value interface{}) Logger
	Sync() error
}

// DefaultLogger is a production logger at info level writing to stderr.
var DefaultLogger Logger = mustNewDefault()

// Config holds logger options.
type Config struct {
	// Level is one of debug, info, warn, error.
	Level string
	// Format is either json or console.
	Format string
}

type zapLogger struct {
	sugar *zap.SugaredLogger
}

// NewLogger creates a logger from the config.
func NewLogger(config Config) (Logger, error) {
	level := zapcore.InfoLevel
	if config.Level != "" {
		if err := level.UnmarshalText([]byte(config.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %s: %w", config.Level, err)
		}
	}
	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(level)
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	switch config.Format {
	case "", "json":
		zapConfig.Encoding = "json"
	case "console":
		zapConfig.Encoding = "console"
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	default:
		return nil, fmt.Errorf("invalid log format %s", config.Format)
	}
	logger, err := zapConfig.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return &zapLogger{sugar: logger.Sugar()}, nil
}

// NewDefaultProductionLogger returns json logger with info level.
func NewDefaultProductionLogger() (Logger, error) {
	return NewLogger(Config{Level: "info", Format: "json"})
}

// NewSilentLogger returns a logger which discards everything.
func NewSilentLogger() (Logger, error) {
	return &zapLogger{sugar: zap.NewNop().Sugar()}, nil
}

func mustNewDefault() Logger {
	logger, err := NewDefaultProductionLogger()
	if err != nil {
		panic(err)
	}
	return logger
}

func (l *zapLogger) Debug(args ...interface{})                   { l.sugar.Debug(args...) }
func (l *zapLogger) Debugf(template string, args ...interface{})   { l.sugar.Debugf(template, args...) }
func (l *zapLogger) Info(args ...interface{})                    { l.sugar.Info(args...) }
func (l *zapLogger) Infof(template string, args ...interface{})    { l.sugar.Infof(template, args...) }
func (l *zapLogger) Warning(args ...interface{})                 { l.sugar.Warn(args...) }
func (l *zapLogger) Warningf(template string, args ...interface{}) { l.sugar.Warnf(template, args...) }
func (l *zapLogger) Error(args ...interface{})                   { l.sugar.Error(args...) }
func (l *zapLogger) Errorf(template string, args ...interface{})   { l.sugar.Errorf(template, args...) }
func (l *zapLogger) Sync() error                                 { return l.sugar.Sync() }

func (l *zapLogger) With(key string, value interface{}) Logger {
	return &zapLogger{sugar: l.sugar.With(key, value)}
}
