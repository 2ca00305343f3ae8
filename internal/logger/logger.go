package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps zap with printf-style leveled methods.
type Logger struct {
	zapLogger *zap.Logger
}

var defaultLogger = mustNew("info", "")

// Init replaces the default logger, optionally writing to a rotated file.
func Init(level, file string) {
	defaultLogger.Sync()
	defaultLogger = mustNew(level, file)
}

func mustNew(level, file string) *Logger {
	l, err := New(level, file)
	if err != nil {
		panic(fmt.Sprintf("logger init: %v", err))
	}
	return l
}

// New builds a logger at the given level. When file is non-empty, output
// goes to that path with lumberjack rotation instead of stderr.
func New(level, file string) (*Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	if file != "" {
		rotated := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    100, // MB
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		encoder := zapcore.NewJSONEncoder(cfg.EncoderConfig)
		core := zapcore.NewCore(encoder, zapcore.AddSync(rotated), cfg.Level)
		return &Logger{zapLogger: zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2))}, nil
	}

	zl, err := cfg.Build(zap.AddCallerSkip(2))
	if err != nil {
		return nil, err
	}
	return &Logger{zapLogger: zl}, nil
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.zapLogger.Debug(fmt.Sprintf(format, args...))
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.zapLogger.Info(fmt.Sprintf(format, args...))
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.zapLogger.Warn(fmt.Sprintf(format, args...))
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.zapLogger.Error(fmt.Sprintf(format, args...))
}

func (l *Logger) Fatal(format string, args ...interface{}) {
	l.zapLogger.Fatal(fmt.Sprintf(format, args...))
}

// With returns a child logger carrying structured fields.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{zapLogger: l.zapLogger.With(fields...)}
}

func (l *Logger) Sync() {
	_ = l.zapLogger.Sync()
}

// Package-level helpers on the default logger.

func Debug(format string, args ...interface{}) { defaultLogger.Debug(format, args...) }
func Info(format string, args ...interface{})  { defaultLogger.Info(format, args...) }
func Warn(format string, args ...interface{})  { defaultLogger.Warn(format, args...) }
func Error(format string, args ...interface{}) { defaultLogger.Error(format, args...) }
func Fatal(format string, args ...interface{}) { defaultLogger.Fatal(format, args...) }
func Sync()                                    { defaultLogger.Sync() }
