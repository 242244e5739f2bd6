package logger

import (
	"context"
	"io"
	"os"
	"strings"

	"volunteer-hub/internal/shared/contextkeys"

	"github.com/sirupsen/logrus"
)

const (
	logFormatJSON = "json"

	driverLogrus = "logrus"
	driverZap    = "zap"

	envProduction = "production"
	envProd       = "prod"

	timestampFormat = "2006-01-02T15:04:05.000Z07:00"
	textTimestamp   = "2006-01-02 15:04:05"
)

// Logger defines the interface for structured logging operations
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Fatal(args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
	WithFields(fields map[string]interface{}) Logger
	WithContext(ctx context.Context) Logger
	WithComponent(component string) Logger
}

// Config selects the backend and its output shape.
type Config struct {
	Driver string `env:"LOG_DRIVER" envDefault:"logrus"`
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:""`
	// Environment switches the default format to JSON in production.
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
}

// JSON reports whether structured JSON output is wanted.
func (c Config) JSON() bool {
	return c.Format == logFormatJSON || c.Environment == envProduction || c.Environment == envProd
}

// New builds a logger for the configured driver; unknown drivers fall back to logrus.
func New(cfg Config) Logger {
	if strings.EqualFold(cfg.Driver, driverZap) {
		return NewZapLogger(cfg)
	}
	return newLogrus(cfg, os.Stdout)
}

// LogrusLogger implements the Logger interface using logrus
type LogrusLogger struct {
	entry *logrus.Entry
}

// NewLogger creates a logrus logger configured from the environment.
func NewLogger() Logger {
	return newLogrus(Config{
		Driver:      driverLogrus,
		Level:       os.Getenv("LOG_LEVEL"),
		Format:      os.Getenv("LOG_FORMAT"),
		Environment: os.Getenv("ENVIRONMENT"),
	}, os.Stdout)
}

// NewLoggerWithConfig creates a logrus logger with an explicit level and format.
func NewLoggerWithConfig(level string, format string) Logger {
	return newLogrus(Config{Driver: driverLogrus, Level: level, Format: format}, os.Stdout)
}

func newLogrus(cfg Config, out io.Writer) *LogrusLogger {
	l := logrus.New()
	l.SetLevel(parseLevel(cfg.Level))
	l.SetOutput(out)
	if cfg.JSON() {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: timestampFormat,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: textTimestamp,
			ForceColors:     true,
		})
	}
	return &LogrusLogger{entry: logrus.NewEntry(l)}
}

func (l *LogrusLogger) Debug(args ...interface{}) { l.entry.Debug(args...) }
func (l *LogrusLogger) Info(args ...interface{})  { l.entry.Info(args...) }
func (l *LogrusLogger) Warn(args ...interface{})  { l.entry.Warn(args...) }
func (l *LogrusLogger) Error(args ...interface{}) { l.entry.Error(args...) }
func (l *LogrusLogger) Fatal(args ...interface{}) { l.entry.Fatal(args...) }

func (l *LogrusLogger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *LogrusLogger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *LogrusLogger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *LogrusLogger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }
func (l *LogrusLogger) Fatalf(format string, args ...interface{}) { l.entry.Fatalf(format, args...) }

// WithFields adds structured fields to the logger
func (l *LogrusLogger) WithFields(fields map[string]interface{}) Logger {
	return &LogrusLogger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

// WithContext adds the request scoped values found in ctx.
func (l *LogrusLogger) WithContext(ctx context.Context) Logger {
	return &LogrusLogger{entry: l.entry.WithFields(logrus.Fields(contextFields(ctx)))}
}

// WithComponent adds component name to the logger
func (l *LogrusLogger) WithComponent(component string) Logger {
	return &LogrusLogger{entry: l.entry.WithField("component", component)}
}

// contextFields extracts the known string values from ctx.
func contextFields(ctx context.Context) map[string]interface{} {
	fields := map[string]interface{}{}
	if ctx == nil {
		return fields
	}
	for key, name := range map[interface{}]string{
		contextkeys.RequestIDKey: "request_id",
		contextkeys.UserEmailKey: "user_email",
		contextkeys.ComponentKey: "component",
		contextkeys.OperationKey: "operation",
	} {
		if v, ok := ctx.Value(key).(string); ok && v != "" {
			fields[name] = v
		}
	}
	return fields
}

func parseLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}

var defaultLogger Logger = NewLogger()

// SetDefault replaces the package level logger.
func SetDefault(l Logger) {
	if l != nil {
		defaultLogger = l
	}
}

// Default returns the package level logger.
func Default() Logger { return defaultLogger }

func Info(args ...interface{})                  { defaultLogger.Info(args...) }
func Warn(args ...interface{})                  { defaultLogger.Warn(args...) }
func Error(args ...interface{})                 { defaultLogger.Error(args...) }
func Infof(format string, args ...interface{})  { defaultLogger.Infof(format, args...) }
func Warnf(format string, args ...interface{})  { defaultLogger.Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { defaultLogger.Errorf(format, args...) }
func Fatalf(format string, args ...interface{}) { defaultLogger.Fatalf(format, args...) }

// WithContext creates a logger with context information
func WithContext(ctx context.Context) Logger { return defaultLogger.WithContext(ctx) }

// WithComponent creates a logger with component information
func WithComponent(component string) Logger { return defaultLogger.WithComponent(component) }

// NoopLogger discards everything. Useful in tests and as a nil substitute.
type NoopLogger struct{}

func (NoopLogger) Debug(args ...interface{})                          {}
func (NoopLogger) Info(args ...interface{})                           {}
func (NoopLogger) Warn(args ...interface{})                           {}
func (NoopLogger) Error(args ...interface{})                          {}
func (NoopLogger) Fatal(args ...interface{})                          {}
func (NoopLogger) Debugf(format string, args ...interface{})          {}
func (NoopLogger) Infof(format string, args ...interface{})           {}
func (NoopLogger) Warnf(format string, args ...interface{})           {}
func (NoopLogger) Errorf(format string, args ...interface{})          {}
func (NoopLogger) Fatalf(format string, args ...interface{})          {}
func (n NoopLogger) WithFields(fields map[string]interface{}) Logger { return n }
func (n NoopLogger) WithContext(ctx context.Context) Logger          { return n }
func (n NoopLogger) WithComponent(component string) Logger           { return n }
