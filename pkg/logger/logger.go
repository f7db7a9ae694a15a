// Package logger provides structured logging utilities.
package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a wrapper around zap.Logger.
type Logger struct {
	*zap.Logger
}

// Options selects the logger flavour.
type Options struct {
	// Level is one of debug, info, warn, error or fatal.
	Level string
	// Service is attached to every entry as "service".
	Service string
	// Development switches to a colored console encoder.
	Development bool
}

// New creates a new structured logger.
func New(opts Options) (*Logger, error) {
	var config zap.Config
	if opts.Development {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.Config{
			Encoding: "json",
			EncoderConfig: zapcore.EncoderConfig{
				TimeKey:        "ts",
				LevelKey:       "level",
				NameKey:        "logger",
				CallerKey:      "caller",
				MessageKey:     "msg",
				StacktraceKey:  "stacktrace",
				LineEnding:     zapcore.DefaultLineEnding,
				EncodeLevel:    zapcore.LowercaseLevelEncoder,
				EncodeTime:     zapcore.ISO8601TimeEncoder,
				EncodeDuration: zapcore.SecondsDurationEncoder,
				EncodeCaller:   zapcore.ShortCallerEncoder,
			},
			OutputPaths:      []string{"stdout"},
			ErrorOutputPaths: []string{"stderr"},
		}
	}
	config.Level = zap.NewAtomicLevelAt(parseLevel(opts.Level))
	if opts.Service != "" {
		config.InitialFields = map[string]interface{}{"service": opts.Service}
	}

	logger, err := config.Build()
	if err != nil {
		return nil, err
	}

	return &Logger{Logger: logger}, nil
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// With creates a child logger with additional fields.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{Logger: l.Logger.With(fields...)}
}

// WithRequest tags entries with the request's correlation and viewer ids.
func (l *Logger) WithRequest(correlationID, viewerID string) *Logger {
	return l.With(
		zap.String("correlation_id", correlationID),
		zap.String("viewer_id", viewerID),
	)
}

// WithJob tags entries with a job and the viewer acting on it.
func (l *Logger) WithJob(jobID, viewerID string) *Logger {
	return l.With(
		zap.String("job_id", jobID),
		zap.String("viewer_id", viewerID),
	)
}

// WithConversation tags entries with a conversation and the viewer acting
// in it.
func (l *Logger) WithConversation(conversationID, viewerID string) *Logger {
	return l.With(
		zap.String("conversation_id", conversationID),
		zap.String("viewer_id", viewerID),
	)
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

var global *Logger

func init() {
	global, _ = New(Options{
		Level:       "info",
		Service:     "neighborjob-api",
		Development: os.Getenv("ENV") == "development",
	})
	if global == nil {
		global = NewNop()
	}
}

// Global returns the process-wide logger.
func Global() *Logger {
	return global
}

// SetGlobal replaces the process-wide logger.
func SetGlobal(l *Logger) {
	global = l
}
