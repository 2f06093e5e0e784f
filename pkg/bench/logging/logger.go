package logging

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger interface for basic logging operations
type Logger interface {
	Printf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// StdLogger implements the Logger interface with plain writes
type StdLogger struct {
	writer io.Writer
}

// NewStdLogger creates a new StdLogger
func NewStdLogger(writer io.Writer) *StdLogger {
	return &StdLogger{
		writer: writer,
	}
}

// Printf logs a message with printf formatting
func (l *StdLogger) Printf(format string, args ...interface{}) {
	fmt.Fprintf(l.writer, "[INFO] "+format+"\n", args...)
}

// Errorf logs an error message with printf formatting
func (l *StdLogger) Errorf(format string, args ...interface{}) {
	fmt.Fprintf(l.writer, "[ERROR] "+format+"\n", args...)
}

// Debugf logs a debug message with printf formatting
func (l *StdLogger) Debugf(format string, args ...interface{}) {
	fmt.Fprintf(l.writer, "[DEBUG] "+format+"\n", args...)
}

// ZapLogger adapts a zap SugaredLogger to the Logger interface. The harness
// uses it for the long-running run command where timestamps and level
// filtering matter.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger builds a ZapLogger writing to stdout, or to logFile when it is
// non-empty. Level is one of "error", "info", "debug".
func NewZapLogger(level string, logFile string) (*ZapLogger, error) {
	zapLevel := zapcore.InfoLevel
	switch level {
	case "error":
		zapLevel = zapcore.ErrorLevel
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info", "":
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	cfg.Encoding = "console"
	cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	if logFile != "" {
		cfg.OutputPaths = []string{logFile}
		cfg.ErrorOutputPaths = []string{logFile}
	}

	logger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("failed to build zap logger: %w", err)
	}

	return &ZapLogger{sugar: logger.Sugar()}, nil
}

// Printf logs at info level
func (l *ZapLogger) Printf(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

// Errorf logs at error level
func (l *ZapLogger) Errorf(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// Debugf logs at debug level
func (l *ZapLogger) Debugf(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

// Sync flushes buffered log entries
func (l *ZapLogger) Sync() error {
	return l.sugar.Sync()
}

// NopLogger discards everything. Used in tests.
type NopLogger struct{}

func (NopLogger) Printf(string, ...interface{}) {}
func (NopLogger) Errorf(string, ...interface{}) {}
func (NopLogger) Debugf(string, ...interface{}) {}
