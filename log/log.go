package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	zaplogfmt "github.com/jsternberg/zap-logfmt"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewRootLoggerWithFile initializes a root logger that writes logfmt output
// both to stdout and to a rotated log file.
func NewRootLoggerWithFile(logFile string, level string) (*zap.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(logFile), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create the log directory: %w", err)
	}

	logRotator := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}

	logLevel, err := ParseLogLevel(level)
	if err != nil {
		return nil, err
	}

	return NewRootLogger("logfmt", logLevel, io.MultiWriter(os.Stdout, logRotator))
}

// NewRootLogger builds a logger with the given encoding format writing to w.
func NewRootLogger(format string, level zapcore.Level, w io.Writer) (*zap.Logger, error) {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch format {
	case "json":
		encoder = zapcore.NewJSONEncoder(cfg)
	case "console":
		encoder = zapcore.NewConsoleEncoder(cfg)
	case "logfmt":
		encoder = zaplogfmt.NewEncoder(cfg)
	default:
		return nil, fmt.Errorf("unsupported log format: %s", format)
	}

	return zap.New(zapcore.NewCore(encoder, zapcore.AddSync(w), level)), nil
}

// ParseLogLevel maps a config log level string to a zap level.
func ParseLogLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(level) {
	case "trace", "debug":
		return zapcore.DebugLevel, nil
	case "info":
		return zapcore.InfoLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	case "fatal":
		return zapcore.FatalLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unsupported log level: %s", level)
	}
}
