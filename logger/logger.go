// Package logger owns the process-wide zap logger.
package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/stevemurr/string-analysis-server/errors"
)

// Logger is the global logger. It discards everything until Initialize runs.
var Logger *zap.SugaredLogger

func init() {
	Logger = zap.NewNop().Sugar()
}

// Initialize replaces Logger. jsonOutput selects zap's production JSON
// encoder; otherwise a human-readable console encoder is used. level is one
// of debug, info, warn, error (empty means info).
func Initialize(jsonOutput bool, level string) error {
	l, err := New(jsonOutput, level)
	if err != nil {
		return err
	}
	Logger = l
	return nil
}

// New builds a logger without touching the global one.
func New(jsonOutput bool, level string) (*zap.SugaredLogger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	var config zap.Config
	if jsonOutput {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		config.DisableStacktrace = true
	}
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	zapLogger, err := config.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}
	return zapLogger.Sugar(), nil
}

// ParseLevel converts a level name into a zapcore.Level.
func ParseLevel(level string) (zapcore.Level, error) {
	if strings.TrimSpace(level) == "" {
		return zapcore.InfoLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
		return zapcore.InfoLevel, errors.Wrapf(err, "invalid log level %q", level)
	}
	return lvl, nil
}

// Sync flushes buffered log entries.
func Sync() {
	_ = Logger.Sync()
}
