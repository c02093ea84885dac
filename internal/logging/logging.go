// Package logging builds the zap logger used by securelock.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a console logger writing to stderr at the given level.
// Verbose forces debug level regardless of level.
func New(level string, verbose bool) (*zap.Logger, error) {
	atomic, err := resolveLevel(level, verbose)
	if err != nil {
		return nil, err
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = atomic
	cfg.DisableStacktrace = true
	cfg.DisableCaller = !verbose
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if !verbose {
		cfg.EncoderConfig.TimeKey = ""
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger.Named("securelock"), nil
}

func resolveLevel(level string, verbose bool) (zap.AtomicLevel, error) {
	if verbose {
		return zap.NewAtomicLevelAt(zapcore.DebugLevel), nil
	}
	if strings.TrimSpace(level) == "" {
		return zap.NewAtomicLevelAt(zapcore.WarnLevel), nil
	}

	var parsed zapcore.Level
	if err := parsed.Set(level); err != nil {
		return zap.AtomicLevel{}, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return zap.NewAtomicLevelAt(parsed), nil
}
