// Package logging builds the zap loggers used by the CLI and the server.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config selects the sink and verbosity of a logger.
type Config struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string
	// File, when set, receives JSON lines through a rotating writer.
	File string
	// Console writes human-readable lines to stderr. Ignored when File is set.
	Console bool

	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// New returns a logger for cfg. With neither File nor Console set the logger
// discards everything, which is what the terminal client wants by default.
func New(cfg Config) (*zap.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	switch {
	case cfg.File != "":
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		sink := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    orDefault(cfg.MaxSizeMB, 10), // megabytes
			MaxBackups: orDefault(cfg.MaxBackups, 3),
			MaxAge:     orDefault(cfg.MaxAgeDays, 28), // days
		}
		encoderCfg := zap.NewProductionEncoderConfig()
		encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(sink), level)
		return zap.New(core, zap.AddCaller()), nil
	case cfg.Console:
		zc := zap.NewDevelopmentConfig()
		zc.Level = zap.NewAtomicLevelAt(level)
		zc.DisableStacktrace = true
		logger, err := zc.Build()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
		return logger, nil
	default:
		return zap.NewNop(), nil
	}
}

// ParseLevel maps a level name to a zap level.
func ParseLevel(name string) (zapcore.Level, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return zapcore.InfoLevel, nil
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(name))); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", name)
	}
	return level, nil
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
