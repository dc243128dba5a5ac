// Package logging builds the zap loggers used by every interface.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogFileName is the TUI log file inside the log directory
const LogFileName = "contract-desk.log"

// Options configure a logger
type Options struct {
	Level   string // zap level name; empty means info
	Verbose bool   // forces debug level
	Dev     bool   // console encoder with caller and stack traces
	File    string // write to this file instead of stderr
}

// New builds a logger from zap's production or development presets
func New(opts Options) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if opts.Dev {
		config = zap.NewDevelopmentConfig()
	}

	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	if opts.Verbose {
		level = zapcore.DebugLevel
	}
	config.Level = zap.NewAtomicLevelAt(level)

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		config.OutputPaths = []string{opts.File}
		config.ErrorOutputPaths = []string{opts.File}
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// ForTUI logs to a file under logDir so output never draws over the alt screen
func ForTUI(logDir, level string, verbose bool) (*zap.Logger, error) {
	return New(Options{
		Level:   level,
		Verbose: verbose,
		File:    filepath.Join(logDir, LogFileName),
	})
}

// ParseLevel maps a level name onto a zap level, defaulting to info
func ParseLevel(name string) (zapcore.Level, error) {
	if name == "" {
		return zapcore.InfoLevel, nil
	}
	level, err := zapcore.ParseLevel(name)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return level, nil
}
