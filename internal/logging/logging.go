// Package logging sets up the application loggers: a human-readable text
// logger on stderr for interactive use and optional per-service JSON file
// loggers with rotation for unattended batch runs.
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// LevelFatal is logged just before the process exits on an unrecoverable error.
	LevelFatal = slog.Level(12)
)

var levelNames = map[slog.Leveler]string{
	LevelFatal: "FATAL",
}

var defaultLevel = new(slog.LevelVar)

// Init installs the default stderr text logger. Called once from main before
// any command runs.
func Init() {
	defaultLevel.Set(slog.LevelInfo)
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:       defaultLevel,
		ReplaceAttr: replaceLevelNames,
	})
	slog.SetDefault(slog.New(handler))
}

// SetDebug switches the default logger between debug and info level.
func SetDebug(debug bool) {
	if debug {
		defaultLevel.Set(slog.LevelDebug)
	} else {
		defaultLevel.Set(slog.LevelInfo)
	}
}

func replaceLevelNames(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		level := a.Value.Any().(slog.Level)
		if label, ok := levelNames[level]; ok {
			a.Value = slog.StringValue(label)
		}
	}
	return a
}

// NewFileLogger returns a JSON logger writing to filePath with rotation,
// tagged with the service name, plus a close function releasing the file.
// lumberjack does not create directories, so the parent is created here.
func NewFileLogger(filePath, service string, level slog.Leveler) (*slog.Logger, func() error, error) {
	logDir := filepath.Dir(filePath)
	if logDir != "." {
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory %s: %w", logDir, err)
		}
	}

	logWriter := &lumberjack.Logger{
		Filename:   filePath,
		MaxSize:    20, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}

	handler := slog.NewJSONHandler(logWriter, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevelNames,
	})
	logger := slog.New(handler).With("service", service)

	return logger, logWriter.Close, nil
}

// Fatal logs at fatal level on the default logger and exits.
func Fatal(msg string, args ...any) {
	slog.Log(context.Background(), LevelFatal, msg, args...)
	os.Exit(1)
}
