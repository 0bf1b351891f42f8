package analysis

import (
	"io"
	"log"
	"log/slog"
	"sync"

	"github.com/jlammi/troutpop-go/internal/conf"
	"github.com/jlammi/troutpop-go/internal/logging"
)

// Package-level logger. Batch runs are short-lived, so the file logger is
// only attached when the user enables it in the configuration.
var (
	logger         *slog.Logger
	loggerInitOnce sync.Once
	closeLogger    func() error
)

// getLogger returns the run logger: the rotating JSON file logger when
// main.log is enabled, the default stderr logger otherwise.
func getLogger(settings *conf.Settings) *slog.Logger {
	loggerInitOnce.Do(func() {
		if !settings.Main.Log.Enabled {
			logger = slog.Default().With("service", "analysis")
			closeLogger = func() error { return nil }
			return
		}

		var err error
		logger, closeLogger, err = logging.NewFileLogger(settings.Main.Log.Path, "analysis", slog.LevelInfo)
		if err != nil {
			log.Printf("Failed to initialize analysis file logger at %s: %v. Using console logging.",
				settings.Main.Log.Path, err)
			fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{})
			logger = slog.New(fbHandler).With("service", "analysis")
			closeLogger = func() error { return nil }
		}
	})
	return logger
}

// CloseLogger releases the log file, if one was opened.
func CloseLogger() error {
	if closeLogger != nil {
		return closeLogger()
	}
	return nil
}
