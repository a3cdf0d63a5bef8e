package bootstrap

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/abgdnv/inventory/internal/config"
	"github.com/abgdnv/inventory/internal/inventory/service"
	"github.com/abgdnv/inventory/internal/inventory/store"
)

// NewLogger returns a JSON slog.Logger filtered at level and writing to w.
// The command line passes stderr as w, keeping log records out of the menu and table output on stdout.
func NewLogger(level string, w io.Writer) *slog.Logger {
	logLevel := toLevel(level)
	loggerOpts := &slog.HandlerOptions{
		AddSource: logLevel == slog.LevelDebug,
		Level:     logLevel,
	}
	logHandler := slog.NewJSONHandler(w, loggerOpts)
	logger := slog.New(logHandler)
	return logger
}

// NewService loads the backing file named in cfg and builds the inventory service on top of it.
func NewService(cfg *config.Config, logger *slog.Logger) (*service.Service, error) {
	s, err := store.NewFileStore(cfg.Storage.Path, store.WithAtomicWrite(cfg.Storage.AtomicWrite))
	if err != nil {
		return nil, fmt.Errorf("failed to open inventory %s: %w", cfg.Storage.Path, err)
	}
	logger.Debug("Inventory loaded", "path", s.Path(), "products", len(slices.Collect(s.ListAll())))
	return service.NewService(s, logger), nil
}

// toLevel converts a string representation of a log level to slog.Level.
func toLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
