package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/runnerr0/webtime/internal/clock"
	"github.com/runnerr0/webtime/internal/daemon"
)

// Execute implements the go-flags Commander interface for ServeCommand.
func (c *ServeCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}

	if c.Port != 0 {
		cfg.Daemon.Port = c.Port
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger := newLogger(cfg.Logging.Level, c.globals != nil && c.globals.Verbose)
	slog.SetDefault(logger)

	store, kv, db, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer db.Close()
	defer kv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := daemon.New(cfg, store, clock.System{}, c.version, logger)
	return srv.Run(ctx)
}

// newLogger builds the daemon logger from the configured level. --verbose
// forces debug.
func newLogger(level string, verbose bool) *slog.Logger {
	var lvl slog.Level
	switch {
	case verbose:
		lvl = slog.LevelDebug
	default:
		switch level {
		case "debug":
			lvl = slog.LevelDebug
		case "warn":
			lvl = slog.LevelWarn
		case "error":
			lvl = slog.LevelError
		default:
			lvl = slog.LevelInfo
		}
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
