package cli

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/runnerr0/webtime/internal/clock"
	"github.com/runnerr0/webtime/internal/config"
	"github.com/runnerr0/webtime/internal/report"
	"github.com/runnerr0/webtime/internal/storage"
	"github.com/runnerr0/webtime/internal/tracker"
)

// loadConfig resolves the config for a command: an explicit --config path is
// loaded as-is, otherwise the default location is loaded or created.
func loadConfig(globals *GlobalFlags) (*config.Config, error) {
	if globals != nil && globals.Config != "" {
		return config.Load(globals.Config)
	}
	return config.LoadOrCreate()
}

// openStore opens the configured SQLite database, runs migrations, and loads
// the tracker store from it. The caller closes the returned KV and DB when done.
func openStore(cfg *config.Config) (*tracker.Store, storage.KV, *sql.DB, error) {
	dbPath, err := cfg.DatabasePath()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("resolve database path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, nil, nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open database: %w", err)
	}

	runner := storage.NewMigrationRunner(db)
	if err := runner.Run(); err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	kv, err := storage.NewSQLiteKV(db)
	if err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("create store: %w", err)
	}

	store, err := tracker.New(cfg.Storage.StoreName, clock.System{}, kv)
	if err != nil {
		kv.Close()
		db.Close()
		return nil, nil, nil, err
	}

	if _, err := store.Load(context.Background()); err != nil {
		kv.Close()
		db.Close()
		return nil, nil, nil, err
	}

	return store, kv, db, nil
}

// newAggregator builds a report aggregator over the store's current snapshot.
func newAggregator(store *tracker.Store, cfg *config.Config, clk clock.Clock) *report.Aggregator {
	agg := report.New(store.Snapshot(), clk)
	if cfg != nil && cfg.Report.TopCount > 0 {
		agg.TopCount = cfg.Report.TopCount
	}
	return agg
}

// formatBytes formats a byte count into a human-readable string.
func formatBytes(b int64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// formatNumber formats an int64 with comma separators.
func formatNumber(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
		if len(s) > remainder {
			result.WriteString(",")
		}
	}
	for i := remainder; i < len(s); i += 3 {
		if i > remainder {
			result.WriteString(",")
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}
