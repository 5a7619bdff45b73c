package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/runnerr0/webtime/internal/config"
	"github.com/runnerr0/webtime/internal/report"
	"github.com/runnerr0/webtime/internal/tracker"
)

// Execute implements the go-flags Commander interface for TickCommand.
func (c *TickCommand) Execute(args []string) error {
	if c.Host == "" {
		return fmt.Errorf("--host is required for tick command")
	}

	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}

	store, kv, db, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer db.Close()
	defer kv.Close()

	return c.executeWithStore(cfg, store)
}

// executeWithStore runs the tick logic against a provided store (used by tests).
func (c *TickCommand) executeWithStore(cfg *config.Config, store *tracker.Store) error {
	// Ignored hostnames get an explicit error here; the daemon silently
	// acknowledges them, but an interactive user should know why nothing
	// was recorded.
	if cfg.IsIgnored(c.Host) {
		return fmt.Errorf("hostname %q is on the ignore list", c.Host)
	}

	count := c.Count
	if count < 1 {
		count = 1
	}

	var totals tracker.VisitTotals
	for i := 0; i < count; i++ {
		var err error
		totals, err = store.RecordVisit(c.Host, tracker.TabMeta{FaviconURL: c.Favicon})
		if err != nil {
			return fmt.Errorf("recording visit: %w", err)
		}
	}

	if err := store.Save(context.Background()); err != nil {
		return fmt.Errorf("saving: %w", err)
	}

	if c.globals != nil && c.globals.JSON {
		out := map[string]interface{}{
			"hostname":         c.Host,
			"ticks":            count,
			"today_seconds":    totals.TodaySeconds,
			"all_time_seconds": totals.AllTimeSeconds,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Printf("Recorded %d tick(s) for %s\n", count, c.Host)
	fmt.Printf("  Today:    %s\n", report.FormatDuration(totals.TodaySeconds))
	fmt.Printf("  All time: %s\n", report.FormatDuration(totals.AllTimeSeconds))

	return nil
}
