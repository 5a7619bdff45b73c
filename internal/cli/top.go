package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/runnerr0/webtime/internal/clock"
	"github.com/runnerr0/webtime/internal/config"
	"github.com/runnerr0/webtime/internal/report"
	"github.com/runnerr0/webtime/internal/tracker"
)

var periodTitles = map[string]string{
	"today":      "Today",
	"yesterday":  "Yesterday",
	"month":      "This month",
	"last-month": "Last month",
}

// Execute implements the go-flags Commander interface for TopCommand.
func (c *TopCommand) Execute(args []string) error {
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

	return c.executeWithStore(cfg, store, clock.System{})
}

// executeWithStore runs the leaderboard against a provided store and clock
// (used by tests).
func (c *TopCommand) executeWithStore(cfg *config.Config, store *tracker.Store, clk clock.Clock) error {
	if c.Month != "" && c.Period != "month" {
		return fmt.Errorf("--month only applies with --period month")
	}

	agg := newAggregator(store, cfg, clk)

	var board report.ChartSeries
	switch c.Period {
	case "today", "":
		board = agg.Leaderboard(report.PeriodToday, "")
	case "yesterday":
		board = agg.Leaderboard(report.PeriodYesterday, "")
	case "month":
		board = agg.Leaderboard(report.PeriodMonth, c.Month)
	case "last-month":
		board = agg.Leaderboard(report.PeriodMonth, clk.LastMonth())
	default:
		return fmt.Errorf("unknown period %q", c.Period)
	}

	if c.globals != nil && c.globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(board)
	}

	title := periodTitles[c.Period]
	if title == "" {
		title = periodTitles["today"]
	}

	fmt.Printf("Top sites (%s)\n", title)
	if len(board.Labels) == 0 {
		fmt.Println("  no recorded time")
		return nil
	}
	for i, label := range board.Labels {
		fmt.Printf("  %2d. %-30s %s\n", i+1, label, report.FormatDuration(board.Data[i]))
	}

	return nil
}
