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

// Execute implements the go-flags Commander interface for SummaryCommand.
func (c *SummaryCommand) Execute(args []string) error {
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

// executeWithStore renders the summary against a provided store and clock
// (used by tests).
func (c *SummaryCommand) executeWithStore(cfg *config.Config, store *tracker.Store, clk clock.Clock) error {
	summary := newAggregator(store, cfg, clk).BuildSummary()

	if c.globals != nil && c.globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	fmt.Println("webtime summary")
	fmt.Println("===============")
	fmt.Printf("All time: %s\n", summary.AllTime)

	printBoard("Today", summary.PagesVisitedToday)
	printBoard("Yesterday", summary.PagesVisitedYesterday)
	printBoard("This month", summary.PagesVisitedThisMonth)
	printBoard("Last month", summary.PagesVisitedLastMonth)

	fmt.Println()
	fmt.Printf("Busiest hour today:    %s\n", peakSlot(summary.TimeSpentInHours))
	fmt.Printf("Busiest hour overall:  %s\n", peakSlot(summary.TimeSpentInHoursTotal))
	fmt.Printf("Busiest weekday:       %s\n", peakSlot(summary.TimeSpentEachDayOfWeek))

	return nil
}

func printBoard(title string, board report.ChartSeries) {
	fmt.Println()
	fmt.Printf("%s:\n", title)
	if len(board.Labels) == 0 {
		fmt.Println("  no recorded time")
		return
	}
	for i, label := range board.Labels {
		fmt.Printf("  %-30s %s\n", label, report.FormatDuration(board.Data[i]))
	}
}

// peakSlot names the label with the highest value, or "none" for an all-zero
// series. Ties go to the earliest slot.
func peakSlot(series report.ChartSeries) string {
	best := -1
	var bestValue int64
	for i, v := range series.Data {
		if v > bestValue {
			bestValue = v
			best = i
		}
	}
	if best < 0 {
		return "none"
	}
	return series.Labels[best]
}
