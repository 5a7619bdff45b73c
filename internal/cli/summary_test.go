package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/webtime/internal/clock"
	"github.com/runnerr0/webtime/internal/report"
)

func TestSummary_EmptyStore(t *testing.T) {
	store := setupTestStore(t)
	clk := clock.Frozen{At: testInstant}

	cmd := &SummaryCommand{globals: &GlobalFlags{}, version: "dev"}

	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(testConfig(), store, clk))
	})

	assert.Contains(t, output, "webtime summary")
	assert.Contains(t, output, "All time: 0s")
	assert.Contains(t, output, "no recorded time")
	assert.Contains(t, output, "Busiest hour today:    none")
}

func TestSummary_WithData(t *testing.T) {
	store := setupTestStore(t)
	clk := clock.Frozen{At: testInstant}

	seedVisits(t, store, "a.com", 90)
	seedVisits(t, store, "b.com", 10)

	cmd := &SummaryCommand{globals: &GlobalFlags{}, version: "dev"}

	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(testConfig(), store, clk))
	})

	assert.Contains(t, output, "All time: 1m40s")
	assert.Contains(t, output, "a.com")
	assert.Contains(t, output, "b.com")
	assert.Contains(t, output, "Other")
	// Every tick landed in hour 9 of a Wednesday.
	assert.Contains(t, output, "Busiest hour today:    9")
	assert.Contains(t, output, "Busiest weekday:       Wednesday")
}

func TestSummary_JSONOutput(t *testing.T) {
	store := setupTestStore(t)
	clk := clock.Frozen{At: testInstant}

	seedVisits(t, store, "a.com", 5)

	cmd := &SummaryCommand{globals: &GlobalFlags{JSON: true}, version: "dev"}

	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(testConfig(), store, clk))
	})

	var summary report.Summary
	require.NoError(t, json.Unmarshal([]byte(output), &summary), "output should be valid JSON: %s", output)

	assert.Equal(t, "5s", summary.AllTime)
	require.Len(t, summary.PagesVisitedToday.Labels, 2)
	assert.Equal(t, "a.com", summary.PagesVisitedToday.Labels[0])
	require.Len(t, summary.TimeSpentInHours.Data, 24)
	require.Len(t, summary.TimeSpentInMinutes.Data, 60)
	require.Len(t, summary.TimeSpentEachDayOfWeek.Data, 7)
}
