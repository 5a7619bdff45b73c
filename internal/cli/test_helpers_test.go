package cli

import (
	"bytes"
	"database/sql"
	"io"
	"os"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/webtime/internal/clock"
	"github.com/runnerr0/webtime/internal/config"
	"github.com/runnerr0/webtime/internal/storage"
	"github.com/runnerr0/webtime/internal/tracker"
)

// Wednesday, 2024-02-14 09:05:30.
var testInstant = time.Date(2024, time.February, 14, 9, 5, 30, 0, time.UTC)

// captureOutput captures stdout during fn execution and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// setupTestStore creates a tracker store over a migrated in-memory KV with a
// clock frozen at testInstant.
func setupTestStore(t *testing.T) *tracker.Store {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	runner := storage.NewMigrationRunner(db)
	require.NoError(t, runner.Run())

	kv, err := storage.NewSQLiteKV(db)
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })

	store, err := tracker.New("data", clock.Frozen{At: testInstant}, kv)
	require.NoError(t, err)

	return store
}

// testConfig returns a default config safe for tests (no real daemon port).
func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Daemon.Port = 1 // nothing listens here, daemon checks fail fast
	return cfg
}

func seedVisits(t *testing.T, store *tracker.Store, hostname string, ticks int) {
	t.Helper()
	for i := 0; i < ticks; i++ {
		_, err := store.RecordVisit(hostname, tracker.TabMeta{})
		require.NoError(t, err)
	}
}
