package tracker

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/webtime/internal/clock"
	"github.com/runnerr0/webtime/internal/storage"
)

// shiftClock is a settable test clock; advancing now simulates ticks landing
// in later periods.
type shiftClock struct {
	now *time.Time
}

func (c shiftClock) frozen() clock.Frozen  { return clock.Frozen{At: *c.now} }
func (c shiftClock) Now() time.Time        { return *c.now }
func (c shiftClock) Year() string          { return c.frozen().Year() }
func (c shiftClock) Quarter() string       { return c.frozen().Quarter() }
func (c shiftClock) Month() string         { return c.frozen().Month() }
func (c shiftClock) DayOfMonth() string    { return c.frozen().DayOfMonth() }
func (c shiftClock) Hour() string          { return c.frozen().Hour() }
func (c shiftClock) Minute() string        { return c.frozen().Minute() }
func (c shiftClock) WeekOfYear() string    { return c.frozen().WeekOfYear() }
func (c shiftClock) WeekDetail() string    { return c.frozen().WeekDetail() }
func (c shiftClock) Yesterday() string     { return c.frozen().Yesterday() }
func (c shiftClock) LastMonth() string     { return c.frozen().LastMonth() }
func (c shiftClock) DateString() string    { return c.frozen().DateString() }

// openTestKV creates a migrated in-memory KV.
func openTestKV(t *testing.T) storage.KV {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, storage.NewMigrationRunner(db).Run())

	kv, err := storage.NewSQLiteKV(db)
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	return kv
}

// openTestStore creates a store at a fixed instant and returns the instant
// pointer so tests can advance it.
func openTestStore(t *testing.T, at time.Time) (*Store, *time.Time) {
	t.Helper()
	now := at
	store, err := New("data", shiftClock{now: &now}, openTestKV(t))
	require.NoError(t, err)
	return store, &now
}

var testInstant = time.Date(2024, time.February, 14, 9, 5, 30, 0, time.UTC)

func TestNew_RequiresName(t *testing.T) {
	_, err := New("", clock.Frozen{At: testInstant}, openTestKV(t))
	assert.Error(t, err)
}

func TestRecordVisit_RequiresHostname(t *testing.T) {
	store, _ := openTestStore(t, testInstant)
	_, err := store.RecordVisit("", TabMeta{})
	assert.Error(t, err)
}

func TestRecordVisit_NewHostnameBuildsFullChain(t *testing.T) {
	store, _ := openTestStore(t, testInstant)

	totals, err := store.RecordVisit("example.com", TabMeta{FaviconURL: "https://example.com/favicon.ico"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), totals.TodaySeconds)
	assert.Equal(t, int64(1), totals.AllTimeSeconds)

	tree := store.Snapshot()
	host := tree.Host("example.com")
	require.NotNil(t, host)
	assert.Equal(t, int64(1), host.AllTime)
	assert.Equal(t, "https://example.com/favicon.ico", host.FaviconURL)
	assert.Equal(t, "2024-02-14", host.FirstVisit)
	assert.Equal(t, "2024-02-14", host.LastVisit)

	// Every level of the current path exists and carries the second.
	assert.Equal(t, int64(1), tree.AllTime)
	require.NotNil(t, tree.YearAt("example.com", "2024"))
	assert.Equal(t, int64(1), tree.YearAt("example.com", "2024").AllTime)
	require.NotNil(t, tree.QuarterAt("example.com", "2024", "1"))
	require.NotNil(t, tree.MonthAt("example.com", "2024", "1", "2"))
	require.NotNil(t, tree.DayAt("example.com", "2024", "1", "2", "14"))
	hour := tree.HourAt("example.com", "2024", "1", "2", "14", "9")
	require.NotNil(t, hour)
	assert.Equal(t, int64(1), hour.AllTime)
	assert.Equal(t, int64(1), hour.Minutes["5"])

	wd, ok := tree.WeekDetailAt("example.com", "2024", "7-3")
	require.True(t, ok)
	assert.Equal(t, int64(1), wd)
}

func TestRecordVisit_TwiceInSameMinute(t *testing.T) {
	store, _ := openTestStore(t, testInstant)

	_, err := store.RecordVisit("example.com", TabMeta{})
	require.NoError(t, err)
	totals, err := store.RecordVisit("example.com", TabMeta{})
	require.NoError(t, err)

	assert.Equal(t, int64(2), totals.TodaySeconds)
	assert.Equal(t, int64(2), totals.AllTimeSeconds)

	tree := store.Snapshot()
	assert.Equal(t, int64(2), tree.AllTime)
	assert.Equal(t, int64(2), tree.Host("example.com").AllTime)
	assert.Equal(t, int64(2), tree.YearAt("example.com", "2024").AllTime)
	assert.Equal(t, int64(2), tree.QuarterAt("example.com", "2024", "1").AllTime)
	assert.Equal(t, int64(2), tree.MonthAt("example.com", "2024", "1", "2").AllTime)
	assert.Equal(t, int64(2), tree.DayAt("example.com", "2024", "1", "2", "14").AllTime)

	hour := tree.HourAt("example.com", "2024", "1", "2", "14", "9")
	assert.Equal(t, int64(2), hour.AllTime)
	assert.Equal(t, int64(2), hour.Minutes["5"], "minute counter accumulates, not overwrites")

	wd, _ := tree.WeekDetailAt("example.com", "2024", "7-3")
	assert.Equal(t, int64(2), wd)
}

func TestRecordVisit_HourBoundaryKeepsPriorCounters(t *testing.T) {
	store, now := openTestStore(t, testInstant)

	_, err := store.RecordVisit("example.com", TabMeta{})
	require.NoError(t, err)

	// Next tick lands at the top of the next hour.
	*now = time.Date(2024, time.February, 14, 10, 0, 0, 0, time.UTC)
	_, err = store.RecordVisit("example.com", TabMeta{})
	require.NoError(t, err)

	tree := store.Snapshot()
	day := tree.DayAt("example.com", "2024", "1", "2", "14")
	require.NotNil(t, day)
	assert.Equal(t, int64(2), day.AllTime)

	prior := day.Hours["9"]
	require.NotNil(t, prior)
	assert.Equal(t, int64(1), prior.AllTime, "prior hour untouched")
	assert.Equal(t, int64(1), prior.Minutes["5"])

	fresh := day.Hours["10"]
	require.NotNil(t, fresh)
	assert.Equal(t, int64(1), fresh.AllTime)
	assert.Equal(t, int64(1), fresh.Minutes["0"])
}

func TestRecordVisit_DayBoundaryCreatesNewBranch(t *testing.T) {
	store, now := openTestStore(t, testInstant)

	_, err := store.RecordVisit("example.com", TabMeta{})
	require.NoError(t, err)

	*now = time.Date(2024, time.February, 15, 0, 0, 5, 0, time.UTC)
	totals, err := store.RecordVisit("example.com", TabMeta{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), totals.TodaySeconds, "new day starts at one second")
	assert.Equal(t, int64(2), totals.AllTimeSeconds)

	tree := store.Snapshot()
	assert.Equal(t, int64(1), tree.DayAt("example.com", "2024", "1", "2", "14").AllTime)
	assert.Equal(t, int64(1), tree.DayAt("example.com", "2024", "1", "2", "15").AllTime)

	// The 15th is a Thursday of the same ISO week.
	wd, ok := tree.WeekDetailAt("example.com", "2024", "7-4")
	require.True(t, ok)
	assert.Equal(t, int64(1), wd)
}

func TestRecordVisit_YearBoundaryCreatesNewBranch(t *testing.T) {
	store, now := openTestStore(t, testInstant)

	_, err := store.RecordVisit("example.com", TabMeta{})
	require.NoError(t, err)

	*now = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
	_, err = store.RecordVisit("example.com", TabMeta{})
	require.NoError(t, err)

	tree := store.Snapshot()
	assert.Equal(t, int64(1), tree.YearAt("example.com", "2024").AllTime)
	assert.Equal(t, int64(1), tree.YearAt("example.com", "2025").AllTime)
	assert.Equal(t, int64(2), tree.Host("example.com").AllTime)
}

func TestRecordVisit_GlobalInvariant(t *testing.T) {
	store, now := openTestStore(t, testInstant)

	hosts := []string{"a.com", "b.com", "c.com"}
	total := 0
	for i, h := range hosts {
		for j := 0; j <= i*3; j++ {
			_, err := store.RecordVisit(h, TabMeta{})
			require.NoError(t, err)
			total++
			*now = now.Add(37 * time.Second)
		}
	}

	tree := store.Snapshot()
	assert.Equal(t, int64(total), tree.AllTime)

	var hostSum, minuteSum int64
	for _, h := range tree.Hosts {
		hostSum += h.AllTime
		for _, y := range h.Years {
			for _, q := range y.Quarters {
				for _, m := range q.Months {
					for _, d := range m.Days {
						for _, hr := range d.Hours {
							for _, secs := range hr.Minutes {
								minuteSum += secs
							}
						}
					}
				}
			}
		}
	}
	assert.Equal(t, tree.AllTime, hostSum, "global equals sum of hostname totals")
	assert.Equal(t, tree.AllTime, minuteSum, "global equals sum of minute leaves")
}

func TestRecordVisit_OverwritesFaviconAndLastVisit(t *testing.T) {
	store, now := openTestStore(t, testInstant)

	_, err := store.RecordVisit("example.com", TabMeta{FaviconURL: "old.ico"})
	require.NoError(t, err)

	*now = now.AddDate(0, 0, 1)
	_, err = store.RecordVisit("example.com", TabMeta{FaviconURL: "new.ico"})
	require.NoError(t, err)

	host := store.Snapshot().Host("example.com")
	assert.Equal(t, "new.ico", host.FaviconURL)
	assert.Equal(t, "2024-02-14", host.FirstVisit, "first visit is immutable")
	assert.Equal(t, "2024-02-15", host.LastVisit)
}

func TestAccessors_DefaultToCurrentPeriod(t *testing.T) {
	store, _ := openTestStore(t, testInstant)

	_, err := store.RecordVisit("example.com", TabMeta{})
	require.NoError(t, err)

	require.NotNil(t, store.Year("example.com", ""))
	require.NotNil(t, store.Quarter("example.com", ""))
	require.NotNil(t, store.Month("example.com", ""))
	require.NotNil(t, store.DayOfMonth("example.com", ""))
	require.NotNil(t, store.Hour("example.com", ""))
	require.NotNil(t, store.Today("example.com"))

	seconds, ok := store.WeekDetail("example.com", "")
	require.True(t, ok)
	assert.Equal(t, int64(1), seconds)
}

func TestAccessors_AbsentDataReturnsNil(t *testing.T) {
	store, _ := openTestStore(t, testInstant)

	assert.Nil(t, store.Year("unknown.com", ""))
	assert.Nil(t, store.Quarter("unknown.com", ""))
	assert.Nil(t, store.Month("unknown.com", ""))
	assert.Nil(t, store.DayOfMonth("unknown.com", ""))
	assert.Nil(t, store.Hour("unknown.com", ""))
	assert.Nil(t, store.Today("unknown.com"))
	assert.Nil(t, store.Yesterday("unknown.com"))

	_, ok := store.WeekDetail("unknown.com", "")
	assert.False(t, ok)
}

func TestYesterday(t *testing.T) {
	store, now := openTestStore(t, testInstant)

	_, err := store.RecordVisit("example.com", TabMeta{})
	require.NoError(t, err)

	*now = now.AddDate(0, 0, 1)
	day := store.Yesterday("example.com")
	require.NotNil(t, day)
	assert.Equal(t, int64(1), day.AllTime)
	assert.Nil(t, store.Today("example.com"), "nothing recorded today yet")
}

func TestKnownHostname(t *testing.T) {
	store, _ := openTestStore(t, testInstant)

	assert.False(t, store.KnownHostname("example.com"))

	_, err := store.RecordVisit("example.com", TabMeta{})
	require.NoError(t, err)
	assert.True(t, store.KnownHostname("example.com"))
	assert.False(t, store.KnownHostname("other.com"))
}

func TestSaveLoad_Roundtrip(t *testing.T) {
	kv := openTestKV(t)
	ctx := context.Background()
	now := testInstant
	clk := shiftClock{now: &now}

	store, err := New("data", clk, kv)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := store.RecordVisit("example.com", TabMeta{FaviconURL: "f.ico"})
		require.NoError(t, err)
		now = now.Add(90 * time.Second)
	}
	_, err = store.RecordVisit("other.com", TabMeta{})
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx))
	saved := store.Snapshot()

	fresh, err := New("data", clk, kv)
	require.NoError(t, err)
	loaded, err := fresh.Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, saved, loaded, "loaded tree is deep-equal to the saved one")
}

func TestLoad_AbsentInitializesFreshTree(t *testing.T) {
	store, _ := openTestStore(t, testInstant)

	tree, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), tree.AllTime)
	assert.Equal(t, "2024-02-14", tree.FirstVisit)
	assert.Empty(t, tree.Hosts)
}

func TestLoad_CorruptPayloadFails(t *testing.T) {
	kv := openTestKV(t)
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, "data", []byte("not json{{")))

	store, err := New("data", clock.Frozen{At: testInstant}, kv)
	require.NoError(t, err)

	_, err = store.Load(ctx)
	assert.Error(t, err)
}

func TestPurge(t *testing.T) {
	store, _ := openTestStore(t, testInstant)
	ctx := context.Background()

	_, err := store.RecordVisit("example.com", TabMeta{})
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx))

	require.NoError(t, store.Purge(ctx))

	assert.Equal(t, int64(0), store.AllTimeSeconds())
	assert.Equal(t, 0, store.HostnameCount())

	size, err := store.BytesInUse(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), size)
}

func TestSnapshot_IsDetachedFromLiveTree(t *testing.T) {
	store, _ := openTestStore(t, testInstant)

	_, err := store.RecordVisit("example.com", TabMeta{})
	require.NoError(t, err)

	snap := store.Snapshot()
	_, err = store.RecordVisit("example.com", TabMeta{})
	require.NoError(t, err)

	assert.Equal(t, int64(1), snap.AllTime, "snapshot does not see later writes")
	assert.Equal(t, int64(2), store.AllTimeSeconds())
}
