package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/runnerr0/webtime/internal/clock"
	"github.com/runnerr0/webtime/internal/storage"
)

// TabMeta carries the per-visit metadata delivered with a tick.
type TabMeta struct {
	FaviconURL string `json:"favicon_url"`
}

// VisitTotals is what RecordVisit reports back for the visited hostname.
type VisitTotals struct {
	TodaySeconds   int64 `json:"today_seconds"`
	AllTimeSeconds int64 `json:"all_time_seconds"`
}

// Store owns the in-memory time-bucket tree and synchronizes it with the
// key-value persistence. RecordVisit is the single write path; all mutation
// happens under the store mutex, so concurrent ticks serialize here.
type Store struct {
	name  string
	clock clock.Clock
	kv    storage.KV

	mu   sync.RWMutex
	tree *Tree
}

// New creates a Store persisting under the given name. An empty name is a
// configuration error.
func New(name string, clk clock.Clock, kv storage.KV) (*Store, error) {
	if name == "" {
		return nil, errors.New("tracker: store name is required")
	}
	return &Store{
		name:  name,
		clock: clk,
		kv:    kv,
		tree:  NewTree(clk.DateString()),
	}, nil
}

// Load fetches the persisted tree by name. If nothing is stored yet the
// store keeps a fresh empty tree. Returns a snapshot of the loaded state.
func (s *Store) Load(ctx context.Context) (*Tree, error) {
	raw, ok, err := s.kv.Get(ctx, s.name)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !ok {
		s.tree = NewTree(s.clock.DateString())
		return s.tree.Clone(), nil
	}

	tree := &Tree{}
	if err := json.Unmarshal(raw, tree); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.name, err)
	}
	tree.normalize()
	s.tree = tree

	return s.tree.Clone(), nil
}

// Save overwrites the persisted value with a full snapshot of the current
// tree. After a successful write it reports storage usage against the quota;
// that query is observational and never fails the save. The in-memory tree
// stays authoritative either way, so a failed save can simply be retried.
func (s *Store) Save(ctx context.Context) error {
	s.mu.RLock()
	data, err := json.Marshal(s.tree)
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.name, err)
	}

	if err := s.kv.Set(ctx, s.name, data); err != nil {
		return fmt.Errorf("save %s: %w", s.name, err)
	}

	size, err := s.kv.BytesInUse(ctx, s.name)
	if err != nil {
		slog.Warn("storage usage query failed", "name", s.name, "error", err)
		return nil
	}
	slog.Info("snapshot saved",
		"name", s.name,
		"bytes", size,
		"quota_fraction", fmt.Sprintf("%.3f", float64(size)/float64(storage.QuotaBytes)),
	)

	return nil
}

// periodKeys is the full key tuple for one tick, resolved once per visit.
type periodKeys struct {
	year       string
	quarter    string
	month      string
	day        string
	hour       string
	minute     string
	weekDetail string
}

func (s *Store) currentKeys() periodKeys {
	return periodKeys{
		year:       s.clock.Year(),
		quarter:    s.clock.Quarter(),
		month:      s.clock.Month(),
		day:        s.clock.DayOfMonth(),
		hour:       s.clock.Hour(),
		minute:     s.clock.Minute(),
		weekDetail: s.clock.WeekDetail(),
	}
}

// Fresh subtree templates: each carries the single path down to the current
// minute, with every counter at zero until the increment pass runs.

func freshYear(k periodKeys) *YearRecord {
	return &YearRecord{
		WeekDetails: map[string]int64{k.weekDetail: 0},
		Quarters:    map[string]*QuarterRecord{k.quarter: freshQuarter(k)},
	}
}

func freshQuarter(k periodKeys) *QuarterRecord {
	return &QuarterRecord{Months: map[string]*MonthRecord{k.month: freshMonth(k)}}
}

func freshMonth(k periodKeys) *MonthRecord {
	return &MonthRecord{Days: map[string]*DayRecord{k.day: freshDay(k)}}
}

func freshDay(k periodKeys) *DayRecord {
	return &DayRecord{Hours: map[string]*HourRecord{k.hour: freshHour(k)}}
}

func freshHour(k periodKeys) *HourRecord {
	return &HourRecord{Minutes: map[string]int64{k.minute: 0}}
}

// RecordVisit accumulates one second of active time for hostname at the
// current period path: the global counter, the hostname counter, every
// calendar ancestor, the minute leaf, and the week-detail counter each gain
// exactly one. Missing branches are materialized from the first absent level
// down; counters on sibling branches are never touched.
func (s *Store) RecordVisit(hostname string, meta TabMeta) (VisitTotals, error) {
	if hostname == "" {
		return VisitTotals{}, errors.New("tracker: hostname is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := s.currentKeys()

	host := s.tree.Hosts[hostname]
	if host == nil {
		host = &HostRecord{
			FirstVisit: s.clock.DateString(),
			Years:      map[string]*YearRecord{k.year: freshYear(k)},
		}
		s.tree.Hosts[hostname] = host
	} else {
		year := host.Years[k.year]
		switch {
		case year == nil:
			host.Years[k.year] = freshYear(k)
		case year.Quarters[k.quarter] == nil:
			year.Quarters[k.quarter] = freshQuarter(k)
		case year.Quarters[k.quarter].Months[k.month] == nil:
			year.Quarters[k.quarter].Months[k.month] = freshMonth(k)
		}

		month := host.Years[k.year].Quarters[k.quarter].Months[k.month]
		if month.Days[k.day] == nil {
			month.Days[k.day] = freshDay(k)
		} else if month.Days[k.day].Hours[k.hour] == nil {
			month.Days[k.day].Hours[k.hour] = freshHour(k)
		}
	}

	year := host.Years[k.year]
	quarter := year.Quarters[k.quarter]
	month := quarter.Months[k.month]
	day := month.Days[k.day]
	hour := day.Hours[k.hour]

	s.tree.AllTime++
	host.AllTime++
	year.AllTime++
	quarter.AllTime++
	month.AllTime++
	day.AllTime++
	year.WeekDetails[k.weekDetail]++
	hour.AllTime++
	hour.Minutes[k.minute]++

	host.FaviconURL = meta.FaviconURL
	host.LastVisit = s.clock.DateString()

	return VisitTotals{
		TodaySeconds:   day.AllTime,
		AllTimeSeconds: host.AllTime,
	}, nil
}

// Accessors below default an empty key to the clock's current period and
// return nil when the hostname or the requested branch does not exist. Each
// level composes on the one above under the clock's current ancestors.

func (s *Store) Year(hostname, year string) *YearRecord {
	if year == "" {
		year = s.clock.Year()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.YearAt(hostname, year)
}

func (s *Store) Quarter(hostname, quarter string) *QuarterRecord {
	if quarter == "" {
		quarter = s.clock.Quarter()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.QuarterAt(hostname, s.clock.Year(), quarter)
}

func (s *Store) Month(hostname, month string) *MonthRecord {
	if month == "" {
		month = s.clock.Month()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.MonthAt(hostname, s.clock.Year(), s.clock.Quarter(), month)
}

func (s *Store) DayOfMonth(hostname, day string) *DayRecord {
	if day == "" {
		day = s.clock.DayOfMonth()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.DayAt(hostname, s.clock.Year(), s.clock.Quarter(), s.clock.Month(), day)
}

func (s *Store) Hour(hostname, hour string) *HourRecord {
	if hour == "" {
		hour = s.clock.Hour()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.HourAt(hostname, s.clock.Year(), s.clock.Quarter(), s.clock.Month(), s.clock.DayOfMonth(), hour)
}

func (s *Store) WeekDetail(hostname, weekDetail string) (int64, bool) {
	if weekDetail == "" {
		weekDetail = s.clock.WeekDetail()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.WeekDetailAt(hostname, s.clock.Year(), weekDetail)
}

// Today returns the current day branch for hostname.
func (s *Store) Today(hostname string) *DayRecord {
	return s.DayOfMonth(hostname, "")
}

// Yesterday returns yesterday's day branch for hostname.
func (s *Store) Yesterday(hostname string) *DayRecord {
	return s.DayOfMonth(hostname, s.clock.Yesterday())
}

// KnownHostname reports whether hostname has ever accumulated time.
func (s *Store) KnownHostname(hostname string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h := s.tree.Hosts[hostname]
	return h != nil && h.AllTime > 0
}

// HostnameCount returns the number of recorded hostnames.
func (s *Store) HostnameCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tree.Hosts)
}

// AllTimeSeconds returns the global accumulated seconds.
func (s *Store) AllTimeSeconds() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.AllTime
}

// Snapshot returns a deep copy of the current tree for aggregation.
func (s *Store) Snapshot() *Tree {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Clone()
}

// BytesInUse reports the persisted snapshot size for this store's name.
func (s *Store) BytesInUse(ctx context.Context) (int64, error) {
	return s.kv.BytesInUse(ctx, s.name)
}

// Purge deletes the persisted snapshot and resets the in-memory tree.
func (s *Store) Purge(ctx context.Context) error {
	if err := s.kv.Delete(ctx, s.name); err != nil {
		return fmt.Errorf("purge %s: %w", s.name, err)
	}

	s.mu.Lock()
	s.tree = NewTree(s.clock.DateString())
	s.mu.Unlock()
	return nil
}

// Name returns the persistence key this store saves under.
func (s *Store) Name() string {
	return s.name
}
