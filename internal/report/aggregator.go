// Package report derives chart-ready view models from a time-bucket tree
// snapshot. Aggregation never mutates the tree; hand it a frozen copy
// (tracker.Store.Snapshot) and it can run concurrently with recording.
package report

import (
	"sort"
	"strconv"

	"github.com/runnerr0/webtime/internal/clock"
	"github.com/runnerr0/webtime/internal/tracker"
)

// Aggregator computes leaderboards and histograms over one tree snapshot.
// TopCount bounds leaderboard length; zero or negative means the default 10.
type Aggregator struct {
	tree     *tracker.Tree
	clk      clock.Clock
	TopCount int
}

// New creates an Aggregator over the given snapshot.
func New(tree *tracker.Tree, clk clock.Clock) *Aggregator {
	return &Aggregator{tree: tree, clk: clk, TopCount: 10}
}

// Period selects which branch PagesVisited reads per hostname.
type Period int

const (
	PeriodToday Period = iota
	PeriodYesterday
	PeriodMonth
)

// PageVisit is one hostname's accumulated seconds within a period.
type PageVisit struct {
	Hostname   string
	Seconds    int64
	FaviconURL string
}

// hostnames returns recorded hostnames with a non-zero total, sorted so that
// aggregation output is deterministic and sort ties keep a fixed order.
func (a *Aggregator) hostnames() []string {
	names := make([]string, 0, len(a.tree.Hosts))
	for name, h := range a.tree.Hosts {
		if h != nil && h.AllTime > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// PagesVisited lists, for every known hostname, the seconds spent in the
// given period. key overrides the clock's current period where it applies
// (only the month period takes one); hostnames without data for the period
// are skipped.
func (a *Aggregator) PagesVisited(period Period, key string) []PageVisit {
	var pages []PageVisit
	for _, name := range a.hostnames() {
		seconds, ok := a.periodSeconds(name, period, key)
		if !ok {
			continue
		}
		pages = append(pages, PageVisit{
			Hostname:   name,
			Seconds:    seconds,
			FaviconURL: a.tree.Hosts[name].FaviconURL,
		})
	}
	return pages
}

func (a *Aggregator) periodSeconds(hostname string, period Period, key string) (int64, bool) {
	switch period {
	case PeriodToday:
		d := a.today(hostname)
		if d == nil {
			return 0, false
		}
		return d.AllTime, true
	case PeriodYesterday:
		d := a.tree.DayAt(hostname, a.clk.Year(), a.clk.Quarter(), a.clk.Month(), a.clk.Yesterday())
		if d == nil {
			return 0, false
		}
		return d.AllTime, true
	case PeriodMonth:
		if key == "" {
			key = a.clk.Month()
		}
		m := a.tree.MonthAt(hostname, a.clk.Year(), a.clk.Quarter(), key)
		if m == nil {
			return 0, false
		}
		return m.AllTime, true
	}
	return 0, false
}

func (a *Aggregator) today(hostname string) *tracker.DayRecord {
	return a.tree.DayAt(hostname, a.clk.Year(), a.clk.Quarter(), a.clk.Month(), a.clk.DayOfMonth())
}

// TimeSpentInHours sums each hour's total from every hostname's today
// branch. Always 24 slots, hour 0 first.
func (a *Aggregator) TimeSpentInHours() []int64 {
	hours := make([]int64, 24)
	for _, name := range a.hostnames() {
		day := a.today(name)
		if day == nil {
			continue
		}
		for key, hour := range day.Hours {
			if idx, ok := slotIndex(key, 24); ok {
				hours[idx] += hour.AllTime
			}
		}
	}
	return hours
}

// TimeSpentInHoursAllTime is the hour histogram over every recorded day,
// not just today.
func (a *Aggregator) TimeSpentInHoursAllTime() []int64 {
	hours := make([]int64, 24)
	for _, day := range a.allDays() {
		for key, hour := range day.Hours {
			if idx, ok := slotIndex(key, 24); ok {
				hours[idx] += hour.AllTime
			}
		}
	}
	return hours
}

// TimeSpentInMinutes sums raw per-minute seconds from every hostname's today
// branch. Always 60 slots, minute 0 first.
func (a *Aggregator) TimeSpentInMinutes() []int64 {
	minutes := make([]int64, 60)
	for _, name := range a.hostnames() {
		day := a.today(name)
		if day == nil {
			continue
		}
		for _, hour := range day.Hours {
			for key, seconds := range hour.Minutes {
				if idx, ok := slotIndex(key, 60); ok {
					minutes[idx] += seconds
				}
			}
		}
	}
	return minutes
}

// TimeSpentInDaysOfWeek scans every year's week-detail map and accumulates
// entries whose week-of-year matches the clock's current week. Seven slots,
// Monday first. Entries from other weeks are excluded even when the
// day-of-week number matches.
func (a *Aggregator) TimeSpentInDaysOfWeek() []int64 {
	days := make([]int64, 7)
	currentWeek := a.clk.WeekOfYear()
	for _, name := range a.hostnames() {
		for _, year := range a.tree.Hosts[name].Years {
			for key, seconds := range year.WeekDetails {
				week, dow, ok := tracker.SplitWeekDetail(key)
				if !ok || week != currentWeek {
					continue
				}
				if idx, ok := slotIndex(dow, 8); ok && idx >= 1 {
					days[idx-1] += seconds
				}
			}
		}
	}
	return days
}

// slotIndex parses a numeric period key and bounds-checks it against a
// fixed histogram size.
func slotIndex(key string, size int) (int, bool) {
	idx, err := strconv.Atoi(key)
	if err != nil || idx < 0 || idx >= size {
		return 0, false
	}
	return idx, true
}

// Flattening traversals over the calendar hierarchy. Scalar fields are
// excluded by construction; only keyed containers are walked.

func (a *Aggregator) allYears() []*tracker.YearRecord {
	var years []*tracker.YearRecord
	for _, name := range a.hostnames() {
		for _, y := range a.tree.Hosts[name].Years {
			years = append(years, y)
		}
	}
	return years
}

func (a *Aggregator) allQuarters() []*tracker.QuarterRecord {
	var quarters []*tracker.QuarterRecord
	for _, y := range a.allYears() {
		for _, q := range y.Quarters {
			quarters = append(quarters, q)
		}
	}
	return quarters
}

func (a *Aggregator) allMonths() []*tracker.MonthRecord {
	var months []*tracker.MonthRecord
	for _, q := range a.allQuarters() {
		for _, m := range q.Months {
			months = append(months, m)
		}
	}
	return months
}

func (a *Aggregator) allDays() []*tracker.DayRecord {
	var days []*tracker.DayRecord
	for _, m := range a.allMonths() {
		for _, d := range m.Days {
			days = append(days, d)
		}
	}
	return days
}
