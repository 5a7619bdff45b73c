package tracker

import "strings"

// Tree is the root of the nested counter hierarchy. Every counter holds
// accumulated seconds; at each node AllTime equals the sum of all seconds
// ever recorded through it. Branches are created lazily on first visit and
// never removed.
type Tree struct {
	AllTime    int64                  `json:"all_time"`
	FirstVisit string                 `json:"first_visit"`
	Hosts      map[string]*HostRecord `json:"hosts"`
}

// HostRecord tracks one distinct hostname. FirstVisit is set once on
// creation; FaviconURL and LastVisit are overwritten on every visit.
type HostRecord struct {
	AllTime    int64                  `json:"all_time"`
	FaviconURL string                 `json:"favicon_url,omitempty"`
	FirstVisit string                 `json:"first_visit"`
	LastVisit  string                 `json:"last_visit"`
	Years      map[string]*YearRecord `json:"years"`
}

// YearRecord holds the quarter hierarchy plus the independent week/day-of-week
// axis. WeekDetails is keyed "{weekOfYear}-{dayOfWeek}" with dayOfWeek 1..7
// (Monday first) and maps straight to accumulated seconds.
type YearRecord struct {
	AllTime     int64                     `json:"all_time"`
	WeekDetails map[string]int64          `json:"week_details"`
	Quarters    map[string]*QuarterRecord `json:"quarters"`
}

// QuarterRecord is keyed "1".."4" under its year.
type QuarterRecord struct {
	AllTime int64                   `json:"all_time"`
	Months  map[string]*MonthRecord `json:"months"`
}

type MonthRecord struct {
	AllTime int64                 `json:"all_time"`
	Days    map[string]*DayRecord `json:"days"`
}

type DayRecord struct {
	AllTime int64                  `json:"all_time"`
	Hours   map[string]*HourRecord `json:"hours"`
}

// HourRecord is the deepest container; Minutes maps minute-of-hour keys
// "0".."59" to accumulated seconds.
type HourRecord struct {
	AllTime int64            `json:"all_time"`
	Minutes map[string]int64 `json:"minutes"`
}

// NewTree creates an empty tree with the given first-visit date.
func NewTree(firstVisit string) *Tree {
	return &Tree{
		FirstVisit: firstVisit,
		Hosts:      map[string]*HostRecord{},
	}
}

// Host returns the record for hostname, nil if unknown.
func (t *Tree) Host(hostname string) *HostRecord {
	if t == nil {
		return nil
	}
	return t.Hosts[hostname]
}

// YearAt returns the year branch for hostname, nil if absent at any level.
func (t *Tree) YearAt(hostname, year string) *YearRecord {
	h := t.Host(hostname)
	if h == nil {
		return nil
	}
	return h.Years[year]
}

// QuarterAt returns the quarter branch, nil if absent at any level.
func (t *Tree) QuarterAt(hostname, year, quarter string) *QuarterRecord {
	y := t.YearAt(hostname, year)
	if y == nil {
		return nil
	}
	return y.Quarters[quarter]
}

// MonthAt returns the month branch, nil if absent at any level.
func (t *Tree) MonthAt(hostname, year, quarter, month string) *MonthRecord {
	q := t.QuarterAt(hostname, year, quarter)
	if q == nil {
		return nil
	}
	return q.Months[month]
}

// DayAt returns the day branch, nil if absent at any level.
func (t *Tree) DayAt(hostname, year, quarter, month, day string) *DayRecord {
	m := t.MonthAt(hostname, year, quarter, month)
	if m == nil {
		return nil
	}
	return m.Days[day]
}

// HourAt returns the hour branch, nil if absent at any level.
func (t *Tree) HourAt(hostname, year, quarter, month, day, hour string) *HourRecord {
	d := t.DayAt(hostname, year, quarter, month, day)
	if d == nil {
		return nil
	}
	return d.Hours[hour]
}

// WeekDetailAt returns the seconds recorded for a composite week-detail key
// under the given year, reporting absence through the second return value.
func (t *Tree) WeekDetailAt(hostname, year, weekDetail string) (int64, bool) {
	y := t.YearAt(hostname, year)
	if y == nil {
		return 0, false
	}
	seconds, ok := y.WeekDetails[weekDetail]
	return seconds, ok
}

// SplitWeekDetail splits a composite "{weekOfYear}-{dayOfWeek}" key. This is
// the only place the tree interprets a period key.
func SplitWeekDetail(key string) (weekOfYear, dayOfWeek string, ok bool) {
	weekOfYear, dayOfWeek, ok = strings.Cut(key, "-")
	if !ok || weekOfYear == "" || dayOfWeek == "" {
		return "", "", false
	}
	return weekOfYear, dayOfWeek, true
}

// Clone deep-copies the tree so aggregation can run over a frozen snapshot
// while visits keep being recorded.
func (t *Tree) Clone() *Tree {
	if t == nil {
		return nil
	}
	out := &Tree{
		AllTime:    t.AllTime,
		FirstVisit: t.FirstVisit,
		Hosts:      make(map[string]*HostRecord, len(t.Hosts)),
	}
	for name, h := range t.Hosts {
		out.Hosts[name] = h.clone()
	}
	return out
}

func (h *HostRecord) clone() *HostRecord {
	out := &HostRecord{
		AllTime:    h.AllTime,
		FaviconURL: h.FaviconURL,
		FirstVisit: h.FirstVisit,
		LastVisit:  h.LastVisit,
		Years:      make(map[string]*YearRecord, len(h.Years)),
	}
	for k, y := range h.Years {
		out.Years[k] = y.clone()
	}
	return out
}

func (y *YearRecord) clone() *YearRecord {
	out := &YearRecord{
		AllTime:     y.AllTime,
		WeekDetails: make(map[string]int64, len(y.WeekDetails)),
		Quarters:    make(map[string]*QuarterRecord, len(y.Quarters)),
	}
	for k, v := range y.WeekDetails {
		out.WeekDetails[k] = v
	}
	for k, q := range y.Quarters {
		out.Quarters[k] = q.clone()
	}
	return out
}

func (q *QuarterRecord) clone() *QuarterRecord {
	out := &QuarterRecord{
		AllTime: q.AllTime,
		Months:  make(map[string]*MonthRecord, len(q.Months)),
	}
	for k, m := range q.Months {
		out.Months[k] = m.clone()
	}
	return out
}

func (m *MonthRecord) clone() *MonthRecord {
	out := &MonthRecord{
		AllTime: m.AllTime,
		Days:    make(map[string]*DayRecord, len(m.Days)),
	}
	for k, d := range m.Days {
		out.Days[k] = d.clone()
	}
	return out
}

func (d *DayRecord) clone() *DayRecord {
	out := &DayRecord{
		AllTime: d.AllTime,
		Hours:   make(map[string]*HourRecord, len(d.Hours)),
	}
	for k, h := range d.Hours {
		out.Hours[k] = h.clone()
	}
	return out
}

func (h *HourRecord) clone() *HourRecord {
	out := &HourRecord{
		AllTime: h.AllTime,
		Minutes: make(map[string]int64, len(h.Minutes)),
	}
	for k, v := range h.Minutes {
		out.Minutes[k] = v
	}
	return out
}

// normalize replaces nil maps left behind by JSON decoding of older or
// hand-edited snapshots, so map writes never panic.
func (t *Tree) normalize() {
	if t.Hosts == nil {
		t.Hosts = map[string]*HostRecord{}
	}
	for _, h := range t.Hosts {
		if h.Years == nil {
			h.Years = map[string]*YearRecord{}
		}
		for _, y := range h.Years {
			if y.WeekDetails == nil {
				y.WeekDetails = map[string]int64{}
			}
			if y.Quarters == nil {
				y.Quarters = map[string]*QuarterRecord{}
			}
			for _, q := range y.Quarters {
				if q.Months == nil {
					q.Months = map[string]*MonthRecord{}
				}
				for _, m := range q.Months {
					if m.Days == nil {
						m.Days = map[string]*DayRecord{}
					}
					for _, d := range m.Days {
						if d.Hours == nil {
							d.Hours = map[string]*HourRecord{}
						}
						for _, hr := range d.Hours {
							if hr.Minutes == nil {
								hr.Minutes = map[string]int64{}
							}
						}
					}
				}
			}
		}
	}
}
