package clock

import (
	"strconv"
	"time"
)

// Clock supplies the canonical period keys used by the time-bucket tree.
// All keys are unpadded decimal strings; the tree never derives calendar
// values on its own.
type Clock interface {
	Year() string
	Quarter() string
	Month() string
	DayOfMonth() string
	Hour() string
	Minute() string
	WeekOfYear() string
	WeekDetail() string
	Yesterday() string
	LastMonth() string
	DateString() string
	Now() time.Time
}

// System reads period keys from the local wall clock.
type System struct{}

func (System) Now() time.Time       { return time.Now() }
func (c System) Year() string       { return yearKey(c.Now()) }
func (c System) Quarter() string    { return quarterKey(c.Now()) }
func (c System) Month() string      { return monthKey(c.Now()) }
func (c System) DayOfMonth() string { return dayKey(c.Now()) }
func (c System) Hour() string       { return hourKey(c.Now()) }
func (c System) Minute() string     { return minuteKey(c.Now()) }
func (c System) WeekOfYear() string { return weekKey(c.Now()) }
func (c System) WeekDetail() string { return weekDetailKey(c.Now()) }
func (c System) Yesterday() string  { return dayKey(c.Now().AddDate(0, 0, -1)) }
func (c System) LastMonth() string  { return lastMonthKey(c.Now()) }
func (c System) DateString() string { return dateString(c.Now()) }

// Frozen returns period keys for a fixed instant. Used by tests and anywhere
// a deterministic calendar is needed.
type Frozen struct {
	At time.Time
}

func (c Frozen) Now() time.Time     { return c.At }
func (c Frozen) Year() string       { return yearKey(c.At) }
func (c Frozen) Quarter() string    { return quarterKey(c.At) }
func (c Frozen) Month() string      { return monthKey(c.At) }
func (c Frozen) DayOfMonth() string { return dayKey(c.At) }
func (c Frozen) Hour() string       { return hourKey(c.At) }
func (c Frozen) Minute() string     { return minuteKey(c.At) }
func (c Frozen) WeekOfYear() string { return weekKey(c.At) }
func (c Frozen) WeekDetail() string { return weekDetailKey(c.At) }
func (c Frozen) Yesterday() string  { return dayKey(c.At.AddDate(0, 0, -1)) }
func (c Frozen) LastMonth() string  { return lastMonthKey(c.At) }
func (c Frozen) DateString() string { return dateString(c.At) }

func yearKey(t time.Time) string {
	return strconv.Itoa(t.Year())
}

func quarterKey(t time.Time) string {
	return strconv.Itoa((int(t.Month())-1)/3 + 1)
}

func monthKey(t time.Time) string {
	return strconv.Itoa(int(t.Month()))
}

func dayKey(t time.Time) string {
	return strconv.Itoa(t.Day())
}

func hourKey(t time.Time) string {
	return strconv.Itoa(t.Hour())
}

func minuteKey(t time.Time) string {
	return strconv.Itoa(t.Minute())
}

// weekKey is the ISO week number without the ISO year. Week numbering does
// not account for year rollover, so entries recorded in the last days of
// December can share a week number with the first days of the next January.
// Known limitation, kept for compatibility with previously recorded trees.
func weekKey(t time.Time) string {
	_, week := t.ISOWeek()
	return strconv.Itoa(week)
}

// DayOfWeek maps Monday..Sunday to 1..7.
func DayOfWeek(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func weekDetailKey(t time.Time) string {
	return weekKey(t) + "-" + strconv.Itoa(DayOfWeek(t))
}

// lastMonthKey wraps January back to December rather than doing date
// arithmetic, so the 31st of a month never normalizes past the target month.
func lastMonthKey(t time.Time) string {
	m := int(t.Month()) - 1
	if m == 0 {
		m = 12
	}
	return strconv.Itoa(m)
}

func dateString(t time.Time) string {
	return t.Format("2006-01-02")
}
