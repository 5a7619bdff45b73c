package report

import (
	"fmt"
	"sort"
)

const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * 60
	secondsPerDay    = 60 * 60 * 24
)

// SortDescending orders page visits by seconds, highest first. The sort is
// stable, so ties keep their encounter order.
func SortDescending(pages []PageVisit) {
	sort.SliceStable(pages, func(i, j int) bool {
		return pages[i].Seconds > pages[j].Seconds
	})
}

var dayNames = [7]string{
	"Monday",
	"Tuesday",
	"Wednesday",
	"Thursday",
	"Friday",
	"Saturday",
	"Sunday",
}

// DayName maps 1..7 to Monday..Sunday. Out-of-range numbers yield "".
func DayName(n int) string {
	if n < 1 || n > 7 {
		return ""
	}
	return dayNames[n-1]
}

// FormatDuration renders seconds as "{d}d{hh}h{mm}m{ss}s". Unit thresholds
// are strict: exactly one day renders with no day component, exactly one
// hour with no hour component, and so on. The leading unit is unpadded;
// every unit after it is zero-padded to two digits.
func FormatDuration(seconds int64) string {
	switch {
	case seconds > secondsPerDay:
		days := seconds / secondsPerDay
		rest := seconds % secondsPerDay
		return fmt.Sprintf("%dd%02dh%02dm%02ds",
			days, rest/secondsPerHour, rest%secondsPerHour/secondsPerMinute, rest%secondsPerMinute)
	case seconds > secondsPerHour:
		return fmt.Sprintf("%dh%02dm%02ds",
			seconds/secondsPerHour, seconds%secondsPerHour/secondsPerMinute, seconds%secondsPerMinute)
	case seconds > secondsPerMinute:
		return fmt.Sprintf("%dm%02ds", seconds/secondsPerMinute, seconds%secondsPerMinute)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

// roundToMinutes converts seconds to whole minutes, rounding half-up.
func roundToMinutes(seconds int64) int64 {
	return (seconds + secondsPerMinute/2) / secondsPerMinute
}
