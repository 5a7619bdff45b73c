package report

import "strconv"

// ChartSeries is one chart's worth of data, paired index-for-index with its
// labels. This is the shape the presentation layer consumes directly.
type ChartSeries struct {
	Data   []int64  `json:"data"`
	Labels []string `json:"labels"`
}

// Summary is the full view model for the popup-style overview: one formatted
// all-time total, four leaderboards, and four histograms.
type Summary struct {
	AllTime                string      `json:"all_time"`
	PagesVisitedToday      ChartSeries `json:"pages_visited_today"`
	PagesVisitedYesterday  ChartSeries `json:"pages_visited_yesterday"`
	PagesVisitedThisMonth  ChartSeries `json:"pages_visited_this_month"`
	PagesVisitedLastMonth  ChartSeries `json:"pages_visited_last_month"`
	TimeSpentInHours       ChartSeries `json:"time_spent_in_hours"`
	TimeSpentInHoursTotal  ChartSeries `json:"time_spent_in_hours_total"`
	TimeSpentInMinutes     ChartSeries `json:"time_spent_in_minutes"`
	TimeSpentEachDayOfWeek ChartSeries `json:"time_spent_each_day_of_week"`
}

// BuildSummary assembles the complete view model from the snapshot. An empty
// tree yields empty leaderboards and all-zero histograms, never an error.
func (a *Aggregator) BuildSummary() *Summary {
	return &Summary{
		AllTime:                FormatDuration(a.tree.AllTime),
		PagesVisitedToday:      a.Leaderboard(PeriodToday, ""),
		PagesVisitedYesterday:  a.Leaderboard(PeriodYesterday, ""),
		PagesVisitedThisMonth:  a.Leaderboard(PeriodMonth, ""),
		PagesVisitedLastMonth:  a.Leaderboard(PeriodMonth, a.clk.LastMonth()),
		TimeSpentInHours:       minuteSeries(a.TimeSpentInHours()),
		TimeSpentInHoursTotal:  minuteSeries(a.TimeSpentInHoursAllTime()),
		TimeSpentInMinutes:     secondSeries(a.TimeSpentInMinutes()),
		TimeSpentEachDayOfWeek: weekdaySeries(a.TimeSpentInDaysOfWeek()),
	}
}

// Leaderboard ranks hostnames for a period and folds everything past the
// top-N cutoff into a trailing "Other" bucket. Empty periods produce an
// empty series with no Other slot.
func (a *Aggregator) Leaderboard(period Period, key string) ChartSeries {
	pages := a.PagesVisited(period, key)
	SortDescending(pages)

	series := ChartSeries{Data: []int64{}, Labels: []string{}}
	if len(pages) == 0 {
		return series
	}

	top := a.TopCount
	if top <= 0 {
		top = 10
	}

	var other int64
	for i, page := range pages {
		if i < top {
			series.Data = append(series.Data, page.Seconds)
			series.Labels = append(series.Labels, page.Hostname)
			continue
		}
		other += page.Seconds
	}
	series.Data = append(series.Data, other)
	series.Labels = append(series.Labels, "Other")

	return series
}

// minuteSeries renders a per-slot seconds histogram in whole minutes with
// slot-number labels.
func minuteSeries(seconds []int64) ChartSeries {
	series := ChartSeries{
		Data:   make([]int64, len(seconds)),
		Labels: make([]string, len(seconds)),
	}
	for i, s := range seconds {
		series.Data[i] = roundToMinutes(s)
		series.Labels[i] = strconv.Itoa(i)
	}
	return series
}

// secondSeries keeps raw seconds with slot-number labels.
func secondSeries(seconds []int64) ChartSeries {
	series := ChartSeries{
		Data:   make([]int64, len(seconds)),
		Labels: make([]string, len(seconds)),
	}
	for i, s := range seconds {
		series.Data[i] = s
		series.Labels[i] = strconv.Itoa(i)
	}
	return series
}

// weekdaySeries renders the Monday-first weekday histogram in whole minutes
// with human day names as labels.
func weekdaySeries(seconds []int64) ChartSeries {
	series := ChartSeries{
		Data:   make([]int64, len(seconds)),
		Labels: make([]string, len(seconds)),
	}
	for i, s := range seconds {
		series.Data[i] = roundToMinutes(s)
		series.Labels[i] = DayName(i + 1)
	}
	return series
}
