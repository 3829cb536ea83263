package uptime

import (
	"math"
	"time"
)

// Summary is the per-store report row: uptime/downtime over the three
// trailing windows plus derived metrics. Values are stored in their
// presentation units (hour window in minutes, day/week windows in hours,
// hours rounded to two decimals) and are never recomputed once the owning
// report completes.
type Summary struct {
	StoreID                 string  `json:"store_id"`
	UptimeLastHourMinutes   int64   `json:"uptime_last_hour_minutes"`
	UptimeLastDayHours      float64 `json:"uptime_last_day_hours"`
	UptimeLastWeekHours     float64 `json:"uptime_last_week_hours"`
	DowntimeLastHourMinutes int64   `json:"downtime_last_hour_minutes"`
	DowntimeLastDayHours    float64 `json:"downtime_last_day_hours"`
	DowntimeLastWeekHours   float64 `json:"downtime_last_week_hours"`
	AverageUptimePercent    float64 `json:"average_uptime_percentage"`
	TotalBusinessHoursWeek  float64 `json:"total_business_hours_week"`
}

// WindowResults scores the three trailing windows for one store, each
// anchored at the shared dataset-wide now.
func WindowResults(now time.Time, observations []Observation, cal Calendar, loc *time.Location) []WindowResult {
	results := make([]WindowResult, 0, 3)
	for _, w := range Windows() {
		res := Extrapolate(NewWindowEndingAt(now, w.Length()), observations, cal, loc)
		results = append(results, WindowResult{Window: w, Uptime: res.Uptime, Downtime: res.Downtime})
	}
	return results
}

// BuildSummary derives the report row for one store from its window
// results. The average uptime percentage is derived solely from the week
// window; a store with zero business hours that week reports 100 (there is
// nothing for it to be down during).
func BuildSummary(storeID string, results []WindowResult) Summary {
	summary := Summary{StoreID: storeID}
	for _, res := range results {
		switch res.Window {
		case WindowHour:
			summary.UptimeLastHourMinutes = roundMinutes(res.Uptime)
			summary.DowntimeLastHourMinutes = roundMinutes(res.Downtime)
		case WindowDay:
			summary.UptimeLastDayHours = roundHours(res.Uptime)
			summary.DowntimeLastDayHours = roundHours(res.Downtime)
		case WindowWeek:
			summary.UptimeLastWeekHours = roundHours(res.Uptime)
			summary.DowntimeLastWeekHours = roundHours(res.Downtime)
			summary.TotalBusinessHoursWeek = roundHours(res.Total())
			if res.Total() <= 0 {
				summary.AverageUptimePercent = 100
			} else {
				pct := 100 * res.Uptime.Hours() / res.Total().Hours()
				summary.AverageUptimePercent = math.Round(pct*100) / 100
			}
		}
	}
	return summary
}

// Score runs the window aggregator end to end for one store.
func Score(storeID string, now time.Time, observations []Observation, cal Calendar, loc *time.Location) Summary {
	return BuildSummary(storeID, WindowResults(now, observations, cal, loc))
}

func roundMinutes(d time.Duration) int64 {
	return int64(math.Round(d.Minutes()))
}

func roundHours(d time.Duration) float64 {
	return math.Round(d.Hours()*100) / 100
}
