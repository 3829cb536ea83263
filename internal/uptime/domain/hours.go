package uptime

import (
	"fmt"
	"sort"
	"time"
)

// secondsPerDay is the length of a full local day in seconds.
const secondsPerDay = 24 * 60 * 60

// LocalSeconds is a wall-clock time expressed as seconds since local
// midnight. The close boundary may be secondsPerDay (24:00).
type LocalSeconds int

// ParseLocalTime parses an "HH:MM:SS" local time string.
func ParseLocalTime(value string) (LocalSeconds, error) {
	var hour, minute, second int
	if _, err := fmt.Sscanf(value, "%d:%d:%d", &hour, &minute, &second); err != nil {
		return 0, ErrInvalidLocalTime
	}
	if hour < 0 || hour > 24 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return 0, ErrInvalidLocalTime
	}
	total := LocalSeconds(hour*3600 + minute*60 + second)
	if total > secondsPerDay {
		return 0, ErrInvalidLocalTime
	}
	return total, nil
}

// BusinessHours is one declared open interval for a store on a weekday.
// DayOfWeek uses Monday=0 .. Sunday=6, matching the source data.
type BusinessHours struct {
	StoreID    string
	DayOfWeek  int
	OpenLocal  LocalSeconds
	CloseLocal LocalSeconds
}

// LocalInterval is a half-open [Open, Close) wall-clock interval within a
// single local day.
type LocalInterval struct {
	Open  LocalSeconds
	Close LocalSeconds
}

// Calendar resolves the business intervals applicable to each weekday.
//
// Resolution is an explicit decision table:
//   - a store with no declared rows at all is open the full day, every day;
//   - a store with declared rows is open only during the rows matching a
//     given weekday, and closed on weekdays with no matching row.
type Calendar struct {
	byDay      [7][]LocalInterval
	alwaysOpen bool
}

// NewCalendar builds a calendar from a store's declared hours. Rows with an
// out-of-range weekday or an empty interval are ignored rather than failing
// resolution; absent data resolves to the defaults deterministically.
func NewCalendar(rows []BusinessHours) Calendar {
	if len(rows) == 0 {
		return Calendar{alwaysOpen: true}
	}
	var cal Calendar
	for _, row := range rows {
		if row.DayOfWeek < 0 || row.DayOfWeek > 6 {
			continue
		}
		if row.OpenLocal >= row.CloseLocal {
			continue
		}
		cal.byDay[row.DayOfWeek] = append(cal.byDay[row.DayOfWeek], LocalInterval{
			Open:  row.OpenLocal,
			Close: row.CloseLocal,
		})
	}
	for day := range cal.byDay {
		cal.byDay[day] = coalesceIntervals(cal.byDay[day])
	}
	return cal
}

// coalesceIntervals unions a day's declared intervals so that overlapping or
// touching rows never contribute the same minute twice.
func coalesceIntervals(intervals []LocalInterval) []LocalInterval {
	if len(intervals) < 2 {
		return intervals
	}
	sort.Slice(intervals, func(i, j int) bool {
		if intervals[i].Open != intervals[j].Open {
			return intervals[i].Open < intervals[j].Open
		}
		return intervals[i].Close < intervals[j].Close
	})
	merged := intervals[:1]
	for _, next := range intervals[1:] {
		last := &merged[len(merged)-1]
		if next.Open <= last.Close {
			if next.Close > last.Close {
				last.Close = next.Close
			}
			continue
		}
		merged = append(merged, next)
	}
	return merged
}

// AlwaysOpen tells if the store had no declared hours at all.
func (c Calendar) AlwaysOpen() bool { return c.alwaysOpen }

// IntervalsFor returns the business intervals for a weekday (Monday=0).
// An empty result means the store is closed that day.
func (c Calendar) IntervalsFor(dayOfWeek int) []LocalInterval {
	if dayOfWeek < 0 || dayOfWeek > 6 {
		return nil
	}
	if c.alwaysOpen {
		return []LocalInterval{{Open: 0, Close: secondsPerDay}}
	}
	return c.byDay[dayOfWeek]
}

// mondayWeekday converts Go's Sunday=0 weekday to the Monday=0 convention
// used by business-hours rows.
func mondayWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
