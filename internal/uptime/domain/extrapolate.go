package uptime

import (
	"sort"
	"time"
)

// Result accumulates scored uptime and downtime for a window. Durations are
// exact; minutes and hours are derived only at presentation time, so
// Uptime+Downtime always equals the total scored-interval duration.
type Result struct {
	Uptime   time.Duration
	Downtime time.Duration
}

// Total returns the scored-interval duration covered by the result.
func (r Result) Total() time.Duration { return r.Uptime + r.Downtime }

// ScoredIntervals enumerates the UTC sub-intervals of window that fall
// inside business hours, in the store's local timezone. Each local calendar
// day overlapping the window contributes its business intervals, converted
// to UTC and clipped to the window; days with no overlap are dropped. The
// result may be several disjoint intervals even for a single window.
func ScoredIntervals(window Interval, cal Calendar, loc *time.Location) []Interval {
	if window.IsEmpty() {
		return nil
	}
	startLocal := window.Start.In(loc)
	endLocal := window.End.In(loc)

	day := time.Date(startLocal.Year(), startLocal.Month(), startLocal.Day(), 0, 0, 0, 0, loc)
	lastDay := time.Date(endLocal.Year(), endLocal.Month(), endLocal.Day(), 0, 0, 0, 0, loc)

	var scored []Interval
	for !day.After(lastDay) {
		for _, li := range cal.IntervalsFor(mondayWeekday(day)) {
			openAt := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, int(li.Open), 0, loc)
			closeAt := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, int(li.Close), 0, loc)
			business := Interval{Start: openAt.UTC(), End: closeAt.UTC()}
			if clipped, ok := business.Intersect(window); ok {
				scored = append(scored, clipped)
			}
		}
		day = day.AddDate(0, 0, 1)
	}
	return scored
}

// statusSegment tags a sub-interval of the query window with the status the
// store is assumed to hold throughout it.
type statusSegment struct {
	span   Interval
	status Status
}

// buildTimeline materializes the piecewise status function over the window
// as an ordered sequence of tagged intervals:
//
//   - the first in-window observation's status extends backward to the
//     window start;
//   - each observation's status holds until the next observation;
//   - the last observation's status extends forward to the window end;
//   - with no in-window observations the whole window defaults to active
//     (no data means the store is assumed to operate normally).
//
// Observations at equal timestamps collapse to the last ingested one.
func buildTimeline(window Interval, observations []Observation) []statusSegment {
	inWindow := make([]Observation, 0, len(observations))
	for _, obs := range observations {
		if window.Contains(obs.TimestampUTC) {
			inWindow = append(inWindow, obs)
		}
	}
	if len(inWindow) == 0 {
		return []statusSegment{{span: window, status: StatusActive}}
	}

	sort.SliceStable(inWindow, func(i, j int) bool {
		return inWindow[i].TimestampUTC.Before(inWindow[j].TimestampUTC)
	})

	// Last-written wins at equal timestamps.
	deduped := inWindow[:0]
	for _, obs := range inWindow {
		if n := len(deduped); n > 0 && deduped[n-1].TimestampUTC.Equal(obs.TimestampUTC) {
			deduped[n-1] = obs
			continue
		}
		deduped = append(deduped, obs)
	}

	segments := make([]statusSegment, 0, len(deduped)+1)
	if deduped[0].TimestampUTC.After(window.Start) {
		segments = append(segments, statusSegment{
			span:   Interval{Start: window.Start, End: deduped[0].TimestampUTC},
			status: deduped[0].Status,
		})
	}
	for i, obs := range deduped {
		end := window.End
		if i+1 < len(deduped) {
			end = deduped[i+1].TimestampUTC
		}
		span := Interval{Start: obs.TimestampUTC, End: end}
		if span.IsEmpty() {
			continue
		}
		segments = append(segments, statusSegment{span: span, status: obs.Status})
	}
	return segments
}

// Extrapolate computes uptime and downtime for one store within a UTC
// window, counting only minutes inside the store's business hours. It clips
// the piecewise status timeline to every scored interval and accumulates by
// status.
func Extrapolate(window Interval, observations []Observation, cal Calendar, loc *time.Location) Result {
	scored := ScoredIntervals(window, cal, loc)
	if len(scored) == 0 {
		return Result{}
	}
	timeline := buildTimeline(window, observations)

	var result Result
	for _, iv := range scored {
		for _, seg := range timeline {
			clipped, ok := seg.span.Intersect(iv)
			if !ok {
				continue
			}
			if seg.status == StatusActive {
				result.Uptime += clipped.Duration()
			} else {
				result.Downtime += clipped.Duration()
			}
		}
	}
	return result
}
