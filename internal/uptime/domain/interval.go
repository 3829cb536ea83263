package uptime

import "time"

// Interval is a half-open UTC interval [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewWindowEndingAt builds the trailing interval of the given length that
// ends at anchor.
func NewWindowEndingAt(anchor time.Time, length time.Duration) Interval {
	return Interval{Start: anchor.Add(-length), End: anchor}
}

// IsEmpty tells if the interval contains no time.
func (iv Interval) IsEmpty() bool {
	return !iv.Start.Before(iv.End)
}

// Duration returns the interval length.
func (iv Interval) Duration() time.Duration {
	if iv.IsEmpty() {
		return 0
	}
	return iv.End.Sub(iv.Start)
}

// Contains tells if t falls inside [Start, End).
func (iv Interval) Contains(t time.Time) bool {
	return !t.Before(iv.Start) && t.Before(iv.End)
}

// Intersect clips the interval against other. The second return value is
// false when the intervals do not overlap.
func (iv Interval) Intersect(other Interval) (Interval, bool) {
	start := iv.Start
	if other.Start.After(start) {
		start = other.Start
	}
	end := iv.End
	if other.End.Before(end) {
		end = other.End
	}
	clipped := Interval{Start: start, End: end}
	if clipped.IsEmpty() {
		return Interval{}, false
	}
	return clipped, true
}
