package uptime

import "time"

// Window is one of the three fixed trailing periods anchored at the
// dataset's latest observed timestamp.
type Window string

const (
	WindowHour Window = "HOUR"
	WindowDay  Window = "DAY"
	WindowWeek Window = "WEEK"
)

// Windows lists all supported windows in reporting order.
func Windows() []Window {
	return []Window{WindowHour, WindowDay, WindowWeek}
}

// IsValid checks if the window is one of the supported values.
func (w Window) IsValid() bool {
	switch w {
	case WindowHour, WindowDay, WindowWeek:
		return true
	default:
		return false
	}
}

// Length returns the trailing duration covered by the window.
func (w Window) Length() time.Duration {
	switch w {
	case WindowHour:
		return time.Hour
	case WindowDay:
		return 24 * time.Hour
	case WindowWeek:
		return 7 * 24 * time.Hour
	default:
		return 0
	}
}

// WindowResult is the scored outcome for one window of one store.
type WindowResult struct {
	Window   Window
	Uptime   time.Duration
	Downtime time.Duration
}

// Total returns the scored business time covered by the window.
func (r WindowResult) Total() time.Duration { return r.Uptime + r.Downtime }
