package uptime

import "errors"

var (
	// ErrInvalidLocalTime is returned when a local time string cannot be parsed.
	ErrInvalidLocalTime = errors.New("uptime: invalid local time")
	// ErrInvalidDayOfWeek is returned when a day of week is outside 0..6.
	ErrInvalidDayOfWeek = errors.New("uptime: invalid day of week")
	// ErrInvalidStatus is returned when a status value is unknown.
	ErrInvalidStatus = errors.New("uptime: invalid status")
	// ErrInvalidWindow is returned when a window name is unsupported.
	ErrInvalidWindow = errors.New("uptime: invalid window")
	// ErrEmptyStoreID is returned when a store id is empty.
	ErrEmptyStoreID = errors.New("uptime: empty store id")
)
