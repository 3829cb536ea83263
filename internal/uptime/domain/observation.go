package uptime

import "time"

// Status is the observed operating state of a store at a point in time.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// IsValid checks if the status is one of the supported values.
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive:
		return true
	default:
		return false
	}
}

// ParseStatus validates a raw status string.
func ParseStatus(value string) (Status, error) {
	s := Status(value)
	if !s.IsValid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// Observation is a single status ping for a store.
// Timestamps are always UTC instants; observations are immutable once
// ingested. Equal timestamps are resolved by ingestion order: the
// later-ingested observation wins when the timeline is built.
type Observation struct {
	StoreID      string
	TimestampUTC time.Time
	Status       Status
}
