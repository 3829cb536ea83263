package report

import (
	"time"

	uptime "store-monitor/internal/uptime/domain"
)

// Status is the lifecycle state of a report job.
type Status string

const (
	StatusRunning  Status = "Running"
	StatusComplete Status = "Complete"
	StatusFailed   Status = "Failed"
)

// IsValid checks if the status is one of the supported values.
func (s Status) IsValid() bool {
	switch s {
	case StatusRunning, StatusComplete, StatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal tells if the status can no longer change.
func (s Status) IsTerminal() bool {
	return s == StatusComplete || s == StatusFailed
}

// Report is a background scoring job and its materialized result.
// Invariants:
// 1) Running -> Complete or Running -> Failed; terminal states are frozen.
// 2) Rows are readable only once the report is Complete.
// 3) The report is mutated exclusively by the background unit that owns it.
type Report struct {
	ID           string
	Status       Status
	CreatedAt    time.Time
	CompletedAt  time.Time
	ErrorMessage string
	Rows         []uptime.Summary
}

// NewReport creates a report in the Running state.
func NewReport(id string, createdAt time.Time) (*Report, error) {
	if id == "" {
		return nil, ErrEmptyID
	}
	if createdAt.IsZero() {
		return nil, ErrInvalidCreatedAt
	}
	return &Report{
		ID:        id,
		Status:    StatusRunning,
		CreatedAt: createdAt,
	}, nil
}

// Complete freezes the report with its rows.
func (r *Report) Complete(rows []uptime.Summary, completedAt time.Time) error {
	if r.Status.IsTerminal() {
		return ErrAlreadyFinished
	}
	if completedAt.IsZero() {
		return ErrInvalidCompletedAt
	}
	r.Rows = rows
	r.Status = StatusComplete
	r.CompletedAt = completedAt
	return nil
}

// Fail freezes the report as failed. Partial rows are discarded; there is
// no partial-success state.
func (r *Report) Fail(message string, completedAt time.Time) error {
	if r.Status.IsTerminal() {
		return ErrAlreadyFinished
	}
	if completedAt.IsZero() {
		return ErrInvalidCompletedAt
	}
	r.Rows = nil
	r.Status = StatusFailed
	r.ErrorMessage = message
	r.CompletedAt = completedAt
	return nil
}

// ReadRows returns the materialized rows once the report is Complete.
func (r *Report) ReadRows() ([]uptime.Summary, error) {
	if r.Status != StatusComplete {
		return nil, ErrRowsNotReady
	}
	return r.Rows, nil
}

// FindRow looks up the summary for one store within a completed report.
func (r *Report) FindRow(storeID string) (uptime.Summary, error) {
	rows, err := r.ReadRows()
	if err != nil {
		return uptime.Summary{}, err
	}
	for _, row := range rows {
		if row.StoreID == storeID {
			return row, nil
		}
	}
	return uptime.Summary{}, ErrStoreNotInReport
}
