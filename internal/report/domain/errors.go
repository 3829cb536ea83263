package report

import "errors"

var (
	// ErrEmptyID is returned when the report id is empty.
	ErrEmptyID = errors.New("report: empty id")
	// ErrInvalidCreatedAt is returned when creation time is zero.
	ErrInvalidCreatedAt = errors.New("report: invalid created_at")
	// ErrInvalidCompletedAt is returned when completion time is zero.
	ErrInvalidCompletedAt = errors.New("report: invalid completed_at")
	// ErrAlreadyFinished guards the Running -> Complete|Failed transition.
	ErrAlreadyFinished = errors.New("report: already finished")
	// ErrNotFound is returned when a report id is unknown.
	ErrNotFound = errors.New("report: not found")
	// ErrRowsNotReady is returned when rows are read before completion.
	ErrRowsNotReady = errors.New("report: rows not ready")
	// ErrStoreNotInReport is returned when a store is absent from a report.
	ErrStoreNotInReport = errors.New("report: store not in report")
	// ErrNilReport is returned when saving a nil report.
	ErrNilReport = errors.New("report: nil report")
	// ErrDataUnavailable marks a storage read failure during scoring. It is
	// fatal to the report and not retried automatically.
	ErrDataUnavailable = errors.New("report: data unavailable")
)
