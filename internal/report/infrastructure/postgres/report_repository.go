package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	report "store-monitor/internal/report/domain"
	uptime "store-monitor/internal/uptime/domain"
)

// ReportRepository persists report jobs in Postgres. Rows are stored as a
// JSON document alongside the job record; they are written once, by the
// background unit owning the report.
type ReportRepository struct {
	db *sql.DB
}

// NewReportRepository constructs a repository.
func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create inserts a new report record.
func (r *ReportRepository) Create(ctx context.Context, rpt *report.Report) error {
	if r == nil || r.db == nil {
		return errors.New("report repo: nil db")
	}
	if rpt == nil {
		return report.ErrNilReport
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO report_jobs (report_id, status, created_at)
VALUES ($1, $2, $3)`, rpt.ID, string(rpt.Status), rpt.CreatedAt)
	return err
}

// Save updates an existing report record with its terminal state and rows.
func (r *ReportRepository) Save(ctx context.Context, rpt *report.Report) error {
	if r == nil || r.db == nil {
		return errors.New("report repo: nil db")
	}
	if rpt == nil {
		return report.ErrNilReport
	}
	var rowsJSON []byte
	if rpt.Rows != nil {
		encoded, err := json.Marshal(rpt.Rows)
		if err != nil {
			return err
		}
		rowsJSON = encoded
	}
	var completedAt sql.NullTime
	if !rpt.CompletedAt.IsZero() {
		completedAt = sql.NullTime{Time: rpt.CompletedAt, Valid: true}
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE report_jobs
SET status = $2, completed_at = $3, error_message = $4, rows = $5
WHERE report_id = $1`,
		rpt.ID, string(rpt.Status), completedAt, nullString(rpt.ErrorMessage), rowsJSON)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return report.ErrNotFound
	}
	return nil
}

// Get loads a report by id.
func (r *ReportRepository) Get(ctx context.Context, id string) (*report.Report, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("report repo: nil db")
	}
	if id == "" {
		return nil, report.ErrEmptyID
	}
	row := r.db.QueryRowContext(ctx, `
SELECT report_id, status, created_at, completed_at, error_message, rows
FROM report_jobs
WHERE report_id = $1`, id)

	var (
		rpt         report.Report
		status      string
		completedAt sql.NullTime
		errMessage  sql.NullString
		rowsJSON    []byte
	)
	err := row.Scan(&rpt.ID, &status, &rpt.CreatedAt, &completedAt, &errMessage, &rowsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, report.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rpt.Status = report.Status(status)
	if completedAt.Valid {
		rpt.CompletedAt = completedAt.Time.UTC()
	}
	if errMessage.Valid {
		rpt.ErrorMessage = errMessage.String
	}
	if len(rowsJSON) > 0 {
		var rows []uptime.Summary
		if err := json.Unmarshal(rowsJSON, &rows); err != nil {
			return nil, err
		}
		rpt.Rows = rows
	}
	rpt.CreatedAt = rpt.CreatedAt.UTC()
	return &rpt, nil
}

// List returns every report job, newest first.
func (r *ReportRepository) List(ctx context.Context) ([]*report.Report, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("report repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT report_id, status, created_at, completed_at, error_message, rows
FROM report_jobs
ORDER BY created_at DESC, report_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*report.Report
	for rows.Next() {
		var (
			rpt         report.Report
			status      string
			completedAt sql.NullTime
			errMessage  sql.NullString
			rowsJSON    []byte
		)
		if err := rows.Scan(&rpt.ID, &status, &rpt.CreatedAt, &completedAt, &errMessage, &rowsJSON); err != nil {
			return nil, err
		}
		rpt.Status = report.Status(status)
		rpt.CreatedAt = rpt.CreatedAt.UTC()
		if completedAt.Valid {
			rpt.CompletedAt = completedAt.Time.UTC()
		}
		if errMessage.Valid {
			rpt.ErrorMessage = errMessage.String
		}
		if len(rowsJSON) > 0 {
			var summaries []uptime.Summary
			if err := json.Unmarshal(rowsJSON, &summaries); err != nil {
				return nil, err
			}
			rpt.Rows = summaries
		}
		reports = append(reports, &rpt)
	}
	return reports, rows.Err()
}

func nullString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
