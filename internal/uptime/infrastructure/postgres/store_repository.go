package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	uptime "store-monitor/internal/uptime/domain"
)

// StoreRepository reads store observations, business hours and timezones
// from Postgres. It implements uptime.StoreReader.
type StoreRepository struct {
	db *sql.DB
}

// NewStoreRepository constructs a repository.
func NewStoreRepository(db *sql.DB) *StoreRepository {
	return &StoreRepository{db: db}
}

// AllStoreIDs returns every store id present in any of the source tables.
func (r *StoreRepository) AllStoreIDs(ctx context.Context) ([]string, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("store repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT store_id FROM store_status
UNION
SELECT store_id FROM store_business_hours
UNION
SELECT store_id FROM store_timezones`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Observations returns a store's pings inside the window, ordered by
// timestamp then ingestion order.
func (r *StoreRepository) Observations(ctx context.Context, storeID string, window uptime.Interval) ([]uptime.Observation, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("store repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT store_id, timestamp_utc, status
FROM store_status
WHERE store_id = $1 AND timestamp_utc >= $2 AND timestamp_utc < $3
ORDER BY timestamp_utc ASC, id ASC`, storeID, window.Start, window.End)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var observations []uptime.Observation
	for rows.Next() {
		var (
			obs uptime.Observation
			raw string
		)
		if err := rows.Scan(&obs.StoreID, &obs.TimestampUTC, &raw); err != nil {
			return nil, err
		}
		status, err := uptime.ParseStatus(raw)
		if err != nil {
			return nil, err
		}
		obs.Status = status
		obs.TimestampUTC = obs.TimestampUTC.UTC()
		observations = append(observations, obs)
	}
	return observations, rows.Err()
}

// BusinessHours returns a store's declared hours. No rows means the store
// is open 24/7.
func (r *StoreRepository) BusinessHours(ctx context.Context, storeID string) ([]uptime.BusinessHours, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("store repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT store_id, day_of_week, open_time_local, close_time_local
FROM store_business_hours
WHERE store_id = $1
ORDER BY day_of_week ASC, open_time_local ASC`, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []uptime.BusinessHours
	for rows.Next() {
		var (
			row      uptime.BusinessHours
			openRaw  string
			closeRaw string
		)
		if err := rows.Scan(&row.StoreID, &row.DayOfWeek, &openRaw, &closeRaw); err != nil {
			return nil, err
		}
		open, err := uptime.ParseLocalTime(openRaw)
		if err != nil {
			return nil, err
		}
		closeAt, err := uptime.ParseLocalTime(closeRaw)
		if err != nil {
			return nil, err
		}
		row.OpenLocal = open
		row.CloseLocal = closeAt
		result = append(result, row)
	}
	return result, rows.Err()
}

// Timezone returns a store's declared IANA timezone, if any.
func (r *StoreRepository) Timezone(ctx context.Context, storeID string) (string, bool, error) {
	if r == nil || r.db == nil {
		return "", false, errors.New("store repo: nil db")
	}
	var tz string
	err := r.db.QueryRowContext(ctx, `
SELECT timezone_str FROM store_timezones WHERE store_id = $1`, storeID).Scan(&tz)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return tz, true, nil
}

// SourceCounts returns row counts per source table.
func (r *StoreRepository) SourceCounts(ctx context.Context) (uptime.SourceCounts, error) {
	if r == nil || r.db == nil {
		return uptime.SourceCounts{}, errors.New("store repo: nil db")
	}
	var counts uptime.SourceCounts
	queries := []struct {
		sql  string
		dest *int
	}{
		{sql: `SELECT COUNT(*) FROM store_timezones`, dest: &counts.Timezones},
		{sql: `SELECT COUNT(*) FROM store_business_hours`, dest: &counts.BusinessHours},
		{sql: `SELECT COUNT(*) FROM store_status`, dest: &counts.Observations},
	}
	for _, q := range queries {
		if err := r.db.QueryRowContext(ctx, q.sql).Scan(q.dest); err != nil {
			return uptime.SourceCounts{}, err
		}
	}
	return counts, nil
}

// MaxObservationTimestamp returns the dataset-wide scoring anchor.
func (r *StoreRepository) MaxObservationTimestamp(ctx context.Context) (time.Time, bool, error) {
	if r == nil || r.db == nil {
		return time.Time{}, false, errors.New("store repo: nil db")
	}
	var latest sql.NullTime
	err := r.db.QueryRowContext(ctx, `SELECT MAX(timestamp_utc) FROM store_status`).Scan(&latest)
	if err != nil {
		return time.Time{}, false, err
	}
	if !latest.Valid {
		return time.Time{}, false, nil
	}
	return latest.Time.UTC(), true, nil
}
