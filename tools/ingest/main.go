package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type config struct {
	dsn          string
	statusPath   string
	hoursPath    string
	timezonePath string
	batchSize    int
	truncate     bool
}

func main() {
	cfg := parseConfig()
	if cfg.dsn == "" {
		log.Fatal("PG_DSN or DATABASE_URL is required")
	}
	if cfg.batchSize <= 0 {
		log.Fatal("batch-size must be > 0")
	}

	db, err := sql.Open("pgx", cfg.dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	if err := ensureSchema(ctx, db); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}

	if cfg.truncate {
		if err := truncateSourceTables(ctx, db); err != nil {
			log.Fatalf("truncate: %v", err)
		}
		log.Printf("source tables truncated")
	}

	if cfg.timezonePath != "" {
		n, err := loadTimezones(ctx, db, cfg.timezonePath)
		if err != nil {
			log.Fatalf("load timezones: %v", err)
		}
		log.Printf("loaded %d timezone rows from %s", n, cfg.timezonePath)
	}

	if cfg.hoursPath != "" {
		n, err := loadBusinessHours(ctx, db, cfg.hoursPath)
		if err != nil {
			log.Fatalf("load business hours: %v", err)
		}
		log.Printf("loaded %d business hour rows from %s", n, cfg.hoursPath)
	}

	if cfg.statusPath != "" {
		n, err := loadStatus(ctx, db, cfg.statusPath, cfg.batchSize)
		if err != nil {
			log.Fatalf("load status: %v", err)
		}
		log.Printf("loaded %d status rows from %s", n, cfg.statusPath)
	}

	log.Printf("ingest completed")
}

func parseConfig() config {
	cfg := config{}
	flag.StringVar(&cfg.dsn, "pg-dsn", envOrDefault("PG_DSN", envOrDefault("DATABASE_URL", "")), "Postgres DSN")
	flag.StringVar(&cfg.statusPath, "status-csv", envOrDefault("STATUS_CSV", ""), "path to store status CSV (store_id,status,timestamp_utc)")
	flag.StringVar(&cfg.hoursPath, "hours-csv", envOrDefault("HOURS_CSV", ""), "path to business hours CSV (store_id,dayOfWeek,start_time_local,end_time_local)")
	flag.StringVar(&cfg.timezonePath, "timezones-csv", envOrDefault("TIMEZONES_CSV", ""), "path to timezones CSV (store_id,timezone_str)")
	flag.IntVar(&cfg.batchSize, "batch-size", envOrInt("BATCH_SIZE", 5000), "rows per transaction for status ingest")
	flag.BoolVar(&cfg.truncate, "truncate", envOrBool("TRUNCATE", false), "truncate source tables before loading")
	flag.Parse()
	return cfg
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS store_status (
	id BIGSERIAL PRIMARY KEY,
	store_id TEXT NOT NULL,
	timestamp_utc TIMESTAMPTZ NOT NULL,
	status TEXT NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_store_status_store_ts
	ON store_status (store_id, timestamp_utc)`,
		`CREATE TABLE IF NOT EXISTS store_business_hours (
	store_id TEXT NOT NULL,
	day_of_week INT NOT NULL,
	open_time_local TEXT NOT NULL,
	close_time_local TEXT NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_store_business_hours_store
	ON store_business_hours (store_id)`,
		`CREATE TABLE IF NOT EXISTS store_timezones (
	store_id TEXT PRIMARY KEY,
	timezone_str TEXT NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS report_jobs (
	report_id TEXT PRIMARY KEY,
	status TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	completed_at TIMESTAMPTZ,
	error_message TEXT,
	rows JSONB
)`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func truncateSourceTables(ctx context.Context, db *sql.DB) error {
	for _, table := range []string{"store_status", "store_business_hours", "store_timezones"} {
		if _, err := db.ExecContext(ctx, "TRUNCATE "+table); err != nil {
			return err
		}
	}
	return nil
}

func loadTimezones(ctx context.Context, db *sql.DB, path string) (int, error) {
	file, header, reader, err := openCSV(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	storeCol, err := columnIndex(header, "store_id")
	if err != nil {
		return 0, err
	}
	tzCol, err := columnIndex(header, "timezone_str")
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO store_timezones (store_id, timezone_str)
VALUES ($1, $2)
ON CONFLICT (store_id) DO UPDATE SET timezone_str = EXCLUDED.timezone_str`)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}

	count := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return 0, err
		}
		storeID := strings.TrimSpace(record[storeCol])
		tz := strings.TrimSpace(record[tzCol])
		if storeID == "" || tz == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, storeID, tz); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return 0, err
		}
		count++
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return count, nil
}

func loadBusinessHours(ctx context.Context, db *sql.DB, path string) (int, error) {
	file, header, reader, err := openCSV(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	storeCol, err := columnIndex(header, "store_id")
	if err != nil {
		return 0, err
	}
	dayCol, err := columnIndex(header, "dayOfWeek", "day_of_week", "day")
	if err != nil {
		return 0, err
	}
	openCol, err := columnIndex(header, "start_time_local", "open_time_local")
	if err != nil {
		return 0, err
	}
	closeCol, err := columnIndex(header, "end_time_local", "close_time_local")
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO store_business_hours (store_id, day_of_week, open_time_local, close_time_local)
VALUES ($1, $2, $3, $4)`)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}

	count := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return 0, err
		}
		storeID := strings.TrimSpace(record[storeCol])
		if storeID == "" {
			continue
		}
		day, err := strconv.Atoi(strings.TrimSpace(record[dayCol]))
		if err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return 0, fmt.Errorf("invalid day_of_week %q for store %s: %w", record[dayCol], storeID, err)
		}
		if _, err := stmt.ExecContext(ctx, storeID, day, strings.TrimSpace(record[openCol]), strings.TrimSpace(record[closeCol])); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return 0, err
		}
		count++
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return count, nil
}

func loadStatus(ctx context.Context, db *sql.DB, path string, batchSize int) (int, error) {
	file, header, reader, err := openCSV(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	storeCol, err := columnIndex(header, "store_id")
	if err != nil {
		return 0, err
	}
	statusCol, err := columnIndex(header, "status")
	if err != nil {
		return 0, err
	}
	tsCol, err := columnIndex(header, "timestamp_utc")
	if err != nil {
		return 0, err
	}

	const insertSQL = `
INSERT INTO store_status (store_id, timestamp_utc, status)
VALUES ($1, $2, $3)`

	var (
		tx      *sql.Tx
		stmt    *sql.Stmt
		inBatch int
		total   int
	)
	rollback := func() {
		if stmt != nil {
			_ = stmt.Close()
		}
		if tx != nil {
			_ = tx.Rollback()
		}
	}
	flush := func() error {
		if tx == nil {
			return nil
		}
		if err := stmt.Close(); err != nil {
			_ = tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		tx, stmt, inBatch = nil, nil, 0
		return nil
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			rollback()
			return 0, err
		}
		storeID := strings.TrimSpace(record[storeCol])
		status := strings.ToLower(strings.TrimSpace(record[statusCol]))
		if storeID == "" || status == "" {
			continue
		}
		ts, err := parseTimestamp(record[tsCol])
		if err != nil {
			rollback()
			return 0, fmt.Errorf("invalid timestamp %q for store %s: %w", record[tsCol], storeID, err)
		}

		if tx == nil {
			tx, err = db.BeginTx(ctx, nil)
			if err != nil {
				return 0, err
			}
			stmt, err = tx.PrepareContext(ctx, insertSQL)
			if err != nil {
				_ = tx.Rollback()
				return 0, err
			}
		}
		if _, err := stmt.ExecContext(ctx, storeID, ts, status); err != nil {
			rollback()
			return 0, err
		}
		inBatch++
		total++
		if inBatch >= batchSize {
			if err := flush(); err != nil {
				return 0, err
			}
			log.Printf("status ingest progress: %d rows", total)
		}
	}
	if err := flush(); err != nil {
		return 0, err
	}
	return total, nil
}

// parseTimestamp accepts the raw export format ("2023-01-25 18:13:22.47659 UTC")
// as well as RFC3339.
func parseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	layouts := []string{
		"2006-01-02 15:04:05.999999999 UTC",
		"2006-01-02 15:04:05 UTC",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02 15:04:05",
		time.RFC3339Nano,
	}
	var lastErr error
	for _, layout := range layouts {
		ts, err := time.Parse(layout, raw)
		if err == nil {
			return ts.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func openCSV(path string) (*os.File, []string, *csv.Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, nil, err
	}
	// The header fixes the record width; ragged rows error out instead of
	// being indexed past their length.
	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		_ = file.Close()
		return nil, nil, nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	return file, header, reader, nil
}

func columnIndex(header []string, names ...string) (int, error) {
	for _, name := range names {
		for i, col := range header {
			if strings.EqualFold(col, name) {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("column %s not found in header %v", names[0], header)
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envOrBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
