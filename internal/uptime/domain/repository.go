package uptime

import (
	"context"
	"time"
)

// StoreReader is the read-only storage collaborator consumed during
// scoring. Ingestion is a separate, non-overlapping phase; implementations
// may assume no concurrent writes while a report is being generated.
type StoreReader interface {
	// AllStoreIDs returns every known store id.
	AllStoreIDs(ctx context.Context) ([]string, error)
	// Observations returns a store's status pings with timestamps inside
	// the window, ordered ascending by timestamp then ingestion order.
	Observations(ctx context.Context, storeID string, window Interval) ([]Observation, error)
	// BusinessHours returns a store's declared hours; empty means no
	// declared rows at all (open 24/7).
	BusinessHours(ctx context.Context, storeID string) ([]BusinessHours, error)
	// Timezone returns a store's declared IANA timezone. The second value
	// is false when the store has no declared timezone.
	Timezone(ctx context.Context, storeID string) (string, bool, error)
	// MaxObservationTimestamp returns the latest timestamp across all
	// observations, the dataset-relative "current time". The second value
	// is false when no observations exist at all.
	MaxObservationTimestamp(ctx context.Context) (time.Time, bool, error)
	// SourceCounts returns row counts for each ingested source table.
	SourceCounts(ctx context.Context) (SourceCounts, error)
}

// SourceCounts summarizes the size of the ingested dataset.
type SourceCounts struct {
	Timezones     int
	BusinessHours int
	Observations  int
}
