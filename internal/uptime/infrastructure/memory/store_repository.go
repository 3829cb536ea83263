package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	uptime "store-monitor/internal/uptime/domain"
)

// StoreRepository is an in-memory StoreReader for demo/testing. Writes are
// expected to happen before scoring starts; reads are safe concurrently.
type StoreRepository struct {
	mu           sync.RWMutex
	observations map[string][]uptime.Observation
	hours        map[string][]uptime.BusinessHours
	timezones    map[string]string
	storeIDs     map[string]struct{}
	maxTimestamp time.Time
}

// NewStoreRepository constructs a repository.
func NewStoreRepository() *StoreRepository {
	return &StoreRepository{
		observations: make(map[string][]uptime.Observation),
		hours:        make(map[string][]uptime.BusinessHours),
		timezones:    make(map[string]string),
		storeIDs:     make(map[string]struct{}),
	}
}

// AddObservation appends a status ping, preserving ingestion order.
func (r *StoreRepository) AddObservation(obs uptime.Observation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observations[obs.StoreID] = append(r.observations[obs.StoreID], obs)
	r.storeIDs[obs.StoreID] = struct{}{}
	if obs.TimestampUTC.After(r.maxTimestamp) {
		r.maxTimestamp = obs.TimestampUTC
	}
}

// AddBusinessHours declares one open interval for a store.
func (r *StoreRepository) AddBusinessHours(row uptime.BusinessHours) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hours[row.StoreID] = append(r.hours[row.StoreID], row)
	r.storeIDs[row.StoreID] = struct{}{}
}

// SetTimezone declares a store's IANA timezone.
func (r *StoreRepository) SetTimezone(storeID, tz string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timezones[storeID] = tz
	r.storeIDs[storeID] = struct{}{}
}

// AllStoreIDs returns every known store id, unordered.
func (r *StoreRepository) AllStoreIDs(ctx context.Context) ([]string, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.storeIDs))
	for id := range r.storeIDs {
		ids = append(ids, id)
	}
	return ids, nil
}

// Observations returns a store's pings inside the window, sorted by
// timestamp with ingestion order preserved for ties.
func (r *StoreRepository) Observations(ctx context.Context, storeID string, window uptime.Interval) ([]uptime.Observation, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []uptime.Observation
	for _, obs := range r.observations[storeID] {
		if window.Contains(obs.TimestampUTC) {
			result = append(result, obs)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].TimestampUTC.Before(result[j].TimestampUTC)
	})
	return result, nil
}

// BusinessHours returns a store's declared hours.
func (r *StoreRepository) BusinessHours(ctx context.Context, storeID string) ([]uptime.BusinessHours, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	rows := r.hours[storeID]
	result := make([]uptime.BusinessHours, len(rows))
	copy(result, rows)
	return result, nil
}

// Timezone returns a store's declared timezone, if any.
func (r *StoreRepository) Timezone(ctx context.Context, storeID string) (string, bool, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	tz, ok := r.timezones[storeID]
	return tz, ok, nil
}

// MaxObservationTimestamp returns the latest ping timestamp in the dataset.
func (r *StoreRepository) MaxObservationTimestamp(ctx context.Context) (time.Time, bool, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.maxTimestamp.IsZero() {
		return time.Time{}, false, nil
	}
	return r.maxTimestamp, true, nil
}

// SourceCounts returns row counts per source table.
func (r *StoreRepository) SourceCounts(ctx context.Context) (uptime.SourceCounts, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := uptime.SourceCounts{Timezones: len(r.timezones)}
	for _, rows := range r.hours {
		counts.BusinessHours += len(rows)
	}
	for _, observations := range r.observations {
		counts.Observations += len(observations)
	}
	return counts, nil
}
