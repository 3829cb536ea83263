package http

import (
	"encoding/json"
	"net/http"
	"time"

	uptime "store-monitor/internal/uptime/domain"
)

// StatsHandler reports the size of the ingested dataset.
type StatsHandler struct {
	stores uptime.StoreReader
}

// NewStatsHandler constructs a StatsHandler.
func NewStatsHandler(stores uptime.StoreReader) *StatsHandler {
	return &StatsHandler{stores: stores}
}

// ServeHTTP handles GET /api/v1/stats.
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.stores == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	counts, err := h.stores.SourceCounts(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	latest, ok, err := h.stores.MaxObservationTimestamp(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	body := map[string]any{
		"store_timezones": counts.Timezones,
		"store_hours":     counts.BusinessHours,
		"store_status":    counts.Observations,
	}
	if ok {
		body["latest_status_timestamp"] = latest.Format(time.RFC3339)
	} else {
		body["latest_status_timestamp"] = nil
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}
