package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"store-monitor/internal/observability/metrics"
	"store-monitor/internal/report/application"
	report "store-monitor/internal/report/domain"
	"store-monitor/internal/report/interfaces"
)

// TriggerHandler starts a new report generation.
type TriggerHandler struct {
	service *application.Service
}

// NewTriggerHandler constructs a TriggerHandler.
func NewTriggerHandler(service *application.Service) *TriggerHandler {
	return &TriggerHandler{service: service}
}

// ServeHTTP handles POST /api/v1/reports/trigger.
func (h *TriggerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.service == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	id, err := h.service.TriggerReport(r.Context())
	if err != nil {
		http.Error(w, "trigger report error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]string{"report_id": id})
}

// ReportHandler serves report status and downloads.
type ReportHandler struct {
	service *application.Service
	metrics *metrics.Metrics
	logger  *log.Logger
}

// NewReportHandler constructs a ReportHandler.
func NewReportHandler(service *application.Service, m *metrics.Metrics, logger *log.Logger) *ReportHandler {
	return &ReportHandler{service: service, metrics: m, logger: logger}
}

// ServeHTTP handles GET /api/v1/reports. Without report_id it lists every
// job, newest first. With report_id and no format parameter it returns the
// job status as JSON; with format=csv|xlsx|pdf it downloads the completed
// report.
func (h *ReportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.service == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	reportID := r.URL.Query().Get("report_id")
	if reportID == "" {
		h.list(w, r)
		return
	}

	status, err := h.service.ReportStatus(r.Context(), reportID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	switch status {
	case report.StatusRunning:
		writeJSON(w, map[string]string{"report_id": reportID, "status": string(status)})
		return
	case report.StatusFailed:
		message, err := h.service.ReportError(r.Context(), reportID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		http.Error(w, fmt.Sprintf("report generation failed: %s", message), http.StatusInternalServerError)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		writeJSON(w, map[string]string{"report_id": reportID, "status": string(status)})
		return
	}
	h.download(w, r, reportID, format)
}

type reportListEntry struct {
	ReportID    string `json:"report_id"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	CompletedAt string `json:"completed_at,omitempty"`
	HasData     bool   `json:"has_data"`
}

func (h *ReportHandler) list(w http.ResponseWriter, r *http.Request) {
	reports, err := h.service.ListReports(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	entries := make([]reportListEntry, 0, len(reports))
	for _, rpt := range reports {
		entry := reportListEntry{
			ReportID:  rpt.ID,
			Status:    string(rpt.Status),
			CreatedAt: rpt.CreatedAt.Format(time.RFC3339),
			HasData:   rpt.Status == report.StatusComplete && rpt.Rows != nil,
		}
		if !rpt.CompletedAt.IsZero() {
			entry.CompletedAt = rpt.CompletedAt.Format(time.RFC3339)
		}
		entries = append(entries, entry)
	}
	writeJSON(w, map[string]any{
		"total_reports": len(entries),
		"reports":       entries,
	})
}

func (h *ReportHandler) download(w http.ResponseWriter, r *http.Request, reportID, format string) {
	rows, err := h.service.ReportRows(r.Context(), reportID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	var (
		payload     []byte
		contentType string
		extension   string
	)
	switch format {
	case "csv":
		payload, err = interfaces.BuildReportCSV(rows)
		contentType = "text/csv"
		extension = "csv"
	case "xlsx", "pdf":
		rpt, getErr := h.report(r, reportID)
		if getErr != nil {
			writeServiceError(w, getErr)
			return
		}
		if format == "xlsx" {
			payload, err = interfaces.BuildReportXLSX(rpt)
			contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
			extension = "xlsx"
		} else {
			payload, err = interfaces.BuildReportPDF(rpt)
			contentType = "application/pdf"
			extension = "pdf"
		}
	default:
		http.Error(w, "unsupported format", http.StatusBadRequest)
		return
	}
	if err != nil {
		if h.logger != nil {
			h.logger.Printf("report_export_failed report_id=%s format=%s err=%v", reportID, format, err)
		}
		http.Error(w, "export error", http.StatusInternalServerError)
		return
	}

	if h.metrics != nil {
		h.metrics.ExportsTotal.WithLabelValues(format).Inc()
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=report_%s.%s", reportID, extension))
	_, _ = w.Write(payload)
}

// report fetches the full aggregate needed by the XLSX/PDF renderers.
func (h *ReportHandler) report(r *http.Request, reportID string) (*report.Report, error) {
	return h.service.Report(r.Context(), reportID)
}

// RestaurantsHandler lists the rows of a completed report, or a single
// store's row when store_id is given.
type RestaurantsHandler struct {
	service *application.Service
}

// NewRestaurantsHandler constructs a RestaurantsHandler.
func NewRestaurantsHandler(service *application.Service) *RestaurantsHandler {
	return &RestaurantsHandler{service: service}
}

// ServeHTTP handles GET /api/v1/reports/restaurants.
func (h *RestaurantsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.service == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	reportID := r.URL.Query().Get("report_id")
	if reportID == "" {
		http.Error(w, "report_id is required", http.StatusBadRequest)
		return
	}

	if storeID := r.URL.Query().Get("store_id"); storeID != "" {
		summary, err := h.service.StoreSummary(r.Context(), reportID, storeID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, summary)
		return
	}

	rows, err := h.service.ReportRows(r.Context(), reportID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, map[string]any{
		"report_id":         reportID,
		"total_restaurants": len(rows),
		"restaurants":       rows,
	})
}

func writeJSON(w http.ResponseWriter, value any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(value)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, report.ErrNotFound), errors.Is(err, report.ErrStoreNotInReport):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, report.ErrRowsNotReady):
		http.Error(w, "report not complete", http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
