package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"store-monitor/internal/report/application"
	report "store-monitor/internal/report/domain"
	reportmemory "store-monitor/internal/report/infrastructure/memory"
	uptime "store-monitor/internal/uptime/domain"
	uptimememory "store-monitor/internal/uptime/infrastructure/memory"
)

func newTestService(t *testing.T) *application.Service {
	t.Helper()
	stores := uptimememory.NewStoreRepository()
	anchor := time.Date(2023, 1, 25, 18, 0, 0, 0, time.UTC)
	stores.SetTimezone("store-a", "America/Chicago")
	stores.AddObservation(uptime.Observation{StoreID: "store-a", TimestampUTC: anchor, Status: uptime.StatusActive})
	return application.NewService(stores, reportmemory.NewReportRepository(), 2, nil, nil)
}

func triggerAndWait(t *testing.T, svc *application.Service) string {
	t.Helper()
	id, err := svc.TriggerReport(context.Background())
	if err != nil {
		t.Fatalf("trigger: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		status, err := svc.ReportStatus(context.Background(), id)
		if err != nil {
			t.Fatalf("status: %v", err)
		}
		if status.IsTerminal() {
			if status != report.StatusComplete {
				t.Fatalf("status = %s, want Complete", status)
			}
			return id
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("report did not finish")
	return ""
}

func TestTriggerHandlerReturnsReportID(t *testing.T) {
	handler := NewTriggerHandler(newTestService(t))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/reports/trigger", nil))

	if rec.Code != http.StatusAccepted {
		t.Fatalf("code = %d, want 202", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["report_id"] == "" {
		t.Fatalf("body = %v, want report_id", body)
	}
}

func TestTriggerHandlerRejectsGet(t *testing.T) {
	handler := NewTriggerHandler(newTestService(t))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports/trigger", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("code = %d, want 405", rec.Code)
	}
}

func TestReportHandlerStatusAndDownload(t *testing.T) {
	svc := newTestService(t)
	id := triggerAndWait(t, svc)
	handler := NewReportHandler(svc, nil, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports?report_id="+id, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "Complete" {
		t.Fatalf("status = %q, want Complete", body["status"])
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports?report_id="+id+"&format=csv", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("download code = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/csv" {
		t.Fatalf("content type = %q", got)
	}
	if !strings.HasPrefix(rec.Body.String(), "store_id,uptime_last_hour(in minutes)") {
		t.Fatalf("body = %q", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "store-a") {
		t.Fatal("missing store row")
	}
}

func TestReportHandlerListsAllJobs(t *testing.T) {
	svc := newTestService(t)
	id := triggerAndWait(t, svc)
	handler := NewReportHandler(svc, nil, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	var listing struct {
		TotalReports int               `json:"total_reports"`
		Reports      []reportListEntry `json:"reports"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listing); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if listing.TotalReports != 1 || len(listing.Reports) != 1 {
		t.Fatalf("listing = %+v, want one report", listing)
	}
	entry := listing.Reports[0]
	if entry.ReportID != id || entry.Status != "Complete" || !entry.HasData {
		t.Fatalf("entry = %+v", entry)
	}
	if entry.CreatedAt == "" || entry.CompletedAt == "" {
		t.Fatalf("entry timestamps missing: %+v", entry)
	}
}

func TestReportHandlerUnknownID(t *testing.T) {
	handler := NewReportHandler(newTestService(t), nil, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports?report_id=missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("code = %d, want 404", rec.Code)
	}
}

func TestReportHandlerUnsupportedFormat(t *testing.T) {
	svc := newTestService(t)
	id := triggerAndWait(t, svc)
	handler := NewReportHandler(svc, nil, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports?report_id="+id+"&format=parquet", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", rec.Code)
	}
}

func TestRestaurantsHandler(t *testing.T) {
	svc := newTestService(t)
	id := triggerAndWait(t, svc)
	handler := NewRestaurantsHandler(svc)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports/restaurants?report_id="+id, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	var listing struct {
		ReportID         string           `json:"report_id"`
		TotalRestaurants int              `json:"total_restaurants"`
		Restaurants      []uptime.Summary `json:"restaurants"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listing); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if listing.TotalRestaurants != 1 || listing.Restaurants[0].StoreID != "store-a" {
		t.Fatalf("listing = %+v", listing)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports/restaurants?report_id="+id+"&store_id=store-a", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("detail code = %d", rec.Code)
	}
	var summary uptime.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode detail: %v", err)
	}
	if summary.StoreID != "store-a" {
		t.Fatalf("summary = %+v", summary)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports/restaurants?report_id="+id+"&store_id=ghost", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing store code = %d, want 404", rec.Code)
	}
}
