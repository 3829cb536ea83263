package application

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	report "store-monitor/internal/report/domain"
	reportmemory "store-monitor/internal/report/infrastructure/memory"
	uptime "store-monitor/internal/uptime/domain"
	uptimememory "store-monitor/internal/uptime/infrastructure/memory"
)

func seedStores(t *testing.T) *uptimememory.StoreRepository {
	t.Helper()
	stores := uptimememory.NewStoreRepository()

	anchor := time.Date(2023, 1, 25, 18, 0, 0, 0, time.UTC)
	stores.SetTimezone("store-a", "America/Chicago")
	stores.AddObservation(uptime.Observation{StoreID: "store-a", TimestampUTC: anchor.Add(-30 * time.Minute), Status: uptime.StatusInactive})
	stores.AddObservation(uptime.Observation{StoreID: "store-a", TimestampUTC: anchor, Status: uptime.StatusActive})

	stores.SetTimezone("store-b", "America/New_York")
	stores.AddObservation(uptime.Observation{StoreID: "store-b", TimestampUTC: anchor.Add(-2 * time.Hour), Status: uptime.StatusActive})

	// Known store with no observations at all.
	stores.SetTimezone("store-c", "America/Chicago")
	return stores
}

func waitForTerminal(t *testing.T, svc *Service, id string) report.Status {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		status, err := svc.ReportStatus(context.Background(), id)
		if err != nil {
			t.Fatalf("report status: %v", err)
		}
		if status.IsTerminal() {
			return status
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("report %s did not finish", id)
	return ""
}

func TestTriggerReportCompletesWithOrderedRows(t *testing.T) {
	svc := NewService(seedStores(t), reportmemory.NewReportRepository(), 2, nil, nil)

	id, err := svc.TriggerReport(context.Background())
	if err != nil {
		t.Fatalf("trigger: %v", err)
	}
	if id == "" {
		t.Fatal("empty report id")
	}

	if status := waitForTerminal(t, svc, id); status != report.StatusComplete {
		t.Fatalf("status = %s, want Complete", status)
	}

	rows, err := svc.ReportRows(context.Background(), id)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	for i, want := range []string{"store-a", "store-b", "store-c"} {
		if rows[i].StoreID != want {
			t.Fatalf("row %d store = %s, want %s", i, rows[i].StoreID, want)
		}
	}

	// The store with zero observations anywhere scores fully up.
	if rows[2].AverageUptimePercent != 100 || rows[2].UptimeLastWeekHours != 168.0 {
		t.Fatalf("no-data store row = %+v", rows[2])
	}
}

func TestReportRunningBeforeCompletion(t *testing.T) {
	gate := make(chan struct{})
	stores := &gatedStoreReader{inner: seedStores(t), gate: gate}
	svc := NewService(stores, reportmemory.NewReportRepository(), 2, nil, nil)

	id, err := svc.TriggerReport(context.Background())
	if err != nil {
		t.Fatalf("trigger: %v", err)
	}

	status, err := svc.ReportStatus(context.Background(), id)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status != report.StatusRunning {
		t.Fatalf("status = %s, want Running", status)
	}
	if _, err := svc.ReportRows(context.Background(), id); !errors.Is(err, report.ErrRowsNotReady) {
		t.Fatalf("rows while running: err = %v, want ErrRowsNotReady", err)
	}

	close(gate)
	if status := waitForTerminal(t, svc, id); status != report.StatusComplete {
		t.Fatalf("status = %s, want Complete", status)
	}
}

func TestStorageFailureFailsWholeReport(t *testing.T) {
	stores := &failingStoreReader{inner: seedStores(t), failStore: "store-b"}
	svc := NewService(stores, reportmemory.NewReportRepository(), 2, nil, nil)

	id, err := svc.TriggerReport(context.Background())
	if err != nil {
		t.Fatalf("trigger: %v", err)
	}
	if status := waitForTerminal(t, svc, id); status != report.StatusFailed {
		t.Fatalf("status = %s, want Failed", status)
	}

	if _, err := svc.ReportRows(context.Background(), id); !errors.Is(err, report.ErrRowsNotReady) {
		t.Fatalf("rows of failed report: err = %v, want ErrRowsNotReady", err)
	}
	message, err := svc.ReportError(context.Background(), id)
	if err != nil {
		t.Fatalf("report error: %v", err)
	}
	if message == "" {
		t.Fatal("expected failure message")
	}
}

func TestConcurrentTriggersProduceIdenticalRows(t *testing.T) {
	svc := NewService(seedStores(t), reportmemory.NewReportRepository(), 2, nil, nil)

	first, err := svc.TriggerReport(context.Background())
	if err != nil {
		t.Fatalf("trigger first: %v", err)
	}
	second, err := svc.TriggerReport(context.Background())
	if err != nil {
		t.Fatalf("trigger second: %v", err)
	}
	if first == second {
		t.Fatalf("report ids must be distinct, got %s twice", first)
	}

	waitForTerminal(t, svc, first)
	waitForTerminal(t, svc, second)

	firstRows, err := svc.ReportRows(context.Background(), first)
	if err != nil {
		t.Fatalf("first rows: %v", err)
	}
	secondRows, err := svc.ReportRows(context.Background(), second)
	if err != nil {
		t.Fatalf("second rows: %v", err)
	}
	if !reflect.DeepEqual(firstRows, secondRows) {
		t.Fatalf("rows differ:\n%+v\n%+v", firstRows, secondRows)
	}
}

func TestListReportsNewestFirst(t *testing.T) {
	svc := NewService(seedStores(t), reportmemory.NewReportRepository(), 2, nil, nil).
		WithClock(&stepClock{now: time.Date(2023, 1, 25, 18, 0, 0, 0, time.UTC)})

	first, err := svc.TriggerReport(context.Background())
	if err != nil {
		t.Fatalf("trigger first: %v", err)
	}
	waitForTerminal(t, svc, first)
	second, err := svc.TriggerReport(context.Background())
	if err != nil {
		t.Fatalf("trigger second: %v", err)
	}
	waitForTerminal(t, svc, second)

	reports, err := svc.ListReports(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("listed %d reports, want 2", len(reports))
	}
	if reports[0].ID != second || reports[1].ID != first {
		t.Fatalf("order = [%s, %s], want newest first [%s, %s]", reports[0].ID, reports[1].ID, second, first)
	}
	for _, rpt := range reports {
		if rpt.Status != report.StatusComplete {
			t.Fatalf("report %s status = %s, want Complete", rpt.ID, rpt.Status)
		}
	}
}

func TestCompleteSaveFailureLeavesTerminalState(t *testing.T) {
	repo := &completeSaveFailingRepository{inner: reportmemory.NewReportRepository()}
	svc := NewService(seedStores(t), repo, 2, nil, nil)

	id, err := svc.TriggerReport(context.Background())
	if err != nil {
		t.Fatalf("trigger: %v", err)
	}
	if status := waitForTerminal(t, svc, id); status != report.StatusFailed {
		t.Fatalf("status = %s, want Failed", status)
	}
	message, err := svc.ReportError(context.Background(), id)
	if err != nil {
		t.Fatalf("report error: %v", err)
	}
	if !strings.Contains(message, "persist report rows") {
		t.Fatalf("message = %q, want persistence failure", message)
	}
}

func TestUnknownReportNotFound(t *testing.T) {
	svc := NewService(seedStores(t), reportmemory.NewReportRepository(), 2, nil, nil)

	if _, err := svc.ReportStatus(context.Background(), "no-such-report"); !errors.Is(err, report.ErrNotFound) {
		t.Fatalf("status: err = %v, want ErrNotFound", err)
	}
	if _, err := svc.StoreSummary(context.Background(), "no-such-report", "store-a"); !errors.Is(err, report.ErrNotFound) {
		t.Fatalf("summary: err = %v, want ErrNotFound", err)
	}
}

func TestStoreSummaryForMissingStore(t *testing.T) {
	svc := NewService(seedStores(t), reportmemory.NewReportRepository(), 2, nil, nil)

	id, err := svc.TriggerReport(context.Background())
	if err != nil {
		t.Fatalf("trigger: %v", err)
	}
	waitForTerminal(t, svc, id)

	if _, err := svc.StoreSummary(context.Background(), id, "store-a"); err != nil {
		t.Fatalf("known store: %v", err)
	}
	if _, err := svc.StoreSummary(context.Background(), id, "store-z"); !errors.Is(err, report.ErrStoreNotInReport) {
		t.Fatalf("missing store: err = %v, want ErrStoreNotInReport", err)
	}
}

// stepClock advances one second per reading, keeping CreatedAt distinct.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

// completeSaveFailingRepository rejects persisting completed rows, leaving
// the stored record Running unless the service recovers it.
type completeSaveFailingRepository struct {
	inner report.Repository
}

func (r *completeSaveFailingRepository) Create(ctx context.Context, rpt *report.Report) error {
	return r.inner.Create(ctx, rpt)
}

func (r *completeSaveFailingRepository) Save(ctx context.Context, rpt *report.Report) error {
	if rpt != nil && rpt.Status == report.StatusComplete {
		return errors.New("connection reset")
	}
	return r.inner.Save(ctx, rpt)
}

func (r *completeSaveFailingRepository) Get(ctx context.Context, id string) (*report.Report, error) {
	return r.inner.Get(ctx, id)
}

func (r *completeSaveFailingRepository) List(ctx context.Context) ([]*report.Report, error) {
	return r.inner.List(ctx)
}

// gatedStoreReader blocks the first storage read until the gate opens.
type gatedStoreReader struct {
	inner uptime.StoreReader
	gate  chan struct{}
}

func (g *gatedStoreReader) AllStoreIDs(ctx context.Context) ([]string, error) {
	<-g.gate
	return g.inner.AllStoreIDs(ctx)
}

func (g *gatedStoreReader) Observations(ctx context.Context, storeID string, window uptime.Interval) ([]uptime.Observation, error) {
	return g.inner.Observations(ctx, storeID, window)
}

func (g *gatedStoreReader) BusinessHours(ctx context.Context, storeID string) ([]uptime.BusinessHours, error) {
	return g.inner.BusinessHours(ctx, storeID)
}

func (g *gatedStoreReader) Timezone(ctx context.Context, storeID string) (string, bool, error) {
	return g.inner.Timezone(ctx, storeID)
}

func (g *gatedStoreReader) MaxObservationTimestamp(ctx context.Context) (time.Time, bool, error) {
	return g.inner.MaxObservationTimestamp(ctx)
}

func (g *gatedStoreReader) SourceCounts(ctx context.Context) (uptime.SourceCounts, error) {
	return g.inner.SourceCounts(ctx)
}

// failingStoreReader fails business-hours reads for one store.
type failingStoreReader struct {
	inner     uptime.StoreReader
	failStore string
}

func (f *failingStoreReader) AllStoreIDs(ctx context.Context) ([]string, error) {
	return f.inner.AllStoreIDs(ctx)
}

func (f *failingStoreReader) Observations(ctx context.Context, storeID string, window uptime.Interval) ([]uptime.Observation, error) {
	return f.inner.Observations(ctx, storeID, window)
}

func (f *failingStoreReader) BusinessHours(ctx context.Context, storeID string) ([]uptime.BusinessHours, error) {
	if storeID == f.failStore {
		return nil, errors.New("disk on fire")
	}
	return f.inner.BusinessHours(ctx, storeID)
}

func (f *failingStoreReader) Timezone(ctx context.Context, storeID string) (string, bool, error) {
	return f.inner.Timezone(ctx, storeID)
}

func (f *failingStoreReader) MaxObservationTimestamp(ctx context.Context) (time.Time, bool, error) {
	return f.inner.MaxObservationTimestamp(ctx)
}

func (f *failingStoreReader) SourceCounts(ctx context.Context) (uptime.SourceCounts, error) {
	return f.inner.SourceCounts(ctx)
}
