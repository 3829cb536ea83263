package application

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"store-monitor/internal/observability/metrics"
	report "store-monitor/internal/report/domain"
	uptime "store-monitor/internal/uptime/domain"
)

const defaultScoringWorkers = 4

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production clock.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// Service is the report job controller. Triggering allocates an opaque
// report id, persists the Running record and hands the scoring work to a
// background unit; the trigger call never blocks on scoring. Each report is
// mutated only by the goroutine that owns it.
type Service struct {
	stores  uptime.StoreReader
	reports report.Repository
	workers int
	metrics *metrics.Metrics
	logger  *log.Logger
	clock   Clock
}

// NewService constructs the controller. workers bounds the per-report
// store-scoring fan-out; metrics and logger may be nil.
func NewService(stores uptime.StoreReader, reports report.Repository, workers int, m *metrics.Metrics, logger *log.Logger) *Service {
	if workers <= 0 {
		workers = defaultScoringWorkers
	}
	return &Service{
		stores:  stores,
		reports: reports,
		workers: workers,
		metrics: m,
		logger:  logger,
		clock:   SystemClock{},
	}
}

// WithClock overrides the clock, for tests.
func (s *Service) WithClock(clock Clock) *Service {
	if clock != nil {
		s.clock = clock
	}
	return s
}

// TriggerReport creates a new report job and starts scoring in the
// background. Concurrent triggers are independent; each gets its own id.
func (s *Service) TriggerReport(ctx context.Context) (string, error) {
	id := uuid.NewString()
	rpt, err := report.NewReport(id, s.clock.Now())
	if err != nil {
		return "", err
	}
	if err := s.reports.Create(ctx, rpt); err != nil {
		return "", err
	}
	if s.metrics != nil {
		s.metrics.ReportsTriggered.Inc()
	}
	s.logf("report_job_start report_id=%s", id)

	go s.generate(id)
	return id, nil
}

// ReportStatus returns the lifecycle state of a report.
func (s *Service) ReportStatus(ctx context.Context, id string) (report.Status, error) {
	rpt, err := s.reports.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return rpt.Status, nil
}

// Report returns the full report record.
func (s *Service) Report(ctx context.Context, id string) (*report.Report, error) {
	return s.reports.Get(ctx, id)
}

// ListReports returns every report job, newest first.
func (s *Service) ListReports(ctx context.Context) ([]*report.Report, error) {
	return s.reports.List(ctx)
}

// ReportRows returns the rows of a completed report.
func (s *Service) ReportRows(ctx context.Context, id string) ([]uptime.Summary, error) {
	rpt, err := s.reports.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return rpt.ReadRows()
}

// ReportError returns the failure message of a failed report, if any.
func (s *Service) ReportError(ctx context.Context, id string) (string, error) {
	rpt, err := s.reports.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return rpt.ErrorMessage, nil
}

// StoreSummary returns one store's row from a completed report.
func (s *Service) StoreSummary(ctx context.Context, id, storeID string) (uptime.Summary, error) {
	rpt, err := s.reports.Get(ctx, id)
	if err != nil {
		return uptime.Summary{}, err
	}
	return rpt.FindRow(storeID)
}

// generate is the background unit owning one report. Any unrecoverable
// error while scoring any store fails the whole report; partial rows are
// never visible.
func (s *Service) generate(id string) {
	ctx := context.Background()
	started := s.clock.Now()

	rows, err := s.scoreAllStores(ctx)

	rpt, getErr := s.reports.Get(ctx, id)
	if getErr != nil {
		s.logf("report_job_lost report_id=%s err=%v", id, getErr)
		return
	}

	if err != nil {
		if failErr := rpt.Fail(err.Error(), s.clock.Now()); failErr != nil {
			s.logf("report_job_fail_transition report_id=%s err=%v", id, failErr)
			return
		}
		if saveErr := s.reports.Save(ctx, rpt); saveErr != nil {
			s.logf("report_job_save_failed report_id=%s err=%v", id, saveErr)
		}
		s.observeFinished(report.StatusFailed, started, 0)
		s.logf("report_job_failed report_id=%s err=%v", id, err)
		return
	}

	if err := rpt.Complete(rows, s.clock.Now()); err != nil {
		s.logf("report_job_complete_transition report_id=%s err=%v", id, err)
		return
	}
	if err := s.reports.Save(ctx, rpt); err != nil {
		s.logf("report_job_save_failed report_id=%s err=%v", id, err)
		s.failStuckReport(ctx, id, started, err)
		return
	}
	s.observeFinished(report.StatusComplete, started, len(rows))
	s.logf("report_job_complete report_id=%s stores=%d", id, len(rows))
}

// failStuckReport moves a report whose rows could not be persisted to a
// terminal Failed state so pollers do not wait on a Running record forever.
func (s *Service) failStuckReport(ctx context.Context, id string, started time.Time, cause error) {
	rpt, err := s.reports.Get(ctx, id)
	if err != nil {
		s.logf("report_job_fail_lookup report_id=%s err=%v", id, err)
		return
	}
	if err := rpt.Fail(fmt.Sprintf("persist report rows: %v", cause), s.clock.Now()); err != nil {
		s.logf("report_job_fail_transition report_id=%s err=%v", id, err)
		return
	}
	if err := s.reports.Save(ctx, rpt); err != nil {
		s.logf("report_job_save_failed report_id=%s err=%v", id, err)
		return
	}
	s.observeFinished(report.StatusFailed, started, 0)
	s.logf("report_job_failed report_id=%s err=%v", id, cause)
}

// scoreAllStores scores every known store over the three trailing windows
// anchored at the dataset-wide max timestamp. Rows come back in store_id
// ascending order regardless of worker completion order.
func (s *Service) scoreAllStores(ctx context.Context) ([]uptime.Summary, error) {
	storeIDs, err := s.stores.AllStoreIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list stores: %v", report.ErrDataUnavailable, err)
	}
	sort.Strings(storeIDs)

	now, ok, err := s.stores.MaxObservationTimestamp(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: max timestamp: %v", report.ErrDataUnavailable, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: no status observations", report.ErrDataUnavailable)
	}

	rows := make([]uptime.Summary, len(storeIDs))
	sem := make(chan struct{}, s.workers)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for i, storeID := range storeIDs {
		wg.Add(1)
		sem <- struct{}{}
		go func(slot int, storeID string) {
			defer wg.Done()
			defer func() { <-sem }()

			mu.Lock()
			failed := firstErr != nil
			mu.Unlock()
			if failed {
				return
			}

			summary, err := s.scoreStore(ctx, storeID, now)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			rows[slot] = summary
		}(i, storeID)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return rows, nil
}

func (s *Service) scoreStore(ctx context.Context, storeID string, now time.Time) (uptime.Summary, error) {
	hours, err := s.stores.BusinessHours(ctx, storeID)
	if err != nil {
		return uptime.Summary{}, fmt.Errorf("%w: business hours for %s: %v", report.ErrDataUnavailable, storeID, err)
	}
	tz, _, err := s.stores.Timezone(ctx, storeID)
	if err != nil {
		return uptime.Summary{}, fmt.Errorf("%w: timezone for %s: %v", report.ErrDataUnavailable, storeID, err)
	}
	weekWindow := uptime.NewWindowEndingAt(now, uptime.WindowWeek.Length())
	observations, err := s.stores.Observations(ctx, storeID, weekWindow)
	if err != nil {
		return uptime.Summary{}, fmt.Errorf("%w: observations for %s: %v", report.ErrDataUnavailable, storeID, err)
	}

	cal := uptime.NewCalendar(hours)
	loc := uptime.ResolveLocation(tz)
	return uptime.Score(storeID, now, observations, cal, loc), nil
}

func (s *Service) observeFinished(status report.Status, started time.Time, stores int) {
	if s.metrics == nil {
		return
	}
	s.metrics.JobsTotal.WithLabelValues(string(status)).Inc()
	s.metrics.JobDuration.Observe(s.clock.Now().Sub(started).Seconds())
	if status == report.StatusComplete {
		s.metrics.StoresScored.Observe(float64(stores))
	}
}

func (s *Service) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
