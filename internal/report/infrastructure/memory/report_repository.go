package memory

import (
	"context"
	"sort"
	"sync"

	report "store-monitor/internal/report/domain"
	uptime "store-monitor/internal/uptime/domain"
)

// ReportRepository is an in-memory report store for demo/testing.
type ReportRepository struct {
	mu   sync.RWMutex
	data map[string]*report.Report
}

// NewReportRepository constructs a repository.
func NewReportRepository() *ReportRepository {
	return &ReportRepository{data: make(map[string]*report.Report)}
}

// Create persists a new report record.
func (r *ReportRepository) Create(ctx context.Context, rpt *report.Report) error {
	return r.Save(ctx, rpt)
}

// Save persists a report snapshot.
func (r *ReportRepository) Save(ctx context.Context, rpt *report.Report) error {
	_ = ctx
	if rpt == nil {
		return report.ErrNilReport
	}
	if rpt.ID == "" {
		return report.ErrEmptyID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	snapshot := *rpt
	snapshot.Rows = cloneRows(rpt.Rows)
	r.data[rpt.ID] = &snapshot
	return nil
}

// Get loads a report by id.
func (r *ReportRepository) Get(ctx context.Context, id string) (*report.Report, error) {
	_ = ctx
	if id == "" {
		return nil, report.ErrEmptyID
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored := r.data[id]
	if stored == nil {
		return nil, report.ErrNotFound
	}
	snapshot := *stored
	snapshot.Rows = cloneRows(stored.Rows)
	return &snapshot, nil
}

// List returns every stored report, newest first.
func (r *ReportRepository) List(ctx context.Context) ([]*report.Report, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	reports := make([]*report.Report, 0, len(r.data))
	for _, stored := range r.data {
		snapshot := *stored
		snapshot.Rows = cloneRows(stored.Rows)
		reports = append(reports, &snapshot)
	}
	sort.Slice(reports, func(i, j int) bool {
		if !reports[i].CreatedAt.Equal(reports[j].CreatedAt) {
			return reports[i].CreatedAt.After(reports[j].CreatedAt)
		}
		return reports[i].ID < reports[j].ID
	})
	return reports, nil
}

func cloneRows(rows []uptime.Summary) []uptime.Summary {
	if rows == nil {
		return nil
	}
	cloned := make([]uptime.Summary, len(rows))
	copy(cloned, rows)
	return cloned
}
