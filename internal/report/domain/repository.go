package report

import "context"

// Repository persists report jobs. Get returns ErrNotFound for unknown ids.
// List returns every job, newest first.
type Repository interface {
	Create(ctx context.Context, rpt *Report) error
	Save(ctx context.Context, rpt *Report) error
	Get(ctx context.Context, id string) (*Report, error)
	List(ctx context.Context) ([]*Report, error)
}
