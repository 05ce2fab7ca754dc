package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rareminds/testportal/internal/model"
)

// IntegrityRepository stores integrity warnings.
type IntegrityRepository struct {
	pool *pgxpool.Pool
}

// NewIntegrityRepository creates a new IntegrityRepository.
func NewIntegrityRepository(pool *pgxpool.Pool) *IntegrityRepository {
	return &IntegrityRepository{pool: pool}
}

// CopyEvents bulk-inserts warnings with COPY.
func (r *IntegrityRepository) CopyEvents(ctx context.Context, events []model.IntegrityEvent) (int64, error) {
	return r.pool.CopyFrom(ctx,
		pgx.Identifier{"integrity_events"},
		[]string{"subject_id", "course_id", "warning_count", "recorded_at"},
		pgx.CopyFromSlice(len(events), func(i int) ([]interface{}, error) {
			e := events[i]
			return []interface{}{e.SubjectID, e.CourseID, e.Count, e.RecordedAt}, nil
		}),
	)
}
