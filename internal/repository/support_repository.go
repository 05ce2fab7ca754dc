package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rareminds/testportal/internal/model"
)

// SupportRepository stores help requests.
type SupportRepository struct {
	pool *pgxpool.Pool
}

// NewSupportRepository creates a new SupportRepository.
func NewSupportRepository(pool *pgxpool.Pool) *SupportRepository {
	return &SupportRepository{pool: pool}
}

// Create inserts a support request and fills its id and creation time.
func (r *SupportRepository) Create(ctx context.Context, req *model.SupportRequest) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO support_requests (subject_id, course_id, message)
		 VALUES ($1, NULLIF($2, ''), $3)
		 RETURNING id, created_at`,
		req.SubjectID, req.CourseID, req.Message,
	).Scan(&req.ID, &req.CreatedAt)
}
