package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rareminds/testportal/internal/model"
)

// RosterRepository reads and loads the enrolment roster.
type RosterRepository struct {
	pool *pgxpool.Pool
}

// NewRosterRepository creates a new RosterRepository.
func NewRosterRepository(pool *pgxpool.Pool) *RosterRepository {
	return &RosterRepository{pool: pool}
}

// GetByRollNo looks up an enrolled student by roll number.
func (r *RosterRepository) GetByRollNo(ctx context.Context, rollNo string) (*model.RosterEntry, error) {
	e := &model.RosterEntry{}
	err := r.pool.QueryRow(ctx,
		`SELECT roll_no, nm_id, name, semester, course_id FROM student_roster WHERE roll_no = $1`, rollNo,
	).Scan(&e.RollNo, &e.NMID, &e.Name, &e.Semester, &e.CourseID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Upsert inserts or refreshes roster entries in one transaction.
func (r *RosterRepository) Upsert(ctx context.Context, entries []model.RosterEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(
			`INSERT INTO student_roster (roll_no, nm_id, name, semester, course_id)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (roll_no) DO UPDATE SET
			   nm_id = EXCLUDED.nm_id,
			   name = EXCLUDED.name,
			   semester = EXCLUDED.semester,
			   course_id = EXCLUDED.course_id,
			   updated_at = now()`,
			e.RollNo, e.NMID, e.Name, e.Semester, e.CourseID,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
