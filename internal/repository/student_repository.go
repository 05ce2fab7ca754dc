package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rareminds/testportal/internal/model"
)

var ErrDuplicateStudent = errors.New("student with this email or NM ID already exists")

const studentColumns = `external_id, nm_id, email, username, semester, course_id, password_hash, created_at, updated_at`

// StudentRepository handles student data access.
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

func scanStudent(row pgx.Row) (*model.Student, error) {
	s := &model.Student{}
	err := row.Scan(&s.ExternalID, &s.NMID, &s.Email, &s.Username, &s.Semester, &s.CourseID, &s.PasswordHash, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByExternalID retrieves a student by subject identifier.
func (r *StudentRepository) GetByExternalID(ctx context.Context, externalID string) (*model.Student, error) {
	return scanStudent(r.pool.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students WHERE external_id = $1`, externalID,
	))
}

// GetByEmail retrieves a student by login email, case-insensitively.
func (r *StudentRepository) GetByEmail(ctx context.Context, email string) (*model.Student, error) {
	return scanStudent(r.pool.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students WHERE lower(email) = lower($1)`, email,
	))
}

// Create inserts a new student.
func (r *StudentRepository) Create(ctx context.Context, s *model.Student) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO students (external_id, nm_id, email, username, semester, course_id, password_hash)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at, updated_at`,
		s.ExternalID, s.NMID, s.Email, s.Username, s.Semester, s.CourseID, s.PasswordHash,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateStudent
		}
		return err
	}
	return nil
}
