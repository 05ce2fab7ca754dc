package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rareminds/testportal/internal/model"
)

// QuestionRepository handles question data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// ListByCourse retrieves the questions of the course with the given slug,
// ordered by question id. An unknown course yields no rows.
func (r *QuestionRepository) ListByCourse(ctx context.Context, courseID string) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT q.id, q.course_code, q.text, q.options, q.correct_answer, q.section, q.marks
		 FROM questions q
		 JOIN courses c ON c.code = q.course_code
		 WHERE c.id = $1
		 ORDER BY q.id`, courseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.CourseCode, &q.Text, &q.Options, &q.CorrectAnswer, &q.Section, &q.Marks); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// Upsert inserts or replaces a batch of questions in one transaction.
func (r *QuestionRepository) Upsert(ctx context.Context, questions []model.Question) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, q := range questions {
		batch.Queue(
			`INSERT INTO questions (course_code, id, text, options, correct_answer, section, marks)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (course_code, id) DO UPDATE SET
			   text = EXCLUDED.text,
			   options = EXCLUDED.options,
			   correct_answer = EXCLUDED.correct_answer,
			   section = EXCLUDED.section,
			   marks = EXCLUDED.marks`,
			q.CourseCode, q.ID, q.Text, q.Options, q.CorrectAnswer, q.Section, q.Marks,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
