package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rareminds/testportal/internal/model"
)

// SubmissionRepository handles submitted test records.
type SubmissionRepository struct {
	pool *pgxpool.Pool
}

// NewSubmissionRepository creates a new SubmissionRepository.
func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

// SaveBatch writes records and their answers in one transaction. Records
// already stored are skipped, so a requeued batch is safe to replay.
func (r *SubmissionRepository) SaveBatch(ctx context.Context, records []model.SubmissionRecord) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var answerRows [][]interface{}
	for i := range records {
		rec := &records[i]
		tag, err := tx.Exec(ctx,
			`INSERT INTO submissions (id, subject_id, course_id, total_score, total_questions,
			   marks_awarded, total_marks, warning_count, reason, submitted_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			 ON CONFLICT (id) DO NOTHING`,
			rec.ID, rec.SubjectID, rec.CourseID, rec.TotalScore, rec.TotalQuestions,
			rec.MarksAwarded, rec.TotalMarks, rec.WarningCount, string(rec.Reason), rec.Timestamp,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			continue
		}
		for pos, a := range rec.PerQuestion {
			answerRows = append(answerRows, []interface{}{
				rec.ID, pos, a.QuestionID, a.QuestionText, a.AttemptedAnswer, a.CorrectAnswer, a.IsCorrect, a.TimeTakenSeconds,
			})
		}
	}

	if len(answerRows) > 0 {
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"submission_answers"},
			[]string{"submission_id", "position", "question_id", "question_text", "attempted_answer", "correct_answer", "is_correct", "time_taken_seconds"},
			pgx.CopyFromRows(answerRows),
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// ListBySubject returns a student's attempts, newest first.
func (r *SubmissionRepository) ListBySubject(ctx context.Context, subjectID string) ([]model.AttemptSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, course_id, total_score, total_questions, reason, submitted_at
		 FROM submissions WHERE subject_id = $1
		 ORDER BY submitted_at DESC`, subjectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []model.AttemptSummary
	for rows.Next() {
		var a model.AttemptSummary
		var reason string
		if err := rows.Scan(&a.ID, &a.CourseID, &a.TotalScore, &a.TotalQuestions, &reason, &a.SubmittedAt); err != nil {
			return nil, err
		}
		a.Reason = model.SubmitReason(reason)
		if a.TotalQuestions > 0 {
			a.Percentage = float64(a.TotalScore) / float64(a.TotalQuestions) * 100
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// HasSubmitted reports whether the student already submitted the course.
func (r *SubmissionRepository) HasSubmitted(ctx context.Context, subjectID, courseID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM submissions WHERE subject_id = $1 AND course_id = $2)`,
		subjectID, courseID,
	).Scan(&exists)
	return exists, err
}

// GetLatest returns the most recent full submission of a student.
func (r *SubmissionRepository) GetLatest(ctx context.Context, subjectID string) (*model.SubmissionRecord, error) {
	rec := &model.SubmissionRecord{SubjectID: subjectID}
	var reason string
	err := r.pool.QueryRow(ctx,
		`SELECT id, course_id, total_score, total_questions, marks_awarded, total_marks,
		   warning_count, reason, submitted_at
		 FROM submissions WHERE subject_id = $1
		 ORDER BY submitted_at DESC LIMIT 1`, subjectID,
	).Scan(&rec.ID, &rec.CourseID, &rec.TotalScore, &rec.TotalQuestions, &rec.MarksAwarded,
		&rec.TotalMarks, &rec.WarningCount, &reason, &rec.Timestamp)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rec.Reason = model.SubmitReason(reason)

	answers, err := r.listAnswers(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	rec.PerQuestion = answers
	return rec, nil
}

func (r *SubmissionRepository) listAnswers(ctx context.Context, submissionID uuid.UUID) ([]model.QuestionResult, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT question_id, question_text, attempted_answer, correct_answer, is_correct, time_taken_seconds
		 FROM submission_answers WHERE submission_id = $1
		 ORDER BY position`, submissionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.QuestionResult
	for rows.Next() {
		var q model.QuestionResult
		if err := rows.Scan(&q.QuestionID, &q.QuestionText, &q.AttemptedAnswer, &q.CorrectAnswer, &q.IsCorrect, &q.TimeTakenSeconds); err != nil {
			return nil, err
		}
		results = append(results, q)
	}
	return results, rows.Err()
}
