package model

import (
	"time"

	"github.com/google/uuid"
)

// NotAttempted is recorded as the attempted answer of an unanswered question.
const NotAttempted = "Not attempted"

// SubmitReason says what moved a session into the submitted phase.
type SubmitReason string

const (
	SubmitManual      SubmitReason = "manual"
	SubmitTimeExpired SubmitReason = "time_expired"
	SubmitIntegrity   SubmitReason = "integrity"
)

// QuestionResult is the per-question line of a submission record.
type QuestionResult struct {
	QuestionID       int    `json:"question_id"`
	QuestionText     string `json:"question_text"`
	AttemptedAnswer  string `json:"attempted_answer"`
	CorrectAnswer    string `json:"correct_answer"`
	IsCorrect        bool   `json:"is_correct"`
	TimeTakenSeconds int    `json:"time_taken_seconds"`
}

// SubmissionRecord is the write-once payload handed to the submission sink.
type SubmissionRecord struct {
	ID             uuid.UUID        `json:"id"`
	SubjectID      string           `json:"subject_id"`
	CourseID       string           `json:"course_id"`
	Timestamp      time.Time        `json:"timestamp"`
	PerQuestion    []QuestionResult `json:"per_question"`
	TotalScore     int              `json:"total_score"`
	TotalQuestions int              `json:"total_questions"`
	MarksAwarded   int              `json:"marks_awarded"`
	TotalMarks     int              `json:"total_marks"`
	WarningCount   int              `json:"warning_count"`
	Reason         SubmitReason     `json:"reason"`
}

// Percentage returns the score as a percentage of the question count.
func (r *SubmissionRecord) Percentage() float64 {
	if r.TotalQuestions == 0 {
		return 0
	}
	return float64(r.TotalScore) / float64(r.TotalQuestions) * 100
}

// AttemptSummary is one row of a student's test history.
type AttemptSummary struct {
	ID             uuid.UUID    `json:"id"`
	CourseID       string       `json:"course_id"`
	TotalScore     int          `json:"total_score"`
	TotalQuestions int          `json:"total_questions"`
	Percentage     float64      `json:"percentage"`
	Reason         SubmitReason `json:"reason"`
	SubmittedAt    time.Time    `json:"submitted_at"`
}

// TestProfile aggregates a student's attempts.
type TestProfile struct {
	SubjectID     string           `json:"subject_id"`
	TotalAttempts int              `json:"total_attempts"`
	AverageScore  float64          `json:"average_score"`
	LastAttemptAt *time.Time       `json:"last_attempt_at,omitempty"`
	Attempts      []AttemptSummary `json:"attempts"`
}
