package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rareminds/testportal/internal/model"
)

const unanswered = ""

// Score counts answered questions whose selection equals the correct answer.
func Score(questions []model.Question, answers []string) int {
	score := 0
	for i := range questions {
		if i < len(answers) && isCorrect(&questions[i], answers[i]) {
			score++
		}
	}
	return score
}

func isCorrect(q *model.Question, answer string) bool {
	return answer != unanswered && answer == q.CorrectAnswer
}

// BuildRecord assembles the submission record for a finished session.
func BuildRecord(subjectID, courseID string, questions []model.Question, answers []string, timeTaken []int, at time.Time) *model.SubmissionRecord {
	rec := &model.SubmissionRecord{
		ID:             uuid.New(),
		SubjectID:      subjectID,
		CourseID:       courseID,
		Timestamp:      at.UTC(),
		PerQuestion:    make([]model.QuestionResult, len(questions)),
		TotalQuestions: len(questions),
		TotalMarks:     TotalMarks(questions),
	}
	for i := range questions {
		q := &questions[i]
		answer := unanswered
		if i < len(answers) {
			answer = answers[i]
		}
		correct := isCorrect(q, answer)
		attempted := answer
		if attempted == unanswered {
			attempted = model.NotAttempted
		}
		spent := 0
		if i < len(timeTaken) {
			spent = timeTaken[i]
		}
		rec.PerQuestion[i] = model.QuestionResult{
			QuestionID:       q.ID,
			QuestionText:     q.Text,
			AttemptedAnswer:  attempted,
			CorrectAnswer:    q.CorrectAnswer,
			IsCorrect:        correct,
			TimeTakenSeconds: spent,
		}
		if correct {
			rec.TotalScore++
			rec.MarksAwarded += q.Marks
		}
	}
	return rec
}

// FormatClock renders seconds as HH:MM:SS.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
}
