package session

import "github.com/rareminds/testportal/internal/model"

// Snapshot is the full client-facing view of a session.
type Snapshot struct {
	Phase            Phase                     `json:"phase"`
	CourseID         string                    `json:"course_id"`
	CurrentIndex     int                       `json:"current_index"`
	TotalQuestions   int                       `json:"total_questions"`
	Question         *model.QuestionForStudent `json:"question,omitempty"`
	SelectedAnswer   *string                   `json:"selected_answer"`
	Answered         []bool                    `json:"answered"`
	TimeLeftSeconds  int                       `json:"time_left_seconds"`
	TimeLeftDisplay  string                    `json:"time_left_display"`
	WarningCount     int                       `json:"warning_count"`
	WarningThreshold int                       `json:"warning_threshold"`
	ForcedReview     bool                      `json:"forced_review"`
	ReviewLocked     bool                      `json:"review_locked"`
	Review           *ReviewSummary            `json:"review,omitempty"`
	Record           *model.SubmissionRecord   `json:"record,omitempty"`
}

// Snapshot captures the current state. The question is only included while
// the test is being taken, and never carries the answer key.
func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{
		Phase:            c.phase,
		CourseID:         c.courseID,
		CurrentIndex:     c.currentIndex,
		TotalQuestions:   len(c.questions),
		Answered:         make([]bool, len(c.answers)),
		TimeLeftSeconds:  c.timeLeft,
		TimeLeftDisplay:  FormatClock(c.timeLeft),
		WarningCount:     c.warningCount,
		WarningThreshold: c.policy.WarningThreshold,
		ForcedReview:     c.forcedReview,
		ReviewLocked:     c.forcedReview && c.policy.LockForcedReview,
		Record:           c.record,
	}
	for i, a := range c.answers {
		s.Answered[i] = a != unanswered
	}
	switch c.phase {
	case PhaseInProgress:
		q := c.questions[c.currentIndex].ForStudent()
		s.Question = &q
		if a := c.answers[c.currentIndex]; a != unanswered {
			s.SelectedAnswer = &a
		}
	case PhaseReview:
		r := c.Review()
		s.Review = &r
	}
	return s
}
