package session

import "github.com/rareminds/testportal/internal/model"

// ReviewItem is the review status of one question.
type ReviewItem struct {
	Index          int     `json:"index"`
	QuestionID     int     `json:"question_id"`
	Section        string  `json:"section,omitempty"`
	Marks          int     `json:"marks"`
	IsAnswered     bool    `json:"is_answered"`
	SelectedOption *string `json:"selected_option"`
}

// ReviewSummary is the read-only view shown before final submission.
type ReviewSummary struct {
	Items           []ReviewItem `json:"items"`
	AnsweredCount   int          `json:"answered_count"`
	UnansweredCount int          `json:"unanswered_count"`
	TotalCount      int          `json:"total_count"`
	TotalMarks      int          `json:"total_marks"`
}

// AssembleReview projects questions and selections into a ReviewSummary.
// answers[i] == "" means question i is unanswered. It does not modify its inputs.
func AssembleReview(questions []model.Question, answers []string) ReviewSummary {
	summary := ReviewSummary{
		Items:      make([]ReviewItem, len(questions)),
		TotalCount: len(questions),
		TotalMarks: TotalMarks(questions),
	}
	for i := range questions {
		q := &questions[i]
		item := ReviewItem{
			Index:      i,
			QuestionID: q.ID,
			Section:    q.SectionLabel(),
			Marks:      q.Marks,
		}
		if i < len(answers) && answers[i] != unanswered {
			selected := answers[i]
			item.IsAnswered = true
			item.SelectedOption = &selected
			summary.AnsweredCount++
		}
		summary.Items[i] = item
	}
	summary.UnansweredCount = summary.TotalCount - summary.AnsweredCount
	return summary
}

// TotalMarks sums the marks of every question.
func TotalMarks(questions []model.Question) int {
	total := 0
	for i := range questions {
		total += questions[i].Marks
	}
	return total
}
