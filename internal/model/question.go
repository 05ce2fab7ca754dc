package model

import "strings"

// Question is one multiple-choice item of a course's question set.
// It is immutable once loaded for a session.
type Question struct {
	ID            int      `json:"id"`
	CourseCode    string   `json:"course_code"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Section       string   `json:"section,omitempty"`
	Marks         int      `json:"marks,omitempty"`
}

// HasOption reports whether value is one of the question's options.
func (q *Question) HasOption(value string) bool {
	for _, o := range q.Options {
		if o == value {
			return true
		}
	}
	return false
}

// SectionLabel returns the section name up to the first colon,
// e.g. "Part A: Safety" becomes "Part A".
func (q *Question) SectionLabel() string {
	if q.Section == "" {
		return ""
	}
	label, _, _ := strings.Cut(q.Section, ":")
	return strings.TrimSpace(label)
}

// QuestionForStudent is a question without the correct answer, sent to students.
type QuestionForStudent struct {
	ID      int      `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
	Section string   `json:"section,omitempty"`
	Marks   int      `json:"marks,omitempty"`
}

// ForStudent strips the answer key.
func (q *Question) ForStudent() QuestionForStudent {
	return QuestionForStudent{
		ID:      q.ID,
		Text:    q.Text,
		Options: q.Options,
		Section: q.Section,
		Marks:   q.Marks,
	}
}

// ImportQuestionRow is one spreadsheet row accepted by the question importer.
type ImportQuestionRow struct {
	ID         int      `validate:"required,min=1"`
	CourseCode string   `validate:"required,max=20"`
	Text       string   `validate:"required,max=4000"`
	Options    []string `validate:"required,min=2,dive,required"`
	Answer     string   `validate:"required"`
	Section    string   `validate:"omitempty,max=255"`
	Marks      int      `validate:"min=0"`
}
