package model

import "time"

// SupportRequest is a help message raised by a student, possibly mid-test.
type SupportRequest struct {
	ID        int       `json:"id"`
	SubjectID string    `json:"subject_id"`
	CourseID  string    `json:"course_id,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateSupportRequest is the payload for raising a support request.
type CreateSupportRequest struct {
	Message  string `json:"message" binding:"required,min=3,max=2000"`
	CourseID string `json:"course_id" binding:"omitempty,max=64"`
}

// IntegrityEvent is one counted visibility loss during an in-progress session.
type IntegrityEvent struct {
	SubjectID  string    `json:"subject_id"`
	CourseID   string    `json:"course_id"`
	Count      int       `json:"count"`
	RecordedAt time.Time `json:"recorded_at"`
}
