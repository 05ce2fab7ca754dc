package model

import "time"

// Student is an authenticated test taker. ExternalID is the subject identifier
// carried in tokens and submission records.
type Student struct {
	ExternalID   string    `json:"external_id"`
	NMID         string    `json:"nm_id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	Semester     string    `json:"semester"`
	CourseID     *string   `json:"course_id,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StudentLoginRequest is the payload for student authentication.
type StudentLoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// StudentLoginResponse is returned after successful student login.
type StudentLoginResponse struct {
	Token   string  `json:"token"`
	Student Student `json:"student"`
}

// CreateStudentRequest is used by the provisioning tool.
type CreateStudentRequest struct {
	NMID     string `validate:"required,min=3,max=50"`
	Email    string `validate:"required,email,max=255"`
	Username string `validate:"required,min=2,max=100"`
	Semester string `validate:"required,max=20"`
	CourseID string `validate:"omitempty,max=64"`
	Password string `validate:"required,min=6,max=128"`
}
