package model

// RosterEntry is an enrolled student who may create an account.
type RosterEntry struct {
	RollNo   string  `json:"roll_no" validate:"required,max=50"`
	NMID     string  `json:"nm_id" validate:"required,min=3,max=50"`
	Name     string  `json:"name" validate:"max=255"`
	Semester string  `json:"semester" validate:"max=20"`
	CourseID *string `json:"course_id,omitempty" validate:"omitempty,min=1,max=64"`
}

// StudentSignupRequest is the payload for self-service account creation.
// Username is the display name chosen by the student.
type StudentSignupRequest struct {
	RollNo          string `json:"roll_no" binding:"required,max=50"`
	Email           string `json:"email" binding:"required,email,max=255"`
	Username        string `json:"username" binding:"required,min=2,max=100"`
	Password        string `json:"password" binding:"required,min=6,max=128"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=Password"`
}
