package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rareminds/testportal/internal/model"
	"github.com/rareminds/testportal/internal/repository"
	"github.com/rs/zerolog"
)

// Signup errors.
var (
	ErrRollNoUnknown    = errors.New("roll number is not on the enrolment roster")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrAccountExists    = errors.New("an account already exists for this student or email")
)

// RosterFinder looks up enrolled students.
type RosterFinder interface {
	GetByRollNo(ctx context.Context, rollNo string) (*model.RosterEntry, error)
}

// StudentCreator stores new student accounts.
type StudentCreator interface {
	Create(ctx context.Context, s *model.Student) error
}

// SignupService lets enrolled students create their own accounts.
type SignupService struct {
	roster   RosterFinder
	students StudentCreator
	auth     *AuthService
	log      zerolog.Logger
}

// NewSignupService creates a new SignupService.
func NewSignupService(roster RosterFinder, students StudentCreator, auth *AuthService, log zerolog.Logger) *SignupService {
	return &SignupService{
		roster:   roster,
		students: students,
		auth:     auth,
		log:      log.With().Str("component", "signup").Logger(),
	}
}

// Signup creates an account for the roster entry named by req.RollNo. The
// NM ID, semester and course come from the roster, not from the request.
func (s *SignupService) Signup(ctx context.Context, req model.StudentSignupRequest) (*model.Student, error) {
	if req.Password != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}
	entry, err := s.roster.GetByRollNo(ctx, strings.TrimSpace(req.RollNo))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRollNoUnknown
		}
		return nil, fmt.Errorf("find roster entry: %w", err)
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	student := &model.Student{
		ExternalID:   uuid.NewString(),
		NMID:         entry.NMID,
		Email:        strings.TrimSpace(req.Email),
		Username:     strings.TrimSpace(req.Username),
		Semester:     entry.Semester,
		CourseID:     entry.CourseID,
		PasswordHash: hash,
	}
	if err := s.students.Create(ctx, student); err != nil {
		if errors.Is(err, repository.ErrDuplicateStudent) {
			return nil, ErrAccountExists
		}
		return nil, fmt.Errorf("create student: %w", err)
	}

	s.log.Info().
		Str("subject_id", student.ExternalID).
		Str("nm_id", student.NMID).
		Msg("Student signed up")
	return student, nil
}
