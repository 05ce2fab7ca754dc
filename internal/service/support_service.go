package service

import (
	"context"
	"fmt"

	"github.com/rareminds/testportal/internal/model"
	"github.com/rs/zerolog"
)

// SupportStore persists support requests.
type SupportStore interface {
	Create(ctx context.Context, req *model.SupportRequest) error
}

// SupportService records help requests from students.
type SupportService struct {
	store SupportStore
	log   zerolog.Logger
}

// NewSupportService creates a new SupportService.
func NewSupportService(store SupportStore, log zerolog.Logger) *SupportService {
	return &SupportService{
		store: store,
		log:   log.With().Str("component", "support").Logger(),
	}
}

// Raise stores a help message from subjectID.
func (s *SupportService) Raise(ctx context.Context, subjectID, courseID, message string) (*model.SupportRequest, error) {
	req := &model.SupportRequest{
		SubjectID: subjectID,
		CourseID:  courseID,
		Message:   message,
	}
	if err := s.store.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("create support request: %w", err)
	}
	s.log.Info().
		Int("request_id", req.ID).
		Str("subject_id", subjectID).
		Str("course_id", courseID).
		Msg("Support request raised")
	return req, nil
}
