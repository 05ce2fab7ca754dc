package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rareminds/testportal/internal/model"
	"github.com/rareminds/testportal/internal/repository"
	"github.com/rs/zerolog"
)

// CourseLister lists the course catalog.
type CourseLister interface {
	List(ctx context.Context) ([]model.Course, error)
}

// AttemptStore reads a student's persisted submissions.
type AttemptStore interface {
	ListBySubject(ctx context.Context, subjectID string) ([]model.AttemptSummary, error)
	GetLatest(ctx context.Context, subjectID string) (*model.SubmissionRecord, error)
}

// LatestResultCache reports submissions not yet persisted by the worker.
type LatestResultCache interface {
	LatestResult(ctx context.Context, subjectID string) (*model.SubmissionRecord, error)
	Pending(ctx context.Context, subjectID string, courseIDs ...string) (map[string]bool, error)
}

// DashboardCourse is a course as shown on the student dashboard.
type DashboardCourse struct {
	model.Course
	Status   model.WindowStatus `json:"status"`
	Assigned bool               `json:"assigned"`
}

// Dashboard is the student's landing view.
type Dashboard struct {
	Student *model.Student    `json:"student"`
	Courses []DashboardCourse `json:"courses"`
}

// PortalService serves the student dashboard, test profile and results.
type PortalService struct {
	students StudentFinder
	courses  CourseLister
	attempts AttemptStore
	latest   LatestResultCache
	log      zerolog.Logger
	now      func() time.Time
}

// NewPortalService creates a new PortalService.
func NewPortalService(students StudentFinder, courses CourseLister, attempts AttemptStore, latest LatestResultCache, log zerolog.Logger) *PortalService {
	return &PortalService{
		students: students,
		courses:  courses,
		attempts: attempts,
		latest:   latest,
		log:      log.With().Str("component", "portal").Logger(),
		now:      time.Now,
	}
}

// GetDashboard lists every course with its window status for the student.
func (s *PortalService) GetDashboard(ctx context.Context, subjectID string) (*Dashboard, error) {
	student, err := s.students.GetByExternalID(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	attempts, err := s.attempts.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}

	ids := make([]string, len(courses))
	for i, c := range courses {
		ids[i] = c.ID
	}
	completed, err := s.latest.Pending(ctx, subjectID, ids...)
	if err != nil {
		// Persisted attempts still mark most completed courses.
		s.log.Warn().Err(err).Str("subject_id", subjectID).Msg("Pending submissions unavailable")
		completed = make(map[string]bool, len(attempts))
	}
	for _, a := range attempts {
		completed[a.CourseID] = true
	}

	now := s.now()
	out := make([]DashboardCourse, 0, len(courses))
	for _, c := range courses {
		entry := DashboardCourse{
			Course:   c,
			Status:   c.Window(now),
			Assigned: student.CourseID != nil && *student.CourseID == c.ID,
		}
		if completed[c.ID] {
			entry.Status = model.WindowCompleted
		}
		out = append(out, entry)
	}
	return &Dashboard{Student: student, Courses: out}, nil
}

// GetTestProfile aggregates the student's attempts.
func (s *PortalService) GetTestProfile(ctx context.Context, subjectID string) (*model.TestProfile, error) {
	attempts, err := s.attempts.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return BuildTestProfile(subjectID, attempts), nil
}

// BuildTestProfile computes attempt count, mean percentage and last attempt
// time from attempts ordered newest first.
func BuildTestProfile(subjectID string, attempts []model.AttemptSummary) *model.TestProfile {
	p := &model.TestProfile{
		SubjectID:     subjectID,
		TotalAttempts: len(attempts),
		Attempts:      attempts,
	}
	if p.Attempts == nil {
		p.Attempts = []model.AttemptSummary{}
	}
	if len(attempts) == 0 {
		return p
	}
	var sum float64
	for _, a := range attempts {
		sum += a.Percentage
	}
	p.AverageScore = sum / float64(len(attempts))
	last := attempts[0].SubmittedAt
	p.LastAttemptAt = &last
	return p
}

// GetLatestResult returns the most recent submission. A record still
// waiting in the queue wins over an older persisted one.
func (s *PortalService) GetLatestResult(ctx context.Context, subjectID string) (*model.SubmissionRecord, error) {
	persisted, err := s.attempts.GetLatest(ctx, subjectID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("get latest submission: %w", err)
	}
	queued, qerr := s.latest.LatestResult(ctx, subjectID)
	if qerr != nil {
		s.log.Warn().Err(qerr).Str("subject_id", subjectID).Msg("Queued result unavailable, using persisted one")
		queued = nil
	}
	switch {
	case queued != nil && (persisted == nil || queued.Timestamp.After(persisted.Timestamp)):
		return queued, nil
	case persisted != nil:
		return persisted, nil
	default:
		return nil, repository.ErrNotFound
	}
}
