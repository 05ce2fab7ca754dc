package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rareminds/testportal/internal/config"
	"github.com/rareminds/testportal/internal/model"
	"github.com/rareminds/testportal/internal/repository"
	"github.com/rareminds/testportal/internal/session"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Session start errors.
var (
	ErrNoCourseAssigned = errors.New("no course assigned to this student")
	ErrNoQuestions      = errors.New("no questions found for this course")
	ErrOutsideWindow    = errors.New("course is outside its assessment window")
	ErrAlreadySubmitted = errors.New("course already submitted")
	ErrSessionActive    = errors.New("a test session is already active for this student")
)

const (
	// The active-session marker outlives its holder by at most one TTL; a
	// live session refreshes it every heartbeat.
	activeSessionTTL       = 2 * time.Minute
	activeSessionHeartbeat = 30 * time.Second
	releaseActiveTimeout   = 3 * time.Second
)

// CourseFinder looks up a course by slug.
type CourseFinder interface {
	GetByID(ctx context.Context, id string) (*model.Course, error)
}

// SubmissionChecker reports whether a course was already submitted.
type SubmissionChecker interface {
	HasSubmitted(ctx context.Context, subjectID, courseID string) (bool, error)
}

// QuestionLoader resolves a course to its question set.
type QuestionLoader interface {
	Load(ctx context.Context, courseID string) ([]model.Question, error)
}

// QueueSink is both the submission sink and the integrity reporter. Pending
// reports submissions it holds that are not persisted yet.
type QueueSink interface {
	session.Sink
	session.IntegrityReporter
	Pending(ctx context.Context, subjectID string, courseIDs ...string) (map[string]bool, error)
}

// SessionService prepares test sessions and enforces one live session per student.
type SessionService struct {
	students    StudentFinder
	courses     CourseFinder
	submissions SubmissionChecker
	loader      QuestionLoader
	sink        QueueSink
	registry    *session.Registry
	rdb         *redis.Client
	policy      session.Policy
	log         zerolog.Logger
	now         func() time.Time
	heartbeat   time.Duration
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	students StudentFinder,
	courses CourseFinder,
	submissions SubmissionChecker,
	loader QuestionLoader,
	sink QueueSink,
	registry *session.Registry,
	rdb *redis.Client,
	policy session.Policy,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		students:    students,
		courses:     courses,
		submissions: submissions,
		loader:      loader,
		sink:        sink,
		registry:    registry,
		rdb:         rdb,
		policy:      policy,
		log:         log,
		now:         time.Now,
		heartbeat:   activeSessionHeartbeat,
	}
}

// Policy returns the rules sessions are created with.
func (s *SessionService) Policy() session.Policy {
	return s.policy
}

// Prepare resolves the student's course, checks the assessment window and
// loads the question set, returning a controller in the instructions phase.
func (s *SessionService) Prepare(ctx context.Context, subjectID string) (*session.Controller, error) {
	student, err := s.students.GetByExternalID(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	if student.CourseID == nil || *student.CourseID == "" {
		return nil, ErrNoCourseAssigned
	}
	courseID := *student.CourseID

	course, err := s.courses.GetByID(ctx, courseID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		// An unknown course has no questions.
		return nil, ErrNoQuestions
	case err != nil:
		return nil, fmt.Errorf("get course: %w", err)
	}
	if course.Window(s.now()) != model.WindowAvailable {
		return nil, ErrOutsideWindow
	}

	// The worker persists before it clears the pending marker, so reading the
	// marker first leaves no gap between the two checks.
	pending, err := s.sink.Pending(ctx, subjectID, courseID)
	if err != nil {
		return nil, err
	}
	if pending[courseID] {
		return nil, ErrAlreadySubmitted
	}
	done, err := s.submissions.HasSubmitted(ctx, subjectID, courseID)
	if err != nil {
		return nil, fmt.Errorf("check submission: %w", err)
	}
	if done {
		return nil, ErrAlreadySubmitted
	}

	questions, err := s.loader.Load(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoQuestions, err)
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	return session.NewController(session.Params{
		SubjectID: subjectID,
		CourseID:  courseID,
		Questions: questions,
		Policy:    s.policy,
		Sink:      s.sink,
		Integrity: s.sink,
		Now:       s.now,
		Logger:    s.log,
	})
}

// Acquire registers r as the student's only live session, locally and
// across server instances through Redis.
func (s *SessionService) Acquire(ctx context.Context, subjectID string, r *session.Runner) error {
	if !s.registry.Acquire(subjectID, r) {
		return ErrSessionActive
	}
	ok, err := s.rdb.SetNX(ctx, config.CacheKey.StudentActiveTestKey(subjectID), s.now().Unix(), activeSessionTTL).Result()
	if err != nil || !ok {
		s.registry.Release(subjectID, r)
		if err != nil {
			return fmt.Errorf("mark active session: %w", err)
		}
		return ErrSessionActive
	}
	return nil
}

// Hold refreshes the student's active-session marker until ctx ends, so a
// session paused in review keeps other instances out however long it lasts.
func (s *SessionService) Hold(ctx context.Context, subjectID string) {
	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()
	key := config.CacheKey.StudentActiveTestKey(subjectID)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.rdb.Expire(ctx, key, activeSessionTTL).Err(); err != nil && ctx.Err() == nil {
				s.log.Warn().Err(err).Str("subject_id", subjectID).Msg("Failed to refresh active session marker")
			}
		}
	}
}

// Release drops the student's live-session markers held by r.
func (s *SessionService) Release(ctx context.Context, subjectID string, r *session.Runner) {
	s.registry.Release(subjectID, r)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseActiveTimeout)
	defer cancel()
	if err := s.rdb.Del(ctx, config.CacheKey.StudentActiveTestKey(subjectID)).Err(); err != nil {
		s.log.Error().Err(err).Str("subject_id", subjectID).Msg("Failed to clear active session marker")
	}
}
