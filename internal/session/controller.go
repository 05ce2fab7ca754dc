package session

import (
	"context"
	"time"

	"github.com/rareminds/testportal/internal/model"
	"github.com/rs/zerolog"
)

// Sink receives the submission record exactly once per session.
type Sink interface {
	Submit(ctx context.Context, rec *model.SubmissionRecord) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, rec *model.SubmissionRecord) error

func (f SinkFunc) Submit(ctx context.Context, rec *model.SubmissionRecord) error {
	return f(ctx, rec)
}

// Params is everything a controller needs. It never reads ambient state.
type Params struct {
	SubjectID string
	CourseID  string
	Questions []model.Question
	Policy    Policy
	Sink      Sink
	// Integrity is optional; counted warnings are reported to it when set.
	Integrity IntegrityReporter
	// Now defaults to time.Now.
	Now    func() time.Time
	Logger zerolog.Logger
}

// Controller owns the state of one test session. It is not safe for
// concurrent use; the Runner serializes every call.
type Controller struct {
	subjectID string
	courseID  string
	questions []model.Question
	policy    Policy
	sink      Sink
	integrity IntegrityReporter
	now       func() time.Time
	log       zerolog.Logger

	phase        Phase
	currentIndex int
	answers      []string
	timeTaken    []int
	timeLeft     int
	warningCount int

	halfTimeWarningShown bool
	lowTimeWarningShown  bool
	forcedReview         bool

	record *model.SubmissionRecord
	events []Event
}

// NewController creates a session in the instructions phase.
func NewController(p Params) (*Controller, error) {
	if len(p.Questions) == 0 {
		return nil, ErrEmptyQuestionSet
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	if p.Policy.WarningThreshold <= 0 {
		p.Policy.WarningThreshold = DefaultPolicy().WarningThreshold
	}
	questions := make([]model.Question, len(p.Questions))
	copy(questions, p.Questions)

	return &Controller{
		subjectID: p.SubjectID,
		courseID:  p.CourseID,
		questions: questions,
		policy:    p.Policy,
		sink:      p.Sink,
		integrity: p.Integrity,
		now:       p.Now,
		log: p.Logger.With().
			Str("subject_id", p.SubjectID).
			Str("course_id", p.CourseID).
			Logger(),
		phase:     PhaseInstructions,
		answers:   make([]string, len(questions)),
		timeTaken: make([]int, len(questions)),
		timeLeft:  p.Policy.DurationSeconds,
	}, nil
}

// Acknowledge moves from the instructions to the permissions phase.
func (c *Controller) Acknowledge() error {
	if c.phase != PhaseInstructions {
		return ErrInvalidPhase
	}
	c.setPhase(PhasePermissions)
	return nil
}

// GrantPermissions reports which capture devices the browser obtained.
// Under DeviceBlock a missing device keeps the session in the permissions
// phase and returns a *DeviceError.
func (c *Controller) GrantPermissions(camera, microphone bool) error {
	if c.phase != PhasePermissions {
		return ErrInvalidPhase
	}
	var missing []string
	if !camera {
		missing = append(missing, "camera")
	}
	if !microphone {
		missing = append(missing, "microphone")
	}
	if len(missing) > 0 {
		blocked := c.policy.DevicePolicy != DeviceWarn
		c.emit(EventDeviceError, DeviceErrorPayload{Missing: missing, Blocked: blocked})
		if blocked {
			return &DeviceError{Missing: missing}
		}
		c.log.Warn().Strs("missing", missing).Msg("Starting test without required devices")
	}
	c.setPhase(PhaseInProgress)
	c.log.Info().Int("questions", len(c.questions)).Msg("Test started")
	return nil
}

// SelectAnswer records value as the answer of question i, replacing any
// earlier selection. The current question does not change.
func (c *Controller) SelectAnswer(i int, value string) error {
	if c.phase != PhaseInProgress {
		return ErrInvalidPhase
	}
	if !c.inRange(i) {
		return ErrIndexOutOfRange
	}
	if value == unanswered || !c.questions[i].HasOption(value) {
		return ErrUnknownOption
	}
	c.answers[i] = value
	c.emit(EventState, nil)
	return nil
}

// GoTo makes question i current. From review it returns to the questions.
func (c *Controller) GoTo(i int) error {
	if c.phase != PhaseInProgress && c.phase != PhaseReview {
		return ErrInvalidPhase
	}
	if !c.inRange(i) {
		return ErrIndexOutOfRange
	}
	if c.phase == PhaseReview {
		if err := c.leaveReview(); err != nil {
			return err
		}
	}
	c.currentIndex = i
	c.emit(EventState, nil)
	return nil
}

// Next advances one question; from the last question it opens the review.
func (c *Controller) Next() error {
	if c.phase != PhaseInProgress {
		return ErrInvalidPhase
	}
	if c.currentIndex == len(c.questions)-1 {
		c.setPhase(PhaseReview)
		return nil
	}
	c.currentIndex++
	c.emit(EventState, nil)
	return nil
}

// Previous moves back one question; on the first question it does nothing.
func (c *Controller) Previous() error {
	if c.phase != PhaseInProgress {
		return ErrInvalidPhase
	}
	if c.currentIndex > 0 {
		c.currentIndex--
		c.emit(EventState, nil)
	}
	return nil
}

// ReturnToTest leaves the review at the current question.
func (c *Controller) ReturnToTest() error {
	if c.phase != PhaseReview {
		return ErrInvalidPhase
	}
	return c.leaveReview()
}

func (c *Controller) leaveReview() error {
	if c.forcedReview && c.policy.LockForcedReview {
		return ErrReviewLocked
	}
	c.setPhase(PhaseInProgress)
	return nil
}

// Submit finishes the session on the student's request. Calling it again
// after submission does nothing.
func (c *Controller) Submit(ctx context.Context) error {
	switch c.phase {
	case PhaseSubmitted:
		return nil
	case PhaseInProgress, PhaseReview:
		c.submit(ctx, model.SubmitManual)
		return nil
	default:
		return ErrInvalidPhase
	}
}

// submit scores the session, enters the terminal phase and hands the record
// to the sink. Sink failures are logged and swallowed.
func (c *Controller) submit(ctx context.Context, reason model.SubmitReason) {
	if c.phase == PhaseSubmitted {
		return
	}
	rec := BuildRecord(c.subjectID, c.courseID, c.questions, c.answers, c.timeTaken, c.now())
	rec.Reason = reason
	rec.WarningCount = c.warningCount
	c.record = rec
	c.phase = PhaseSubmitted

	c.log.Info().
		Str("reason", string(reason)).
		Int("score", rec.TotalScore).
		Int("total", rec.TotalQuestions).
		Int("warnings", c.warningCount).
		Msg("Test submitted")

	if c.sink != nil {
		if err := c.sink.Submit(ctx, rec); err != nil {
			c.log.Error().Err(err).Str("submission_id", rec.ID.String()).Msg("Submission sink failed")
		}
	}
	c.emit(EventSubmitted, SubmittedPayload{Record: rec})
}

func (c *Controller) setPhase(p Phase) {
	c.phase = p
	c.emit(EventState, nil)
}

func (c *Controller) inRange(i int) bool {
	return i >= 0 && i < len(c.questions)
}

// emit buffers an event. Consecutive state events collapse into one since
// a state event carries no payload and is rendered from the final state.
func (c *Controller) emit(kind EventKind, payload any) {
	if kind == EventState {
		if n := len(c.events); n > 0 && c.events[n-1].Kind == EventState {
			return
		}
	}
	c.events = append(c.events, Event{Kind: kind, Payload: payload})
}

// DrainEvents returns the events raised since the last call.
func (c *Controller) DrainEvents() []Event {
	ev := c.events
	c.events = nil
	return ev
}

func (c *Controller) Phase() Phase       { return c.phase }
func (c *Controller) CurrentIndex() int  { return c.currentIndex }
func (c *Controller) TimeLeft() int      { return c.timeLeft }
func (c *Controller) WarningCount() int  { return c.warningCount }
func (c *Controller) SubjectID() string  { return c.subjectID }
func (c *Controller) CourseID() string   { return c.courseID }
func (c *Controller) ForcedReview() bool { return c.forcedReview }
func (c *Controller) QuestionCount() int { return len(c.questions) }

// Record is the submission record, or nil before submission.
func (c *Controller) Record() *model.SubmissionRecord { return c.record }

// Answers returns a copy of the selections; "" marks an unanswered question.
func (c *Controller) Answers() []string {
	out := make([]string, len(c.answers))
	copy(out, c.answers)
	return out
}

// TimeTaken returns a copy of the per-question seconds.
func (c *Controller) TimeTaken() []int {
	out := make([]int, len(c.timeTaken))
	copy(out, c.timeTaken)
	return out
}

// Review projects the current selections.
func (c *Controller) Review() ReviewSummary {
	return AssembleReview(c.questions, c.answers)
}
