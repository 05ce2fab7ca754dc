package session

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rareminds/testportal/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	records []*model.SubmissionRecord
	err     error
}

func (s *recordingSink) Submit(_ context.Context, rec *model.SubmissionRecord) error {
	s.records = append(s.records, rec)
	return s.err
}

type recordingReporter struct {
	events []model.IntegrityEvent
}

func (r *recordingReporter) ReportWarning(_ context.Context, ev model.IntegrityEvent) error {
	r.events = append(r.events, ev)
	return nil
}

func questionsWithAnswers(answers ...string) []model.Question {
	qs := make([]model.Question, len(answers))
	for i, a := range answers {
		qs[i] = model.Question{
			ID:            i + 1,
			Text:          "Question " + string(rune('A'+i)),
			Options:       []string{"A", "B", "C", "D", "X", "Y", "Z"},
			CorrectAnswer: a,
			Marks:         1,
		}
	}
	return qs
}

func newController(t *testing.T, questions []model.Question, policy Policy, sink Sink) *Controller {
	t.Helper()
	c, err := NewController(Params{
		SubjectID: "stu-1",
		CourseID:  "green-chemistry",
		Questions: questions,
		Policy:    policy,
		Sink:      sink,
		Now:       func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) },
		Logger:    zerolog.New(io.Discard),
	})
	require.NoError(t, err)
	return c
}

// startedController returns a controller already in the in-progress phase.
func startedController(t *testing.T, questions []model.Question, policy Policy, sink Sink) *Controller {
	t.Helper()
	c := newController(t, questions, policy, sink)
	require.NoError(t, c.Acknowledge())
	require.NoError(t, c.GrantPermissions(true, true))
	require.Equal(t, PhaseInProgress, c.Phase())
	c.DrainEvents()
	return c
}

func eventKinds(events []Event) []EventKind {
	kinds := make([]EventKind, len(events))
	for i, ev := range events {
		kinds[i] = ev.Kind
	}
	return kinds
}

func TestNewController_RejectsEmptyQuestionSet(t *testing.T) {
	_, err := NewController(Params{Policy: DefaultPolicy(), Logger: zerolog.New(io.Discard)})
	assert.ErrorIs(t, err, ErrEmptyQuestionSet)
}

func TestNewController_InitialState(t *testing.T) {
	c := newController(t, questionsWithAnswers("A", "B"), DefaultPolicy(), nil)

	assert.Equal(t, PhaseInstructions, c.Phase())
	assert.Equal(t, 0, c.CurrentIndex())
	assert.Equal(t, 3600, c.TimeLeft())
	assert.Equal(t, []string{"", ""}, c.Answers())
	assert.Equal(t, []int{0, 0}, c.TimeTaken())
}

func TestController_PhaseGuards(t *testing.T) {
	c := newController(t, questionsWithAnswers("A", "B"), DefaultPolicy(), nil)

	assert.ErrorIs(t, c.GrantPermissions(true, true), ErrInvalidPhase)
	assert.ErrorIs(t, c.SelectAnswer(0, "A"), ErrInvalidPhase)
	assert.ErrorIs(t, c.GoTo(1), ErrInvalidPhase)
	assert.ErrorIs(t, c.Next(), ErrInvalidPhase)
	assert.ErrorIs(t, c.Submit(context.Background()), ErrInvalidPhase)

	require.NoError(t, c.Acknowledge())
	assert.ErrorIs(t, c.Acknowledge(), ErrInvalidPhase)
	assert.Equal(t, PhasePermissions, c.Phase())
}

func TestController_DeviceDenialBlocksByDefault(t *testing.T) {
	c := newController(t, questionsWithAnswers("A"), DefaultPolicy(), nil)
	require.NoError(t, c.Acknowledge())
	c.DrainEvents()

	err := c.GrantPermissions(false, true)

	var devErr *DeviceError
	require.True(t, errors.As(err, &devErr))
	assert.Equal(t, []string{"camera"}, devErr.Missing)
	assert.Equal(t, PhasePermissions, c.Phase())

	events := c.DrainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventDeviceError, events[0].Kind)
	assert.Equal(t, DeviceErrorPayload{Missing: []string{"camera"}, Blocked: true}, events[0].Payload)

	require.NoError(t, c.GrantPermissions(true, true))
	assert.Equal(t, PhaseInProgress, c.Phase())
}

func TestController_DeviceDenialWarnPolicyStarts(t *testing.T) {
	policy := DefaultPolicy()
	policy.DevicePolicy = DeviceWarn
	c := newController(t, questionsWithAnswers("A"), policy, nil)
	require.NoError(t, c.Acknowledge())
	c.DrainEvents()

	require.NoError(t, c.GrantPermissions(false, false))

	assert.Equal(t, PhaseInProgress, c.Phase())
	events := c.DrainEvents()
	require.NotEmpty(t, events)
	assert.Equal(t, DeviceErrorPayload{Missing: []string{"camera", "microphone"}, Blocked: false}, events[0].Payload)
}

func TestController_SelectAnswer(t *testing.T) {
	c := startedController(t, questionsWithAnswers("A", "B"), DefaultPolicy(), nil)

	require.NoError(t, c.SelectAnswer(1, "C"))
	require.NoError(t, c.SelectAnswer(1, "B"))

	assert.Equal(t, []string{"", "B"}, c.Answers())
	assert.Equal(t, 0, c.CurrentIndex(), "selection must not move the current question")
	assert.ErrorIs(t, c.SelectAnswer(1, "nope"), ErrUnknownOption)
	assert.ErrorIs(t, c.SelectAnswer(1, ""), ErrUnknownOption)
	assert.ErrorIs(t, c.SelectAnswer(2, "A"), ErrIndexOutOfRange)
	assert.Equal(t, []string{"", "B"}, c.Answers())
}

func TestController_GoToBoundsSafety(t *testing.T) {
	c := startedController(t, questionsWithAnswers("A", "B", "C"), DefaultPolicy(), nil)
	require.NoError(t, c.GoTo(1))

	assert.ErrorIs(t, c.GoTo(-1), ErrIndexOutOfRange)
	assert.Equal(t, 1, c.CurrentIndex())
	assert.ErrorIs(t, c.GoTo(3), ErrIndexOutOfRange)
	assert.Equal(t, 1, c.CurrentIndex())
}

func TestController_NextPreviousAndReview(t *testing.T) {
	c := startedController(t, questionsWithAnswers("A", "B"), DefaultPolicy(), nil)

	require.NoError(t, c.Previous())
	assert.Equal(t, 0, c.CurrentIndex())

	require.NoError(t, c.Next())
	assert.Equal(t, 1, c.CurrentIndex())

	require.NoError(t, c.Next())
	assert.Equal(t, PhaseReview, c.Phase())
	assert.Equal(t, 1, c.CurrentIndex())
	assert.ErrorIs(t, c.Next(), ErrInvalidPhase)
	assert.ErrorIs(t, c.SelectAnswer(0, "A"), ErrInvalidPhase)

	// Back to a specific question.
	require.NoError(t, c.GoTo(0))
	assert.Equal(t, PhaseInProgress, c.Phase())
	assert.Equal(t, 0, c.CurrentIndex())

	// Review is re-entrant.
	require.NoError(t, c.GoTo(1))
	require.NoError(t, c.Next())
	require.Equal(t, PhaseReview, c.Phase())
	require.NoError(t, c.ReturnToTest())
	assert.Equal(t, PhaseInProgress, c.Phase())
	assert.Equal(t, 1, c.CurrentIndex())
}

func TestController_ScoreCorrectness(t *testing.T) {
	c := startedController(t, questionsWithAnswers("A", "B", "C", "D", "A"), DefaultPolicy(), nil)
	require.NoError(t, c.SelectAnswer(0, "A"))
	require.NoError(t, c.SelectAnswer(1, "B"))
	require.NoError(t, c.SelectAnswer(2, "X"))
	require.NoError(t, c.SelectAnswer(4, "A"))

	require.NoError(t, c.Submit(context.Background()))

	require.NotNil(t, c.Record())
	assert.Equal(t, 3, c.Record().TotalScore)
	assert.Equal(t, 5, c.Record().TotalQuestions)
}

func TestController_SubmitIsIdempotent(t *testing.T) {
	sink := &recordingSink{}
	c := startedController(t, questionsWithAnswers("A"), DefaultPolicy(), sink)

	require.NoError(t, c.Submit(context.Background()))
	first := c.DrainEvents()
	require.NoError(t, c.Submit(context.Background()))

	assert.Len(t, sink.records, 1)
	assert.Equal(t, PhaseSubmitted, c.Phase())
	assert.Contains(t, eventKinds(first), EventSubmitted)
	assert.Empty(t, c.DrainEvents())
}

func TestController_SinkFailureIsSwallowed(t *testing.T) {
	sink := &recordingSink{err: errors.New("redis down")}
	c := startedController(t, questionsWithAnswers("A"), DefaultPolicy(), sink)
	require.NoError(t, c.SelectAnswer(0, "A"))

	require.NoError(t, c.Submit(context.Background()))

	assert.Equal(t, PhaseSubmitted, c.Phase())
	require.NotNil(t, c.Record())
	assert.Equal(t, 1, c.Record().TotalScore)
	assert.Equal(t, model.SubmitManual, c.Record().Reason)
}

func TestController_ThreeQuestionScenario(t *testing.T) {
	sink := &recordingSink{}
	c := startedController(t, questionsWithAnswers("X", "Y", "Z"), DefaultPolicy(), sink)

	require.NoError(t, c.SelectAnswer(0, "X"))
	require.NoError(t, c.Next())
	require.NoError(t, c.Next())
	require.NoError(t, c.SelectAnswer(2, "Z"))
	require.NoError(t, c.Next())
	require.Equal(t, PhaseReview, c.Phase())
	require.NoError(t, c.Submit(context.Background()))

	require.Len(t, sink.records, 1)
	rec := sink.records[0]
	assert.Equal(t, 2, rec.TotalScore)
	assert.Equal(t, 3, rec.TotalQuestions)
	assert.Equal(t, "stu-1", rec.SubjectID)
	assert.Equal(t, "green-chemistry", rec.CourseID)
	assert.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), rec.Timestamp)
	assert.Equal(t, model.NotAttempted, rec.PerQuestion[1].AttemptedAnswer)
	assert.False(t, rec.PerQuestion[1].IsCorrect)
	assert.Equal(t, "Y", rec.PerQuestion[1].CorrectAnswer)
	assert.True(t, rec.PerQuestion[0].IsCorrect)
	assert.True(t, rec.PerQuestion[2].IsCorrect)
}

func TestController_WarningEscalation(t *testing.T) {
	sink := &recordingSink{}
	reporter := &recordingReporter{}
	c, err := NewController(Params{
		SubjectID: "stu-1",
		CourseID:  "csevbm",
		Questions: questionsWithAnswers("A", "B"),
		Policy:    DefaultPolicy(),
		Sink:      sink,
		Integrity: reporter,
		Logger:    zerolog.New(io.Discard),
	})
	require.NoError(t, err)
	ctx := context.Background()

	// Not counted before the test starts.
	assert.False(t, c.RecordWarning(ctx))
	require.NoError(t, c.Acknowledge())
	assert.False(t, c.RecordWarning(ctx))
	require.NoError(t, c.GrantPermissions(true, true))
	c.DrainEvents()

	assert.True(t, c.RecordWarning(ctx))
	assert.True(t, c.RecordWarning(ctx))
	assert.Equal(t, PhaseInProgress, c.Phase())
	assert.Equal(t, 2, c.WarningCount())

	events := c.DrainEvents()
	require.Len(t, events, 2)
	assert.Equal(t, WarningPayload{Count: 2, Threshold: 3}, events[1].Payload)

	assert.True(t, c.RecordWarning(ctx))
	assert.Equal(t, PhaseSubmitted, c.Phase())
	require.Len(t, sink.records, 1)
	assert.Equal(t, model.SubmitIntegrity, sink.records[0].Reason)
	assert.Equal(t, 3, sink.records[0].WarningCount)

	// Further transitions after submission are no-ops.
	assert.False(t, c.RecordWarning(ctx))
	assert.Equal(t, 3, c.WarningCount())
	assert.Len(t, sink.records, 1)
	assert.Len(t, reporter.events, 3)
	assert.Equal(t, 3, reporter.events[2].Count)
}

func TestController_WarningsIgnoredDuringReview(t *testing.T) {
	c := startedController(t, questionsWithAnswers("A"), DefaultPolicy(), nil)
	require.NoError(t, c.Next())
	require.Equal(t, PhaseReview, c.Phase())

	assert.False(t, c.RecordWarning(context.Background()))
	assert.Equal(t, 0, c.WarningCount())
}

func TestController_Snapshot(t *testing.T) {
	c := startedController(t, questionsWithAnswers("A", "B"), DefaultPolicy(), nil)
	require.NoError(t, c.SelectAnswer(0, "C"))

	s := c.Snapshot()
	assert.Equal(t, PhaseInProgress, s.Phase)
	require.NotNil(t, s.Question)
	assert.Equal(t, 1, s.Question.ID)
	require.NotNil(t, s.SelectedAnswer)
	assert.Equal(t, "C", *s.SelectedAnswer)
	assert.Equal(t, []bool{true, false}, s.Answered)
	assert.Equal(t, "01:00:00", s.TimeLeftDisplay)
	assert.Nil(t, s.Review)

	require.NoError(t, c.GoTo(1))
	require.NoError(t, c.Next())
	s = c.Snapshot()
	assert.Nil(t, s.Question)
	require.NotNil(t, s.Review)
	assert.Equal(t, 1, s.Review.AnsweredCount)
}

func TestController_StateEventsCoalesce(t *testing.T) {
	c := startedController(t, questionsWithAnswers("A", "B"), DefaultPolicy(), nil)
	require.NoError(t, c.GoTo(1))
	require.NoError(t, c.Next())
	c.DrainEvents()

	// Leaving review changes phase and index in one action.
	require.NoError(t, c.GoTo(0))
	assert.Equal(t, []EventKind{EventState}, eventKinds(c.DrainEvents()))

	// A rejected action raises nothing.
	assert.ErrorIs(t, c.GoTo(9), ErrIndexOutOfRange)
	assert.Empty(t, c.DrainEvents())
}
