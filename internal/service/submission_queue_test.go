package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rareminds/testportal/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmissionQueue_SubmitQueuesAndCachesLatest(t *testing.T) {
	mr, rdb := newTestRedis(t)
	q := NewSubmissionQueue(rdb)
	rec := &model.SubmissionRecord{
		ID:             uuid.New(),
		SubjectID:      "stu-1",
		CourseID:       "organic-food",
		Timestamp:      time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		TotalScore:     2,
		TotalQuestions: 3,
		Reason:         model.SubmitManual,
		PerQuestion: []model.QuestionResult{
			{QuestionID: 2, AttemptedAnswer: model.NotAttempted, CorrectAnswer: "Y"},
		},
	}

	require.NoError(t, q.Submit(context.Background(), rec))

	items, err := mr.List("persist_submissions_queue")
	require.NoError(t, err)
	require.Len(t, items, 1)
	var queued model.SubmissionRecord
	require.NoError(t, json.Unmarshal([]byte(items[0]), &queued))
	assert.Equal(t, rec.ID, queued.ID)
	assert.Equal(t, model.NotAttempted, queued.PerQuestion[0].AttemptedAnswer)

	latest, err := q.LatestResult(context.Background(), "stu-1")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 2, latest.TotalScore)
}

func TestSubmissionQueue_SubmitSurvivesCanceledContext(t *testing.T) {
	mr, rdb := newTestRedis(t)
	q := NewSubmissionQueue(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, q.Submit(ctx, &model.SubmissionRecord{ID: uuid.New(), SubjectID: "stu-1"}))

	items, err := mr.List("persist_submissions_queue")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestSubmissionQueue_SubmitReportsRedisFailure(t *testing.T) {
	mr, rdb := newTestRedis(t)
	q := NewSubmissionQueue(rdb)
	mr.Close()

	err := q.Submit(context.Background(), &model.SubmissionRecord{ID: uuid.New(), SubjectID: "stu-1"})
	assert.Error(t, err)
}

func TestSubmissionQueue_ReportWarning(t *testing.T) {
	mr, rdb := newTestRedis(t)
	q := NewSubmissionQueue(rdb)

	require.NoError(t, q.ReportWarning(context.Background(), model.IntegrityEvent{SubjectID: "stu-1", Count: 1}))

	items, err := mr.List("persist_integrity_queue")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestSubmissionQueue_LatestResultMissing(t *testing.T) {
	_, rdb := newTestRedis(t)
	rec, err := NewSubmissionQueue(rdb).LatestResult(context.Background(), "nobody")
	assert.NoError(t, err)
	assert.Nil(t, rec)
}

func TestSubmissionQueue_PendingTracksQueuedCourses(t *testing.T) {
	_, rdb := newTestRedis(t)
	q := NewSubmissionQueue(rdb)
	ctx := context.Background()

	pending, err := q.Pending(ctx, "stu-1", "organic-food", "csevbm")
	require.NoError(t, err)
	assert.Empty(t, pending)

	require.NoError(t, q.Submit(ctx, &model.SubmissionRecord{ID: uuid.New(), SubjectID: "stu-1", CourseID: "organic-food"}))

	pending, err = q.Pending(ctx, "stu-1", "organic-food", "csevbm")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"organic-food": true}, pending)

	other, err := q.Pending(ctx, "stu-2", "organic-food")
	require.NoError(t, err)
	assert.Empty(t, other)
}
