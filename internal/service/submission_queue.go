package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rareminds/testportal/internal/config"
	"github.com/rareminds/testportal/internal/metrics"
	"github.com/rareminds/testportal/internal/model"
	"github.com/redis/go-redis/v9"
)

const (
	// latestResultTTL bounds how long the last record stays readable from
	// Redis while the worker has not yet persisted it.
	latestResultTTL = 24 * time.Hour
	queueTimeout    = 5 * time.Second
)

// SubmissionQueue hands session output to the persistence workers through
// Redis lists. It is the controller's submission sink and integrity reporter.
type SubmissionQueue struct {
	rdb *redis.Client
}

// NewSubmissionQueue creates a new SubmissionQueue.
func NewSubmissionQueue(rdb *redis.Client) *SubmissionQueue {
	return &SubmissionQueue{rdb: rdb}
}

// Submit queues a submission record for persistence and keeps a copy as the
// student's latest result. Until the worker persists it, a pending marker
// makes the course count as submitted.
func (q *SubmissionQueue) Submit(ctx context.Context, rec *model.SubmissionRecord) error {
	metrics.SessionsSubmitted.WithLabelValues(string(rec.Reason)).Inc()

	payload, err := json.Marshal(rec)
	if err != nil {
		metrics.SinkFailures.Inc()
		return fmt.Errorf("marshal submission: %w", err)
	}

	// The record must be queued even if the student's connection is closing.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), queueTimeout)
	defer cancel()

	pipe := q.rdb.TxPipeline()
	pipe.RPush(ctx, config.WorkerKey.PersistSubmissionsQueue, payload)
	pipe.Set(ctx, config.CacheKey.StudentLatestResultKey(rec.SubjectID), payload, latestResultTTL)
	pipe.Set(ctx, config.CacheKey.StudentPendingSubmissionKey(rec.SubjectID, rec.CourseID), rec.ID.String(), 0)
	if _, err := pipe.Exec(ctx); err != nil {
		metrics.SinkFailures.Inc()
		return fmt.Errorf("queue submission: %w", err)
	}
	return nil
}

// ReportWarning queues one integrity warning for persistence.
func (q *SubmissionQueue) ReportWarning(ctx context.Context, ev model.IntegrityEvent) error {
	metrics.IntegrityWarnings.Inc()

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal integrity event: %w", err)
	}
	return q.rdb.RPush(ctx, config.WorkerKey.PersistIntegrityQueue, payload).Err()
}

// LatestResult returns the last record queued for subjectID, or nil.
func (q *SubmissionQueue) LatestResult(ctx context.Context, subjectID string) (*model.SubmissionRecord, error) {
	raw, err := q.rdb.Get(ctx, config.CacheKey.StudentLatestResultKey(subjectID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec model.SubmissionRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode latest result: %w", err)
	}
	return &rec, nil
}

// Pending reports which of courseIDs have a submission by subjectID that is
// queued but not yet persisted.
func (q *SubmissionQueue) Pending(ctx context.Context, subjectID string, courseIDs ...string) (map[string]bool, error) {
	pending := make(map[string]bool, len(courseIDs))
	if len(courseIDs) == 0 {
		return pending, nil
	}
	pipe := q.rdb.Pipeline()
	cmds := make([]*redis.IntCmd, len(courseIDs))
	for i, id := range courseIDs {
		cmds[i] = pipe.Exists(ctx, config.CacheKey.StudentPendingSubmissionKey(subjectID, id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("check pending submissions: %w", err)
	}
	for i, id := range courseIDs {
		if cmds[i].Val() > 0 {
			pending[id] = true
		}
	}
	return pending, nil
}
