package worker

import (
	"context"

	"github.com/rareminds/testportal/internal/config"
	"github.com/rareminds/testportal/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// SubmissionStore persists submission records.
type SubmissionStore interface {
	SaveBatch(ctx context.Context, records []model.SubmissionRecord) error
}

// SubmissionWorker moves queued submission records into Postgres.
type SubmissionWorker struct {
	b     *batcher[model.SubmissionRecord]
	store SubmissionStore
	rdb   *redis.Client
	log   zerolog.Logger
}

// NewSubmissionWorker creates a worker draining persist_submissions_queue.
func NewSubmissionWorker(store SubmissionStore, rdb *redis.Client, log zerolog.Logger) *SubmissionWorker {
	w := &SubmissionWorker{
		store: store,
		rdb:   rdb,
		log:   log.With().Str("component", "submission_worker").Logger(),
	}
	w.b = &batcher[model.SubmissionRecord]{
		rdb:   rdb,
		queue: config.WorkerKey.PersistSubmissionsQueue,
		log:   w.log,
		bulk:  w.save,
		single: func(ctx context.Context, rec model.SubmissionRecord) error {
			return w.save(ctx, []model.SubmissionRecord{rec})
		},
		backoff: RequeueBackoff,
	}
	return w
}

// Start blocks until ctx is canceled, then flushes what it holds.
func (w *SubmissionWorker) Start(ctx context.Context) {
	w.b.run(ctx)
}

// save persists records, then drops their pending markers. The rows are
// committed first so a reader never sees neither.
func (w *SubmissionWorker) save(ctx context.Context, records []model.SubmissionRecord) error {
	if err := w.store.SaveBatch(ctx, records); err != nil {
		return err
	}
	pipe := w.rdb.Pipeline()
	for _, rec := range records {
		pipe.Del(ctx, config.CacheKey.StudentPendingSubmissionKey(rec.SubjectID, rec.CourseID))
	}
	if _, err := pipe.Exec(context.WithoutCancel(ctx)); err != nil {
		// A stale marker only repeats what the submissions table already says.
		w.log.Warn().Err(err).Int("count", len(records)).Msg("Failed to clear pending submission markers")
	}
	return nil
}
