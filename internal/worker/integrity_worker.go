package worker

import (
	"context"

	"github.com/rareminds/testportal/internal/config"
	"github.com/rareminds/testportal/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// IntegrityStore bulk-inserts integrity warnings.
type IntegrityStore interface {
	CopyEvents(ctx context.Context, events []model.IntegrityEvent) (int64, error)
}

// IntegrityWorker moves queued integrity warnings into Postgres.
type IntegrityWorker struct {
	b *batcher[model.IntegrityEvent]
}

// NewIntegrityWorker creates a worker draining persist_integrity_queue.
func NewIntegrityWorker(store IntegrityStore, rdb *redis.Client, log zerolog.Logger) *IntegrityWorker {
	return &IntegrityWorker{b: &batcher[model.IntegrityEvent]{
		rdb:   rdb,
		queue: config.WorkerKey.PersistIntegrityQueue,
		log:   log.With().Str("component", "integrity_worker").Logger(),
		bulk: func(ctx context.Context, events []model.IntegrityEvent) error {
			_, err := store.CopyEvents(ctx, events)
			return err
		},
		single: func(ctx context.Context, ev model.IntegrityEvent) error {
			_, err := store.CopyEvents(ctx, []model.IntegrityEvent{ev})
			return err
		},
		backoff: RequeueBackoff,
	}}
}

// Start blocks until ctx is canceled, then flushes what it holds.
func (w *IntegrityWorker) Start(ctx context.Context) {
	w.b.run(ctx)
}
