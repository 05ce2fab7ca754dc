package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	BatchSize    = 50
	BatchTimeout = 2 * time.Second
	PollTimeout  = 1 * time.Second // Must be >= 1s to satisfy Redis
	// RequeueBackoff pauses the loop after items were pushed back, so a
	// database outage is not hammered.
	RequeueBackoff  = 2 * time.Second
	ShutdownTimeout = 5 * time.Second
)

// batcher drains a Redis list of JSON items into batches. A failed bulk
// write falls back to item-by-item writes; items that still fail are pushed
// back onto the list.
type batcher[T any] struct {
	rdb     *redis.Client
	queue   string
	log     zerolog.Logger
	bulk    func(ctx context.Context, items []T) error
	single  func(ctx context.Context, item T) error
	backoff time.Duration
}

func (b *batcher[T]) run(ctx context.Context) {
	b.log.Info().Str("queue", b.queue).Msg("Worker started")

	buffer := make([]T, 0, BatchSize)
	lastFlush := time.Now()

	for {
		if len(buffer) > 0 && (len(buffer) >= BatchSize || time.Since(lastFlush) >= BatchTimeout) {
			b.flush(ctx, buffer)
			buffer = buffer[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			b.shutdown(buffer)
			return
		default:
		}

		result, err := b.rdb.BLPop(ctx, PollTimeout, b.queue).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				continue
			}
			b.log.Error().Err(err).Msg("Redis connection error, sleeping 3s")
			sleep(ctx, 3*time.Second)
			continue
		}
		if len(result) < 2 {
			continue
		}

		var item T
		if err := json.Unmarshal([]byte(result[1]), &item); err != nil {
			// Malformed JSON can never succeed; drop it.
			b.log.Error().Err(err).Str("data", result[1]).Msg("Discarding malformed JSON")
			continue
		}
		buffer = append(buffer, item)
	}
}

// flush writes items, returning how many were requeued.
func (b *batcher[T]) flush(ctx context.Context, items []T) int {
	if len(items) == 0 {
		return 0
	}
	err := b.bulk(ctx, items)
	if err == nil {
		b.log.Debug().Int("count", len(items)).Msg("Batch persisted")
		return 0
	}
	b.log.Warn().Err(err).Int("count", len(items)).Msg("Bulk write failed, attempting item-by-item recovery")

	var failed []T
	for _, item := range items {
		if err := b.single(ctx, item); err != nil {
			b.log.Error().Err(err).Msg("Write failed, requeueing")
			failed = append(failed, item)
		}
	}
	if len(failed) > 0 {
		b.requeue(ctx, failed)
	}
	return len(failed)
}

func (b *batcher[T]) requeue(ctx context.Context, items []T) {
	// Requeue must go through even when shutdown has canceled ctx.
	ctx = context.WithoutCancel(ctx)
	pipe := b.rdb.Pipeline()
	for _, item := range items {
		data, _ := json.Marshal(item)
		pipe.RPush(ctx, b.queue, data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		b.log.Error().Err(err).Int("count", len(items)).Msg("CRITICAL: Failed to requeue items to Redis. Data loss occurred.")
		return
	}
	b.log.Info().Int("count", len(items)).Msg("Requeued failed items back to Redis")
	sleep(ctx, b.backoff)
}

func (b *batcher[T]) shutdown(buffer []T) {
	b.log.Info().Int("pending", len(buffer)).Msg("Worker stopping, flushing remaining buffer")

	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	b.flush(ctx, buffer)
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
