package questionset

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rareminds/testportal/internal/config"
	"github.com/rareminds/testportal/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// CourseQuestionLister is the repository query behind PostgresStore.
type CourseQuestionLister interface {
	ListByCourse(ctx context.Context, courseID string) ([]model.Question, error)
}

// PostgresStore reads questions from the relational store.
type PostgresStore struct {
	repo CourseQuestionLister
}

// NewPostgresStore creates a PostgresStore over the question repository.
func NewPostgresStore(repo CourseQuestionLister) *PostgresStore {
	return &PostgresStore{repo: repo}
}

func (s *PostgresStore) Questions(ctx context.Context, courseID string) ([]model.Question, error) {
	return s.repo.ListByCourse(ctx, courseID)
}

// RedisStore caches another store's non-empty results in Redis so question
// sets survive process restarts without hitting Postgres.
type RedisStore struct {
	rdb  *redis.Client
	next Store
	ttl  time.Duration
	log  zerolog.Logger
}

// NewRedisStore wraps next. A zero ttl keeps entries until overwritten.
func NewRedisStore(rdb *redis.Client, next Store, ttl time.Duration, log zerolog.Logger) *RedisStore {
	return &RedisStore{
		rdb:  rdb,
		next: next,
		ttl:  ttl,
		log:  log.With().Str("component", "question_cache").Logger(),
	}
}

func (s *RedisStore) Questions(ctx context.Context, courseID string) ([]model.Question, error) {
	key := config.CacheKey.CourseQuestionsKey(courseID)

	raw, err := s.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var qs []model.Question
		if err := json.Unmarshal(raw, &qs); err == nil {
			return qs, nil
		}
		s.log.Warn().Str("key", key).Msg("Discarding malformed cached question set")
	case !errors.Is(err, redis.Nil):
		// Cache outage falls through to the store.
		s.log.Warn().Err(err).Str("key", key).Msg("Question cache read failed")
	}

	qs, err := s.next.Questions(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if len(qs) == 0 {
		return qs, nil
	}
	payload, err := json.Marshal(qs)
	if err == nil {
		err = s.rdb.Set(ctx, key, payload, s.ttl).Err()
	}
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Question cache write failed")
	}
	return qs, nil
}

// Invalidate drops the cached set of courseID, used after an import.
func (s *RedisStore) Invalidate(ctx context.Context, courseID string) error {
	return s.rdb.Del(ctx, config.CacheKey.CourseQuestionsKey(courseID)).Err()
}
