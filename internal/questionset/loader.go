// Package questionset resolves a course to its ordered question set.
package questionset

import (
	"context"
	"fmt"
	"sync"

	"github.com/rareminds/testportal/internal/model"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Store fetches the questions of a course, ordered by id. An unknown course
// yields an empty slice and no error.
type Store interface {
	Questions(ctx context.Context, courseID string) ([]model.Question, error)
}

// Loader memoizes question sets per course for the life of the process.
// Concurrent first loads of the same course share one store query.
// Failed loads are not memoized.
type Loader struct {
	store Store
	log   zerolog.Logger

	mu    sync.RWMutex
	memo  map[string][]model.Question
	group singleflight.Group
}

// NewLoader creates a Loader over store.
func NewLoader(store Store, log zerolog.Logger) *Loader {
	return &Loader{
		store: store,
		log:   log.With().Str("component", "question_loader").Logger(),
		memo:  make(map[string][]model.Question),
	}
}

// Load returns the question set of courseID. On store failure it returns
// an empty slice and the wrapped error.
func (l *Loader) Load(ctx context.Context, courseID string) ([]model.Question, error) {
	if qs, ok := l.cached(courseID); ok {
		return qs, nil
	}

	v, err, _ := l.group.Do(courseID, func() (interface{}, error) {
		if qs, ok := l.cached(courseID); ok {
			return qs, nil
		}
		qs, err := l.store.Questions(ctx, courseID)
		if err != nil {
			return nil, err
		}
		if qs == nil {
			qs = []model.Question{}
		}
		l.mu.Lock()
		l.memo[courseID] = qs
		l.mu.Unlock()
		l.log.Info().Str("course_id", courseID).Int("questions", len(qs)).Msg("Question set loaded")
		return qs, nil
	})
	if err != nil {
		l.log.Error().Err(err).Str("course_id", courseID).Msg("Failed to load question set")
		return []model.Question{}, fmt.Errorf("load questions for %q: %w", courseID, err)
	}
	return v.([]model.Question), nil
}

// Prewarm loads the given courses before traffic arrives, at most four at a
// time. Failures are logged and left for the first student to retry.
func (l *Loader) Prewarm(ctx context.Context, courseIDs []string) int {
	var (
		g      errgroup.Group
		mu     sync.Mutex
		loaded int
	)
	g.SetLimit(4)
	for _, id := range courseIDs {
		g.Go(func() error {
			qs, err := l.Load(ctx, id)
			if err != nil || len(qs) == 0 {
				return nil
			}
			mu.Lock()
			loaded++
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return loaded
}

func (l *Loader) cached(courseID string) ([]model.Question, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	qs, ok := l.memo[courseID]
	return qs, ok
}
