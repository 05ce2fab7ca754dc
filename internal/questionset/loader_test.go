package questionset

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rareminds/testportal/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	calls   atomic.Int32
	sets    map[string][]model.Question
	err     error
	release chan struct{}
}

func (f *fakeStore) Questions(_ context.Context, courseID string) ([]model.Question, error) {
	f.calls.Add(1)
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.sets[courseID], nil
}

func sampleSets() map[string][]model.Question {
	return map[string][]model.Question{
		"green-chemistry": {
			{ID: 1, CourseCode: "SGCEV", Text: "q1", Options: []string{"a", "b"}, CorrectAnswer: "a"},
			{ID: 2, CourseCode: "SGCEV", Text: "q2", Options: []string{"a", "b"}, CorrectAnswer: "b"},
		},
	}
}

func TestLoader_MemoizesPerCourse(t *testing.T) {
	store := &fakeStore{sets: sampleSets()}
	l := NewLoader(store, zerolog.New(io.Discard))
	ctx := context.Background()

	first, err := l.Load(ctx, "green-chemistry")
	require.NoError(t, err)
	second, err := l.Load(ctx, "green-chemistry")
	require.NoError(t, err)

	assert.Len(t, first, 2)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), store.calls.Load())
}

func TestLoader_UnknownCourseIsEmpty(t *testing.T) {
	store := &fakeStore{sets: sampleSets()}
	l := NewLoader(store, zerolog.New(io.Discard))

	qs, err := l.Load(context.Background(), "underwater-basket-weaving")

	require.NoError(t, err)
	assert.NotNil(t, qs)
	assert.Empty(t, qs)
}

func TestLoader_FailureIsNotMemoized(t *testing.T) {
	store := &fakeStore{sets: sampleSets(), err: errors.New("connection refused")}
	l := NewLoader(store, zerolog.New(io.Discard))
	ctx := context.Background()

	qs, err := l.Load(ctx, "green-chemistry")
	require.Error(t, err)
	assert.Empty(t, qs)

	store.err = nil
	qs, err = l.Load(ctx, "green-chemistry")
	require.NoError(t, err)
	assert.Len(t, qs, 2)
	assert.Equal(t, int32(2), store.calls.Load())
}

func TestLoader_ConcurrentLoadsShareQuery(t *testing.T) {
	store := &fakeStore{sets: sampleSets(), release: make(chan struct{})}
	l := NewLoader(store, zerolog.New(io.Discard))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			qs, err := l.Load(context.Background(), "green-chemistry")
			assert.NoError(t, err)
			assert.Len(t, qs, 2)
		}()
	}
	// Let the goroutines pile up on the in-flight query before releasing it.
	time.Sleep(50 * time.Millisecond)
	close(store.release)
	wg.Wait()

	assert.LessOrEqual(t, store.calls.Load(), int32(2))
}

func TestLoader_PrewarmCountsNonEmptySets(t *testing.T) {
	store := &fakeStore{sets: sampleSets()}
	l := NewLoader(store, zerolog.New(io.Discard))
	ctx := context.Background()

	n := l.Prewarm(ctx, []string{"green-chemistry", "underwater-basket-weaving"})
	assert.Equal(t, 1, n)

	calls := store.calls.Load()
	_, err := l.Load(ctx, "green-chemistry")
	require.NoError(t, err)
	assert.Equal(t, calls, store.calls.Load())
}

func TestRedisStore_CachesNonEmptySets(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	backing := &fakeStore{sets: sampleSets()}
	s := NewRedisStore(rdb, backing, time.Hour, zerolog.New(io.Discard))
	ctx := context.Background()

	qs, err := s.Questions(ctx, "green-chemistry")
	require.NoError(t, err)
	assert.Len(t, qs, 2)
	assert.True(t, mr.Exists("course:green-chemistry:questions"))
	assert.Equal(t, time.Hour, mr.TTL("course:green-chemistry:questions"))

	qs, err = s.Questions(ctx, "green-chemistry")
	require.NoError(t, err)
	assert.Equal(t, "b", qs[1].CorrectAnswer)
	assert.Equal(t, int32(1), backing.calls.Load())

	_, err = s.Questions(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, mr.Exists("course:unknown:questions"))

	require.NoError(t, s.Invalidate(ctx, "green-chemistry"))
	assert.False(t, mr.Exists("course:green-chemistry:questions"))
}

func TestRedisStore_FallsBackWhenRedisIsDown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	mr.Close()

	backing := &fakeStore{sets: sampleSets()}
	s := NewRedisStore(rdb, backing, 0, zerolog.New(io.Discard))

	qs, err := s.Questions(context.Background(), "green-chemistry")
	require.NoError(t, err)
	assert.Len(t, qs, 2)
}
