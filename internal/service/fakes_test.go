package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/rareminds/testportal/internal/model"
	"github.com/rareminds/testportal/internal/repository"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

type fakeStudents struct {
	byID map[string]*model.Student
}

func (f *fakeStudents) GetByEmail(_ context.Context, email string) (*model.Student, error) {
	for _, s := range f.byID {
		if s.Email == email {
			return s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStudents) GetByExternalID(_ context.Context, id string) (*model.Student, error) {
	if s, ok := f.byID[id]; ok {
		return s, nil
	}
	return nil, repository.ErrNotFound
}

type fakeCourses struct {
	courses []model.Course
}

func (f *fakeCourses) GetByID(_ context.Context, id string) (*model.Course, error) {
	for i := range f.courses {
		if f.courses[i].ID == id {
			return &f.courses[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeCourses) List(_ context.Context) ([]model.Course, error) {
	return f.courses, nil
}

type fakeAttempts struct {
	attempts []model.AttemptSummary
	latest   *model.SubmissionRecord
}

func (f *fakeAttempts) ListBySubject(_ context.Context, _ string) ([]model.AttemptSummary, error) {
	return f.attempts, nil
}

func (f *fakeAttempts) GetLatest(_ context.Context, _ string) (*model.SubmissionRecord, error) {
	if f.latest == nil {
		return nil, repository.ErrNotFound
	}
	return f.latest, nil
}

func (f *fakeAttempts) HasSubmitted(_ context.Context, _ string, courseID string) (bool, error) {
	for _, a := range f.attempts {
		if a.CourseID == courseID {
			return true, nil
		}
	}
	return false, nil
}

type fakeLoader struct {
	sets map[string][]model.Question
	err  error
}

func (f *fakeLoader) Load(_ context.Context, courseID string) ([]model.Question, error) {
	if f.err != nil {
		return []model.Question{}, f.err
	}
	return f.sets[courseID], nil
}

func strPtr(s string) *string { return &s }
