package service

import (
	"context"
	"io"
	"testing"

	"github.com/rareminds/testportal/internal/model"
	"github.com/rareminds/testportal/internal/repository"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRoster map[string]model.RosterEntry

func (f fakeRoster) GetByRollNo(_ context.Context, rollNo string) (*model.RosterEntry, error) {
	e, ok := f[rollNo]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

type fakeStudentStore struct {
	created []*model.Student
}

func (f *fakeStudentStore) Create(_ context.Context, s *model.Student) error {
	for _, existing := range f.created {
		if existing.NMID == s.NMID || existing.Email == s.Email {
			return repository.ErrDuplicateStudent
		}
	}
	f.created = append(f.created, s)
	return nil
}

func newTestSignup(t *testing.T) (*SignupService, *fakeStudentStore) {
	t.Helper()
	auth, _ := newTestAuth(t)
	roster := fakeRoster{
		"21CS042": {RollNo: "21CS042", NMID: "NM1042", Semester: "5", CourseID: strPtr("csevbm")},
	}
	store := &fakeStudentStore{}
	return NewSignupService(roster, store, auth, zerolog.New(io.Discard)), store
}

func signupRequest() model.StudentSignupRequest {
	return model.StudentSignupRequest{
		RollNo:          " 21CS042 ",
		Email:           "ravi@example.com",
		Username:        "Ravi",
		Password:        "secret123",
		ConfirmPassword: "secret123",
	}
}

func TestSignupService_CreatesAccountFromRoster(t *testing.T) {
	svc, store := newTestSignup(t)

	student, err := svc.Signup(context.Background(), signupRequest())
	require.NoError(t, err)

	require.Len(t, store.created, 1)
	assert.Equal(t, "NM1042", student.NMID)
	assert.Equal(t, "5", student.Semester)
	require.NotNil(t, student.CourseID)
	assert.Equal(t, "csevbm", *student.CourseID)
	assert.NotEmpty(t, student.ExternalID)
	assert.NotEqual(t, "secret123", student.PasswordHash)
	assert.NoError(t, svc.auth.CheckPassword(student.PasswordHash, "secret123"))
}

func TestSignupService_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *model.StudentSignupRequest)
		wantErr error
	}{
		{
			name:    "unknown roll number",
			mutate:  func(r *model.StudentSignupRequest) { r.RollNo = "99XX001" },
			wantErr: ErrRollNoUnknown,
		},
		{
			name:    "passwords differ",
			mutate:  func(r *model.StudentSignupRequest) { r.ConfirmPassword = "secret124" },
			wantErr: ErrPasswordMismatch,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newTestSignup(t)
			req := signupRequest()
			tt.mutate(&req)

			student, err := svc.Signup(context.Background(), req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, student)
			assert.Empty(t, store.created)
		})
	}
}

func TestSignupService_SecondSignupForSameRollNoRefused(t *testing.T) {
	svc, store := newTestSignup(t)
	ctx := context.Background()
	_, err := svc.Signup(ctx, signupRequest())
	require.NoError(t, err)

	again := signupRequest()
	again.Email = "other@example.com"
	_, err = svc.Signup(ctx, again)
	assert.ErrorIs(t, err, ErrAccountExists)
	assert.Len(t, store.created, 1)
}
