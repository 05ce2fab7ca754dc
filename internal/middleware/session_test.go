package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/rareminds/testportal/internal/config"
	"github.com/rareminds/testportal/internal/model"
	"github.com/rareminds/testportal/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionRouter(t *testing.T) (*service.AuthService, *miniredis.Miniredis, *gin.Engine) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{JWTSecret: "test-secret", JWTExpiry: time.Hour, BcryptCost: 4}
	auth := service.NewAuthService(cfg, rdb, nil)

	r := gin.New()
	r.GET("/me", RequireStudentJWT(auth), CheckSingleDeviceSession(auth), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return auth, mr, r
}

func getWithToken(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCheckSingleDeviceSession(t *testing.T) {
	auth, mr, r := newSessionRouter(t)
	student := &model.Student{ExternalID: "stu-1", Email: "a@example.com"}
	ctx := context.Background()

	first, err := auth.GenerateStudentToken(ctx, student)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, getWithToken(r, first).Code)

	second, err := auth.GenerateStudentToken(ctx, student)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, getWithToken(r, first).Code, "older login is superseded")
	assert.Equal(t, http.StatusOK, getWithToken(r, second).Code)

	mr.Close()
	assert.Equal(t, http.StatusInternalServerError, getWithToken(r, second).Code)
}

func TestCheckSingleDeviceSession_LoggedOut(t *testing.T) {
	auth, _, r := newSessionRouter(t)
	student := &model.Student{ExternalID: "stu-2", Email: "b@example.com"}
	ctx := context.Background()

	token, err := auth.GenerateStudentToken(ctx, student)
	require.NoError(t, err)
	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	require.NoError(t, auth.Logout(ctx, claims.Subject, claims.ID))

	assert.Equal(t, http.StatusUnauthorized, getWithToken(r, token).Code)
}
