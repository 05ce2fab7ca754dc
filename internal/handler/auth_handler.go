package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rareminds/testportal/internal/middleware"
	"github.com/rareminds/testportal/internal/model"
	"github.com/rareminds/testportal/internal/response"
	"github.com/rareminds/testportal/internal/service"
	"github.com/rareminds/testportal/internal/validator"
	"github.com/rs/zerolog"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService   *service.AuthService
	signupService *service.SignupService
	log           zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, signupService *service.SignupService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		signupService: signupService,
		log:           log.With().Str("component", "auth_handler").Logger(),
	}
}

// StudentLogin godoc
// POST /api/v1/auth/student/login
// Authenticates a student by email and password and returns a JWT.
func (h *AuthHandler) StudentLogin(c *gin.Context) {
	var req model.StudentLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
			return
		}
		h.log.Error().Err(err).Msg("Student login failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// StudentSignup godoc
// POST /api/v1/auth/student/signup
// Creates an account for a student listed on the enrolment roster.
func (h *AuthHandler) StudentSignup(c *gin.Context) {
	var req model.StudentSignupRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	student, err := h.signupService.Signup(c.Request.Context(), req)
	switch {
	case err == nil:
		response.Success(c, http.StatusCreated, gin.H{"student": student})
	case errors.Is(err, service.ErrRollNoUnknown):
		response.Fail(c, http.StatusNotFound, response.ErrRollNoUnknown)
	case errors.Is(err, service.ErrAccountExists):
		response.Fail(c, http.StatusConflict, response.ErrAccountExists)
	case errors.Is(err, service.ErrPasswordMismatch):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"confirm_password": err.Error()})
	default:
		h.log.Error().Err(err).Msg("Student signup failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// GetStudentProfile godoc
// GET /api/v1/auth/student/me
// Returns the profile of the currently authenticated student.
func (h *AuthHandler) GetStudentProfile(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	student, err := h.authService.Me(c.Request.Context(), claims.Subject)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"student": student})
}

// StudentLogout godoc
// POST /api/v1/auth/student/logout
// Logs out the currently authenticated student.
func (h *AuthHandler) StudentLogout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.authService.Logout(c.Request.Context(), claims.Subject, claims.ID); err != nil {
		if errors.Is(err, service.ErrLoginSuperseded) || errors.Is(err, service.ErrNoActiveLogin) {
			response.Fail(c, http.StatusUnauthorized, response.ErrSessionInvalidated)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
