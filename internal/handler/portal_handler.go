package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rareminds/testportal/internal/middleware"
	"github.com/rareminds/testportal/internal/model"
	"github.com/rareminds/testportal/internal/repository"
	"github.com/rareminds/testportal/internal/response"
	"github.com/rareminds/testportal/internal/service"
	"github.com/rareminds/testportal/internal/validator"
	"github.com/rs/zerolog"
)

// PortalHandler handles the student dashboard, profile, results and support.
type PortalHandler struct {
	portalService  *service.PortalService
	supportService *service.SupportService
	log            zerolog.Logger
}

// NewPortalHandler creates a new PortalHandler.
func NewPortalHandler(portalService *service.PortalService, supportService *service.SupportService, log zerolog.Logger) *PortalHandler {
	return &PortalHandler{
		portalService:  portalService,
		supportService: supportService,
		log:            log.With().Str("component", "portal_handler").Logger(),
	}
}

// GetDashboard godoc
// GET /api/v1/student/dashboard
// Lists courses with their assessment window status.
func (h *PortalHandler) GetDashboard(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	dashboard, err := h.portalService.GetDashboard(c.Request.Context(), claims.Subject)
	if err != nil {
		h.log.Error().Err(err).Str("subject_id", claims.Subject).Msg("Dashboard failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, dashboard)
}

// GetTestProfile godoc
// GET /api/v1/student/profile/tests
// Returns attempt count, average score and attempt history.
func (h *PortalHandler) GetTestProfile(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	profile, err := h.portalService.GetTestProfile(c.Request.Context(), claims.Subject)
	if err != nil {
		h.log.Error().Err(err).Str("subject_id", claims.Subject).Msg("Test profile failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, profile)
}

// GetLatestResult godoc
// GET /api/v1/student/results/latest
// Returns the student's most recent submission.
func (h *PortalHandler) GetLatestResult(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	rec, err := h.portalService.GetLatestResult(c.Request.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		h.log.Error().Err(err).Str("subject_id", claims.Subject).Msg("Latest result failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": rec})
}

// CreateSupportRequest godoc
// POST /api/v1/student/support
// Records a help request.
func (h *PortalHandler) CreateSupportRequest(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateSupportRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	created, err := h.supportService.Raise(c.Request.Context(), claims.Subject, req.CourseID, req.Message)
	if err != nil {
		h.log.Error().Err(err).Str("subject_id", claims.Subject).Msg("Support request failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, created)
}
