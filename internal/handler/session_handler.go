package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/entraide/vtn-api/internal/models"
	"github.com/entraide/vtn-api/internal/service"
	appErrors "github.com/entraide/vtn-api/pkg/errors"
	"github.com/entraide/vtn-api/pkg/response"
)

// GenerateWeekRequest triggers instance generation for one week.
type GenerateWeekRequest struct {
	WeekStart    string `json:"week_start" binding:"required"`
	AcademicYear string `json:"academic_year" binding:"required"`
}

// SessionHandler manages session instance endpoints.
type SessionHandler struct {
	sessions  *service.SessionService
	generator *service.GeneratorService
	metrics   *service.MetricsService
}

// NewSessionHandler constructs handler.
func NewSessionHandler(sessions *service.SessionService, generator *service.GeneratorService, metrics *service.MetricsService) *SessionHandler {
	return &SessionHandler{sessions: sessions, generator: generator, metrics: metrics}
}

// Generate godoc
// @Summary Generate session instances for a week
// @Tags Session Instances
// @Accept json
// @Produce json
// @Param payload body GenerateWeekRequest true "Week to generate"
// @Success 200 {object} response.Envelope
// @Router /session-instances/generate [post]
func (h *SessionHandler) Generate(c *gin.Context) {
	var req GenerateWeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	weekStart, err := time.Parse("2006-01-02", req.WeekStart)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "week_start must be formatted YYYY-MM-DD"))
		return
	}

	result, err := h.generator.GenerateForWeek(c.Request.Context(), weekStart, req.AcademicYear)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.AddGeneratedInstances(len(result.Created))
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// List godoc
// @Summary List session instances
// @Tags Session Instances
// @Produce json
// @Param templateId query string false "Filter by template"
// @Param status query string false "Filter by status"
// @Param dateFrom query string false "Earliest date (YYYY-MM-DD)"
// @Param dateTo query string false "Latest date (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /session-instances [get]
func (h *SessionHandler) List(c *gin.Context) {
	var filter models.InstanceFilter
	filter.TemplateID = c.Query("templateId")
	filter.Status = c.Query("status")
	if raw := c.Query("dateFrom"); raw != "" {
		if date, err := time.Parse("2006-01-02", raw); err == nil {
			filter.DateFrom = &date
		}
	}
	if raw := c.Query("dateTo"); raw != "" {
		if date, err := time.Parse("2006-01-02", raw); err == nil {
			filter.DateTo = &date
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}

	instances, pagination, err := h.sessions.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, instances, pagination)
}

// Effective godoc
// @Summary Effective values of a session instance
// @Tags Session Instances
// @Produce json
// @Param id path string true "Instance ID"
// @Success 200 {object} response.Envelope
// @Router /session-instances/{id}/effective [get]
func (h *SessionHandler) Effective(c *gin.Context) {
	resolved, err := h.sessions.Effective(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resolved, nil)
}

// Cancel godoc
// @Summary Cancel a session instance
// @Tags Session Instances
// @Accept json
// @Produce json
// @Param id path string true "Instance ID"
// @Param payload body service.CancelSessionRequest true "Cancellation reason"
// @Success 200 {object} response.Envelope
// @Router /session-instances/{id}/cancel [post]
func (h *SessionHandler) Cancel(c *gin.Context) {
	var req service.CancelSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
			return
		}
	}
	instance, err := h.sessions.Cancel(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, instance, nil)
}

// Reschedule godoc
// @Summary Reschedule a session instance
// @Tags Session Instances
// @Accept json
// @Produce json
// @Param id path string true "Instance ID"
// @Param payload body service.RescheduleSessionRequest true "New slot"
// @Success 200 {object} response.Envelope
// @Router /session-instances/{id}/reschedule [post]
func (h *SessionHandler) Reschedule(c *gin.Context) {
	var req service.RescheduleSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	instance, err := h.sessions.Reschedule(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		if h.metrics != nil {
			if appErr := appErrors.FromError(err); appErr.Code == appErrors.ErrConflict.Code {
				h.metrics.IncConflictDetected()
			}
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, instance, nil)
}
