package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/entraide/vtn-api/internal/models"
	"github.com/entraide/vtn-api/internal/service"
	appErrors "github.com/entraide/vtn-api/pkg/errors"
	"github.com/entraide/vtn-api/pkg/response"
)

// TemplateHandler manages schedule template endpoints.
type TemplateHandler struct {
	service *service.TemplateService
	metrics *service.MetricsService
}

// NewTemplateHandler constructs handler.
func NewTemplateHandler(svc *service.TemplateService, metrics *service.MetricsService) *TemplateHandler {
	return &TemplateHandler{service: svc, metrics: metrics}
}

// List godoc
// @Summary List schedule templates
// @Tags Schedule Templates
// @Produce json
// @Param trainerId query string false "Filter by trainer"
// @Param groupId query string false "Filter by group"
// @Param roomId query string false "Filter by room"
// @Param courseId query string false "Filter by training course"
// @Param academicYear query string false "Filter by academic year"
// @Param dayOfWeek query string false "Filter by day"
// @Param active query bool false "Filter by active flag"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /schedule-templates [get]
func (h *TemplateHandler) List(c *gin.Context) {
	var filter models.TemplateFilter
	filter.TrainerID = c.Query("trainerId")
	filter.GroupID = c.Query("groupId")
	filter.RoomID = c.Query("roomId")
	filter.TrainingCourseID = c.Query("courseId")
	filter.AcademicYear = c.Query("academicYear")
	filter.DayOfWeek = strings.ToUpper(c.Query("dayOfWeek"))
	if raw := c.Query("active"); raw != "" {
		if active, err := strconv.ParseBool(raw); err == nil {
			filter.Active = &active
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	templates, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, templates, pagination)
}

// Get godoc
// @Summary Get schedule template
// @Tags Schedule Templates
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} response.Envelope
// @Router /schedule-templates/{id} [get]
func (h *TemplateHandler) Get(c *gin.Context) {
	tpl, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tpl, nil)
}

// Create godoc
// @Summary Create schedule template
// @Tags Schedule Templates
// @Accept json
// @Produce json
// @Param payload body service.CreateTemplateRequest true "Template payload"
// @Success 201 {object} response.Envelope
// @Router /schedule-templates [post]
func (h *TemplateHandler) Create(c *gin.Context) {
	var req service.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	tpl, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.observeConflict(err)
		response.Error(c, err)
		return
	}
	response.Created(c, tpl)
}

// Deactivate godoc
// @Summary Deactivate schedule template
// @Tags Schedule Templates
// @Produce json
// @Param id path string true "Template ID"
// @Success 204
// @Router /schedule-templates/{id} [delete]
func (h *TemplateHandler) Deactivate(c *gin.Context) {
	if err := h.service.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CheckConflicts godoc
// @Summary Check a candidate slot for conflicts
// @Tags Schedule Templates
// @Accept json
// @Produce json
// @Param payload body service.CheckConflictsRequest true "Candidate slot"
// @Success 200 {object} response.Envelope
// @Router /schedule-templates/check-conflicts [post]
func (h *TemplateHandler) CheckConflicts(c *gin.Context) {
	var req service.CheckConflictsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.CheckConflicts(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if result.HasConflicts && h.metrics != nil {
		h.metrics.IncConflictDetected()
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// TrainerSchedule godoc
// @Summary Active weekly templates of a trainer
// @Tags Schedule Templates
// @Produce json
// @Param id path string true "Trainer ID"
// @Param academicYear query string false "Scope to academic year"
// @Success 200 {object} response.Envelope
// @Router /trainers/{id}/schedule-templates [get]
func (h *TemplateHandler) TrainerSchedule(c *gin.Context) {
	schedule, err := h.service.TrainerSchedule(c.Request.Context(), c.Param("id"), c.Query("academicYear"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// GroupSchedule godoc
// @Summary Active weekly templates of a group
// @Tags Schedule Templates
// @Produce json
// @Param id path string true "Group ID"
// @Param academicYear query string false "Scope to academic year"
// @Success 200 {object} response.Envelope
// @Router /groups/{id}/schedule-templates [get]
func (h *TemplateHandler) GroupSchedule(c *gin.Context) {
	schedule, err := h.service.GroupSchedule(c.Request.Context(), c.Param("id"), c.Query("academicYear"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

func (h *TemplateHandler) observeConflict(err error) {
	if h.metrics == nil {
		return
	}
	if appErr := appErrors.FromError(err); appErr.Code == appErrors.ErrConflict.Code {
		h.metrics.IncConflictDetected()
	}
}
