package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/entraide/vtn-api/internal/service"
	appErrors "github.com/entraide/vtn-api/pkg/errors"
	"github.com/entraide/vtn-api/pkg/response"
)

// TimetableHandler serves trainer and group timetables plus the weekly
// network summary and its exports.
type TimetableHandler struct {
	service *service.TimetableService
}

// NewTimetableHandler constructs handler.
func NewTimetableHandler(svc *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// TrainerTimetable godoc
// @Summary Trainer timetable for a date window
// @Tags Timetables
// @Produce json
// @Param id path string true "Trainer ID"
// @Param start_date query string true "Start date (YYYY-MM-DD)"
// @Param end_date query string true "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /timetables/trainers/{id} [get]
func (h *TimetableHandler) TrainerTimetable(c *gin.Context) {
	from, to, ok := h.dateWindow(c)
	if !ok {
		return
	}
	timetable, err := h.service.TrainerTimetable(c.Request.Context(), c.Param("id"), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timetable, nil)
}

// GroupTimetable godoc
// @Summary Group timetable for a date window
// @Tags Timetables
// @Produce json
// @Param id path string true "Group ID"
// @Param start_date query string true "Start date (YYYY-MM-DD)"
// @Param end_date query string true "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /timetables/groups/{id} [get]
func (h *TimetableHandler) GroupTimetable(c *gin.Context) {
	from, to, ok := h.dateWindow(c)
	if !ok {
		return
	}
	timetable, err := h.service.GroupTimetable(c.Request.Context(), c.Param("id"), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timetable, nil)
}

// WeeklySummary godoc
// @Summary Network-wide summary of one week
// @Description Returns every resolved session of the week. Use format=csv or
// @Description format=pdf to download the summary as a file instead.
// @Tags Timetables
// @Produce json
// @Param academic_year query string true "Academic year"
// @Param week_start query string true "Monday of the week (YYYY-MM-DD)"
// @Param format query string false "Export format (csv or pdf)"
// @Success 200 {object} response.Envelope
// @Router /timetables/weekly-summary [get]
func (h *TimetableHandler) WeeklySummary(c *gin.Context) {
	academicYear := c.Query("academic_year")
	if academicYear == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "academic_year is required"))
		return
	}
	weekStart, err := time.Parse("2006-01-02", c.Query("week_start"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "week_start must be formatted YYYY-MM-DD"))
		return
	}

	if format := c.Query("format"); format != "" {
		payload, contentType, filename, err := h.service.ExportWeekSummary(c.Request.Context(), academicYear, weekStart, format)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		c.Data(http.StatusOK, contentType, payload)
		return
	}

	summary, err := h.service.WeekSummary(c.Request.Context(), academicYear, weekStart)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

func (h *TimetableHandler) dateWindow(c *gin.Context) (time.Time, time.Time, bool) {
	from, err := time.Parse("2006-01-02", c.Query("start_date"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "start_date must be formatted YYYY-MM-DD"))
		return time.Time{}, time.Time{}, false
	}
	to, err := time.Parse("2006-01-02", c.Query("end_date"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "end_date must be formatted YYYY-MM-DD"))
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}
