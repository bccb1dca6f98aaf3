package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	internalmiddleware "github.com/entraide/vtn-api/internal/middleware"
	"github.com/entraide/vtn-api/internal/models"
	"github.com/entraide/vtn-api/internal/service"
)

type sessionRepoMock struct {
	views   map[string]*models.SessionView
	updated []models.SessionInstance
}

func (m *sessionRepoMock) FindByID(ctx context.Context, id string) (*models.SessionInstance, error) {
	if view, ok := m.views[id]; ok {
		cp := view.SessionInstance
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *sessionRepoMock) FindViewByID(ctx context.Context, id string) (*models.SessionView, error) {
	if view, ok := m.views[id]; ok {
		cp := *view
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *sessionRepoMock) List(ctx context.Context, filter models.InstanceFilter) ([]models.SessionInstance, int, error) {
	var out []models.SessionInstance
	for _, view := range m.views {
		out = append(out, view.SessionInstance)
	}
	return out, len(out), nil
}

func (m *sessionRepoMock) Update(ctx context.Context, instance *models.SessionInstance) error {
	m.updated = append(m.updated, *instance)
	return nil
}

type noTemplatesMock struct{}

func (noTemplatesMock) ListActiveByDay(ctx context.Context, academicYear, dayOfWeek string) ([]models.ScheduleTemplate, error) {
	return nil, nil
}

type noInstancesMock struct{}

func (noInstancesMock) ListScheduledForTrainerOn(ctx context.Context, trainerID string, date time.Time, excludeID string) ([]models.SessionView, error) {
	return nil, nil
}

func (noInstancesMock) ListScheduledForRoomOn(ctx context.Context, roomID string, date time.Time, excludeID string) ([]models.SessionView, error) {
	return nil, nil
}

func testSessionView(id string) *models.SessionView {
	return &models.SessionView{
		SessionInstance: models.SessionInstance{
			ID:           id,
			TemplateID:   "st1",
			SpecificDate: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
			Status:       models.SessionStatusScheduled,
		},
		TemplateDay:       models.DayMonday,
		TemplateStartTime: "09:00",
		TemplateEndTime:   "11:00",
		TemplateTrainerID: "tr1",
		TrainingCourseID:  "c1",
		AcademicYear:      "2025-2026",
	}
}

func newSessionTestHandler(repo *sessionRepoMock) *SessionHandler {
	conflicts := service.NewConflictService(noTemplatesMock{}, noInstancesMock{}, zap.NewNop())
	sessions := service.NewSessionService(repo, conflicts, nil, nil, zap.NewNop())
	return NewSessionHandler(sessions, nil, nil)
}

func TestSessionHandlerCancel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &sessionRepoMock{views: map[string]*models.SessionView{"i1": testSessionView("i1")}}
	handler := newSessionTestHandler(repo)

	router := gin.New()
	router.POST("/session-instances/:id/cancel", handler.Cancel)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/session-instances/i1/cancel", bytes.NewReader([]byte(`{"reason":"trainer unavailable"}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, repo.updated, 1)
	require.Equal(t, models.SessionStatusCancelled, repo.updated[0].Status)
	require.Equal(t, "trainer unavailable", repo.updated[0].Notes)
}

func TestSessionHandlerCancelEmptyBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &sessionRepoMock{views: map[string]*models.SessionView{"i1": testSessionView("i1")}}
	handler := newSessionTestHandler(repo)

	router := gin.New()
	router.POST("/session-instances/:id/cancel", handler.Cancel)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/session-instances/i1/cancel", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestSessionHandlerCancelNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newSessionTestHandler(&sessionRepoMock{})

	router := gin.New()
	router.POST("/session-instances/:id/cancel", handler.Cancel)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/session-instances/missing/cancel", bytes.NewReader([]byte(`{"reason":"x"}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionHandlerReschedule(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &sessionRepoMock{views: map[string]*models.SessionView{"i1": testSessionView("i1")}}
	handler := newSessionTestHandler(repo)

	router := gin.New()
	router.POST("/session-instances/:id/reschedule", handler.Reschedule)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/session-instances/i1/reschedule", bytes.NewReader([]byte(`{"new_date":"2026-01-07","new_start_time":"14:00"}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, repo.updated, 1)
	require.Equal(t, models.SessionStatusRescheduled, repo.updated[0].Status)
	require.Equal(t, "2026-01-07", repo.updated[0].SpecificDate.Format("2006-01-02"))
}

func TestSessionHandlerRescheduleBadDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &sessionRepoMock{views: map[string]*models.SessionView{"i1": testSessionView("i1")}}
	handler := newSessionTestHandler(repo)

	router := gin.New()
	router.POST("/session-instances/:id/reschedule", handler.Reschedule)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/session-instances/i1/reschedule", bytes.NewReader([]byte(`{"new_date":"07/01/2026"}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandlerEffective(t *testing.T) {
	gin.SetMode(gin.TestMode)
	view := testSessionView("i1")
	custom := "10:00"
	view.CustomStartTime = &custom
	repo := &sessionRepoMock{views: map[string]*models.SessionView{"i1": view}}
	handler := newSessionTestHandler(repo)

	router := gin.New()
	router.GET("/session-instances/:id/effective", handler.Effective)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/session-instances/i1/effective", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data models.ResolvedSession `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "10:00", body.Data.EffectiveStart)
	require.Equal(t, "11:00", body.Data.EffectiveEnd)
}

func TestSessionHandlerWriteRequiresRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newSessionTestHandler(&sessionRepoMock{})

	router := gin.New()
	router.POST("/session-instances/:id/cancel", internalmiddleware.RequireRoles("admin", "scheduler"), handler.Cancel)

	// No claims on the context at all.
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/session-instances/i1/cancel", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// A trainer token is not enough for writes.
	router = gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(internalmiddleware.ContextUserKey, &models.AuthClaims{Role: "trainer"})
		c.Next()
	})
	router.POST("/session-instances/:id/cancel", internalmiddleware.RequireRoles("admin", "scheduler"), handler.Cancel)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodPost, "/session-instances/i1/cancel", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)
}
