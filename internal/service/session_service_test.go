package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/entraide/vtn-api/internal/models"
	appErrors "github.com/entraide/vtn-api/pkg/errors"
)

type mockInstanceRepo struct {
	views   map[string]*models.SessionView
	updated []models.SessionInstance
}

func (m *mockInstanceRepo) FindByID(ctx context.Context, id string) (*models.SessionInstance, error) {
	if view, ok := m.views[id]; ok {
		cp := view.SessionInstance
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockInstanceRepo) FindViewByID(ctx context.Context, id string) (*models.SessionView, error) {
	if view, ok := m.views[id]; ok {
		cp := *view
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockInstanceRepo) List(ctx context.Context, filter models.InstanceFilter) ([]models.SessionInstance, int, error) {
	var out []models.SessionInstance
	for _, view := range m.views {
		out = append(out, view.SessionInstance)
	}
	return out, len(out), nil
}

func (m *mockInstanceRepo) Update(ctx context.Context, instance *models.SessionInstance) error {
	m.updated = append(m.updated, *instance)
	if view, ok := m.views[instance.ID]; ok {
		view.SessionInstance = *instance
	}
	return nil
}

func scheduledView(id string) *models.SessionView {
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
		TemplateRoomID:    strPtr("r1"),
		TrainingCourseID:  "c1",
		AcademicYear:      "2025-2026",
	}
}

func newSessionService(repo *mockInstanceRepo, conflicting []models.SessionView, invalidator timetableInvalidator) *SessionService {
	conflicts := NewConflictService(&mockConflictTemplates{}, &mockConflictInstances{trainerViews: conflicting}, zap.NewNop())
	return NewSessionService(repo, conflicts, invalidator, validator.New(), zap.NewNop())
}

func TestSessionServiceEffectiveResolvesOverrides(t *testing.T) {
	view := scheduledView("i1")
	view.CustomStartTime = strPtr("10:00")
	view.CustomTrainerID = strPtr("tr9")
	repo := &mockInstanceRepo{views: map[string]*models.SessionView{"i1": view}}
	svc := newSessionService(repo, nil, nil)

	resolved, err := svc.Effective(context.Background(), "i1")
	require.NoError(t, err)
	assert.Equal(t, "10:00", resolved.EffectiveStart)
	assert.Equal(t, "11:00", resolved.EffectiveEnd)
	assert.Equal(t, "tr9", resolved.EffectiveTrainer)
	require.NotNil(t, resolved.EffectiveRoom)
	assert.Equal(t, "r1", *resolved.EffectiveRoom)
}

func TestSessionServiceEffectiveNotFound(t *testing.T) {
	svc := newSessionService(&mockInstanceRepo{}, nil, nil)

	_, err := svc.Effective(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSessionServiceCancel(t *testing.T) {
	repo := &mockInstanceRepo{views: map[string]*models.SessionView{"i1": scheduledView("i1")}}
	invalidator := &mockInvalidator{}
	svc := newSessionService(repo, nil, invalidator)

	instance, err := svc.Cancel(context.Background(), "i1", "trainer unavailable")
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusCancelled, instance.Status)
	assert.Equal(t, "trainer unavailable", instance.Notes)
	assert.Len(t, repo.updated, 1)
	assert.Equal(t, 1, invalidator.calls)
}

func TestSessionServiceCancelIsIdempotent(t *testing.T) {
	view := scheduledView("i1")
	view.Status = models.SessionStatusCancelled
	view.Notes = "original reason"
	repo := &mockInstanceRepo{views: map[string]*models.SessionView{"i1": view}}
	invalidator := &mockInvalidator{}
	svc := newSessionService(repo, nil, invalidator)

	instance, err := svc.Cancel(context.Background(), "i1", "another reason")
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusCancelled, instance.Status)
	assert.Equal(t, "original reason", instance.Notes)
	assert.Empty(t, repo.updated)
	assert.Equal(t, 0, invalidator.calls)
}

func TestSessionServiceReschedule(t *testing.T) {
	repo := &mockInstanceRepo{views: map[string]*models.SessionView{"i1": scheduledView("i1")}}
	invalidator := &mockInvalidator{}
	svc := newSessionService(repo, nil, invalidator)

	instance, err := svc.Reschedule(context.Background(), "i1", RescheduleSessionRequest{
		NewDate:      "2026-01-07",
		NewStartTime: strPtr("14:00"),
		NewRoomID:    strPtr("r2"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusRescheduled, instance.Status)
	assert.Equal(t, "2026-01-07", instance.SpecificDate.Format("2006-01-02"))
	require.NotNil(t, instance.CustomStartTime)
	assert.Equal(t, "14:00", *instance.CustomStartTime)
	require.NotNil(t, instance.CustomEndTime)
	assert.Equal(t, "16:00", *instance.CustomEndTime)
	require.NotNil(t, instance.CustomRoomID)
	assert.Equal(t, "r2", *instance.CustomRoomID)
	assert.Equal(t, 1, invalidator.calls)
}

func TestSessionServiceRescheduleShiftedSlotStillConflictChecked(t *testing.T) {
	// The trainer already teaches 14:00-16:00 on the target date. Moving a
	// 09:00-11:00 occurrence to start at 14:00 shifts its whole interval to
	// 14:00-16:00 and must collide.
	other := *scheduledView("i2")
	other.CustomStartTime = strPtr("14:00")
	other.CustomEndTime = strPtr("16:00")
	repo := &mockInstanceRepo{views: map[string]*models.SessionView{"i1": scheduledView("i1")}}
	svc := newSessionService(repo, []models.SessionView{other}, nil)

	_, err := svc.Reschedule(context.Background(), "i1", RescheduleSessionRequest{
		NewDate:      "2026-01-07",
		NewStartTime: strPtr("14:00"),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.updated)
}

func TestSessionServiceRescheduleRejectsStartPastMidnight(t *testing.T) {
	repo := &mockInstanceRepo{views: map[string]*models.SessionView{"i1": scheduledView("i1")}}
	svc := newSessionService(repo, nil, nil)

	_, err := svc.Reschedule(context.Background(), "i1", RescheduleSessionRequest{
		NewDate:      "2026-01-07",
		NewStartTime: strPtr("23:00"),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.updated)
}

func TestSessionServiceRescheduleKeepsTemplateValuesWithoutOverrides(t *testing.T) {
	repo := &mockInstanceRepo{views: map[string]*models.SessionView{"i1": scheduledView("i1")}}
	svc := newSessionService(repo, nil, nil)

	instance, err := svc.Reschedule(context.Background(), "i1", RescheduleSessionRequest{
		NewDate: "2026-01-12",
	})
	require.NoError(t, err)
	assert.Nil(t, instance.CustomStartTime)
	assert.Nil(t, instance.CustomRoomID)
	assert.Equal(t, models.SessionStatusRescheduled, instance.Status)
}

func TestSessionServiceRescheduleRejectsCancelled(t *testing.T) {
	view := scheduledView("i1")
	view.Status = models.SessionStatusCancelled
	repo := &mockInstanceRepo{views: map[string]*models.SessionView{"i1": view}}
	svc := newSessionService(repo, nil, nil)

	_, err := svc.Reschedule(context.Background(), "i1", RescheduleSessionRequest{NewDate: "2026-01-07"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.updated)
}

func TestSessionServiceRescheduleRejectsConflictingSlot(t *testing.T) {
	other := *scheduledView("i2")
	other.TemplateStartTime = "09:00"
	other.TemplateEndTime = "11:00"
	repo := &mockInstanceRepo{views: map[string]*models.SessionView{"i1": scheduledView("i1")}}
	svc := newSessionService(repo, []models.SessionView{other}, nil)

	_, err := svc.Reschedule(context.Background(), "i1", RescheduleSessionRequest{
		NewDate:      "2026-01-07",
		NewStartTime: strPtr("10:00"),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.updated)
}

func TestSessionServiceRescheduleRejectsBadDate(t *testing.T) {
	repo := &mockInstanceRepo{views: map[string]*models.SessionView{"i1": scheduledView("i1")}}
	svc := newSessionService(repo, nil, nil)

	_, err := svc.Reschedule(context.Background(), "i1", RescheduleSessionRequest{NewDate: "07/01/2026"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
