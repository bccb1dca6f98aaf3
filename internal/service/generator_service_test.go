package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/entraide/vtn-api/internal/models"
	appErrors "github.com/entraide/vtn-api/pkg/errors"
)

type mockGeneratorTemplates struct {
	active []models.ScheduleTemplate
	err    error
}

func (m *mockGeneratorTemplates) ListActiveByYear(ctx context.Context, academicYear string) ([]models.ScheduleTemplate, error) {
	return m.active, m.err
}

type mockGeneratorInstances struct {
	existing map[string]bool
	failOn   map[string]error
	created  []models.SessionInstance
}

func (m *mockGeneratorInstances) GetOrCreate(ctx context.Context, instance *models.SessionInstance) (bool, error) {
	key := instance.TemplateID + "|" + instance.SpecificDate.Format("2006-01-02")
	if err, ok := m.failOn[instance.TemplateID]; ok {
		return false, err
	}
	if m.existing[key] {
		return false, nil
	}
	if m.existing == nil {
		m.existing = make(map[string]bool)
	}
	m.existing[key] = true
	instance.ID = "generated-" + instance.TemplateID
	m.created = append(m.created, *instance)
	return true, nil
}

type mockInvalidator struct {
	calls int
}

func (m *mockInvalidator) InvalidateTimetables(ctx context.Context) {
	m.calls++
}

var testWeekStart = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC) // a Monday

func TestGenerateForWeekRejectsNonMonday(t *testing.T) {
	svc := NewGeneratorService(&mockGeneratorTemplates{}, &mockGeneratorInstances{}, nil, zap.NewNop())

	_, err := svc.GenerateForWeek(context.Background(), testWeekStart.AddDate(0, 0, 1), "2025-2026")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestGenerateForWeekDatesInstancesByDayOffset(t *testing.T) {
	templates := &mockGeneratorTemplates{active: []models.ScheduleTemplate{
		{ID: "st-mon", DayOfWeek: models.DayMonday, AcademicYear: "2025-2026", Active: true},
		{ID: "st-wed", DayOfWeek: models.DayWednesday, AcademicYear: "2025-2026", Active: true},
		{ID: "st-sun", DayOfWeek: models.DaySunday, AcademicYear: "2025-2026", Active: true},
	}}
	instances := &mockGeneratorInstances{}
	invalidator := &mockInvalidator{}
	svc := NewGeneratorService(templates, instances, invalidator, zap.NewNop())

	result, err := svc.GenerateForWeek(context.Background(), testWeekStart, "2025-2026")
	require.NoError(t, err)
	require.Len(t, result.Created, 3)
	assert.Equal(t, 0, result.Skipped)
	assert.Empty(t, result.Failures)

	assert.Equal(t, "2026-01-05", result.Created[0].SpecificDate.Format("2006-01-02"))
	assert.Equal(t, "2026-01-07", result.Created[1].SpecificDate.Format("2006-01-02"))
	assert.Equal(t, "2026-01-11", result.Created[2].SpecificDate.Format("2006-01-02"))
	for _, instance := range result.Created {
		assert.Equal(t, models.SessionStatusScheduled, instance.Status)
	}
	assert.Equal(t, 1, invalidator.calls)
}

func TestGenerateForWeekIsIdempotent(t *testing.T) {
	templates := &mockGeneratorTemplates{active: []models.ScheduleTemplate{
		{ID: "st1", DayOfWeek: models.DayMonday, AcademicYear: "2025-2026", Active: true},
	}}
	instances := &mockGeneratorInstances{}
	svc := NewGeneratorService(templates, instances, nil, zap.NewNop())

	first, err := svc.GenerateForWeek(context.Background(), testWeekStart, "2025-2026")
	require.NoError(t, err)
	assert.Len(t, first.Created, 1)

	second, err := svc.GenerateForWeek(context.Background(), testWeekStart, "2025-2026")
	require.NoError(t, err)
	assert.Empty(t, second.Created)
	assert.Equal(t, 1, second.Skipped)
}

func TestGenerateForWeekCollectsFailures(t *testing.T) {
	templates := &mockGeneratorTemplates{active: []models.ScheduleTemplate{
		{ID: "st-bad", DayOfWeek: models.DayMonday},
		{ID: "st-ok", DayOfWeek: models.DayTuesday},
	}}
	instances := &mockGeneratorInstances{failOn: map[string]error{
		"st-bad": errors.New("connection reset"),
	}}
	svc := NewGeneratorService(templates, instances, nil, zap.NewNop())

	result, err := svc.GenerateForWeek(context.Background(), testWeekStart, "2025-2026")
	require.NoError(t, err)
	assert.Len(t, result.Created, 1)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "st-bad", result.Failures[0].TemplateID)
	assert.Equal(t, "connection reset", result.Failures[0].Reason)
}

func TestGenerateForWeekRequiresYear(t *testing.T) {
	svc := NewGeneratorService(&mockGeneratorTemplates{}, &mockGeneratorInstances{}, nil, zap.NewNop())

	_, err := svc.GenerateForWeek(context.Background(), testWeekStart, "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
