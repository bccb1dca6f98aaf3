package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func baseView() SessionView {
	return SessionView{
		SessionInstance: SessionInstance{
			ID:           "i1",
			TemplateID:   "st1",
			SpecificDate: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
			Status:       SessionStatusScheduled,
		},
		TemplateDay:       DayMonday,
		TemplateStartTime: "09:00",
		TemplateEndTime:   "11:00",
		TemplateTrainerID: "tr1",
		TemplateRoomID:    ptr("r1"),
		TrainingCourseID:  "c1",
		AcademicYear:      "2025-2026",
	}
}

func TestSessionViewFallsBackToTemplate(t *testing.T) {
	view := baseView()

	assert.Equal(t, "09:00", view.EffectiveStartTime())
	assert.Equal(t, "11:00", view.EffectiveEndTime())
	assert.Equal(t, "tr1", view.EffectiveTrainerID())
	require.NotNil(t, view.EffectiveRoomID())
	assert.Equal(t, "r1", *view.EffectiveRoomID())
}

func TestSessionViewOverridesWin(t *testing.T) {
	view := baseView()
	view.CustomStartTime = ptr("14:00")
	view.CustomEndTime = ptr("16:00")
	view.CustomTrainerID = ptr("tr9")
	view.CustomRoomID = ptr("r9")

	assert.Equal(t, "14:00", view.EffectiveStartTime())
	assert.Equal(t, "16:00", view.EffectiveEndTime())
	assert.Equal(t, "tr9", view.EffectiveTrainerID())
	assert.Equal(t, "r9", *view.EffectiveRoomID())
}

func TestSessionViewNilRoom(t *testing.T) {
	view := baseView()
	view.TemplateRoomID = nil

	assert.Nil(t, view.EffectiveRoomID())
}

func TestResolveMixesOverridesAndTemplate(t *testing.T) {
	view := baseView()
	view.CustomStartTime = ptr("10:00")

	resolved := view.Resolve()
	assert.Equal(t, "10:00", resolved.EffectiveStart)
	assert.Equal(t, "11:00", resolved.EffectiveEnd)
	assert.Equal(t, "tr1", resolved.EffectiveTrainer)
	assert.Equal(t, "i1", resolved.ID)
}
