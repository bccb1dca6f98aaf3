package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/entraide/vtn-api/internal/models"
	appErrors "github.com/entraide/vtn-api/pkg/errors"
)

type conflictTemplateRepository interface {
	ListActiveByDay(ctx context.Context, academicYear, dayOfWeek string) ([]models.ScheduleTemplate, error)
}

type conflictInstanceRepository interface {
	ListScheduledForTrainerOn(ctx context.Context, trainerID string, date time.Time, excludeID string) ([]models.SessionView, error)
	ListScheduledForRoomOn(ctx context.Context, roomID string, date time.Time, excludeID string) ([]models.SessionView, error)
}

// ConflictService detects double bookings of trainers and rooms. Checks are
// pure reads; the store's unique constraints remain the authoritative guard
// against races between checking and committing.
//
// Both levels compare time intervals, not just identical start times, so a
// 09:00-11:00 template collides with a 09:30-10:30 one.
type ConflictService struct {
	templates conflictTemplateRepository
	instances conflictInstanceRepository
	logger    *zap.Logger
}

// NewConflictService instantiates ConflictService.
func NewConflictService(templates conflictTemplateRepository, instances conflictInstanceRepository, logger *zap.Logger) *ConflictService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConflictService{templates: templates, instances: instances, logger: logger}
}

// CheckTemplateSlot validates a candidate weekly slot against active
// templates of the same academic year and returns the first collision found.
// excludeID allows a template to be checked against everyone but itself.
func (s *ConflictService) CheckTemplateSlot(ctx context.Context, slot models.CandidateSlot, excludeID string) error {
	conflicts, err := s.findTemplateConflicts(ctx, slot, excludeID, true)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return wrapSlotConflict(conflicts[0], nil)
	}
	return nil
}

// AggregateTemplateSlot validates a candidate weekly slot and returns every
// trainer and room collision rather than failing fast.
func (s *ConflictService) AggregateTemplateSlot(ctx context.Context, slot models.CandidateSlot, excludeID string) ([]models.SlotConflict, error) {
	return s.findTemplateConflicts(ctx, slot, excludeID, false)
}

func (s *ConflictService) findTemplateConflicts(ctx context.Context, slot models.CandidateSlot, excludeID string, failFast bool) ([]models.SlotConflict, error) {
	candidates, err := s.templates.ListActiveByDay(ctx, slot.AcademicYear, slot.DayOfWeek)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load conflict candidates")
	}

	var conflicts []models.SlotConflict
	for _, tpl := range candidates {
		if tpl.ID == excludeID {
			continue
		}
		overlap, err := models.ClocksOverlap(slot.StartTime, slot.EndTime, tpl.StartTime, tpl.EndTime)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time range")
		}
		if !overlap {
			continue
		}
		if slot.TrainerID != "" && tpl.TrainerID == slot.TrainerID {
			conflicts = append(conflicts, templateConflict(models.ConflictDimensionTrainer, tpl,
				fmt.Sprintf("trainer already has a session on %s from %s to %s", tpl.DayOfWeek, tpl.StartTime, tpl.EndTime)))
			if failFast {
				return conflicts, nil
			}
			continue
		}
		if slot.RoomID != "" && tpl.RoomID != nil && *tpl.RoomID == slot.RoomID {
			conflicts = append(conflicts, templateConflict(models.ConflictDimensionRoom, tpl,
				fmt.Sprintf("room is already booked on %s from %s to %s", tpl.DayOfWeek, tpl.StartTime, tpl.EndTime)))
			if failFast {
				return conflicts, nil
			}
		}
	}
	return conflicts, nil
}

// CheckInstanceSlot validates a concrete occurrence (date plus effective
// interval) against the scheduled instances of the same trainer and, when a
// room is in force, of the same room. Used on reschedule to keep the
// no-double-booking invariant at instance granularity.
func (s *ConflictService) CheckInstanceSlot(ctx context.Context, trainerID string, roomID *string, date time.Time, startTime, endTime, excludeID string) error {
	others, err := s.instances.ListScheduledForTrainerOn(ctx, trainerID, date, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load trainer sessions")
	}
	if conflict, err := s.firstOverlap(others, models.ConflictDimensionTrainer, date, startTime, endTime); err != nil {
		return err
	} else if conflict != nil {
		return wrapSlotConflict(*conflict, nil)
	}

	if roomID == nil || *roomID == "" {
		return nil
	}
	others, err = s.instances.ListScheduledForRoomOn(ctx, *roomID, date, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room sessions")
	}
	if conflict, err := s.firstOverlap(others, models.ConflictDimensionRoom, date, startTime, endTime); err != nil {
		return err
	} else if conflict != nil {
		return wrapSlotConflict(*conflict, nil)
	}
	return nil
}

func (s *ConflictService) firstOverlap(others []models.SessionView, dimension string, date time.Time, startTime, endTime string) (*models.SlotConflict, error) {
	for i := range others {
		other := &others[i]
		overlap, err := models.ClocksOverlap(startTime, endTime, other.EffectiveStartTime(), other.EffectiveEndTime())
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time range")
		}
		if !overlap {
			continue
		}
		subject := "trainer"
		if dimension == models.ConflictDimensionRoom {
			subject = "room"
		}
		return &models.SlotConflict{
			Dimension:  dimension,
			TemplateID: other.TemplateID,
			InstanceID: other.ID,
			TrainerID:  other.EffectiveTrainerID(),
			RoomID:     other.EffectiveRoomID(),
			Date:       date.Format("2006-01-02"),
			StartTime:  other.EffectiveStartTime(),
			EndTime:    other.EffectiveEndTime(),
			Message: fmt.Sprintf("%s already has a session on %s from %s to %s",
				subject, date.Format("2006-01-02"), other.EffectiveStartTime(), other.EffectiveEndTime()),
		}, nil
	}
	return nil, nil
}

func templateConflict(dimension string, tpl models.ScheduleTemplate, message string) models.SlotConflict {
	return models.SlotConflict{
		Dimension:    dimension,
		TemplateID:   tpl.ID,
		TrainerID:    tpl.TrainerID,
		RoomID:       tpl.RoomID,
		DayOfWeek:    tpl.DayOfWeek,
		StartTime:    tpl.StartTime,
		EndTime:      tpl.EndTime,
		AcademicYear: tpl.AcademicYear,
		Message:      message,
	}
}

func wrapSlotConflict(conflict models.SlotConflict, all []models.SlotConflict) error {
	domainErr := &models.SlotConflictError{Message: conflict.Message, Conflict: conflict, Conflicts: all}
	return appErrors.Wrap(domainErr, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, fmt.Sprintf("scheduling conflict: %s", conflict.Message))
}
