package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/entraide/vtn-api/internal/models"
	appErrors "github.com/entraide/vtn-api/pkg/errors"
)

type instanceRepository interface {
	FindByID(ctx context.Context, id string) (*models.SessionInstance, error)
	FindViewByID(ctx context.Context, id string) (*models.SessionView, error)
	List(ctx context.Context, filter models.InstanceFilter) ([]models.SessionInstance, int, error)
	Update(ctx context.Context, instance *models.SessionInstance) error
}

// CancelSessionRequest carries the cancellation reason.
type CancelSessionRequest struct {
	Reason string `json:"reason"`
}

// RescheduleSessionRequest moves an occurrence to a new date, optionally
// overriding start time and room for that occurrence only.
type RescheduleSessionRequest struct {
	NewDate      string  `json:"new_date" validate:"required"`
	NewStartTime *string `json:"new_start_time,omitempty"`
	NewRoomID    *string `json:"new_room_id,omitempty"`
}

// SessionService owns the per-instance lifecycle: cancel, reschedule, and the
// effective-value reads consumed by the attendance module.
type SessionService struct {
	repo      instanceRepository
	conflicts *ConflictService
	cache     timetableInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSessionService instantiates SessionService.
func NewSessionService(repo instanceRepository, conflicts *ConflictService, cache timetableInvalidator, validate *validator.Validate, logger *zap.Logger) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{repo: repo, conflicts: conflicts, cache: cache, validator: validate, logger: logger}
}

// List returns instances with pagination metadata.
func (s *SessionService) List(ctx context.Context, filter models.InstanceFilter) ([]models.SessionInstance, *models.Pagination, error) {
	instances, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list session instances")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return instances, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Effective resolves the values in force for an occurrence.
func (s *SessionService) Effective(ctx context.Context, id string) (*models.ResolvedSession, error) {
	view, err := s.repo.FindViewByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session instance not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session instance")
	}
	resolved := view.Resolve()
	return &resolved, nil
}

// Cancel marks an occurrence cancelled with the given reason. Cancelled is a
// terminal state; cancelling an already-cancelled instance is a no-op.
func (s *SessionService) Cancel(ctx context.Context, id, reason string) (*models.SessionInstance, error) {
	instance, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session instance not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session instance")
	}

	if instance.Status == models.SessionStatusCancelled {
		return instance, nil
	}

	instance.Status = models.SessionStatusCancelled
	instance.Notes = reason
	if err := s.repo.Update(ctx, instance); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel session instance")
	}

	if s.cache != nil {
		s.cache.InvalidateTimetables(ctx)
	}
	s.logger.Info("session cancelled", zap.String("instance_id", id), zap.String("reason", reason))
	return instance, nil
}

// Reschedule moves an occurrence to a new date and optionally overrides its
// start time and room. The new slot is conflict-checked against the trainer's
// and room's other scheduled occurrences before committing.
func (s *SessionService) Reschedule(ctx context.Context, id string, req RescheduleSessionRequest) (*models.SessionInstance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reschedule payload")
	}
	newDate, err := time.Parse("2006-01-02", req.NewDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "new_date must be formatted YYYY-MM-DD")
	}

	view, err := s.repo.FindViewByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session instance not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session instance")
	}
	if view.Status == models.SessionStatusCancelled {
		return nil, appErrors.Clone(appErrors.ErrConflict, "cannot reschedule a cancelled session")
	}

	// A new start time shifts the whole interval: the end moves with it so
	// the occurrence keeps its duration and start stays before end.
	var newStart, newEnd *string
	if req.NewStartTime != nil {
		normalized, err := models.NormalizeClock(*req.NewStartTime)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
		}
		newStart = &normalized
		shifted, err := models.ShiftClock(view.EffectiveStartTime(), view.EffectiveEndTime(), normalized)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
		}
		newEnd = &shifted
	}

	effectiveStart := view.EffectiveStartTime()
	effectiveEnd := view.EffectiveEndTime()
	if newStart != nil {
		effectiveStart = *newStart
		effectiveEnd = *newEnd
	}
	effectiveRoom := view.EffectiveRoomID()
	if req.NewRoomID != nil && *req.NewRoomID != "" {
		effectiveRoom = req.NewRoomID
	}

	if err := s.conflicts.CheckInstanceSlot(ctx, view.EffectiveTrainerID(), effectiveRoom, newDate, effectiveStart, effectiveEnd, id); err != nil {
		return nil, err
	}

	instance := view.SessionInstance
	instance.SpecificDate = newDate
	if newStart != nil {
		instance.CustomStartTime = newStart
		instance.CustomEndTime = newEnd
	}
	if req.NewRoomID != nil && *req.NewRoomID != "" {
		instance.CustomRoomID = req.NewRoomID
	}
	instance.Status = models.SessionStatusRescheduled

	if err := s.repo.Update(ctx, &instance); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reschedule session instance")
	}

	if s.cache != nil {
		s.cache.InvalidateTimetables(ctx)
	}
	s.logger.Info("session rescheduled",
		zap.String("instance_id", id),
		zap.Time("new_date", newDate),
	)
	return &instance, nil
}
