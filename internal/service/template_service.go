package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/entraide/vtn-api/internal/models"
	"github.com/entraide/vtn-api/internal/repository"
	appErrors "github.com/entraide/vtn-api/pkg/errors"
)

type templateRepository interface {
	List(ctx context.Context, filter models.TemplateFilter) ([]models.ScheduleTemplate, int, error)
	FindByID(ctx context.Context, id string) (*models.ScheduleTemplate, error)
	ListByTrainer(ctx context.Context, trainerID, academicYear string) ([]models.ScheduleTemplate, error)
	ListByGroup(ctx context.Context, groupID, academicYear string) ([]models.ScheduleTemplate, error)
	Create(ctx context.Context, tpl *models.ScheduleTemplate) error
	Deactivate(ctx context.Context, id string) error
}

type referenceReader interface {
	TrainerExists(ctx context.Context, id string) (bool, error)
	RoomExists(ctx context.Context, id string) (bool, error)
	GroupExists(ctx context.Context, id string) (bool, error)
	CourseExists(ctx context.Context, id string) (bool, error)
	FindTrainer(ctx context.Context, id string) (*models.Trainer, error)
	FindGroup(ctx context.Context, id string) (*models.Group, error)
}

// CreateTemplateRequest describes payload for creating a schedule template.
type CreateTemplateRequest struct {
	TrainingCourseID string  `json:"training_course_id" validate:"required"`
	TrainerID        string  `json:"trainer_id" validate:"required"`
	RoomID           *string `json:"room_id,omitempty"`
	GroupID          *string `json:"group_id,omitempty"`
	DayOfWeek        string  `json:"day_of_week" validate:"required"`
	StartTime        string  `json:"start_time" validate:"required"`
	EndTime          string  `json:"end_time" validate:"required"`
	AcademicYear     string  `json:"academic_year" validate:"required"`
}

// CheckConflictsRequest describes a candidate slot for the batch conflict
// check. At least one of trainer_id and room_id must be set.
type CheckConflictsRequest struct {
	TrainerID    string `json:"trainer_id,omitempty"`
	RoomID       string `json:"room_id,omitempty"`
	DayOfWeek    string `json:"day_of_week" validate:"required"`
	StartTime    string `json:"start_time" validate:"required"`
	EndTime      string `json:"end_time" validate:"required"`
	AcademicYear string `json:"academic_year" validate:"required"`
	ExcludeID    string `json:"exclude_id,omitempty"`
}

// ConflictCheckResult aggregates every detected collision for a candidate.
type ConflictCheckResult struct {
	HasConflicts bool                  `json:"has_conflicts"`
	Conflicts    []models.SlotConflict `json:"conflicts"`
}

// TrainerSchedule pairs a trainer with their active weekly templates.
type TrainerSchedule struct {
	Trainer   models.Trainer            `json:"trainer"`
	Schedules []models.ScheduleTemplate `json:"schedules"`
}

// GroupSchedule pairs a group with its active weekly templates.
type GroupSchedule struct {
	Group     models.Group              `json:"group"`
	Schedules []models.ScheduleTemplate `json:"schedules"`
}

// TemplateService manages the recurring weekly schedule definitions.
type TemplateService struct {
	repo      templateRepository
	refs      referenceReader
	conflicts *ConflictService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTemplateService instantiates TemplateService.
func NewTemplateService(repo templateRepository, refs referenceReader, conflicts *ConflictService, validate *validator.Validate, logger *zap.Logger) *TemplateService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TemplateService{repo: repo, refs: refs, conflicts: conflicts, validator: validate, logger: logger}
}

// List returns templates with pagination metadata.
func (s *TemplateService) List(ctx context.Context, filter models.TemplateFilter) ([]models.ScheduleTemplate, *models.Pagination, error) {
	templates, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedule templates")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return templates, pagination, nil
}

// Get loads a single template.
func (s *TemplateService) Get(ctx context.Context, id string) (*models.ScheduleTemplate, error) {
	tpl, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule template not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule template")
	}
	return tpl, nil
}

// Create validates and inserts a new weekly template. The conflict check is a
// fast pre-check for caller feedback; the partial unique indexes catch
// check-then-write races on commit.
func (s *TemplateService) Create(ctx context.Context, req CreateTemplateRequest) (*models.ScheduleTemplate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule template payload")
	}

	day, err := models.NormalizeDay(req.DayOfWeek)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	start, err := models.NormalizeClock(req.StartTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	end, err := models.NormalizeClock(req.EndTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	if start >= end {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end time must be after start time")
	}

	if err := s.checkReferences(ctx, req); err != nil {
		return nil, err
	}

	slot := models.CandidateSlot{
		TrainerID:    req.TrainerID,
		DayOfWeek:    day,
		StartTime:    start,
		EndTime:      end,
		AcademicYear: req.AcademicYear,
	}
	if req.RoomID != nil {
		slot.RoomID = *req.RoomID
	}
	if err := s.conflicts.CheckTemplateSlot(ctx, slot, ""); err != nil {
		return nil, err
	}

	tpl := models.ScheduleTemplate{
		TrainingCourseID: req.TrainingCourseID,
		TrainerID:        req.TrainerID,
		RoomID:           req.RoomID,
		GroupID:          req.GroupID,
		DayOfWeek:        day,
		StartTime:        start,
		EndTime:          end,
		AcademicYear:     req.AcademicYear,
		Active:           true,
	}
	if err := s.repo.Create(ctx, &tpl); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status,
				fmt.Sprintf("slot already booked on %s at %s", day, start))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule template")
	}

	s.logger.Info("schedule template created",
		zap.String("template_id", tpl.ID),
		zap.String("trainer_id", tpl.TrainerID),
		zap.String("day", tpl.DayOfWeek),
		zap.String("academic_year", tpl.AcademicYear),
	)
	return &tpl, nil
}

// Deactivate retires a template, leaving generated instances untouched.
func (s *TemplateService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "schedule template not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule template")
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate schedule template")
	}
	return nil
}

// CheckConflicts runs the aggregated conflict check for a candidate slot.
func (s *TemplateService) CheckConflicts(ctx context.Context, req CheckConflictsRequest) (*ConflictCheckResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid conflict check payload")
	}
	if req.TrainerID == "" && req.RoomID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "trainer_id or room_id is required")
	}

	day, err := models.NormalizeDay(req.DayOfWeek)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	start, err := models.NormalizeClock(req.StartTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	end, err := models.NormalizeClock(req.EndTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	slot := models.CandidateSlot{
		TrainerID:    req.TrainerID,
		RoomID:       req.RoomID,
		DayOfWeek:    day,
		StartTime:    start,
		EndTime:      end,
		AcademicYear: req.AcademicYear,
	}
	conflicts, err := s.conflicts.AggregateTemplateSlot(ctx, slot, req.ExcludeID)
	if err != nil {
		return nil, err
	}
	result := &ConflictCheckResult{HasConflicts: len(conflicts) > 0, Conflicts: conflicts}
	if result.Conflicts == nil {
		result.Conflicts = []models.SlotConflict{}
	}
	return result, nil
}

// TrainerSchedule returns the active weekly templates of a trainer.
func (s *TemplateService) TrainerSchedule(ctx context.Context, trainerID, academicYear string) (*TrainerSchedule, error) {
	trainer, err := s.refs.FindTrainer(ctx, trainerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "trainer not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load trainer")
	}
	templates, err := s.repo.ListByTrainer(ctx, trainerID, academicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list trainer templates")
	}
	return &TrainerSchedule{Trainer: *trainer, Schedules: templates}, nil
}

// GroupSchedule returns the active weekly templates of a group.
func (s *TemplateService) GroupSchedule(ctx context.Context, groupID, academicYear string) (*GroupSchedule, error) {
	group, err := s.refs.FindGroup(ctx, groupID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
	}
	templates, err := s.repo.ListByGroup(ctx, groupID, academicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list group templates")
	}
	return &GroupSchedule{Group: *group, Schedules: templates}, nil
}

func (s *TemplateService) checkReferences(ctx context.Context, req CreateTemplateRequest) error {
	checks := []struct {
		name   string
		id     string
		lookup func(context.Context, string) (bool, error)
	}{
		{"training course", req.TrainingCourseID, s.refs.CourseExists},
		{"trainer", req.TrainerID, s.refs.TrainerExists},
	}
	if req.RoomID != nil && *req.RoomID != "" {
		checks = append(checks, struct {
			name   string
			id     string
			lookup func(context.Context, string) (bool, error)
		}{"room", *req.RoomID, s.refs.RoomExists})
	}
	if req.GroupID != nil && *req.GroupID != "" {
		checks = append(checks, struct {
			name   string
			id     string
			lookup func(context.Context, string) (bool, error)
		}{"group", *req.GroupID, s.refs.GroupExists})
	}

	for _, check := range checks {
		ok, err := check.lookup(ctx, check.id)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify references")
		}
		if !ok {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown %s %q", check.name, check.id))
		}
	}
	return nil
}
