package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/entraide/vtn-api/internal/models"
	appErrors "github.com/entraide/vtn-api/pkg/errors"
)

type generatorTemplateRepository interface {
	ListActiveByYear(ctx context.Context, academicYear string) ([]models.ScheduleTemplate, error)
}

type generatorInstanceRepository interface {
	GetOrCreate(ctx context.Context, instance *models.SessionInstance) (bool, error)
}

type timetableInvalidator interface {
	InvalidateTimetables(ctx context.Context)
}

// GenerationFailure records a template whose instance could not be created.
type GenerationFailure struct {
	TemplateID string `json:"template_id"`
	Reason     string `json:"reason"`
}

// GenerationResult summarises a weekly generation run. Created holds only the
// instances materialised by this run; Skipped counts keys that already
// existed.
type GenerationResult struct {
	Created  []models.SessionInstance `json:"created"`
	Skipped  int                      `json:"skipped"`
	Failures []GenerationFailure      `json:"failures,omitempty"`
}

// GeneratorService expands active weekly templates into dated session
// instances. Generation is idempotent: the (template, date) key is
// get-or-create, so rerunning a week creates nothing new.
type GeneratorService struct {
	templates generatorTemplateRepository
	instances generatorInstanceRepository
	cache     timetableInvalidator
	logger    *zap.Logger
}

// NewGeneratorService instantiates GeneratorService.
func NewGeneratorService(templates generatorTemplateRepository, instances generatorInstanceRepository, cache timetableInvalidator, logger *zap.Logger) *GeneratorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeneratorService{templates: templates, instances: instances, cache: cache, logger: logger}
}

// GenerateForWeek materialises one instance per active template of the
// academic year, dated within the week starting at weekStart (a Monday).
// A failure on one template does not abort the others; failures are collected
// and the already-created instances stand.
func (s *GeneratorService) GenerateForWeek(ctx context.Context, weekStart time.Time, academicYear string) (*GenerationResult, error) {
	if weekStart.Weekday() != time.Monday {
		return nil, appErrors.Clone(appErrors.ErrValidation, "week_start must be a Monday")
	}
	if academicYear == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "academic_year is required")
	}

	templates, err := s.templates.ListActiveByYear(ctx, academicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active templates")
	}

	result := &GenerationResult{Created: []models.SessionInstance{}}
	for _, tpl := range templates {
		offset, err := models.DayOffset(tpl.DayOfWeek)
		if err != nil {
			result.Failures = append(result.Failures, GenerationFailure{TemplateID: tpl.ID, Reason: err.Error()})
			continue
		}
		instance := models.SessionInstance{
			TemplateID:   tpl.ID,
			SpecificDate: weekStart.AddDate(0, 0, offset),
			Status:       models.SessionStatusScheduled,
		}
		created, err := s.instances.GetOrCreate(ctx, &instance)
		if err != nil {
			s.logger.Warn("instance generation failed",
				zap.String("template_id", tpl.ID),
				zap.Time("date", instance.SpecificDate),
				zap.Error(err),
			)
			result.Failures = append(result.Failures, GenerationFailure{TemplateID: tpl.ID, Reason: err.Error()})
			continue
		}
		if created {
			result.Created = append(result.Created, instance)
		} else {
			result.Skipped++
		}
	}

	if len(result.Created) > 0 && s.cache != nil {
		s.cache.InvalidateTimetables(ctx)
	}

	s.logger.Info("weekly generation finished",
		zap.String("academic_year", academicYear),
		zap.Time("week_start", weekStart),
		zap.Int("created", len(result.Created)),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", len(result.Failures)),
	)
	return result, nil
}
