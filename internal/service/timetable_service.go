package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/entraide/vtn-api/internal/models"
	"github.com/entraide/vtn-api/internal/repository"
	"github.com/entraide/vtn-api/pkg/config"
	appErrors "github.com/entraide/vtn-api/pkg/errors"
	"github.com/entraide/vtn-api/pkg/export"
)

type timetableInstanceRepository interface {
	ListForTrainer(ctx context.Context, trainerID string, from, to time.Time) ([]models.SessionView, error)
	ListForGroup(ctx context.Context, groupID string, from, to time.Time) ([]models.SessionView, error)
	ListForYearWindow(ctx context.Context, academicYear string, from, to time.Time) ([]models.SessionView, error)
}

type timetableReferenceReader interface {
	FindTrainer(ctx context.Context, id string) (*models.Trainer, error)
	FindGroup(ctx context.Context, id string) (*models.Group, error)
	FindRoom(ctx context.Context, id string) (*models.Room, error)
	FindCourse(ctx context.Context, id string) (*models.TrainingCourse, error)
}

type timetableCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Period is the inclusive date window of a timetable query.
type Period struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// TrainerTimetable lists what a trainer is doing over a date window.
type TrainerTimetable struct {
	Trainer  models.Trainer           `json:"trainer"`
	Period   Period                   `json:"period"`
	Sessions []models.ResolvedSession `json:"sessions"`
}

// GroupTimetable lists what a group is doing over a date window.
type GroupTimetable struct {
	Group    models.Group             `json:"group"`
	Period   Period                   `json:"period"`
	Sessions []models.ResolvedSession `json:"sessions"`
}

// WeeklySummary lists every occurrence of an academic year in one week.
type WeeklySummary struct {
	AcademicYear string                   `json:"academic_year"`
	WeekStart    string                   `json:"week_start"`
	Sessions     []models.ResolvedSession `json:"sessions"`
}

// TimetableService answers "what is X doing between A and B". Queries are
// deterministic reads ordered by (date, effective start time); results are
// cached in Redis and invalidated by the write paths.
type TimetableService struct {
	instances timetableInstanceRepository
	refs      timetableReferenceReader
	cache     timetableCache
	cfg       config.TimetableConfig
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	logger    *zap.Logger
}

// NewTimetableService instantiates TimetableService.
func NewTimetableService(instances timetableInstanceRepository, refs timetableReferenceReader, cache timetableCache, cfg config.TimetableConfig, logger *zap.Logger) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{
		instances: instances,
		refs:      refs,
		cache:     cache,
		cfg:       cfg,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		logger:    logger,
	}
}

// TrainerTimetable returns the scheduled and completed occurrences a trainer
// is effectively teaching within [from, to].
func (s *TimetableService) TrainerTimetable(ctx context.Context, trainerID string, from, to time.Time) (*TrainerTimetable, error) {
	if to.Before(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must not precede start_date")
	}
	trainer, err := s.refs.FindTrainer(ctx, trainerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "trainer not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load trainer")
	}

	key := repository.TimetableKey("trainer", trainerID, from, to)
	var cached TrainerTimetable
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	views, err := s.instances.ListForTrainer(ctx, trainerID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load trainer timetable")
	}

	timetable := &TrainerTimetable{
		Trainer:  *trainer,
		Period:   Period{StartDate: from.Format("2006-01-02"), EndDate: to.Format("2006-01-02")},
		Sessions: resolveAll(views),
	}
	s.cacheSet(ctx, key, timetable)
	return timetable, nil
}

// GroupTimetable returns the scheduled and completed occurrences of a group
// within [from, to].
func (s *TimetableService) GroupTimetable(ctx context.Context, groupID string, from, to time.Time) (*GroupTimetable, error) {
	if to.Before(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must not precede start_date")
	}
	group, err := s.refs.FindGroup(ctx, groupID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
	}

	key := repository.TimetableKey("group", groupID, from, to)
	var cached GroupTimetable
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	views, err := s.instances.ListForGroup(ctx, groupID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group timetable")
	}

	timetable := &GroupTimetable{
		Group:    *group,
		Period:   Period{StartDate: from.Format("2006-01-02"), EndDate: to.Format("2006-01-02")},
		Sessions: resolveAll(views),
	}
	s.cacheSet(ctx, key, timetable)
	return timetable, nil
}

// WeekSummary returns every occurrence of the academic year in the 7-day
// window starting at weekStart, regardless of status.
func (s *TimetableService) WeekSummary(ctx context.Context, academicYear string, weekStart time.Time) (*WeeklySummary, error) {
	if academicYear == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "academic_year is required")
	}

	key := repository.SummaryKey(academicYear, weekStart)
	var cached WeeklySummary
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	weekEnd := weekStart.AddDate(0, 0, 6)
	views, err := s.instances.ListForYearWindow(ctx, academicYear, weekStart, weekEnd)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weekly summary")
	}

	summary := &WeeklySummary{
		AcademicYear: academicYear,
		WeekStart:    weekStart.Format("2006-01-02"),
		Sessions:     resolveAll(views),
	}
	s.cacheSet(ctx, key, summary)
	return summary, nil
}

// ExportWeekSummary renders the weekly summary as CSV or PDF for download.
func (s *TimetableService) ExportWeekSummary(ctx context.Context, academicYear string, weekStart time.Time, format string) ([]byte, string, string, error) {
	summary, err := s.WeekSummary(ctx, academicYear, weekStart)
	if err != nil {
		return nil, "", "", err
	}

	rows := summary.Sessions
	if s.cfg.ExportMaxRows > 0 && len(rows) > s.cfg.ExportMaxRows {
		rows = rows[:s.cfg.ExportMaxRows]
	}

	dataset := export.Dataset{
		Headers: []string{"Date", "Day", "Start", "End", "Trainer", "Room", "Course", "Group", "Status"},
	}
	roomNames := make(map[string]string)
	courseTitles := make(map[string]string)
	for _, session := range rows {
		room := ""
		if session.EffectiveRoom != nil {
			room = s.roomName(ctx, roomNames, *session.EffectiveRoom)
		}
		group := ""
		if session.TemplateGroupID != nil {
			group = *session.TemplateGroupID
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Date":    session.SpecificDate.Format("2006-01-02"),
			"Day":     session.TemplateDay,
			"Start":   session.EffectiveStart,
			"End":     session.EffectiveEnd,
			"Trainer": session.EffectiveTrainer,
			"Room":    room,
			"Course":  s.courseTitle(ctx, courseTitles, session.TrainingCourseID),
			"Group":   group,
			"Status":  string(session.Status),
		})
	}

	filename := fmt.Sprintf("weekly-summary-%s-%s", academicYear, summary.WeekStart)
	switch strings.ToLower(format) {
	case "csv":
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return payload, "text/csv", filename + ".csv", nil
	case "pdf":
		subtitle := fmt.Sprintf("Academic year %s, week of %s", academicYear, summary.WeekStart)
		payload, err := s.pdf.Render(dataset, "Weekly schedule", subtitle)
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return payload, "application/pdf", filename + ".pdf", nil
	default:
		return nil, "", "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

// roomName resolves a room id to its display name, falling back to the raw
// id when the lookup fails so an export never breaks on a stale reference.
func (s *TimetableService) roomName(ctx context.Context, seen map[string]string, id string) string {
	if name, ok := seen[id]; ok {
		return name
	}
	name := id
	if room, err := s.refs.FindRoom(ctx, id); err == nil {
		name = room.Name
	}
	seen[id] = name
	return name
}

// courseTitle resolves a course id to its title with the same fallback.
func (s *TimetableService) courseTitle(ctx context.Context, seen map[string]string, id string) string {
	if title, ok := seen[id]; ok {
		return title
	}
	title := id
	if course, err := s.refs.FindCourse(ctx, id); err == nil {
		title = course.Title
	}
	seen[id] = title
	return title
}

func (s *TimetableService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil || s.cfg.CacheTTL <= 0 {
		return false
	}
	err := s.cache.Get(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("timetable cache read failed", zap.String("key", key), zap.Error(err))
	}
	return false
}

func (s *TimetableService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil || s.cfg.CacheTTL <= 0 {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("timetable cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func resolveAll(views []models.SessionView) []models.ResolvedSession {
	sessions := make([]models.ResolvedSession, 0, len(views))
	for _, view := range views {
		sessions = append(sessions, view.Resolve())
	}
	return sessions
}
