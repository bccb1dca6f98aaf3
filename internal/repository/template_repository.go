package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/entraide/vtn-api/internal/models"
)

const templateColumns = "id, training_course_id, trainer_id, room_id, group_id, day_of_week, start_time, end_time, academic_year, active, created_at, updated_at"

// IsUniqueViolation reports whether err is a Postgres unique constraint
// violation. The partial unique indexes on schedule_templates and the
// (template_id, specific_date) key on session_instances are the authoritative
// double-booking guard; callers translate this into a conflict.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// TemplateRepository provides persistence for schedule templates.
type TemplateRepository struct {
	db *sqlx.DB
}

// NewTemplateRepository creates a new template repository.
func NewTemplateRepository(db *sqlx.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// List returns templates with optional filtering and pagination.
func (r *TemplateRepository) List(ctx context.Context, filter models.TemplateFilter) ([]models.ScheduleTemplate, int, error) {
	base := "FROM schedule_templates WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.TrainerID != "" {
		conditions = append(conditions, fmt.Sprintf("trainer_id = $%d", len(args)+1))
		args = append(args, filter.TrainerID)
	}
	if filter.GroupID != "" {
		conditions = append(conditions, fmt.Sprintf("group_id = $%d", len(args)+1))
		args = append(args, filter.GroupID)
	}
	if filter.RoomID != "" {
		conditions = append(conditions, fmt.Sprintf("room_id = $%d", len(args)+1))
		args = append(args, filter.RoomID)
	}
	if filter.TrainingCourseID != "" {
		conditions = append(conditions, fmt.Sprintf("training_course_id = $%d", len(args)+1))
		args = append(args, filter.TrainingCourseID)
	}
	if filter.AcademicYear != "" {
		conditions = append(conditions, fmt.Sprintf("academic_year = $%d", len(args)+1))
		args = append(args, filter.AcademicYear)
	}
	if filter.DayOfWeek != "" {
		conditions = append(conditions, fmt.Sprintf("day_of_week = $%d", len(args)+1))
		args = append(args, filter.DayOfWeek)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "day_of_week"
	}
	allowedSorts := map[string]bool{
		"day_of_week":   true,
		"start_time":    true,
		"academic_year": true,
		"created_at":    true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "day_of_week"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s, start_time ASC LIMIT %d OFFSET %d", templateColumns, base, sortBy, order, size, offset)
	var templates []models.ScheduleTemplate
	if err := r.db.SelectContext(ctx, &templates, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list schedule templates: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count schedule templates: %w", err)
	}

	return templates, total, nil
}

// FindByID loads a template by id.
func (r *TemplateRepository) FindByID(ctx context.Context, id string) (*models.ScheduleTemplate, error) {
	query := fmt.Sprintf("SELECT %s FROM schedule_templates WHERE id = $1", templateColumns)
	var tpl models.ScheduleTemplate
	if err := r.db.GetContext(ctx, &tpl, query, id); err != nil {
		return nil, err
	}
	return &tpl, nil
}

// ListActiveByYear returns every active template for an academic year, the
// input set of the weekly instance generator.
func (r *TemplateRepository) ListActiveByYear(ctx context.Context, academicYear string) ([]models.ScheduleTemplate, error) {
	query := fmt.Sprintf("SELECT %s FROM schedule_templates WHERE academic_year = $1 AND active = TRUE ORDER BY day_of_week ASC, start_time ASC", templateColumns)
	var templates []models.ScheduleTemplate
	if err := r.db.SelectContext(ctx, &templates, query, academicYear); err != nil {
		return nil, fmt.Errorf("list active templates: %w", err)
	}
	return templates, nil
}

// ListActiveByDay returns active same-year templates sharing a day of week,
// the candidate set for template-level conflict checks.
func (r *TemplateRepository) ListActiveByDay(ctx context.Context, academicYear, dayOfWeek string) ([]models.ScheduleTemplate, error) {
	query := fmt.Sprintf("SELECT %s FROM schedule_templates WHERE academic_year = $1 AND day_of_week = $2 AND active = TRUE", templateColumns)
	var templates []models.ScheduleTemplate
	if err := r.db.SelectContext(ctx, &templates, query, academicYear, dayOfWeek); err != nil {
		return nil, fmt.Errorf("list templates by day: %w", err)
	}
	return templates, nil
}

// ListByTrainer returns active templates assigned to a trainer, optionally
// scoped to an academic year.
func (r *TemplateRepository) ListByTrainer(ctx context.Context, trainerID, academicYear string) ([]models.ScheduleTemplate, error) {
	query := fmt.Sprintf("SELECT %s FROM schedule_templates WHERE trainer_id = $1 AND active = TRUE", templateColumns)
	args := []interface{}{trainerID}
	if academicYear != "" {
		query += " AND academic_year = $2"
		args = append(args, academicYear)
	}
	query += " ORDER BY day_of_week ASC, start_time ASC"
	var templates []models.ScheduleTemplate
	if err := r.db.SelectContext(ctx, &templates, query, args...); err != nil {
		return nil, fmt.Errorf("list templates by trainer: %w", err)
	}
	return templates, nil
}

// ListByGroup returns active templates assigned to a group, optionally scoped
// to an academic year.
func (r *TemplateRepository) ListByGroup(ctx context.Context, groupID, academicYear string) ([]models.ScheduleTemplate, error) {
	query := fmt.Sprintf("SELECT %s FROM schedule_templates WHERE group_id = $1 AND active = TRUE", templateColumns)
	args := []interface{}{groupID}
	if academicYear != "" {
		query += " AND academic_year = $2"
		args = append(args, academicYear)
	}
	query += " ORDER BY day_of_week ASC, start_time ASC"
	var templates []models.ScheduleTemplate
	if err := r.db.SelectContext(ctx, &templates, query, args...); err != nil {
		return nil, fmt.Errorf("list templates by group: %w", err)
	}
	return templates, nil
}

// Create stores a new template record.
func (r *TemplateRepository) Create(ctx context.Context, tpl *models.ScheduleTemplate) error {
	if tpl.ID == "" {
		tpl.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if tpl.CreatedAt.IsZero() {
		tpl.CreatedAt = now
	}
	tpl.UpdatedAt = now

	const query = `INSERT INTO schedule_templates (id, training_course_id, trainer_id, room_id, group_id, day_of_week, start_time, end_time, academic_year, active, created_at, updated_at) VALUES (:id, :training_course_id, :trainer_id, :room_id, :group_id, :day_of_week, :start_time, :end_time, :academic_year, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, tpl); err != nil {
		if IsUniqueViolation(err) {
			return err
		}
		return fmt.Errorf("create schedule template: %w", err)
	}
	return nil
}

// Deactivate retires a template without touching already-generated instances.
func (r *TemplateRepository) Deactivate(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE schedule_templates SET active = FALSE, updated_at = $2 WHERE id = $1`, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate schedule template: %w", err)
	}
	return nil
}
