package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/entraide/vtn-api/internal/models"
)

const instanceColumns = "id, template_id, specific_date, custom_start_time, custom_end_time, custom_trainer_id, custom_room_id, status, notes, created_at, updated_at"

const sessionViewSelect = `SELECT i.id, i.template_id, i.specific_date, i.custom_start_time, i.custom_end_time, i.custom_trainer_id, i.custom_room_id, i.status, i.notes, i.created_at, i.updated_at,
t.day_of_week AS template_day, t.start_time AS template_start_time, t.end_time AS template_end_time, t.trainer_id AS template_trainer_id, t.room_id AS template_room_id, t.group_id AS template_group_id, t.training_course_id, t.academic_year
FROM session_instances i
JOIN schedule_templates t ON t.id = i.template_id`

// InstanceRepository provides persistence for session instances.
type InstanceRepository struct {
	db *sqlx.DB
}

// NewInstanceRepository creates a new instance repository.
func NewInstanceRepository(db *sqlx.DB) *InstanceRepository {
	return &InstanceRepository{db: db}
}

// GetOrCreate inserts the instance unless one already exists for its
// (template, date) key. The unique constraint arbitrates concurrent
// generation runs; losing the race is reported as created=false, not an
// error.
func (r *InstanceRepository) GetOrCreate(ctx context.Context, instance *models.SessionInstance) (bool, error) {
	if instance.ID == "" {
		instance.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if instance.CreatedAt.IsZero() {
		instance.CreatedAt = now
	}
	instance.UpdatedAt = now

	const query = `INSERT INTO session_instances (id, template_id, specific_date, custom_start_time, custom_end_time, custom_trainer_id, custom_room_id, status, notes, created_at, updated_at)
VALUES (:id, :template_id, :specific_date, :custom_start_time, :custom_end_time, :custom_trainer_id, :custom_room_id, :status, :notes, :created_at, :updated_at)
ON CONFLICT (template_id, specific_date) DO NOTHING`
	result, err := r.db.NamedExecContext(ctx, query, instance)
	if err != nil {
		if IsUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("create session instance: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("create session instance: %w", err)
	}
	return affected > 0, nil
}

// FindByID loads an instance by id.
func (r *InstanceRepository) FindByID(ctx context.Context, id string) (*models.SessionInstance, error) {
	query := fmt.Sprintf("SELECT %s FROM session_instances WHERE id = $1", instanceColumns)
	var instance models.SessionInstance
	if err := r.db.GetContext(ctx, &instance, query, id); err != nil {
		return nil, err
	}
	return &instance, nil
}

// FindViewByID loads an instance joined with its template.
func (r *InstanceRepository) FindViewByID(ctx context.Context, id string) (*models.SessionView, error) {
	query := sessionViewSelect + " WHERE i.id = $1"
	var view models.SessionView
	if err := r.db.GetContext(ctx, &view, query, id); err != nil {
		return nil, err
	}
	return &view, nil
}

// List returns instances with optional filtering and pagination.
func (r *InstanceRepository) List(ctx context.Context, filter models.InstanceFilter) ([]models.SessionInstance, int, error) {
	base := "FROM session_instances WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.TemplateID != "" {
		conditions = append(conditions, fmt.Sprintf("template_id = $%d", len(args)+1))
		args = append(args, filter.TemplateID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("specific_date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("specific_date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY specific_date ASC LIMIT %d OFFSET %d", instanceColumns, base, size, offset)
	var instances []models.SessionInstance
	if err := r.db.SelectContext(ctx, &instances, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list session instances: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count session instances: %w", err)
	}

	return instances, total, nil
}

// ListForTrainer returns the scheduled and completed occurrences a trainer is
// effectively teaching within the inclusive date range, ordered by date and
// effective start time. Trainer overrides are honored on both sides: an
// occurrence handed to a substitute drops out, one handed to this trainer
// appears.
func (r *InstanceRepository) ListForTrainer(ctx context.Context, trainerID string, from, to time.Time) ([]models.SessionView, error) {
	query := sessionViewSelect + `
WHERE COALESCE(i.custom_trainer_id, t.trainer_id) = $1
  AND i.specific_date BETWEEN $2 AND $3
  AND i.status IN ('scheduled', 'completed')
ORDER BY i.specific_date ASC, COALESCE(i.custom_start_time, t.start_time) ASC`
	var views []models.SessionView
	if err := r.db.SelectContext(ctx, &views, query, trainerID, from, to); err != nil {
		return nil, fmt.Errorf("list trainer timetable: %w", err)
	}
	return views, nil
}

// ListForGroup returns the scheduled and completed occurrences of a group
// within the inclusive date range, ordered by date and effective start time.
func (r *InstanceRepository) ListForGroup(ctx context.Context, groupID string, from, to time.Time) ([]models.SessionView, error) {
	query := sessionViewSelect + `
WHERE t.group_id = $1
  AND i.specific_date BETWEEN $2 AND $3
  AND i.status IN ('scheduled', 'completed')
ORDER BY i.specific_date ASC, COALESCE(i.custom_start_time, t.start_time) ASC`
	var views []models.SessionView
	if err := r.db.SelectContext(ctx, &views, query, groupID, from, to); err != nil {
		return nil, fmt.Errorf("list group timetable: %w", err)
	}
	return views, nil
}

// ListForYearWindow returns every occurrence of an academic year inside the
// date window regardless of status, ordered by date and effective start time.
func (r *InstanceRepository) ListForYearWindow(ctx context.Context, academicYear string, from, to time.Time) ([]models.SessionView, error) {
	query := sessionViewSelect + `
WHERE t.academic_year = $1
  AND i.specific_date BETWEEN $2 AND $3
ORDER BY i.specific_date ASC, COALESCE(i.custom_start_time, t.start_time) ASC`
	var views []models.SessionView
	if err := r.db.SelectContext(ctx, &views, query, academicYear, from, to); err != nil {
		return nil, fmt.Errorf("list weekly summary: %w", err)
	}
	return views, nil
}

// ListScheduledForTrainerOn returns the scheduled occurrences a trainer is
// effectively teaching on a date, excluding the given instance id. Candidate
// set for instance-level conflict checks.
func (r *InstanceRepository) ListScheduledForTrainerOn(ctx context.Context, trainerID string, date time.Time, excludeID string) ([]models.SessionView, error) {
	query := sessionViewSelect + `
WHERE COALESCE(i.custom_trainer_id, t.trainer_id) = $1
  AND i.specific_date = $2
  AND i.status = 'scheduled'
  AND i.id <> $3`
	var views []models.SessionView
	if err := r.db.SelectContext(ctx, &views, query, trainerID, date, excludeID); err != nil {
		return nil, fmt.Errorf("list trainer sessions on date: %w", err)
	}
	return views, nil
}

// ListScheduledForRoomOn returns the scheduled occurrences effectively booked
// into a room on a date, excluding the given instance id.
func (r *InstanceRepository) ListScheduledForRoomOn(ctx context.Context, roomID string, date time.Time, excludeID string) ([]models.SessionView, error) {
	query := sessionViewSelect + `
WHERE COALESCE(i.custom_room_id, t.room_id) = $1
  AND i.specific_date = $2
  AND i.status = 'scheduled'
  AND i.id <> $3`
	var views []models.SessionView
	if err := r.db.SelectContext(ctx, &views, query, roomID, date, excludeID); err != nil {
		return nil, fmt.Errorf("list room sessions on date: %w", err)
	}
	return views, nil
}

// Update persists lifecycle and override changes on an instance.
func (r *InstanceRepository) Update(ctx context.Context, instance *models.SessionInstance) error {
	instance.UpdatedAt = time.Now().UTC()
	const query = `UPDATE session_instances SET specific_date = :specific_date, custom_start_time = :custom_start_time, custom_end_time = :custom_end_time, custom_trainer_id = :custom_trainer_id, custom_room_id = :custom_room_id, status = :status, notes = :notes, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, instance); err != nil {
		return fmt.Errorf("update session instance: %w", err)
	}
	return nil
}
