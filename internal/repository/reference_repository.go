package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/entraide/vtn-api/internal/models"
)

// ReferenceRepository reads the identity tables owned by other services
// (trainers, rooms, groups, training courses). It never writes them.
type ReferenceRepository struct {
	db *sqlx.DB
}

// NewReferenceRepository creates a new reference repository.
func NewReferenceRepository(db *sqlx.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

func (r *ReferenceRepository) exists(ctx context.Context, query, id string) (bool, error) {
	var one int
	if err := r.db.GetContext(ctx, &one, query, id); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("reference lookup: %w", err)
	}
	return true, nil
}

// TrainerExists reports whether the trainer id is known.
func (r *ReferenceRepository) TrainerExists(ctx context.Context, id string) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM trainers WHERE id = $1 LIMIT 1`, id)
}

// RoomExists reports whether the room id is known.
func (r *ReferenceRepository) RoomExists(ctx context.Context, id string) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM rooms WHERE id = $1 LIMIT 1`, id)
}

// GroupExists reports whether the group id is known.
func (r *ReferenceRepository) GroupExists(ctx context.Context, id string) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM groups WHERE id = $1 LIMIT 1`, id)
}

// CourseExists reports whether the training course id is known.
func (r *ReferenceRepository) CourseExists(ctx context.Context, id string) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM training_courses WHERE id = $1 LIMIT 1`, id)
}

// FindTrainer loads the lightweight trainer view.
func (r *ReferenceRepository) FindTrainer(ctx context.Context, id string) (*models.Trainer, error) {
	const query = `SELECT id, full_name, email FROM trainers WHERE id = $1`
	var trainer models.Trainer
	if err := r.db.GetContext(ctx, &trainer, query, id); err != nil {
		return nil, err
	}
	return &trainer, nil
}

// FindGroup loads the lightweight group view.
func (r *ReferenceRepository) FindGroup(ctx context.Context, id string) (*models.Group, error) {
	const query = `SELECT id, name, academic_year FROM groups WHERE id = $1`
	var group models.Group
	if err := r.db.GetContext(ctx, &group, query, id); err != nil {
		return nil, err
	}
	return &group, nil
}

// FindRoom loads the lightweight room view.
func (r *ReferenceRepository) FindRoom(ctx context.Context, id string) (*models.Room, error) {
	const query = `SELECT id, name, site, capacity FROM rooms WHERE id = $1`
	var room models.Room
	if err := r.db.GetContext(ctx, &room, query, id); err != nil {
		return nil, err
	}
	return &room, nil
}

// FindCourse loads the lightweight training course view.
func (r *ReferenceRepository) FindCourse(ctx context.Context, id string) (*models.TrainingCourse, error) {
	const query = `SELECT id, title, code FROM training_courses WHERE id = $1`
	var course models.TrainingCourse
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}
