package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceRepositoryExists(t *testing.T) {
	db, mock, cleanup := newTemplateRepoMock(t)
	defer cleanup()
	repo := NewReferenceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM trainers WHERE id = $1 LIMIT 1")).
		WithArgs("tr1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM groups WHERE id = $1 LIMIT 1")).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	ok, err := repo.TrainerExists(context.Background(), "tr1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.GroupExists(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReferenceRepositoryFindTrainer(t *testing.T) {
	db, mock, cleanup := newTemplateRepoMock(t)
	defer cleanup()
	repo := NewReferenceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, full_name, email FROM trainers WHERE id = $1")).
		WithArgs("tr1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "email"}).
			AddRow("tr1", "Trainer One", "one@example.org"))

	trainer, err := repo.FindTrainer(context.Background(), "tr1")
	require.NoError(t, err)
	assert.Equal(t, "Trainer One", trainer.FullName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReferenceRepositoryFindGroup(t *testing.T) {
	db, mock, cleanup := newTemplateRepoMock(t)
	defer cleanup()
	repo := NewReferenceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, academic_year FROM groups WHERE id = $1")).
		WithArgs("g1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "academic_year"}).
			AddRow("g1", "Group One", "2025-2026"))

	group, err := repo.FindGroup(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, "Group One", group.Name)
	assert.Equal(t, "2025-2026", group.AcademicYear)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReferenceRepositoryFindRoom(t *testing.T) {
	db, mock, cleanup := newTemplateRepoMock(t)
	defer cleanup()
	repo := NewReferenceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, site, capacity FROM rooms WHERE id = $1")).
		WithArgs("r1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "site", "capacity"}).
			AddRow("r1", "Room 101", "Main", 24))

	room, err := repo.FindRoom(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "Room 101", room.Name)
	assert.Equal(t, 24, room.Capacity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReferenceRepositoryFindCourse(t *testing.T) {
	db, mock, cleanup := newTemplateRepoMock(t)
	defer cleanup()
	repo := NewReferenceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, code FROM training_courses WHERE id = $1")).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "code"}).
			AddRow("c1", "Welding Basics", "WLD-101"))

	course, err := repo.FindCourse(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "WLD-101", course.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
