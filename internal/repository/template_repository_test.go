package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entraide/vtn-api/internal/models"
)

func newTemplateRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func templateRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "training_course_id", "trainer_id", "room_id", "group_id", "day_of_week", "start_time", "end_time", "academic_year", "active", "created_at", "updated_at"})
}

func TestTemplateRepositoryList(t *testing.T) {
	db, mock, cleanup := newTemplateRepoMock(t)
	defer cleanup()
	repo := NewTemplateRepository(db)

	rows := templateRows().
		AddRow("st1", "c1", "tr1", "r1", "g1", "MONDAY", "09:00", "11:00", "2025-2026", true, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, training_course_id, trainer_id, room_id, group_id, day_of_week, start_time, end_time, academic_year, active, created_at, updated_at FROM schedule_templates WHERE 1=1 AND trainer_id = $1 ORDER BY day_of_week ASC, start_time ASC LIMIT 20 OFFSET 0")).
		WithArgs("tr1").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM schedule_templates WHERE 1=1 AND trainer_id = $1")).
		WithArgs("tr1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.TemplateFilter{TrainerID: "tr1"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "MONDAY", list[0].DayOfWeek)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTemplateRepositoryListRejectsUnknownSort(t *testing.T) {
	db, mock, cleanup := newTemplateRepoMock(t)
	defer cleanup()
	repo := NewTemplateRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY day_of_week ASC, start_time ASC LIMIT 20 OFFSET 0")).
		WillReturnRows(templateRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, _, err := repo.List(context.Background(), models.TemplateFilter{SortBy: "id; DROP TABLE"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTemplateRepositoryListActiveByYear(t *testing.T) {
	db, mock, cleanup := newTemplateRepoMock(t)
	defer cleanup()
	repo := NewTemplateRepository(db)

	rows := templateRows().
		AddRow("st1", "c1", "tr1", nil, nil, "MONDAY", "09:00", "11:00", "2025-2026", true, time.Now(), time.Now()).
		AddRow("st2", "c2", "tr2", nil, nil, "TUESDAY", "14:00", "16:00", "2025-2026", true, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("WHERE academic_year = $1 AND active = TRUE ORDER BY day_of_week ASC, start_time ASC")).
		WithArgs("2025-2026").
		WillReturnRows(rows)

	list, err := repo.ListActiveByYear(context.Background(), "2025-2026")
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Nil(t, list[0].RoomID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTemplateRepositoryListByTrainerScopesYear(t *testing.T) {
	db, mock, cleanup := newTemplateRepoMock(t)
	defer cleanup()
	repo := NewTemplateRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE trainer_id = $1 AND active = TRUE AND academic_year = $2 ORDER BY day_of_week ASC, start_time ASC")).
		WithArgs("tr1", "2025-2026").
		WillReturnRows(templateRows())

	_, err := repo.ListByTrainer(context.Background(), "tr1", "2025-2026")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTemplateRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newTemplateRepoMock(t)
	defer cleanup()
	repo := NewTemplateRepository(db)

	mock.ExpectExec("INSERT INTO schedule_templates").
		WillReturnResult(sqlmock.NewResult(1, 1))

	tpl := &models.ScheduleTemplate{
		TrainingCourseID: "c1",
		TrainerID:        "tr1",
		DayOfWeek:        "MONDAY",
		StartTime:        "09:00",
		EndTime:          "11:00",
		AcademicYear:     "2025-2026",
		Active:           true,
	}
	require.NoError(t, repo.Create(context.Background(), tpl))
	assert.NotEmpty(t, tpl.ID)
	assert.False(t, tpl.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTemplateRepositoryCreateSurfacesUniqueViolation(t *testing.T) {
	db, mock, cleanup := newTemplateRepoMock(t)
	defer cleanup()
	repo := NewTemplateRepository(db)

	mock.ExpectExec("INSERT INTO schedule_templates").
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &models.ScheduleTemplate{TrainerID: "tr1"})
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTemplateRepositoryDeactivate(t *testing.T) {
	db, mock, cleanup := newTemplateRepoMock(t)
	defer cleanup()
	repo := NewTemplateRepository(db)

	mock.ExpectExec("UPDATE schedule_templates SET active = FALSE").
		WithArgs("st1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Deactivate(context.Background(), "st1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pq.Error{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, IsUniqueViolation(nil))
}
