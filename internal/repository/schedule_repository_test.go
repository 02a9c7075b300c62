package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-core/internal/models"
)

type recordingObserver struct {
	labels []string
}

func (o *recordingObserver) ObserveDBQuery(label string, _ time.Duration) {
	o.labels = append(o.labels, label)
}

func newEntry(classroom string, day models.Day, period int, subject, teacherID string) *models.ScheduleEntry {
	return &models.ScheduleEntry{
		Classroom:   classroom,
		DayOfWeek:   day,
		Period:      period,
		StartTime:   "08:30",
		EndTime:     "09:20",
		SubjectName: subject,
		TeacherID:   teacherID,
	}
}

func TestScheduleRepositoryCreateIfFree(t *testing.T) {
	db := newSQLiteRepoDB(t)
	seedTeacher(t, db, "T001", "Mr.", "Somchai", "Jaidee", true)
	observer := &recordingObserver{}
	repo := NewScheduleRepository(db, observer)
	ctx := context.Background()

	first := newEntry("M.1/1", models.Monday, 1, "Math", "T001")
	conflict, err := repo.CreateIfFree(ctx, first)
	require.NoError(t, err)
	assert.Nil(t, conflict)
	assert.NotZero(t, first.ID)

	second := newEntry("M.2/1", models.Monday, 1, "Science", "T001")
	conflict, err = repo.CreateIfFree(ctx, second)
	require.NoError(t, err)
	require.NotNil(t, conflict)
	assert.Equal(t, first.ID, conflict.ScheduleID)
	assert.Equal(t, "M.1/1", conflict.Classroom)
	assert.Equal(t, "Mr.Somchai Jaidee", conflict.TeacherName)
	assert.Zero(t, second.ID)

	views, err := repo.ListByTeacher(ctx, "T001")
	require.NoError(t, err)
	assert.Len(t, views, 1)
	assert.Contains(t, observer.labels, "schedule.create")
}

func TestScheduleRepositoryUpdateIfFreeExcludesSelf(t *testing.T) {
	db := newSQLiteRepoDB(t)
	seedTeacher(t, db, "T001", "Mr.", "Somchai", "Jaidee", true)
	repo := NewScheduleRepository(db, nil)
	ctx := context.Background()

	entry := newEntry("M.1/1", models.Tuesday, 3, "Math", "T001")
	_, err := repo.CreateIfFree(ctx, entry)
	require.NoError(t, err)

	entry.SubjectName = "Advanced Math"
	conflict, err := repo.UpdateIfFree(ctx, entry)
	require.NoError(t, err)
	assert.Nil(t, conflict)

	stored, err := repo.FindEntry(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "Advanced Math", stored.SubjectName)
}

func TestScheduleRepositoryUpdateIfFreeConflict(t *testing.T) {
	db := newSQLiteRepoDB(t)
	seedTeacher(t, db, "T001", "Mr.", "Somchai", "Jaidee", true)
	repo := NewScheduleRepository(db, nil)
	ctx := context.Background()

	a := newEntry("M.1/1", models.Monday, 1, "Math", "T001")
	b := newEntry("M.1/2", models.Monday, 2, "Math", "T001")
	_, err := repo.CreateIfFree(ctx, a)
	require.NoError(t, err)
	_, err = repo.CreateIfFree(ctx, b)
	require.NoError(t, err)

	moved := *b
	moved.Period = 1
	conflict, err := repo.UpdateIfFree(ctx, &moved)
	require.NoError(t, err)
	require.NotNil(t, conflict)
	assert.Equal(t, a.ID, conflict.ScheduleID)

	stored, err := repo.FindEntry(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Period)
}

func TestScheduleRepositoryUpdateIfFreeMissingIsNoop(t *testing.T) {
	db := newSQLiteRepoDB(t)
	seedTeacher(t, db, "T001", "Mr.", "Somchai", "Jaidee", true)
	repo := NewScheduleRepository(db, nil)
	ctx := context.Background()

	entry := newEntry("M.1/1", models.Monday, 1, "Math", "T001")
	entry.ID = 99
	conflict, err := repo.UpdateIfFree(ctx, entry)
	require.NoError(t, err)
	assert.Nil(t, conflict)

	_, err = repo.FindEntry(ctx, 99)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	views, err := repo.List(ctx, models.ScheduleFilter{})
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestScheduleRepositoryDeleteIsIdempotent(t *testing.T) {
	db := newSQLiteRepoDB(t)
	seedTeacher(t, db, "T001", "Mr.", "Somchai", "Jaidee", true)
	repo := NewScheduleRepository(db, nil)
	ctx := context.Background()

	entry := newEntry("M.1/1", models.Friday, 4, "Art", "T001")
	_, err := repo.CreateIfFree(ctx, entry)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, entry.ID))
	require.NoError(t, repo.Delete(ctx, entry.ID))

	_, err = repo.FindEntry(ctx, entry.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	conflict, err := repo.CreateIfFree(ctx, newEntry("M.3/1", models.Friday, 4, "Art", "T001"))
	require.NoError(t, err)
	assert.Nil(t, conflict)
}

func TestScheduleRepositoryListFilters(t *testing.T) {
	db := newSQLiteRepoDB(t)
	seedTeacher(t, db, "T001", "Mr.", "Somchai", "Jaidee", true)
	seedTeacher(t, db, "T002", "Ms.", "Anong", "Dee", true)
	repo := NewScheduleRepository(db, nil)
	ctx := context.Background()

	for _, e := range []*models.ScheduleEntry{
		newEntry("M.1/1", models.Wednesday, 2, "Math", "T001"),
		newEntry("M.1/1", models.Monday, 5, "Thai", "T002"),
		newEntry("M.1/2", models.Monday, 1, "Math", "T001"),
	} {
		_, err := repo.CreateIfFree(ctx, e)
		require.NoError(t, err)
	}

	views, err := repo.ListByClassroom(ctx, "M.1/1")
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "Math", views[0].SubjectName)
	assert.Equal(t, "Ms.Anong Dee", views[1].TeacherName)

	views, err = repo.List(ctx, models.ScheduleFilter{DayOfWeek: models.Monday})
	require.NoError(t, err)
	assert.Len(t, views, 2)

	views, err = repo.List(ctx, models.ScheduleFilter{})
	require.NoError(t, err)
	assert.Len(t, views, 3)

	views, err = repo.ListByClassroom(ctx, "M.6/9")
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestScheduleRepositoryWorkload(t *testing.T) {
	db := newSQLiteRepoDB(t)
	seedTeacher(t, db, "T001", "Mr.", "Somchai", "Jaidee", true)
	seedTeacher(t, db, "T002", "Ms.", "Anong", "Dee", true)
	seedTeacher(t, db, "T003", "Mr.", "Retired", "Teacher", false)
	repo := NewScheduleRepository(db, nil)
	ctx := context.Background()

	_, err := repo.CreateIfFree(ctx, newEntry("M.1/1", models.Monday, 1, "Math", "T001"))
	require.NoError(t, err)
	_, err = repo.CreateIfFree(ctx, newEntry("M.1/1", models.Monday, 2, "Math", "T001"))
	require.NoError(t, err)

	rows, err := repo.Workload(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	counts := map[string]int{}
	names := map[string]string{}
	for _, row := range rows {
		counts[row.TeacherID] = row.PeriodsPerWeek
		names[row.TeacherID] = row.DisplayName
	}
	assert.Equal(t, 2, counts["T001"])
	assert.Equal(t, 0, counts["T002"])
	assert.Equal(t, "Ms.Anong Dee", names["T002"])
}

func TestScheduleRepositoryCreateRollsBackOnInsertFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db, nil)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM schedule s")).
		WithArgs("T001", "Monday", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("INSERT INTO schedule").
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	conflict, err := repo.CreateIfFree(context.Background(), newEntry("M.1/1", models.Monday, 1, "Math", "T001"))
	require.Error(t, err)
	assert.Nil(t, conflict)
	assert.Contains(t, err.Error(), "disk I/O error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryConflictQueryExcludesID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE s.teacher_id = ? AND s.day_of_week = ? AND s.period_no = ? AND s.id <> ? ORDER BY s.id LIMIT 1")).
		WithArgs("T001", "Monday", 1, int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "class_room", "teacher_id", "day_of_week", "period_no", "title", "first_name", "last_name"}).
			AddRow(3, "M.1/1", "T001", "Monday", 1, "Mr.", "Somchai", "Jaidee"))

	conflict, err := repo.FindTeacherConflict(context.Background(), "T001", models.Monday, 1, 7)
	require.NoError(t, err)
	require.NotNil(t, conflict)
	assert.Equal(t, int64(3), conflict.ScheduleID)
	assert.Equal(t, "Teacher Mr.Somchai Jaidee already has a class on Monday period 1 in room/class M.1/1; please choose another period.", conflict.Message())
	assert.NoError(t, mock.ExpectationsWereMet())
}
