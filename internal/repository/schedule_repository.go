package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-core/internal/models"
	"github.com/noah-isme/school-core/pkg/database"
)

const scheduleViewSelect = `SELECT s.id, s.class_room, s.day_of_week, s.period_no,
	COALESCE(s.start_time, '') AS start_time, COALESCE(s.end_time, '') AS end_time,
	s.subject_name, s.teacher_id, s.room_no, s.created_at, t.title, t.first_name, t.last_name
	FROM schedule s
	JOIN teachers t ON s.teacher_id = t.teacher_id`

// QueryObserver receives query timings.
type QueryObserver interface {
	ObserveDBQuery(label string, duration time.Duration)
}

// ScheduleRepository provides persistence for schedule entries.
type ScheduleRepository struct {
	db       *sqlx.DB
	observer QueryObserver
}

// NewScheduleRepository creates a new schedule repository. observer may be nil.
func NewScheduleRepository(db *sqlx.DB, observer QueryObserver) *ScheduleRepository {
	return &ScheduleRepository{db: db, observer: observer}
}

func (r *ScheduleRepository) timed(label string) func() {
	if r.observer == nil {
		return func() {}
	}
	start := time.Now()
	return func() { r.observer.ObserveDBQuery(label, time.Since(start)) }
}

// FindTeacherConflict returns the entry already holding teacherID's (day, period) slot,
// ignoring excludeID when it is non-zero. It returns nil when the slot is free.
func (r *ScheduleRepository) FindTeacherConflict(ctx context.Context, teacherID string, day models.Day, period int, excludeID int64) (*models.ConflictInfo, error) {
	defer r.timed("schedule.find_conflict")()
	return findTeacherConflict(ctx, r.db, teacherID, day, period, excludeID)
}

func findTeacherConflict(ctx context.Context, q sqlx.ExtContext, teacherID string, day models.Day, period int, excludeID int64) (*models.ConflictInfo, error) {
	query := `SELECT s.id, s.class_room, s.teacher_id, s.day_of_week, s.period_no, t.title, t.first_name, t.last_name
		FROM schedule s
		JOIN teachers t ON s.teacher_id = t.teacher_id
		WHERE s.teacher_id = ? AND s.day_of_week = ? AND s.period_no = ?`
	args := []interface{}{teacherID, string(day), period}
	if excludeID != 0 {
		query += " AND s.id <> ?"
		args = append(args, excludeID)
	}
	query += " ORDER BY s.id LIMIT 1"

	var info models.ConflictInfo
	if err := sqlx.GetContext(ctx, q, &info, q.Rebind(query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find teacher conflict: %w", err)
	}
	info.TeacherName = models.DisplayName(info.Title, info.FirstName, info.LastName)
	return &info, nil
}

// CreateIfFree inserts entry unless its teacher slot is taken. The check and the insert share
// a transaction; a uniqueness violation raised by a concurrent writer is resolved into the
// conflicting entry. A non-nil ConflictInfo means nothing was written.
func (r *ScheduleRepository) CreateIfFree(ctx context.Context, entry *models.ScheduleEntry) (*models.ConflictInfo, error) {
	defer r.timed("schedule.create")()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	var conflict *models.ConflictInfo
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		found, err := findTeacherConflict(ctx, tx, entry.TeacherID, entry.DayOfWeek, entry.Period, 0)
		if err != nil {
			return err
		}
		if found != nil {
			conflict = found
			return nil
		}

		query := tx.Rebind(`INSERT INTO schedule (class_room, day_of_week, period_no, start_time, end_time, subject_name, teacher_id, room_no, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)
		row := tx.QueryRowxContext(ctx, query,
			entry.Classroom, string(entry.DayOfWeek), entry.Period, entry.StartTime, entry.EndTime,
			entry.SubjectName, entry.TeacherID, entry.RoomNo, entry.CreatedAt)
		if err := row.Scan(&entry.ID); err != nil {
			return fmt.Errorf("create schedule: %w", err)
		}
		return nil
	})
	if err != nil {
		return r.resolveUniqueViolation(ctx, err, entry, 0)
	}
	return conflict, nil
}

// UpdateIfFree overwrites the entry with entry.ID unless another entry holds the slot.
// Updating an id that does not exist writes nothing and is not an error.
func (r *ScheduleRepository) UpdateIfFree(ctx context.Context, entry *models.ScheduleEntry) (*models.ConflictInfo, error) {
	defer r.timed("schedule.update")()

	var conflict *models.ConflictInfo
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		found, err := findTeacherConflict(ctx, tx, entry.TeacherID, entry.DayOfWeek, entry.Period, entry.ID)
		if err != nil {
			return err
		}
		if found != nil {
			conflict = found
			return nil
		}

		query := tx.Rebind(`UPDATE schedule SET class_room = ?, day_of_week = ?, period_no = ?, start_time = ?, end_time = ?,
			subject_name = ?, teacher_id = ?, room_no = ? WHERE id = ?`)
		if _, err := tx.ExecContext(ctx, query,
			entry.Classroom, string(entry.DayOfWeek), entry.Period, entry.StartTime, entry.EndTime,
			entry.SubjectName, entry.TeacherID, entry.RoomNo, entry.ID); err != nil {
			return fmt.Errorf("update schedule: %w", err)
		}
		return nil
	})
	if err != nil {
		return r.resolveUniqueViolation(ctx, err, entry, entry.ID)
	}
	return conflict, nil
}

func (r *ScheduleRepository) resolveUniqueViolation(ctx context.Context, err error, entry *models.ScheduleEntry, excludeID int64) (*models.ConflictInfo, error) {
	if !database.IsUniqueViolation(err) {
		return nil, err
	}
	conflict, findErr := findTeacherConflict(ctx, r.db, entry.TeacherID, entry.DayOfWeek, entry.Period, excludeID)
	if findErr != nil {
		return nil, findErr
	}
	if conflict == nil {
		return nil, err
	}
	return conflict, nil
}

// FindEntry loads a schedule entry by id. It returns sql.ErrNoRows when the id is unknown.
func (r *ScheduleRepository) FindEntry(ctx context.Context, id int64) (*models.ScheduleEntry, error) {
	query := r.db.Rebind(`SELECT id, class_room, day_of_week, period_no, COALESCE(start_time, '') AS start_time, COALESCE(end_time, '') AS end_time,
		subject_name, teacher_id, room_no, created_at FROM schedule WHERE id = ?`)
	var entry models.ScheduleEntry
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Delete removes a schedule entry. Missing ids are not an error.
func (r *ScheduleRepository) Delete(ctx context.Context, id int64) error {
	defer r.timed("schedule.delete")()
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM schedule WHERE id = ?`), id); err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	return nil
}

// ListByClassroom returns a classroom's entries with teacher names, in insertion order.
func (r *ScheduleRepository) ListByClassroom(ctx context.Context, classroom string) ([]models.ScheduleView, error) {
	defer r.timed("schedule.list_by_classroom")()
	return r.listViews(ctx, models.ScheduleFilter{Classroom: classroom})
}

// ListByTeacher returns a teacher's entries, in insertion order.
func (r *ScheduleRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.ScheduleView, error) {
	defer r.timed("schedule.list_by_teacher")()
	return r.listViews(ctx, models.ScheduleFilter{TeacherID: teacherID})
}

// List returns entries matching filter, in insertion order.
func (r *ScheduleRepository) List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleView, error) {
	defer r.timed("schedule.list")()
	return r.listViews(ctx, filter)
}

func (r *ScheduleRepository) listViews(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleView, error) {
	var conditions []string
	var args []interface{}
	if filter.Classroom != "" {
		conditions = append(conditions, "s.class_room = ?")
		args = append(args, filter.Classroom)
	}
	if filter.TeacherID != "" {
		conditions = append(conditions, "s.teacher_id = ?")
		args = append(args, filter.TeacherID)
	}
	if filter.DayOfWeek != "" {
		conditions = append(conditions, "s.day_of_week = ?")
		args = append(args, string(filter.DayOfWeek))
	}

	query := scheduleViewSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY s.id"

	var views []models.ScheduleView
	if err := r.db.SelectContext(ctx, &views, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	for i := range views {
		views[i].TeacherName = models.DisplayName(views[i].TeacherTitle, views[i].TeacherFirstName, views[i].TeacherLastName)
	}
	return views, nil
}

// Workload counts entries per active teacher, including teachers with none.
func (r *ScheduleRepository) Workload(ctx context.Context) ([]models.TeacherWorkload, error) {
	defer r.timed("schedule.workload")()
	const query = `SELECT t.teacher_id, t.title, t.first_name, t.last_name, COUNT(s.id) AS periods_per_week
		FROM teachers t
		LEFT JOIN schedule s ON t.teacher_id = s.teacher_id
		WHERE t.is_active = TRUE
		GROUP BY t.teacher_id, t.title, t.first_name, t.last_name`
	var rows []models.TeacherWorkload
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("teacher workload: %w", err)
	}
	for i := range rows {
		rows[i].DisplayName = models.DisplayName(rows[i].Title, rows[i].FirstName, rows[i].LastName)
	}
	return rows, nil
}

func (r *ScheduleRepository) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schedule tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit schedule tx: %w", err)
	}
	return nil
}
