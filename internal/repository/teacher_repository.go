package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-core/internal/models"
)

const teacherColumns = `teacher_id, title, first_name, last_name, phone, is_active, created_at`

// TeacherRepository manages persistence for teachers.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// List returns teachers ordered by first name. Inactive teachers are skipped unless requested.
func (r *TeacherRepository) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, error) {
	query := "SELECT " + teacherColumns + " FROM teachers"
	if !filter.IncludeInactive {
		query += " WHERE is_active = TRUE"
	}
	query += " ORDER BY first_name, teacher_id"

	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query); err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	return teachers, nil
}

// FindByID fetches a teacher by ID. It returns sql.ErrNoRows when absent.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	query := r.db.Rebind("SELECT " + teacherColumns + " FROM teachers WHERE teacher_id = ?")
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// Create inserts a new teacher record.
func (r *TeacherRepository) Create(ctx context.Context, teacher *models.Teacher) error {
	if teacher.CreatedAt.IsZero() {
		teacher.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO teachers (teacher_id, title, first_name, last_name, phone, is_active, created_at)
		VALUES (:teacher_id, :title, :first_name, :last_name, :phone, :is_active, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, teacher); err != nil {
		return fmt.Errorf("create teacher: %w", err)
	}
	return nil
}

// Update modifies the name and phone fields. It reports whether a row matched.
func (r *TeacherRepository) Update(ctx context.Context, teacher *models.Teacher) (bool, error) {
	const query = `UPDATE teachers SET title = :title, first_name = :first_name, last_name = :last_name, phone = :phone WHERE teacher_id = :teacher_id`
	res, err := r.db.NamedExecContext(ctx, query, teacher)
	if err != nil {
		return false, fmt.Errorf("update teacher: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update teacher rows: %w", err)
	}
	return affected > 0, nil
}

// Deactivate sets a teacher's active flag to false.
func (r *TeacherRepository) Deactivate(ctx context.Context, id string) error {
	query := r.db.Rebind(`UPDATE teachers SET is_active = FALSE WHERE teacher_id = ?`)
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("deactivate teacher: %w", err)
	}
	return nil
}
