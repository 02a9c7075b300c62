package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-core/internal/models"
)

const gradeColumns = `id, student_id, academic_year, semester, subject_code, subject_name, full_score, score, grade, created_at`

// GradeRepository handles grade record persistence.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository creates a new grade repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// List returns a student's grades ordered by year, semester and subject code.
// Empty year or semester in the filter match every value.
func (r *GradeRepository) List(ctx context.Context, filter models.GradeFilter) ([]models.GradeRecord, error) {
	conditions := []string{"student_id = ?"}
	args := []interface{}{filter.StudentID}
	if filter.AcademicYear != "" {
		conditions = append(conditions, "academic_year = ?")
		args = append(args, filter.AcademicYear)
	}
	if filter.Semester != "" {
		conditions = append(conditions, "semester = ?")
		args = append(args, filter.Semester)
	}

	query := "SELECT " + gradeColumns + " FROM grades WHERE " + strings.Join(conditions, " AND ") +
		" ORDER BY academic_year, semester, subject_code"
	var grades []models.GradeRecord
	if err := r.db.SelectContext(ctx, &grades, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	return grades, nil
}

// Upsert inserts a grade record, or overwrites score and grade when the student already has
// one for the same year, semester and subject. grade.ID is set to the stored row's id.
func (r *GradeRepository) Upsert(ctx context.Context, grade *models.GradeRecord) error {
	if grade.CreatedAt.IsZero() {
		grade.CreatedAt = time.Now().UTC()
	}
	if grade.FullScore == 0 {
		grade.FullScore = models.DefaultFullScore
	}

	query := r.db.Rebind(`INSERT INTO grades (student_id, academic_year, semester, subject_code, subject_name, full_score, score, grade, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (student_id, academic_year, semester, subject_code)
		DO UPDATE SET score = EXCLUDED.score, grade = EXCLUDED.grade
		RETURNING id`)
	row := r.db.QueryRowxContext(ctx, query,
		grade.StudentID, grade.AcademicYear, grade.Semester, grade.SubjectCode, grade.SubjectName,
		grade.FullScore, grade.Score, grade.Grade, grade.CreatedAt)
	if err := row.Scan(&grade.ID); err != nil {
		return fmt.Errorf("upsert grade: %w", err)
	}
	return nil
}

// Find loads the stored record for a student, year, semester and subject.
func (r *GradeRepository) Find(ctx context.Context, studentID, academicYear, semester, subjectCode string) (*models.GradeRecord, error) {
	query := r.db.Rebind("SELECT " + gradeColumns + ` FROM grades
		WHERE student_id = ? AND academic_year = ? AND semester = ? AND subject_code = ?`)
	var grade models.GradeRecord
	if err := r.db.GetContext(ctx, &grade, query, studentID, academicYear, semester, subjectCode); err != nil {
		return nil, err
	}
	return &grade, nil
}
