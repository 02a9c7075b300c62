package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// sqlite and postgres differ only in the surrogate key column.
const (
	sqliteSerial   = "INTEGER PRIMARY KEY AUTOINCREMENT"
	postgresSerial = "BIGSERIAL PRIMARY KEY"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS teachers (
		teacher_id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		phone TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS schedule (
		id {{serial}},
		class_room TEXT NOT NULL,
		day_of_week TEXT NOT NULL,
		period_no INTEGER NOT NULL,
		start_time TEXT,
		end_time TEXT,
		subject_name TEXT NOT NULL,
		teacher_id TEXT NOT NULL REFERENCES teachers(teacher_id),
		room_no TEXT,
		created_at TIMESTAMP NOT NULL,
		UNIQUE (teacher_id, day_of_week, period_no)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_schedule_class ON schedule (class_room, day_of_week)`,
	`CREATE TABLE IF NOT EXISTS grades (
		id {{serial}},
		student_id TEXT NOT NULL,
		academic_year TEXT NOT NULL,
		semester TEXT NOT NULL,
		subject_code TEXT NOT NULL,
		subject_name TEXT NOT NULL,
		full_score DOUBLE PRECISION NOT NULL DEFAULT 100,
		score DOUBLE PRECISION,
		grade TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		UNIQUE (student_id, academic_year, semester, subject_code)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_grades_year ON grades (academic_year, semester)`,
}

// Migrate creates the tables and indexes if they do not exist yet.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	serial := sqliteSerial
	if db.DriverName() == "postgres" {
		serial = postgresSerial
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migrate: %w", err)
	}
	for _, stmt := range schema {
		if _, err := tx.ExecContext(ctx, strings.ReplaceAll(stmt, "{{serial}}", serial)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migrate: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migrate: %w", err)
	}
	return nil
}
