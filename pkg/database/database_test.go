package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-core/pkg/config"
)

func openMigrated(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := NewSQLite(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, Migrate(context.Background(), db))
	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openMigrated(t)
	require.NoError(t, Migrate(context.Background(), db))

	var tables []string
	require.NoError(t, db.Select(&tables, `SELECT name FROM sqlite_master WHERE type = 'table' AND name IN ('teachers', 'schedule', 'grades') ORDER BY name`))
	assert.Equal(t, []string{"grades", "schedule", "teachers"}, tables)

	var indexes []string
	require.NoError(t, db.Select(&indexes, `SELECT name FROM sqlite_master WHERE type = 'index' AND name LIKE 'idx_%' ORDER BY name`))
	assert.Equal(t, []string{"idx_grades_year", "idx_schedule_class"}, indexes)
}

func TestForeignKeysEnabled(t *testing.T) {
	db := openMigrated(t)

	var on int
	require.NoError(t, db.Get(&on, `PRAGMA foreign_keys`))
	assert.Equal(t, 1, on)

	_, err := db.Exec(`INSERT INTO schedule (class_room, day_of_week, period_no, subject_name, teacher_id, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		"A", "Monday", 1, "Math", "missing", time.Now().UTC())
	require.Error(t, err)
	assert.True(t, IsForeignKeyViolation(err))
	assert.False(t, IsUniqueViolation(err))
}

func TestIsUniqueViolation(t *testing.T) {
	db := openMigrated(t)
	insert := `INSERT INTO teachers (teacher_id, title, first_name, last_name, created_at) VALUES (?, ?, ?, ?, ?)`

	_, err := db.Exec(insert, "T001", "Mr.", "Somchai", "Jaidee", time.Now().UTC())
	require.NoError(t, err)
	_, err = db.Exec(insert, "T001", "Mr.", "Somchai", "Jaidee", time.Now().UTC())
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))

	assert.True(t, IsUniqueViolation(&pq.Error{Code: "23505"}))
	assert.True(t, IsForeignKeyViolation(&pq.Error{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
	assert.False(t, IsUniqueViolation(nil))
}

func TestOpenCreatesSQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "school.db")

	db, err := Open(config.DatabaseConfig{Driver: config.DriverSQLite, Path: path})
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(context.Background(), db))
	assert.FileExists(t, path)
}
