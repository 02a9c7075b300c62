package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-core/internal/models"
	"github.com/noah-isme/school-core/pkg/database"
	appErrors "github.com/noah-isme/school-core/pkg/errors"
)

type scheduleRepository interface {
	FindTeacherConflict(ctx context.Context, teacherID string, day models.Day, period int, excludeID int64) (*models.ConflictInfo, error)
	CreateIfFree(ctx context.Context, entry *models.ScheduleEntry) (*models.ConflictInfo, error)
	UpdateIfFree(ctx context.Context, entry *models.ScheduleEntry) (*models.ConflictInfo, error)
	FindEntry(ctx context.Context, id int64) (*models.ScheduleEntry, error)
	Delete(ctx context.Context, id int64) error
	ListByClassroom(ctx context.Context, classroom string) ([]models.ScheduleView, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.ScheduleView, error)
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleView, error)
	Workload(ctx context.Context) ([]models.TeacherWorkload, error)
}

type teacherLookup interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

// ScheduleRequest is the payload for adding or replacing a schedule entry. Day, period and
// times are stored as given.
type ScheduleRequest struct {
	Classroom   string  `json:"class_room" validate:"required"`
	DayOfWeek   string  `json:"day_of_week" validate:"required"`
	Period      int     `json:"period_no"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	SubjectName string  `json:"subject_name" validate:"required"`
	TeacherID   string  `json:"teacher_id" validate:"required"`
	RoomNo      *string `json:"room_no"`
}

// BulkScheduleRequest holds several entries to add in order.
type BulkScheduleRequest struct {
	Items          []ScheduleRequest `json:"items" validate:"required,min=1,dive"`
	PartialOnError bool              `json:"partial_on_error"`
}

// BulkScheduleResult lists what was stored and which items were rejected.
type BulkScheduleResult struct {
	Created   []models.ScheduleEntry         `json:"created"`
	Conflicts []models.ScheduleConflictError `json:"conflicts,omitempty"`
}

// ScheduleService guards schedule writes against double-booking a teacher.
type ScheduleService struct {
	repo      scheduleRepository
	teachers  teacherLookup
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService instantiates ScheduleService. cache and metrics may be nil.
func NewScheduleService(repo scheduleRepository, teachers teacherLookup, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{repo: repo, teachers: teachers, cache: cache, metrics: metrics, validator: validate, logger: logger}
}

// Check returns the entry occupying the teacher's slot, ignoring excludeID when non-zero.
// A nil result means the slot is free.
func (s *ScheduleService) Check(ctx context.Context, teacherID string, day models.Day, period int, excludeID int64) (*models.ConflictInfo, error) {
	conflict, err := s.repo.FindTeacherConflict(ctx, teacherID, day, period, excludeID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check schedule conflicts")
	}
	return conflict, nil
}

// Add stores a new entry unless the teacher is already booked for that day and period.
func (s *ScheduleService) Add(ctx context.Context, req ScheduleRequest) (*models.ScheduleEntry, error) {
	entry, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	conflict, err := s.repo.CreateIfFree(ctx, entry)
	return s.finishWrite(ctx, "add", entry, conflict, err)
}

// Get loads a single entry.
func (s *ScheduleService) Get(ctx context.Context, id int64) (*models.ScheduleEntry, error) {
	entry, err := s.repo.FindEntry(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Internal(err, "failed to load schedule")
	}
	return entry, nil
}

// Update replaces entry id in place. The entry never conflicts with its own previous slot.
// Updating an id that does not exist succeeds without storing anything.
func (s *ScheduleService) Update(ctx context.Context, id int64, req ScheduleRequest) (*models.ScheduleEntry, error) {
	entry, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	entry.ID = id
	conflict, err := s.repo.UpdateIfFree(ctx, entry)
	return s.finishWrite(ctx, "update", entry, conflict, err)
}

// Delete removes entry id. Deleting a missing entry succeeds.
func (s *ScheduleService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete schedule", zap.Int64("schedule_id", id), zap.Error(err))
		return appErrors.Internal(err, "failed to delete schedule")
	}
	s.cache.Invalidate(ctx, scheduleCachePattern)
	return nil
}

// BulkAdd adds items in order. Without PartialOnError the first rejection stops the batch;
// entries stored before it are kept.
func (s *ScheduleService) BulkAdd(ctx context.Context, req BulkScheduleRequest) (*BulkScheduleResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk schedule payload")
	}

	result := &BulkScheduleResult{Created: []models.ScheduleEntry{}}
	for _, item := range req.Items {
		entry, err := s.Add(ctx, item)
		if err == nil {
			result.Created = append(result.Created, *entry)
			continue
		}
		var conflict *models.ScheduleConflictError
		if !req.PartialOnError || !errors.As(err, &conflict) {
			return nil, err
		}
		result.Conflicts = append(result.Conflicts, *conflict)
	}
	return result, nil
}

// ListByClassroom returns a classroom's timetable ordered Monday to Friday, then by period.
func (s *ScheduleService) ListByClassroom(ctx context.Context, classroom string) ([]models.ScheduleView, error) {
	key := classroomCachePrefix + classroom
	var cached []models.ScheduleView
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	views, err := s.repo.ListByClassroom(ctx, classroom)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list classroom schedule")
	}
	views = nonNilViews(views)
	models.SortByDayPeriod(views)
	s.cache.Set(ctx, key, views)
	return views, nil
}

// ListByTeacher returns a teacher's timetable ordered Monday to Friday, then by period.
func (s *ScheduleService) ListByTeacher(ctx context.Context, teacherID string) ([]models.ScheduleView, error) {
	key := teacherSchedulePrefix + teacherID
	var cached []models.ScheduleView
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	views, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list teacher schedule")
	}
	views = nonNilViews(views)
	models.SortByDayPeriod(views)
	s.cache.Set(ctx, key, views)
	return views, nil
}

// ListAll returns entries matching filter ordered by classroom, day and period.
func (s *ScheduleService) ListAll(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleView, error) {
	views, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list schedules")
	}
	views = nonNilViews(views)
	models.SortByClassroomDayPeriod(views)
	return views, nil
}

// Workload counts weekly periods for every active teacher, busiest first.
func (s *ScheduleService) Workload(ctx context.Context) ([]models.TeacherWorkload, error) {
	var cached []models.TeacherWorkload
	if s.cache.Get(ctx, workloadCacheKey, &cached) {
		return cached, nil
	}

	rows, err := s.repo.Workload(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to compute teacher workload")
	}
	if rows == nil {
		rows = []models.TeacherWorkload{}
	}
	models.SortWorkload(rows)
	s.cache.Set(ctx, workloadCacheKey, rows)
	return rows, nil
}

func (s *ScheduleService) prepare(ctx context.Context, req ScheduleRequest) (*models.ScheduleEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}

	teacherID := strings.TrimSpace(req.TeacherID)
	if _, err := s.teachers.FindByID(ctx, teacherID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "teacher not found")
		}
		return nil, appErrors.Internal(err, "failed to load teacher")
	}

	entry := &models.ScheduleEntry{
		Classroom:   strings.TrimSpace(req.Classroom),
		DayOfWeek:   models.Day(strings.TrimSpace(req.DayOfWeek)),
		Period:      req.Period,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		SubjectName: strings.TrimSpace(req.SubjectName),
		TeacherID:   teacherID,
		RoomNo:      normalizeOptional(req.RoomNo),
	}
	if !entry.DayOfWeek.Known() {
		s.logger.Warn("unrecognised day label stored as given", zap.String("day_of_week", entry.DayOfWeek.String()))
	}
	return entry, nil
}

func (s *ScheduleService) finishWrite(ctx context.Context, operation string, entry *models.ScheduleEntry, conflict *models.ConflictInfo, err error) (*models.ScheduleEntry, error) {
	fields := []zap.Field{
		zap.String("operation", operation),
		zap.String("teacher_id", entry.TeacherID),
		zap.String("day_of_week", entry.DayOfWeek.String()),
		zap.Int("period_no", entry.Period),
	}

	switch {
	case err != nil && database.IsForeignKeyViolation(err):
		s.metrics.RecordScheduleWrite(operation, models.OutcomeStorageError)
		s.logger.Warn("schedule write rejected by store", append(fields, zap.Error(err))...)
		return nil, appErrors.Clone(appErrors.ErrValidation, "teacher not found")
	case err != nil:
		s.metrics.RecordScheduleWrite(operation, models.OutcomeStorageError)
		s.logger.Error("schedule write failed", append(fields, zap.Error(err))...)
		return nil, appErrors.Internal(err, "failed to save schedule")
	case conflict != nil:
		s.metrics.RecordScheduleWrite(operation, models.OutcomeConflict)
		s.logger.Info("schedule write rejected", append(fields, zap.Int64("conflicting_id", conflict.ScheduleID))...)
		conflictErr := models.NewScheduleConflictError(*conflict)
		return nil, appErrors.Wrap(conflictErr, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, conflictErr.Message)
	}

	s.metrics.RecordScheduleWrite(operation, models.OutcomeSuccess)
	s.cache.Invalidate(ctx, scheduleCachePattern)
	return entry, nil
}

func nonNilViews(views []models.ScheduleView) []models.ScheduleView {
	if views == nil {
		return []models.ScheduleView{}
	}
	return views
}
