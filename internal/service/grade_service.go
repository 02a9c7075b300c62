package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-core/internal/grading"
	"github.com/noah-isme/school-core/internal/models"
	appErrors "github.com/noah-isme/school-core/pkg/errors"
)

type gradeRepository interface {
	List(ctx context.Context, filter models.GradeFilter) ([]models.GradeRecord, error)
	Upsert(ctx context.Context, grade *models.GradeRecord) error
	Find(ctx context.Context, studentID, academicYear, semester, subjectCode string) (*models.GradeRecord, error)
}

// SaveGradeRequest records a score for one subject in one term. A missing score is stored as ungraded.
type SaveGradeRequest struct {
	StudentID    string   `json:"student_id" validate:"required"`
	AcademicYear string   `json:"academic_year" validate:"required"`
	Semester     string   `json:"semester" validate:"required"`
	SubjectCode  string   `json:"subject_code" validate:"required"`
	SubjectName  string   `json:"subject_name" validate:"required"`
	FullScore    *float64 `json:"full_score" validate:"omitempty,gt=0"`
	Score        *float64 `json:"score"`
}

// GradeService records scores with their derived grade label.
type GradeService struct {
	repo      gradeRepository
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradeService constructs a GradeService.
func NewGradeService(repo gradeRepository, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{repo: repo, metrics: metrics, validator: validate, logger: logger}
}

// Save classifies the score and upserts the record. Re-saving the same student, year,
// semester and subject replaces only the score and grade.
func (s *GradeService) Save(ctx context.Context, req SaveGradeRequest) (*models.GradeRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}

	record := &models.GradeRecord{
		StudentID:    strings.TrimSpace(req.StudentID),
		AcademicYear: strings.TrimSpace(req.AcademicYear),
		Semester:     strings.TrimSpace(req.Semester),
		SubjectCode:  strings.TrimSpace(req.SubjectCode),
		SubjectName:  strings.TrimSpace(req.SubjectName),
		FullScore:    models.DefaultFullScore,
		Score:        req.Score,
		Grade:        grading.Classify(req.Score),
	}
	if req.FullScore != nil {
		record.FullScore = *req.FullScore
	}

	if err := s.repo.Upsert(ctx, record); err != nil {
		s.logger.Error("failed to save grade",
			zap.String("student_id", record.StudentID),
			zap.String("subject_code", record.SubjectCode),
			zap.Error(err))
		return nil, appErrors.Internal(err, "failed to save grade")
	}
	s.metrics.RecordGrade(record.Grade)

	// Re-saving keeps the first subject name and full score, so report what is stored.
	stored, err := s.repo.Find(ctx, record.StudentID, record.AcademicYear, record.Semester, record.SubjectCode)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load saved grade")
	}
	return stored, nil
}

// List returns a student's grades for a term. Empty year or semester widen the scope.
func (s *GradeService) List(ctx context.Context, studentID, academicYear, semester string) ([]models.GradeRecord, error) {
	if strings.TrimSpace(studentID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student_id is required")
	}
	grades, err := s.repo.List(ctx, models.GradeFilter{StudentID: studentID, AcademicYear: academicYear, Semester: semester})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list grades")
	}
	if grades == nil {
		grades = []models.GradeRecord{}
	}
	return grades, nil
}

// Transcript groups every grade of a student by term, with a per-term GPA.
func (s *GradeService) Transcript(ctx context.Context, studentID string) (*models.Transcript, error) {
	grades, err := s.List(ctx, studentID, "", "")
	if err != nil {
		return nil, err
	}

	transcript := &models.Transcript{StudentID: studentID, Terms: []models.TranscriptTerm{}}
	for _, g := range grades {
		last := len(transcript.Terms) - 1
		if last < 0 || transcript.Terms[last].AcademicYear != g.AcademicYear || transcript.Terms[last].Semester != g.Semester {
			transcript.Terms = append(transcript.Terms, models.TranscriptTerm{AcademicYear: g.AcademicYear, Semester: g.Semester})
			last++
		}
		transcript.Terms[last].Records = append(transcript.Terms[last].Records, g)
	}

	for i := range transcript.Terms {
		labels := make([]string, 0, len(transcript.Terms[i].Records))
		for _, r := range transcript.Terms[i].Records {
			labels = append(labels, r.Grade)
		}
		if gpa, ok := grading.GPA(labels); ok {
			transcript.Terms[i].GPA = &gpa
		}
	}
	return transcript, nil
}
