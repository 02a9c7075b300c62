package models

import "time"

// DefaultFullScore applies when a grade record does not state its maximum.
const DefaultFullScore = 100.0

// GradeRecord is one subject score for a student in a given year and semester.
type GradeRecord struct {
	ID           int64     `db:"id" json:"id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	Semester     string    `db:"semester" json:"semester"`
	SubjectCode  string    `db:"subject_code" json:"subject_code"`
	SubjectName  string    `db:"subject_name" json:"subject_name"`
	FullScore    float64   `db:"full_score" json:"full_score"`
	Score        *float64  `db:"score" json:"score"`
	Grade        string    `db:"grade" json:"grade"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// GradeFilter scopes a student's grade listing.
type GradeFilter struct {
	StudentID    string
	AcademicYear string
	Semester     string
}

// TranscriptTerm groups one academic year and semester of a transcript.
type TranscriptTerm struct {
	AcademicYear string        `json:"academic_year"`
	Semester     string        `json:"semester"`
	Records      []GradeRecord `json:"records"`
	GPA          *float64      `json:"gpa"`
}

// Transcript is a student's full grade history, oldest term first.
type Transcript struct {
	StudentID string           `json:"student_id"`
	Terms     []TranscriptTerm `json:"terms"`
}
