package models

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ScheduleEntry is one teaching assignment: a teacher in a classroom for a weekday period.
type ScheduleEntry struct {
	ID          int64     `db:"id" json:"id"`
	Classroom   string    `db:"class_room" json:"class_room"`
	DayOfWeek   Day       `db:"day_of_week" json:"day_of_week"`
	Period      int       `db:"period_no" json:"period_no"`
	StartTime   string    `db:"start_time" json:"start_time"`
	EndTime     string    `db:"end_time" json:"end_time"`
	SubjectName string    `db:"subject_name" json:"subject_name"`
	TeacherID   string    `db:"teacher_id" json:"teacher_id"`
	RoomNo      *string   `db:"room_no" json:"room_no,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ScheduleView is a schedule entry joined with the teacher's name fields.
type ScheduleView struct {
	ScheduleEntry
	TeacherTitle     string `db:"title" json:"teacher_title"`
	TeacherFirstName string `db:"first_name" json:"teacher_first_name"`
	TeacherLastName  string `db:"last_name" json:"teacher_last_name"`
	TeacherName      string `db:"-" json:"teacher_name"`
}

// TeacherWorkload counts the periods a teacher is scheduled for in a week.
type TeacherWorkload struct {
	TeacherID      string `db:"teacher_id" json:"teacher_id"`
	Title          string `db:"title" json:"-"`
	FirstName      string `db:"first_name" json:"-"`
	LastName       string `db:"last_name" json:"-"`
	DisplayName    string `db:"-" json:"display_name"`
	PeriodsPerWeek int    `db:"periods_per_week" json:"periods_per_week"`
}

// ConflictInfo identifies the entry that already occupies a teacher's slot.
type ConflictInfo struct {
	ScheduleID  int64  `db:"id" json:"schedule_id"`
	Classroom   string `db:"class_room" json:"class_room"`
	TeacherID   string `db:"teacher_id" json:"teacher_id"`
	DayOfWeek   Day    `db:"day_of_week" json:"day_of_week"`
	Period      int    `db:"period_no" json:"period_no"`
	Title       string `db:"title" json:"-"`
	FirstName   string `db:"first_name" json:"-"`
	LastName    string `db:"last_name" json:"-"`
	TeacherName string `db:"-" json:"teacher_name"`
}

// Message renders the rejection shown to the user.
func (c ConflictInfo) Message() string {
	return fmt.Sprintf("Teacher %s already has a class on %s period %d in room/class %s; please choose another period.",
		c.TeacherName, c.DayOfWeek, c.Period, c.Classroom)
}

// ScheduleConflictError is returned when a teacher is already booked for the requested slot.
type ScheduleConflictError struct {
	Message  string       `json:"message"`
	Conflict ConflictInfo `json:"conflict"`
}

// NewScheduleConflictError builds the error for an occupied slot.
func NewScheduleConflictError(info ConflictInfo) *ScheduleConflictError {
	return &ScheduleConflictError{Message: info.Message(), Conflict: info}
}

// Error implements the error interface for conflict errors.
func (e *ScheduleConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

// Outcome classifies the result of a guarded schedule write.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeConflict
	OutcomeStorageError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeConflict:
		return "conflict"
	default:
		return "storage_error"
	}
}

// OutcomeOf maps the error returned by an add or update to its outcome.
// Any error that is not a schedule conflict counts as a storage failure.
func OutcomeOf(err error) Outcome {
	if err == nil {
		return OutcomeSuccess
	}
	var conflict *ScheduleConflictError
	if errors.As(err, &conflict) {
		return OutcomeConflict
	}
	return OutcomeStorageError
}

// SortByDayPeriod orders views Monday→Friday, then by period. Ties keep id order.
func SortByDayPeriod(views []ScheduleView) {
	sort.SliceStable(views, func(i, j int) bool {
		return lessDayPeriod(views[i].ScheduleEntry, views[j].ScheduleEntry)
	})
}

// SortByClassroomDayPeriod orders views by classroom first, then day and period.
func SortByClassroomDayPeriod(views []ScheduleView) {
	sort.SliceStable(views, func(i, j int) bool {
		if views[i].Classroom != views[j].Classroom {
			return views[i].Classroom < views[j].Classroom
		}
		return lessDayPeriod(views[i].ScheduleEntry, views[j].ScheduleEntry)
	})
}

func lessDayPeriod(a, b ScheduleEntry) bool {
	if ra, rb := a.DayOfWeek.Rank(), b.DayOfWeek.Rank(); ra != rb {
		return ra < rb
	}
	if a.Period != b.Period {
		return a.Period < b.Period
	}
	return a.ID < b.ID
}

// SortWorkload orders by periods descending, then display name ascending.
func SortWorkload(rows []TeacherWorkload) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].PeriodsPerWeek != rows[j].PeriodsPerWeek {
			return rows[i].PeriodsPerWeek > rows[j].PeriodsPerWeek
		}
		return rows[i].DisplayName < rows[j].DisplayName
	})
}

// ScheduleFilter narrows the full schedule listing.
type ScheduleFilter struct {
	Classroom string
	TeacherID string
	DayOfWeek Day
}
