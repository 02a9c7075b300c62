package models

import "time"

// Teacher represents an instructor record.
type Teacher struct {
	ID        string    `db:"teacher_id" json:"teacher_id"`
	Title     string    `db:"title" json:"title"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	Active    bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// DisplayName joins title and first name, then the surname after a space.
func (t Teacher) DisplayName() string {
	return DisplayName(t.Title, t.FirstName, t.LastName)
}

// DisplayName composes a teacher's name the way it is printed on timetables.
func DisplayName(title, firstName, lastName string) string {
	return title + firstName + " " + lastName
}

// TeacherFilter captures filtering options for listing teachers.
type TeacherFilter struct {
	IncludeInactive bool
}
