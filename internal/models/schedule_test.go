package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDayRank(t *testing.T) {
	for i, d := range []Day{Monday, Tuesday, Wednesday, Thursday, Friday} {
		assert.Equal(t, i+1, d.Rank(), d)
	}
	assert.Equal(t, 1, Day("จันทร์").Rank())
	assert.Equal(t, 4, Day("พฤหัสบดี").Rank())
	assert.Equal(t, 5, Day(" friday ").Rank())
	assert.Equal(t, 6, Day("Saturday").Rank())
	assert.False(t, Day("Funday").Known())
	assert.True(t, Day("ศุกร์").Known())
}

func TestSortByDayPeriodUsesCalendarOrder(t *testing.T) {
	// Alphabetically Friday < Monday < Thursday < Tuesday < Wednesday.
	views := []ScheduleView{
		{ScheduleEntry: ScheduleEntry{ID: 1, DayOfWeek: Wednesday, Period: 1}},
		{ScheduleEntry: ScheduleEntry{ID: 2, DayOfWeek: Friday, Period: 1}},
		{ScheduleEntry: ScheduleEntry{ID: 3, DayOfWeek: Monday, Period: 2}},
		{ScheduleEntry: ScheduleEntry{ID: 4, DayOfWeek: Monday, Period: 1}},
		{ScheduleEntry: ScheduleEntry{ID: 5, DayOfWeek: "Sunday", Period: 1}},
		{ScheduleEntry: ScheduleEntry{ID: 6, DayOfWeek: Tuesday, Period: 8}},
	}

	SortByDayPeriod(views)

	var ids []int64
	for _, v := range views {
		ids = append(ids, v.ID)
	}
	assert.Equal(t, []int64{4, 3, 6, 1, 2, 5}, ids)
}

func TestSortByClassroomDayPeriod(t *testing.T) {
	views := []ScheduleView{
		{ScheduleEntry: ScheduleEntry{ID: 1, Classroom: "P.2/1", DayOfWeek: Monday, Period: 1}},
		{ScheduleEntry: ScheduleEntry{ID: 2, Classroom: "P.1/1", DayOfWeek: Friday, Period: 1}},
		{ScheduleEntry: ScheduleEntry{ID: 3, Classroom: "P.1/1", DayOfWeek: Tuesday, Period: 3}},
	}

	SortByClassroomDayPeriod(views)

	assert.Equal(t, int64(3), views[0].ID)
	assert.Equal(t, int64(2), views[1].ID)
	assert.Equal(t, int64(1), views[2].ID)
}

func TestSortWorkload(t *testing.T) {
	rows := []TeacherWorkload{
		{TeacherID: "T3", DisplayName: "Ms.Cara Diaz", PeriodsPerWeek: 0},
		{TeacherID: "T2", DisplayName: "Mr.Bob Lee", PeriodsPerWeek: 3},
		{TeacherID: "T1", DisplayName: "Mr.Adam Ng", PeriodsPerWeek: 3},
		{TeacherID: "T4", DisplayName: "Dr.Ann Po", PeriodsPerWeek: 5},
	}

	SortWorkload(rows)

	assert.Equal(t, "T4", rows[0].TeacherID)
	assert.Equal(t, "T1", rows[1].TeacherID)
	assert.Equal(t, "T2", rows[2].TeacherID)
	assert.Equal(t, "T3", rows[3].TeacherID)
}

func TestConflictMessageEmbedsFacts(t *testing.T) {
	info := ConflictInfo{Classroom: "A", DayOfWeek: Monday, Period: 1, TeacherName: DisplayName("Mr.", "Somchai", "Jaidee")}

	msg := info.Message()
	assert.Contains(t, msg, "Mr.Somchai Jaidee")
	assert.Contains(t, msg, "Monday")
	assert.Contains(t, msg, "period 1")
	assert.Contains(t, msg, "room/class A")
}

func TestOutcomeOf(t *testing.T) {
	conflict := NewScheduleConflictError(ConflictInfo{Classroom: "A"})

	assert.Equal(t, OutcomeSuccess, OutcomeOf(nil))
	assert.Equal(t, OutcomeConflict, OutcomeOf(fmt.Errorf("wrapped: %w", conflict)))
	assert.Equal(t, OutcomeStorageError, OutcomeOf(errors.New("database is locked")))
	assert.Equal(t, "conflict", OutcomeConflict.String())
}
