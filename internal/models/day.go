package models

import "strings"

// Day is a weekday label as entered by the caller. Labels are stored verbatim.
type Day string

const (
	Monday    Day = "Monday"
	Tuesday   Day = "Tuesday"
	Wednesday Day = "Wednesday"
	Thursday  Day = "Thursday"
	Friday    Day = "Friday"
)

// unknownDayRank places unrecognised labels after Friday.
const unknownDayRank = 6

var dayRanks = map[string]int{
	"monday":    1,
	"tuesday":   2,
	"wednesday": 3,
	"thursday":  4,
	"friday":    5,
	"จันทร์":     1,
	"อังคาร":     2,
	"พุธ":       3,
	"พฤหัสบดี":   4,
	"ศุกร์":      5,
}

// Rank returns the calendar ordinal (Monday=1 … Friday=5). Unknown labels rank 6.
func (d Day) Rank() int {
	if rank, ok := dayRanks[strings.ToLower(strings.TrimSpace(string(d)))]; ok {
		return rank
	}
	return unknownDayRank
}

// Known reports whether the label maps to a school day.
func (d Day) Known() bool {
	return d.Rank() != unknownDayRank
}

func (d Day) String() string {
	return string(d)
}
