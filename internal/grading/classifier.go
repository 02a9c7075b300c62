// Package grading maps raw scores onto the school's grade-point bands.
package grading

// NoGrade is recorded when no score has been entered.
const NoGrade = "-"

type band struct {
	min   float64
	label string
}

// bands must stay in strictly descending order of min.
var bands = []band{
	{80, "4.0"},
	{75, "3.5"},
	{70, "3.0"},
	{65, "2.5"},
	{60, "2.0"},
	{55, "1.5"},
	{50, "1.0"},
}

const failing = "0.0"

// Classify returns the grade label for score. Every number is classified,
// including negatives and scores above the nominal maximum; nil yields NoGrade.
func Classify(score *float64) string {
	if score == nil {
		return NoGrade
	}
	return ClassifyValue(*score)
}

// ClassifyValue is Classify for a score that is known to be present.
func ClassifyValue(score float64) string {
	for _, b := range bands {
		if score >= b.min {
			return b.label
		}
	}
	return failing
}

// Labels returns every band label from highest to lowest.
func Labels() []string {
	labels := make([]string, 0, len(bands)+1)
	for _, b := range bands {
		labels = append(labels, b.label)
	}
	return append(labels, failing)
}

// Rank orders labels for comparison: "0.0" is 0 and "4.0" is 7.
// NoGrade and unknown labels return -1.
func Rank(label string) int {
	if label == failing {
		return 0
	}
	for i, b := range bands {
		if b.label == label {
			return len(bands) - i
		}
	}
	return -1
}
