package grading

import "strconv"

// Points returns the numeric grade point of a label. NoGrade and anything
// that is not a number report false.
func Points(label string) (float64, bool) {
	if label == "" || label == NoGrade {
		return 0, false
	}
	v, err := strconv.ParseFloat(label, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// GPA is the unweighted mean of the labels that carry grade points.
// It reports false when none do.
func GPA(labels []string) (float64, bool) {
	var sum float64
	var n int
	for _, label := range labels {
		if v, ok := Points(label); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
