package utils

import (
	"math"
	"strconv"
	"strings"
)

// PointsToGrade maps a 1..10 point value to a letter grade. Fractional
// values are truncated; anything unparsable is an F.
func PointsToGrade(points string) string {
	trimmed := strings.TrimSpace(points)
	if trimmed == "" {
		return "F"
	}

	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return "F"
	}

	switch p := math.Trunc(value); {
	case p >= 9:
		return "A"
	case p >= 7:
		return "B"
	case p >= 5:
		return "C"
	case p >= 3:
		return "D"
	default:
		return "F"
	}
}

// GradeForPoints is PointsToGrade for integer inputs.
func GradeForPoints(points int) string {
	return PointsToGrade(strconv.Itoa(points))
}
