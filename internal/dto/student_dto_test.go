package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/qazaq-teachers/internal/models"
)

func TestPointsInputValue(t *testing.T) {
	cases := []struct {
		name  string
		input PointsInput
		want  int
	}{
		{name: "integer", input: "8", want: 8},
		{name: "fraction truncates", input: "7.5", want: 7},
		{name: "padded", input: " 9 ", want: 9},
		{name: "above range", input: "12.0", want: models.MaxGradePoints},
		{name: "huge", input: "1e30", want: models.MaxGradePoints},
		{name: "below one", input: "0.5", want: models.MinGradePoints},
		{name: "negative", input: "-3", want: models.MinGradePoints},
		{name: "empty", input: "", want: models.DefaultGradePoints},
		{name: "words", input: "abc", want: models.DefaultGradePoints},
		{name: "not a number", input: "NaN", want: models.DefaultGradePoints},
		{name: "infinite", input: "Inf", want: models.DefaultGradePoints},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.input.Value())
		})
	}
}

func TestPointsInputAcceptsNumbersAndStrings(t *testing.T) {
	cases := map[string]int{
		`{"grade_points":12.0}`:  models.MaxGradePoints,
		`{"grade_points":7.5}`:   7,
		`{"grade_points":"7.5"}`: 7,
		`{"grade_points":3}`:     3,
		`{"grade_points":null}`:  models.DefaultGradePoints,
		`{}`:                     models.DefaultGradePoints,
	}

	for raw, want := range cases {
		var payload StudentCreateRequest
		require.NoError(t, json.Unmarshal([]byte(raw), &payload), raw)
		require.Equal(t, want, payload.GradePoints.Value(), raw)
	}
}
