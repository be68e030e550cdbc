package catalogs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hvkurs/kursmap/pkg/catalogs"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"2026-09-01", "20260901"},
		{"2026.09.01", "20260901"},
		{"20260901", "20260901"},
		{" 2026-09-01 ", "20260901"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, catalogs.NormalizeDate(tt.input), "input %q", tt.input)
	}
}

func TestNormalizeDateIdempotent(t *testing.T) {
	once := catalogs.NormalizeDate("2026-09-01")
	assert.Equal(t, once, catalogs.NormalizeDate(once))
}

func TestEventNormalizeDates(t *testing.T) {
	event := &catalogs.Event{
		CourseDates: []catalogs.CourseDate{
			{Start: "2026-09-01", End: "2026.09.05"},
		},
		ApplicationDeadline: "2026-08-15",
	}

	event.NormalizeDates()

	assert.Equal(t, "20260901", event.CourseDates[0].Start)
	assert.Equal(t, "20260905", event.CourseDates[0].End)
	assert.Equal(t, "20260815", event.ApplicationDeadline)

	// Idempotent on already-normalized events.
	event.NormalizeDates()
	assert.Equal(t, "20260901", event.CourseDates[0].Start)
}

func TestCourseDateComplete(t *testing.T) {
	assert.True(t, catalogs.CourseDate{Start: "20260901", End: "20260905"}.Complete())
	assert.False(t, catalogs.CourseDate{Start: "20260901"}.Complete())
	assert.False(t, catalogs.CourseDate{}.Complete())
}
