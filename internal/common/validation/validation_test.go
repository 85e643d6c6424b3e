package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsValidPhrase(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"Cat shelter", true},
		{"build-a cat-shelter 2024", true},
		{"Shelter", true},
		{"", false},
		{"2024", false},
		{"double  space", false},
		{"trailing ", false},
		{" leading", false},
		{"double--hyphen", false},
		{"-dash", false},
		{"punctuation!", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IsValidPhrase(tc.in), "phrase %q", tc.in)
	}
}

func TestValidateProjectName(t *testing.T) {
	assert.NoError(t, ValidateProjectName("Cat shelter"))
	assert.ErrorContains(t, ValidateProjectName("   "), "cannot be empty")
	assert.Error(t, ValidateProjectName("cats!!"))
}

func TestValidatePositiveInt(t *testing.T) {
	assert.NoError(t, ValidatePositiveInt(1, "goal"))
	assert.EqualError(t, ValidatePositiveInt(0, "goal"), "goal must be positive")
	assert.Error(t, ValidatePositiveInt(-5, "amount"))
}

func TestValidateTimeline(t *testing.T) {
	start := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, ValidateTimeline(start, start))
	assert.NoError(t, ValidateTimeline(start, start.AddDate(0, 1, 0)))
	assert.Error(t, ValidateTimeline(start, start.AddDate(0, 0, -1)))
}
