package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	MaxProjectNameLength = 120
	MaxAboutLength       = 2000
	MaxCategoryLength    = 64
	MaxFileNameLength    = 255
)

// Words of letters/digits joined by single hyphens, words separated by single spaces.
var phraseRegex = regexp.MustCompile(`^[a-zA-Z\d]+(?:-[a-zA-Z\d]+)*(?:\s[a-zA-Z\d]+(?:-[a-zA-Z\d]+)*)*$`)

var letterRegex = regexp.MustCompile(`[a-zA-Z]`)

// IsValidPhrase reports whether text is a non-empty phrase of plain words that
// contains at least one letter.
func IsValidPhrase(text string) bool {
	return phraseRegex.MatchString(text) && letterRegex.MatchString(text)
}

// ValidateProjectName checks a campaign project name.
func ValidateProjectName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("project name cannot be empty")
	}
	if len(name) > MaxProjectNameLength {
		return fmt.Errorf("project name cannot exceed %d characters", MaxProjectNameLength)
	}
	if !IsValidPhrase(name) {
		return fmt.Errorf("project name must consist of words separated by single spaces or hyphens")
	}
	return nil
}

// ValidateAbout checks a campaign description.
func ValidateAbout(about string) error {
	if strings.TrimSpace(about) == "" {
		return fmt.Errorf("about cannot be empty")
	}
	if len(about) > MaxAboutLength {
		return fmt.Errorf("about cannot exceed %d characters", MaxAboutLength)
	}
	if !IsValidPhrase(about) {
		return fmt.Errorf("about must consist of words separated by single spaces or hyphens")
	}
	return nil
}

func ValidateCategory(category string) error {
	if len(category) > MaxCategoryLength {
		return fmt.Errorf("category cannot exceed %d characters", MaxCategoryLength)
	}
	return nil
}

func ValidateFileName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("file name cannot be empty")
	}
	if len(name) > MaxFileNameLength {
		return fmt.Errorf("file name cannot exceed %d characters", MaxFileNameLength)
	}
	return nil
}

func ValidatePositiveInt(value int64, fieldName string) error {
	if value <= 0 {
		return fmt.Errorf("%s must be positive", fieldName)
	}
	return nil
}

func ValidateNonEmpty(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}
	return nil
}

// ValidateTimeline checks that end is not before start.
func ValidateTimeline(start, end time.Time) error {
	if end.Before(start) {
		return fmt.Errorf("end date %s is before start date %s", end.Format(time.DateOnly), start.Format(time.DateOnly))
	}
	return nil
}
