package errors

import (
	"regexp"
	"strings"
	"unicode"
)

var taskIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateTaskID checks that id is usable as a task identifier.
// Task ids may contain ASCII letters, digits, underscores and dashes only.
func ValidateTaskID(id string) error {
	if strings.TrimSpace(id) == "" {
		return New(ErrCodeInvalidTaskID, "task id cannot be empty")
	}
	if !taskIDPattern.MatchString(id) {
		return New(ErrCodeInvalidTaskID, "task id %q may only contain letters, numbers, underscores and dashes", id)
	}
	return nil
}

// ValidateHistoryName validates a display name for a saved document.
func ValidateHistoryName(name string) error {
	if len(name) > 256 {
		return New(ErrCodeInvalidInput, "name too long (max 256 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "name contains invalid control characters")
		}
	}
	return nil
}
