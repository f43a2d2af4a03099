package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidInput, "test message: %s", "value")

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidInput)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_INPUT: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeStorage, cause, "failed to save entry")

	if err.Code != ErrCodeStorage {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeStorage)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	// Test Unwrap
	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	// Test errors.Is with wrapped error
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeInvalidInput, "test"),
			code:     ErrCodeInvalidInput,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeInvalidInput, "test"),
			code:     ErrCodeStorage,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeStorage, New(ErrCodeInvalidInput, "inner"), "outer"),
			code:     ErrCodeStorage,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeInvalidSchema, "test"),
			expected: ErrCodeInvalidSchema,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			expected: "",
		},
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeInvalidInput, "friendly message"),
			expected: "friendly message",
		},
		{
			name:     "plain error",
			err:      errors.New("plain error"),
			expected: "plain error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessageIncludesSyntaxCause(t *testing.T) {
	err := Wrap(ErrCodeInvalidJSON, errors.New("unexpected end of JSON input"), "invalid JSON")
	want := "invalid JSON: unexpected end of JSON input"
	if got := UserMessage(err); got != want {
		t.Errorf("UserMessage() = %v, want %v", got, want)
	}
}

func TestClassification(t *testing.T) {
	tests := []struct {
		err        error
		validation bool
		notFound   bool
	}{
		{New(ErrCodeInvalidSchema, "x"), true, false},
		{New(ErrCodeDuplicateTaskID, "x"), true, false},
		{New(ErrCodeTaskNotFound, "x"), false, true},
		{New(ErrCodeEntryNotFound, "x"), false, true},
		{New(ErrCodeStorage, "x"), false, false},
		{errors.New("plain"), false, false},
	}
	for _, tt := range tests {
		if got := IsValidation(tt.err); got != tt.validation {
			t.Errorf("IsValidation(%v) = %v, want %v", tt.err, got, tt.validation)
		}
		if got := IsNotFound(tt.err); got != tt.notFound {
			t.Errorf("IsNotFound(%v) = %v, want %v", tt.err, got, tt.notFound)
		}
	}
}

func TestValidateTaskID(t *testing.T) {
	tests := []struct {
		id      string
		wantErr bool
	}{
		{"task_1", false},
		{"load-data", false},
		{"ABC123", false},
		{"", true},
		{"   ", true},
		{"has space", true},
		{"dots.are.bad", true},
		{"emoji🙂", true},
	}
	for _, tt := range tests {
		err := ValidateTaskID(tt.id)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateTaskID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
		}
		if err != nil && !Is(err, ErrCodeInvalidTaskID) {
			t.Errorf("ValidateTaskID(%q) code = %v, want %v", tt.id, GetCode(err), ErrCodeInvalidTaskID)
		}
	}
}

func TestValidateHistoryName(t *testing.T) {
	if err := ValidateHistoryName("nightly ETL"); err != nil {
		t.Errorf("ValidateHistoryName() unexpected error: %v", err)
	}
	if err := ValidateHistoryName("bad\x00name"); err == nil {
		t.Error("ValidateHistoryName() expected error for control character")
	}
}
