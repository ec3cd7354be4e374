package errors

import (
	"errors"
	"testing"
)

// TestAppError_Error verifies message formatting with and without a wrapped error
func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name   string
		appErr *AppError
		want   string
	}{
		{
			name:   "without underlying error",
			appErr: NewValidationError("snooze minutes must be positive", nil),
			want:   "VALIDATION_ERROR: snooze minutes must be positive",
		},
		{
			name:   "with underlying error",
			appErr: NewInternalError("failed to load configs", errors.New("connection refused")),
			want:   "INTERNAL_ERROR: failed to load configs - connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.want {
				t.Errorf("Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestConstructors verifies each constructor assigns its code
func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		code string
	}{
		{"validation", NewValidationError("m", nil), "VALIDATION_ERROR"},
		{"internal", NewInternalError("m", nil), "INTERNAL_ERROR"},
		{"not found", NewNotFoundError("m", nil), "NOT_FOUND"},
		{"unauthorized", NewUnauthorizedError("m", nil), "UNAUTHORIZED"},
		{"forbidden", NewForbiddenError("m", nil), "FORBIDDEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %v, want %v", tt.err.Code, tt.code)
			}
			if tt.err.Message != "m" {
				t.Errorf("Message = %v, want m", tt.err.Message)
			}
		})
	}
}

// TestUnwrap verifies errors.Is sees through AppError
func TestUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := NewInternalError("wrapper", inner)

	if !errors.Is(err, inner) {
		t.Error("errors.Is() should match the wrapped error")
	}
}

// TestIsCode verifies code matching on plain and wrapped errors
func TestIsCode(t *testing.T) {
	if !IsCode(NewForbiddenError("nope", nil), "FORBIDDEN") {
		t.Error("IsCode() should match a forbidden error")
	}
	if IsCode(errors.New("plain"), "FORBIDDEN") {
		t.Error("IsCode() should not match a non-AppError")
	}
}
