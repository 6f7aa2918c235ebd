package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNewFieldValidation_MessageOrder(t *testing.T) {
	err := NewFieldValidation(map[string]string{
		"title": "Title is required",
		"end":   "End time must be after start time",
	})

	if err.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", err.Code)
	}
	want := "End time must be after start time; Title is required"
	if err.Message != want {
		t.Errorf("expected %q, got %q", want, err.Message)
	}
	if len(err.Fields) != 2 {
		t.Errorf("expected 2 fields, got %d", len(err.Fields))
	}
}

func TestFieldErrors_Wrapped(t *testing.T) {
	inner := NewFieldValidation(map[string]string{"title": "Title is required"})
	wrapped := fmt.Errorf("adding event: %w", inner)

	fields := FieldErrors(wrapped)
	if fields["title"] != "Title is required" {
		t.Errorf("expected title message through wrap, got %v", fields)
	}
	if FieldErrors(errors.New("plain")) != nil {
		t.Error("expected nil fields for plain error")
	}
}

func TestSafeMessageAndCode(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"not found", NewNotFound("event not found"), http.StatusNotFound, "event not found"},
		{"wrapped conflict", fmt.Errorf("x: %w", NewConflict("dup")), http.StatusConflict, "dup"},
		{"internal hides cause", NewInternal(errors.New("table events missing")), http.StatusInternalServerError, "An unexpected error occurred. Please try again."},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "an unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafeCode(tt.err); got != tt.code {
				t.Errorf("SafeCode = %d, want %d", got, tt.code)
			}
			if got := SafeMessage(tt.err); got != tt.message {
				t.Errorf("SafeMessage = %q, want %q", got, tt.message)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewInternal(cause)
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to reach the internal cause")
	}
}
