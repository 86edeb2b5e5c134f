package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Errorf(KindValidation, "bad input"), KindValidation},
		{"conflict", Errorf(KindConflict, "duplicate"), KindConflict},
		{"wrapped domain error", fmt.Errorf("handler: %w", Errorf(KindNotFound, "gone")), KindNotFound},
		{"plain error", errors.New("boom"), KindInternal},
		{"with cause", NewError(KindForbidden, "nope", errors.New("role=student")), KindForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUserMessage_HidesInternalDetail(t *testing.T) {
	err := fmt.Errorf("insert company: %w", errors.New("connection refused to 10.0.0.5:5432"))

	msg := UserMessage(err)
	if msg == "" {
		t.Fatal("UserMessage() returned empty string")
	}
	if got := msg; got == err.Error() {
		t.Errorf("UserMessage() leaked technical detail: %q", got)
	}
}

func TestUserMessage_ShowsDomainMessage(t *testing.T) {
	err := Errorf(KindConflict, "company %q is already listed", "Acme")

	if got := UserMessage(err); got != `company "Acme" is already listed` {
		t.Errorf("UserMessage() = %q", got)
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := NewError(KindInternal, "wrapper", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause through Unwrap")
	}
	if want := "wrapper: root cause"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{Errorf(KindValidation, "x"), "VALIDATION"},
		{Errorf(KindForbidden, "x"), "FORBIDDEN"},
		{Errorf(KindConflict, "x"), "CONFLICT"},
		{Errorf(KindNotFound, "x"), "NOT_FOUND"},
		{errors.New("x"), "INTERNAL"},
	}

	for _, tt := range tests {
		if got := Code(tt.err); got != tt.want {
			t.Errorf("Code(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
