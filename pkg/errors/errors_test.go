package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidConfig, "missing %s", "service_url")

	if err.Code != ErrCodeInvalidConfig {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidConfig)
	}
	if err.Message != "missing service_url" {
		t.Errorf("Message = %v", err.Message)
	}
	if want := "INVALID_CONFIG: missing service_url"; err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrCodeFetchFailed, cause, "search catalog")

	if errors.Unwrap(err) != cause {
		t.Error("Unwrap() should return the cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	if want := "FETCH_FAILED: search catalog: connection refused"; err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"matching code", New(ErrCodeHarvestFailed, "x"), ErrCodeHarvestFailed, true},
		{"different code", New(ErrCodeHarvestFailed, "x"), ErrCodeStoreFailed, false},
		{"wrapped by fmt", fmt.Errorf("outer: %w", New(ErrCodeStoreFailed, "x")), ErrCodeStoreFailed, true},
		{"plain error", errors.New("x"), ErrCodeInternal, false},
		{"nil", nil, ErrCodeInternal, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(Wrap(ErrCodeNetwork, errors.New("x"), "y")); got != ErrCodeNetwork {
		t.Errorf("GetCode() = %v", got)
	}
	if got := GetCode(errors.New("x")); got != "" {
		t.Errorf("GetCode(plain) = %v, want empty", got)
	}
}

func TestFatal(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{New(ErrCodeHarvestFailed, "x"), false},
		{New(ErrCodeDimensionsFailed, "x"), false},
		{New(ErrCodeResourceFailed, "x"), false},
		{New(ErrCodeFetchFailed, "x"), true},
		{New(ErrCodeStoreFailed, "x"), true},
		{errors.New("unclassified"), true},
	}
	for _, tt := range tests {
		if got := Fatal(tt.err); got != tt.want {
			t.Errorf("Fatal(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeInvalidURL, "bad url")); got != "bad url" {
		t.Errorf("UserMessage() = %q", got)
	}
	if got := UserMessage(Wrap(ErrCodeNetwork, errors.New("timeout"), "fetch")); got != "fetch: timeout" {
		t.Errorf("UserMessage(wrapped) = %q", got)
	}
	if got := UserMessage(errors.New("plain")); got != "plain" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}
