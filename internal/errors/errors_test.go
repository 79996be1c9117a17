package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without cause",
			err: &AppError{
				Code:    ErrCodeNotFound,
				Message: "job not found",
			},
			want: "job not found",
		},
		{
			name: "error with cause",
			err: &AppError{
				Code:    ErrCodeInternal,
				Message: "failed to finalize run",
				Cause:   errors.New("underlying error"),
			},
			want: "failed to finalize run: underlying error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := &AppError{
		Code:    ErrCodeInternal,
		Message: "wrapped error",
		Cause:   cause,
	}

	if unwrapped := err.Unwrap(); !errors.Is(unwrapped, cause) {
		t.Errorf("AppError.Unwrap() = %v, want %v", unwrapped, cause)
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		wantCode ErrorCode
		wantMsg  string
	}{
		{
			name:     "NotFound",
			err:      NotFound("job not found"),
			wantCode: ErrCodeNotFound,
			wantMsg:  "job not found",
		},
		{
			name:     "NotFoundf",
			err:      NotFoundf("job %d not found", 42),
			wantCode: ErrCodeNotFound,
			wantMsg:  "job 42 not found",
		},
		{
			name:     "Conflict",
			err:      Conflict("job already claimed"),
			wantCode: ErrCodeConflict,
			wantMsg:  "job already claimed",
		},
		{
			name:     "Conflictf",
			err:      Conflictf("job %d already claimed", 7),
			wantCode: ErrCodeConflict,
			wantMsg:  "job 7 already claimed",
		},
		{
			name:     "Validation",
			err:      Validation("params is required"),
			wantCode: ErrCodeValidation,
			wantMsg:  "params is required",
		},
		{
			name:     "Validationf",
			err:      Validationf("unknown profile %q", "wifi_audit"),
			wantCode: ErrCodeValidation,
			wantMsg:  `unknown profile "wifi_audit"`,
		},
		{
			name:     "Internal",
			err:      Internal("unexpected state"),
			wantCode: ErrCodeInternal,
			wantMsg:  "unexpected state",
		},
		{
			name:     "Unavailable",
			err:      Unavailable("store unreachable"),
			wantCode: ErrCodeUnavailable,
			wantMsg:  "store unreachable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %v, want %v", tt.err.Code, tt.wantCode)
			}
			if tt.err.Message != tt.wantMsg {
				t.Errorf("Message = %v, want %v", tt.err.Message, tt.wantMsg)
			}
		})
	}
}

func TestValidationField(t *testing.T) {
	err := ValidationField("type", "job type is required")
	if err.Code != ErrCodeValidation {
		t.Errorf("ValidationField().Code = %v, want %v", err.Code, ErrCodeValidation)
	}
	if err.Field != "type" {
		t.Errorf("ValidationField().Field = %v, want %v", err.Field, "type")
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(cause, ErrCodeUnavailable, "store unreachable")
	if err.Code != ErrCodeUnavailable {
		t.Errorf("Wrap().Code = %v, want %v", err.Code, ErrCodeUnavailable)
	}
	if !errors.Is(err, cause) {
		t.Error("Wrap() should preserve the cause for errors.Is")
	}

	if got := Wrap(nil, ErrCodeInternal, "ignored"); got != nil {
		t.Errorf("Wrap(nil) = %v, want nil", got)
	}
}

func TestWrapf(t *testing.T) {
	cause := errors.New("boom")
	err := Wrapf(cause, ErrCodeInternal, "run %d failed", 3)
	if err.Message != "run 3 failed" {
		t.Errorf("Wrapf().Message = %v, want %v", err.Message, "run 3 failed")
	}
	if !errors.Is(err, cause) {
		t.Error("Wrapf() should preserve the cause for errors.Is")
	}

	if got := Wrapf(nil, ErrCodeInternal, "ignored"); got != nil {
		t.Errorf("Wrapf(nil) = %v, want nil", got)
	}
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name string
		err  error
		pred func(error) bool
		want bool
	}{
		{"IsNotFound match", NotFound("x"), IsNotFound, true},
		{"IsNotFound mismatch", Conflict("x"), IsNotFound, false},
		{"IsConflict match", Conflict("x"), IsConflict, true},
		{"IsValidation match", Validation("x"), IsValidation, true},
		{"IsUnavailable match", Unavailable("x"), IsUnavailable, true},
		{"IsTimeout match", &AppError{Code: ErrCodeTimeout, Message: "x"}, IsTimeout, true},
		{"plain error", errors.New("x"), IsNotFound, false},
		{"nil error", nil, IsNotFound, false},
		{
			name: "wrapped app error",
			err:  fmt.Errorf("claim job: %w", Conflict("job already claimed")),
			pred: IsConflict,
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pred(tt.err); got != tt.want {
				t.Errorf("predicate(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(NotFound("x")); got != ErrCodeNotFound {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeNotFound)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %v, want empty", got)
	}
}

func TestGetField(t *testing.T) {
	if got := GetField(ValidationField("params", "params is required")); got != "params" {
		t.Errorf("GetField() = %v, want %v", got, "params")
	}
	if got := GetField(errors.New("plain")); got != "" {
		t.Errorf("GetField(plain) = %v, want empty", got)
	}
}
