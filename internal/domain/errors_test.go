package domain

import (
	"errors"
	"net/http"
	"testing"
)

var (
	ErrNotFound      = &AppError{Code: CodeNotFound, Message: "not found"}
	ErrAlreadyExists = &AppError{Code: CodeAlreadyExists, Message: "already exists"}
	ErrValidation    = &AppError{Code: CodeValidation, Message: "validation error"}
	ErrNetwork       = &AppError{Code: CodeNetwork, Message: "remote service error"}
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "with wrapped error",
			err:  &AppError{Code: CodeNotFound, Message: "cliente not found", Err: errors.New("status 404")},
			want: "cliente not found: status 404",
		},
		{
			name: "without wrapped error",
			err:  &AppError{Code: CodeNotFound, Message: "cliente not found"},
			want: "cliente not found",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := errors.New("connection refused")
	appErr := NewAppError(CodeNetwork, "list clientes", inner)

	if !errors.Is(appErr, inner) {
		t.Error("Unwrap() should allow errors.Is to find wrapped error")
	}
	if (&AppError{Code: CodeInternal}).Unwrap() != nil {
		t.Error("Unwrap() should return nil when Err is nil")
	}
}

func TestNewRemoteError_MapsStatus(t *testing.T) {
	tests := []struct {
		status int
		code   int
	}{
		{http.StatusNotFound, CodeNotFound},
		{http.StatusConflict, CodeAlreadyExists},
		{http.StatusBadRequest, CodeValidation},
		{http.StatusUnprocessableEntity, CodeValidation},
		{http.StatusInternalServerError, CodeNetwork},
		{http.StatusBadGateway, CodeNetwork},
		{0, CodeNetwork},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := NewRemoteError(tt.status, "backend", nil)
			if err.Code != tt.code {
				t.Errorf("Code = %d; want %d", err.Code, tt.code)
			}
			if err.Status != tt.status {
				t.Errorf("Status = %d; want %d", err.Status, tt.status)
			}
		})
	}
}

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		checkFn func(error) bool
	}{
		{"ErrNotFound", ErrNotFound, IsNotFound},
		{"ErrAlreadyExists", ErrAlreadyExists, IsAlreadyExists},
		{"ErrValidation", ErrValidation, IsValidation},
		{"ErrInternal", ErrInternal, IsInternal},
		{"ErrNetwork", ErrNetwork, IsNetwork},
		{"ErrPendingValidation", ErrPendingValidation, IsPendingValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.checkFn(tt.err) {
				t.Errorf("check function should return true for %s", tt.name)
			}
			if tt.checkFn(errors.New("plain")) {
				t.Errorf("check function should return false for a non-AppError")
			}
		})
	}
}

func TestIsCheckers_WithWrappedErrors(t *testing.T) {
	wrapped := NewAppError(CodeAlreadyExists, "numId taken", ErrAlreadyExists)
	if !IsAlreadyExists(wrapped) {
		t.Error("IsAlreadyExists should detect wrapped ErrAlreadyExists")
	}
	if IsNotFound(wrapped) {
		t.Error("IsNotFound should return false for ErrAlreadyExists")
	}
}

func TestHTTPStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", ErrNotFound, http.StatusNotFound},
		{"already exists", ErrAlreadyExists, http.StatusConflict},
		{"validation", ErrValidation, http.StatusBadRequest},
		{"pending", ErrPendingValidation, http.StatusAccepted},
		{"network", ErrNetwork, http.StatusBadGateway},
		{"internal", ErrInternal, http.StatusInternalServerError},
		{"unknown code", NewAppError(999, "unknown", nil), http.StatusInternalServerError},
		{"non-AppError", errors.New("plain"), http.StatusInternalServerError},
		{"nil error", nil, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatusCode(tt.err); got != tt.want {
				t.Errorf("HTTPStatusCode() = %d; want %d", got, tt.want)
			}
		})
	}
}
