package domain

import (
	"errors"
	"net/http"
)

// Error codes carried by AppError.
const (
	CodeNotFound = iota + 1
	CodeAlreadyExists
	CodeValidation
	CodeInternal
	CodeNetwork
	// CodePendingValidation marks a submit refused while a uniqueness
	// check is still running.
	CodePendingValidation
)

// AppError is the error type shared by the gateway, the controllers and the
// handlers. Status is the HTTP status the backend answered with, 0 when no
// response was received.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error { return e.Err }

// Errors raised locally. Remote failures are built with NewRemoteError.
// Match errors with the Is* helpers, which compare codes, not with errors.Is.
var (
	ErrInternal          = &AppError{Code: CodeInternal, Message: "internal error"}
	ErrPendingValidation = &AppError{Code: CodePendingValidation, Message: "validation pending"}
)

// statusByCode is the status an AppError is reported with.
var statusByCode = map[int]int{
	CodeNotFound:          http.StatusNotFound,
	CodeAlreadyExists:     http.StatusConflict,
	CodeValidation:        http.StatusBadRequest,
	CodePendingValidation: http.StatusAccepted,
	CodeNetwork:           http.StatusBadGateway,
	CodeInternal:          http.StatusInternalServerError,
}

// codeByRemoteStatus classifies backend answers. Anything else is CodeNetwork.
var codeByRemoteStatus = map[int]int{
	http.StatusNotFound:            CodeNotFound,
	http.StatusConflict:            CodeAlreadyExists,
	http.StatusBadRequest:          CodeValidation,
	http.StatusUnprocessableEntity: CodeValidation,
}

func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewRemoteError wraps a failed backend call, deriving the code from status.
func NewRemoteError(status int, message string, err error) *AppError {
	code, ok := codeByRemoteStatus[status]
	if !ok {
		code = CodeNetwork
	}
	return &AppError{Code: code, Message: message, Status: status, Err: err}
}

func IsNotFound(err error) bool          { return codeOf(err) == CodeNotFound }
func IsAlreadyExists(err error) bool     { return codeOf(err) == CodeAlreadyExists }
func IsValidation(err error) bool        { return codeOf(err) == CodeValidation }
func IsInternal(err error) bool          { return codeOf(err) == CodeInternal }
func IsNetwork(err error) bool           { return codeOf(err) == CodeNetwork }
func IsPendingValidation(err error) bool { return codeOf(err) == CodePendingValidation }

// codeOf returns the code of the first AppError in err's chain, or 0.
func codeOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return 0
}

// HTTPStatusCode maps err to a response status; errors without a known code
// are 500.
func HTTPStatusCode(err error) int {
	if status, ok := statusByCode[codeOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}
