// Package apperror maps domain errors onto HTTP-facing application errors.
package apperror

import (
	"errors"
	"net/http"

	"github.com/cmdgate/cmdgate/domain"
)

type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func (e *AppError) Error() string {
	return e.Message
}

var (
	ErrBadRequest     = &AppError{Code: "BAD_REQUEST", Message: "Bad request", Status: http.StatusBadRequest}
	ErrUnauthorized   = &AppError{Code: "UNAUTHORIZED", Message: "Unauthorized", Status: http.StatusUnauthorized}
	ErrForbidden      = &AppError{Code: "FORBIDDEN", Message: "Forbidden", Status: http.StatusForbidden}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Not found", Status: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "Internal server error", Status: http.StatusInternalServerError}
)

func NewBadRequest(message string) *AppError {
	return &AppError{Code: "BAD_REQUEST", Message: message, Status: http.StatusBadRequest}
}

func NewUnauthorized(message string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Message: message, Status: http.StatusUnauthorized}
}

func NewForbidden(message string) *AppError {
	return &AppError{Code: "FORBIDDEN", Message: message, Status: http.StatusForbidden}
}

func NewNotFound(message string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: message, Status: http.StatusNotFound}
}

func NewUnprocessable(message string) *AppError {
	return &AppError{Code: "UNPROCESSABLE", Message: message, Status: http.StatusUnprocessableEntity}
}

func NewInternalServer(message string) *AppError {
	return &AppError{Code: "INTERNAL_ERROR", Message: message, Status: http.StatusInternalServerError}
}

// MapError converts a domain error into an AppError for the HTTP boundary.
func MapError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return NewUnauthorized(err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return NewForbidden(err.Error())
	case errors.Is(err, domain.ErrInvalidCommand):
		return NewBadRequest(err.Error())
	case errors.Is(err, domain.ErrInvalidPattern),
		errors.Is(err, domain.ErrInvalidAction),
		errors.Is(err, domain.ErrInvalidRole),
		errors.Is(err, domain.ErrNegativeCredits):
		return NewUnprocessable(err.Error())
	case errors.Is(err, domain.ErrRuleNotFound), errors.Is(err, domain.ErrPrincipalNotFound):
		return NewNotFound(err.Error())
	default:
		return NewInternalServer("An unexpected error occurred")
	}
}
