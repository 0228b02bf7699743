package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spec-kit/ticket-dashboard/internal/domain"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewInvalidArgument(message string, details map[string]any) error {
	return NewDomainError("INVALID_ARGUMENT", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewRetrievalFailed(err error) error {
	return &DomainError{
		Code:       "RETRIEVAL_FAILED",
		Message:    "failed to load tickets",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts domain sentinels and generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	var mapped error
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		mapped = NewInvalidArgument(err.Error(), nil)
	case errors.Is(err, domain.ErrTicketNotFound):
		mapped = NewNotFound("ticket", nil)
	case errors.Is(err, domain.ErrRetrievalFailed):
		mapped = NewRetrievalFailed(err)
	default:
		mapped = NewInternalError(err)
	}
	de, _ := mapped.(*DomainError)
	return de
}

// MapError converts generic errors to DomainError.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}
