package utils

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies failures for transport mapping and retry decisions.
type ErrorKind string

const (
	KindValidation       ErrorKind = "VALIDATION_ERROR"
	KindAuthentication   ErrorKind = "AUTHENTICATION_ERROR"
	KindAuthorization    ErrorKind = "AUTHORIZATION_ERROR"
	KindNotFound         ErrorKind = "NOT_FOUND"
	KindConflict         ErrorKind = "CONFLICT"
	KindTransientStorage ErrorKind = "TRANSIENT_STORAGE_ERROR"
	KindTimeout          ErrorKind = "TIMEOUT"
	KindInternal         ErrorKind = "INTERNAL_ERROR"
)

type AppError struct {
	Kind    ErrorKind
	Message string
	Details map[string]string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches another *AppError of the same kind, so errors.Is(err,
// utils.ErrKindNotFound) works through wrapping.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

// Sentinels for errors.Is checks.
var (
	ErrKindValidation       = &AppError{Kind: KindValidation}
	ErrKindAuthentication   = &AppError{Kind: KindAuthentication}
	ErrKindAuthorization    = &AppError{Kind: KindAuthorization}
	ErrKindNotFound         = &AppError{Kind: KindNotFound}
	ErrKindConflict         = &AppError{Kind: KindConflict}
	ErrKindTransientStorage = &AppError{Kind: KindTransientStorage}
	ErrKindTimeout          = &AppError{Kind: KindTimeout}
)

func NewValidationError(message string, details map[string]string) *AppError {
	return &AppError{Kind: KindValidation, Message: message, Details: details}
}

func NewAuthenticationError(message string) *AppError {
	return &AppError{Kind: KindAuthentication, Message: message}
}

func NewAuthorizationError(message string) *AppError {
	return &AppError{Kind: KindAuthorization, Message: message}
}

func NewNotFoundError(resource string) *AppError {
	return &AppError{Kind: KindNotFound, Message: resource + " not found"}
}

func NewConflictError(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message}
}

func NewTransientStorageError(message string, err error) *AppError {
	return &AppError{Kind: KindTransientStorage, Message: message, Err: err}
}

func NewTimeoutError(err error) *AppError {
	return &AppError{Kind: KindTimeout, Message: ErrRequestTimeout, Err: err}
}

// KindOf returns the kind of the first AppError in err's chain. Context
// deadline and cancellation errors without an AppError count as timeouts.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindTimeout
	}
	return KindInternal
}

// IsRetryable reports whether repeating the operation may succeed.
func IsRetryable(err error) bool {
	switch KindOf(err) {
	case KindTransientStorage, KindTimeout:
		return true
	}
	return false
}

func HTTPStatus(kind ErrorKind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindTransientStorage:
		return http.StatusServiceUnavailable
	case KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
