package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is the typed domain error every layer speaks. Code is stable
// across releases and is what clients switch on; Status is the HTTP
// mapping applied at the edge.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches by Code, so a Clone with an overridden message still
// compares equal to its sentinel under errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e != nil && t != nil && e.Code == t.Code
}

// New builds a fresh Error.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap builds an Error around a lower-level cause.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Clone copies a sentinel so a caller can override the message without
// mutating the shared value.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// FromError normalises any error into an *Error, hiding unknown causes
// behind INTERNAL_ERROR.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// General sentinels.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrInactiveAccount    = New("ACCOUNT_INACTIVE", http.StatusForbidden, "account is inactive")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss          = New("CACHE_MISS", http.StatusNotFound, "cache entry not found")
)

// Scheduling sentinels. The conflict family (409) covers both version
// races and state-machine dead ends so clients can refetch and retry.
var (
	ErrPermissionDenied       = New("PERMISSION_DENIED", http.StatusForbidden, "actor is not allowed to modify this booking")
	ErrInvalidTimeRange       = New("INVALID_TIME_RANGE", http.StatusBadRequest, "start time must be before end time")
	ErrPastTime               = New("PAST_TIME_REJECTED", http.StatusUnprocessableEntity, "target time is in the past")
	ErrConcurrentModification = New("CONCURRENT_MODIFICATION", http.StatusConflict, "booking was modified by another actor")
	ErrBookingFinalized       = New("BOOKING_FINALIZED", http.StatusConflict, "booking is in a terminal state")
	ErrBlockedOverlap         = New("BLOCKED_OVERLAP", http.StatusConflict, "blocked interval overlaps an existing one")
	ErrSlotUnavailable        = New("SLOT_UNAVAILABLE", http.StatusConflict, "requested window is not available")
)
