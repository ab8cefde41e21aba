package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError provides a structured error that can be rendered to API consumers.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}

	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}

	return e.Message
}

// Unwrap exposes the internal error for errors.Is / errors.As compatibility.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Internal
}

// Is matches AppErrors by code, so copies produced by WithInternal and
// NewBadRequest still compare equal to their sentinel under errors.Is.
func (e *AppError) Is(target error) bool {
	var other *AppError
	if !errors.As(target, &other) {
		return false
	}
	return e != nil && other != nil && e.Code == other.Code
}

// WithInternal returns a copy of the AppError with an attached internal error.
func (e *AppError) WithInternal(err error) *AppError {
	if e == nil {
		return nil
	}

	cpy := *e
	cpy.Internal = err
	return &cpy
}

// Common errors exposed to the rest of the application.
var (
	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "Authentication required",
		StatusCode: http.StatusUnauthorized,
	}

	ErrInvalidCredentials = &AppError{
		Code:       "INVALID_CREDENTIALS",
		Message:    "Invalid email or password",
		StatusCode: http.StatusUnauthorized,
	}

	ErrForbidden = &AppError{
		Code:       "FORBIDDEN",
		Message:    "Permission denied",
		StatusCode: http.StatusForbidden,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		StatusCode: http.StatusNotFound,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: http.StatusBadRequest,
	}

	ErrInternalServer = &AppError{
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    "Internal server error",
		StatusCode: http.StatusInternalServerError,
	}

	ErrRateLimit = &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Too many requests, please slow down",
		StatusCode: http.StatusTooManyRequests,
	}
)

// RSVP submission errors. The codes form the wire contract consumed by the
// guest-facing flows, which map them to localized copy.
var (
	ErrRSVPDeadlinePassed = &AppError{
		Code:       "RSVP_DEADLINE_PASSED",
		Message:    "The RSVP deadline has passed",
		StatusCode: http.StatusUnprocessableEntity,
	}

	ErrPlusOneNotAllowed = &AppError{
		Code:       "PLUS_ONE_NOT_ALLOWED",
		Message:    "This invitation does not allow companions",
		StatusCode: http.StatusUnprocessableEntity,
	}

	ErrCompanionNameRequired = &AppError{
		Code:       "COMPANION_NAME_REQUIRED",
		Message:    "Companion name is required",
		StatusCode: http.StatusUnprocessableEntity,
	}

	ErrMaxCompanionsExceeded = &AppError{
		Code:       "MAX_COMPANIONS_EXCEEDED",
		Message:    "Attendee count exceeds the companion allowance",
		StatusCode: http.StatusUnprocessableEntity,
	}
)

// Guest message and song request errors.
var (
	ErrMessageAlreadySubmitted = &AppError{
		Code:       "MESSAGE_ALREADY_SUBMITTED",
		Message:    "A message was already submitted for this invitation",
		StatusCode: http.StatusConflict,
	}

	ErrSuggestionLimitReached = &AppError{
		Code:       "SUGGESTION_LIMIT_REACHED",
		Message:    "Song suggestion limit reached for this invitation",
		StatusCode: http.StatusUnprocessableEntity,
	}

	ErrQueryTextTooLong = &AppError{
		Code:       "QUERY_TEXT_TOO_LONG",
		Message:    "Song request text is too long",
		StatusCode: http.StatusUnprocessableEntity,
	}

	ErrDuplicateSongRequest = &AppError{
		Code:       "DUPLICATE_SONG_REQUEST",
		Message:    "That song has already been requested",
		StatusCode: http.StatusConflict,
	}

	ErrAlreadyVoted = &AppError{
		Code:       "ALREADY_VOTED",
		Message:    "You already voted for this song",
		StatusCode: http.StatusConflict,
	}
)

// New builds a new application error with the provided metadata.
func New(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Wrap turns any error into an AppError while keeping the original error for logging.
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Internal:   err,
	}
}

// FromError converts a generic error into an AppError, defaulting to ErrInternalServer.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return ErrInternalServer.WithInternal(err)
}

// NewBadRequest wraps validation errors with a helpful message.
func NewBadRequest(message string) *AppError {
	return &AppError{
		Code:       ErrBadRequest.Code,
		Message:    message,
		StatusCode: ErrBadRequest.StatusCode,
	}
}

// Code extracts the structured code from any error, empty when unknown.
func Code(err error) string {
	if err == nil {
		return ""
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
