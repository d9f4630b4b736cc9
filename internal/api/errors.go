package api

import (
	"errors"
	"net/http"

	"github.com/mahiatlinux/FlashCardMasher/internal/export"
	"github.com/mahiatlinux/FlashCardMasher/internal/extract"
	"github.com/mahiatlinux/FlashCardMasher/internal/generation"
	"github.com/mahiatlinux/FlashCardMasher/internal/store"
	"github.com/mahiatlinux/FlashCardMasher/internal/study"
	"github.com/mahiatlinux/FlashCardMasher/internal/task"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status
// codes based on the error type. This prevents leaking internal error
// types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, study.ErrSessionNotFound),
		errors.Is(err, task.ErrJobNotFound):
		return http.StatusNotFound

	// Session state violations
	case errors.Is(err, study.ErrNotInProgress),
		errors.Is(err, study.ErrNotComplete),
		errors.Is(err, study.ErrAlreadyInProgress),
		errors.Is(err, study.ErrEmptyDeck):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, study.ErrInvalidConfidence),
		errors.Is(err, generation.ErrInvalidOptions),
		errors.Is(err, generation.ErrEmptySource),
		errors.Is(err, task.ErrBadSource),
		errors.Is(err, export.ErrUnknownFormat),
		errors.Is(err, export.ErrUnrecognizedImport),
		errors.Is(err, extract.ErrEmptyResult):
		return http.StatusBadRequest

	// Upload constraint errors
	case errors.Is(err, extract.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, extract.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType

	// Backpressure
	case errors.Is(err, task.ErrQueueFull),
		errors.Is(err, task.ErrQueueClosed):
		return http.StatusServiceUnavailable

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// for the mapped status. Collaborator failure detail is reserved for
// generation job polling, where it is shown verbatim.
func GetSafeErrorMessage(err error) string {
	switch MapErrorToStatusCode(err) {
	case http.StatusNotFound:
		return "resource not found"
	case http.StatusConflict:
		return "operation not valid in the session's current state"
	case http.StatusBadRequest:
		return err.Error()
	case http.StatusRequestEntityTooLarge:
		return "uploaded content is too large"
	case http.StatusUnsupportedMediaType:
		return "unsupported file type"
	case http.StatusServiceUnavailable:
		return "generation queue is full, try again later"
	default:
		return "an internal error occurred"
	}
}

// RespondMappedError is the common handler exit for service errors.
func RespondMappedError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)
	respondError(w, r, status, GetSafeErrorMessage(err), err)
}
