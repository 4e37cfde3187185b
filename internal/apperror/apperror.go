// Package apperror defines the application error kinds and the single place
// where they are turned into HTTP responses.
package apperror

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"eshop-api/internal/logger"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInternal     = errors.New("internal error")
)

const internalMessage = "An unexpected error occurred"

// Error carries a client-safe Message, its Kind and the underlying cause.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Is(target error) bool { return target == e.Kind }

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) error { return &Error{Kind: ErrValidation, Message: msg} }

func Unauthorized(msg string) error { return &Error{Kind: ErrUnauthorized, Message: msg} }

func NotFound(msg string) error { return &Error{Kind: ErrNotFound, Message: msg} }

func Conflict(msg string) error { return &Error{Kind: ErrConflict, Message: msg} }

func Internal(msg string, err error) error {
	return &Error{Kind: ErrInternal, Message: msg, Err: err}
}

// Status maps an error onto its HTTP status code.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Message returns what the client may see. Internal failures never leak
// their cause.
func Message(err error) string {
	status := Status(err)
	var appErr *Error
	if status != http.StatusInternalServerError && errors.As(err, &appErr) {
		return appErr.Message
	}
	if status == http.StatusInternalServerError {
		if errors.As(err, &appErr) && appErr.Message != "" {
			return appErr.Message
		}
		return internalMessage
	}
	return err.Error()
}

// Write logs err and writes it as {"message": ...} with the mapped status.
func Write(ctx context.Context, w http.ResponseWriter, err error) {
	status := Status(err)
	if status >= http.StatusInternalServerError {
		logger.Error(ctx, "Request failed", slog.Int("status", status), slog.String("error", err.Error()))
	} else {
		logger.Warn(ctx, "Request rejected", slog.Int("status", status), slog.String("error", err.Error()))
	}
	WriteJSON(w, status, map[string]string{"message": Message(err)})
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Instance().Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}
