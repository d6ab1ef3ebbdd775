package handler

// RESPONSE HELPERS:
// These functions standardise how handlers send JSON and translate domain
// errors into HTTP. Every error response has the same shape:
//
//	{"error": "forbidden", "message": "you are not the author of this post"}
//
// so clients always know what fields to expect regardless of status code.
// This is the only place domain errors meet status codes — the service
// layer never sees HTTP.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/miniblog/internal/apperror"
)

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`           // Machine-readable error type (e.g., "not_found")
	Message string `json:"message"`         // Human-readable description
	Field   string `json:"field,omitempty"` // The offending input field, for validation errors
	Login   string `json:"login,omitempty"` // Where to authenticate, for 401s
}

// writeJSON sends a JSON response with the given status code.
//
// Headers and status must be set BEFORE the body: the first Write (which
// Encode does internally) flushes them, and later changes are silently
// ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already gone; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to an HTTP status and sends it.
//
// errors.Is walks the wrap chain (service wraps repository errors with %w),
// so the sentinel is found no matter how many layers added context. A 401
// additionally carries the login path — the JSON-API translation of
// "redirect to the login page". Unknown errors become a generic 500: the
// raw message might contain SQL or file paths and never reaches the client.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError

	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest // 400
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized // 401
			errorType = "unauthorized"
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden // 403
			errorType = "forbidden"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound // 404
			errorType = "not_found"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict // 409
			errorType = "conflict"
		}

		resp := ErrorResponse{
			Error:   errorType,
			Message: appErr.Message,
			Field:   appErr.Field,
		}
		if status == http.StatusUnauthorized {
			resp.Login = "/api/auth/login"
		}

		writeJSON(w, status, resp)
		return
	}

	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}
