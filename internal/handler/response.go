// Package handler contains the HTTP layer: request parsing, response
// writing, and nothing else. Business rules live in internal/service.
//
// Every JSON response carries the {"success": bool, "message": string}
// envelope, success and failure alike, so clients parse one shape.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/urban-reports/internal/apperror"
)

// ErrorResponse is the envelope used by every failing response.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`   // machine-readable type, e.g. "not_found"
	Message string `json:"message"` // human-readable description
}

// writeJSON sends data with the given status. Headers must be set before the
// first body write, hence the fixed order here.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to its HTTP status and writes the error
// envelope. This is the single place where apperror sentinels become status
// codes; services never see HTTP.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
			errorType = "unauthorized"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
			errorType = "conflict"
		case errors.Is(err, apperror.ErrUpload):
			status = http.StatusBadRequest
			errorType = "upload_error"
		}

		writeJSON(w, status, ErrorResponse{
			Success: false,
			Error:   errorType,
			Message: appErr.Message,
		})
		return
	}

	// Unexpected error — generic 500. The raw message may contain SQL or
	// file paths and is logged upstream, never exposed here.
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Success: false,
		Error:   "internal_error",
		Message: "an internal error occurred",
	})
}

// NotFoundHandler is the uniform JSON 404 for unmatched routes.
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, ErrorResponse{
		Success: false,
		Error:   "not_found",
		Message: "route not found",
	})
}
