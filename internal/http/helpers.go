package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"renewme/internal/core"
	"renewme/internal/export"
	applog "renewme/internal/log"
	"renewme/internal/services"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string, details ...string) {
	writeJSON(w, status, errorResponse{Error: msg, Details: details})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// decodeJSON reads a bounded JSON body into dst, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// handleServiceError maps service errors to HTTP responses. op names the
// failed operation in the log.
func handleServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	logger := applog.FromContext(ctx)
	switch {
	case services.IsNotFound(err):
		logger.DebugContext(ctx, "Subscription not found", applog.FieldOperation, op, applog.FieldError, err)
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrDuplicateID):
		logger.DebugContext(ctx, "Duplicate subscription", applog.FieldOperation, op, applog.FieldError, err)
		writeError(w, http.StatusConflict, err.Error())
	case core.IsValidationError(err), errors.Is(err, export.ErrEmptyImport):
		logger.DebugContext(ctx, "Validation error", applog.FieldOperation, op, applog.FieldError, err)
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		logger.ErrorContext(ctx, "Unhandled error",
			applog.FieldOperation, op,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// sanitizeInput trims whitespace and strips control characters other than
// tab and newlines.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
