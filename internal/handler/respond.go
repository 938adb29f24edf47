package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/hcissey0/lecture-notes-app/internal/service"
	"github.com/hcissey0/lecture-notes-app/internal/validation"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError maps a service error to its HTTP status and a message that
// is safe to show to the user.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := classify(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "error", err, "method", r.Method, "path", r.URL.Path, "status", status)
	}
	writeJSON(w, status, errorResponse{Error: message})
}

func classify(err error) (int, string) {
	var fieldErr *validation.FieldError
	var maxBytesErr *http.MaxBytesError

	switch {
	case errors.As(err, &fieldErr):
		return http.StatusBadRequest, fieldErr.Message
	case errors.As(err, &maxBytesErr):
		return http.StatusBadRequest, "File size must be less than " + strconv.FormatInt(maxBytesErr.Limit>>20, 10) + " MB"
	case errors.Is(err, validation.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized, service.ErrUnauthenticated.Error()
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, service.ErrForbidden.Error()
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, service.ErrStorage):
		return http.StatusBadGateway, "file storage is unavailable, please try again"
	case errors.Is(err, service.ErrRecord):
		return http.StatusBadGateway, "the notes database is unavailable, please try again"
	default:
		return http.StatusInternalServerError, "something went wrong"
	}
}

// badRequest reports malformed input that never reached a service.
func badRequest(field, message string) error {
	return &validation.FieldError{Field: field, Message: message}
}

// decodeJSON reads a JSON body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	err := dec.Decode(v)
	if err != nil {
		return badRequest("body", "invalid JSON body: "+err.Error())
	}
	return nil
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, badRequest(key, key+" must be a non-negative integer")
	}
	return n, nil
}
