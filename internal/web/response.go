// Package web holds the HTTP plumbing shared by every service handler:
// JSON responses in one error shape, request decoding and middleware.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"canteen-system/internal/apperror"
	"canteen-system/internal/logger"
)

type contextKey int

const requestIDKey contextKey = iota

// WithRequestID stores the request ID in ctx
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestID returns the request ID stored by the logging middleware
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Error     string `json:"error"`
	Field     string `json:"field,omitempty"`
	Timestamp string `json:"timestamp"`
	RequestID string `json:"request_id"`
}

// WriteJSON writes v as a JSON body with the given status
func WriteJSON(w http.ResponseWriter, statusCode int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(v)
}

// WriteErrorResponse writes an error response in JSON format
func WriteErrorResponse(w http.ResponseWriter, statusCode int, message, field, requestID string) {
	_ = WriteJSON(w, statusCode, ErrorResponse{
		Error:     message,
		Field:     field,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RequestID: requestID,
	})
}

// Responder writes JSON replies and logs failures on behalf of a handler
type Responder struct {
	logger *logger.Logger
}

// NewResponder creates a responder logging through log
func NewResponder(log *logger.Logger) *Responder {
	return &Responder{logger: log}
}

// JSON writes a success reply, logging encoding failures
func (rs *Responder) JSON(w http.ResponseWriter, r *http.Request, statusCode int, v interface{}) {
	if err := WriteJSON(w, statusCode, v); err != nil {
		rs.logger.Error("response_encoding_failed", "Failed to encode response", RequestID(r.Context()), err, nil)
	}
}

// Error classifies err and writes the matching reply. Internal errors are
// logged with details and answered with a generic message.
func (rs *Responder) Error(w http.ResponseWriter, r *http.Request, action string, err error) {
	requestID := RequestID(r.Context())
	statusCode := apperror.HTTPStatus(err)

	var appErr *apperror.Error
	if statusCode == http.StatusInternalServerError || !errors.As(err, &appErr) {
		rs.logger.Error(action, "Request failed", requestID, err, map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
		})
		WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error", "", requestID)
		return
	}

	rs.logger.Debug(action, appErr.Message, requestID, map[string]interface{}{
		"kind":        appErr.Kind.String(),
		"field":       appErr.Field,
		"status_code": statusCode,
	})
	WriteErrorResponse(w, statusCode, appErr.Message, appErr.Field, requestID)
}

// DecodeJSON decodes a JSON request body into dst, rejecting unknown fields
func DecodeJSON(r *http.Request, dst interface{}) error {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || mediaType != "application/json" {
			return apperror.Validation("", "Content-Type must be application/json")
		}
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			return appErr
		}
		return apperror.Validation("", "Invalid JSON format")
	}
	return nil
}

// IDParam parses a positive integer URL parameter. Anything else is reported as not found.
func IDParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.NotFound("Not found")
	}
	return id, nil
}
