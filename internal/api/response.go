// LensAtlas - Photo Archive Metadata Ingestion and Analytics
// Copyright 2026 LensAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lensatlas/lensatlas

// Package api provides the HTTP surface: ingestion trigger and status,
// runtime overrides, health probes, metrics, and the WebSocket feed. All
// JSON endpoints share one response envelope.
package api

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"

	"github.com/lensatlas/lensatlas/internal/logging"
)

// APIResponse is the envelope for every JSON endpoint.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *APIMeta    `json:"meta,omitempty"`
}

// APIError carries a machine-readable code and human-readable message.
type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// APIMeta is per-response metadata.
type APIMeta struct {
	RequestID  string    `json:"request_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	DurationMs int64     `json:"duration_ms,omitempty"`
}

// Error codes used across endpoints.
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeValidationFailed   = "VALIDATION_FAILED"
)

// ResponseWriter writes envelope responses for one request.
type ResponseWriter struct {
	w         http.ResponseWriter
	r         *http.Request
	startTime time.Time
}

func NewResponseWriter(w http.ResponseWriter, r *http.Request) *ResponseWriter {
	return &ResponseWriter{w: w, r: r, startTime: time.Now()}
}

// Success writes a 200 response with data.
func (rw *ResponseWriter) Success(data interface{}) {
	rw.writeJSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
		Meta:    rw.meta(),
	})
}

// Accepted writes a 202 response for work that continues in the background.
func (rw *ResponseWriter) Accepted(data interface{}) {
	rw.writeJSON(http.StatusAccepted, APIResponse{
		Success: true,
		Data:    data,
		Meta:    rw.meta(),
	})
}

// NoContent writes a 204 response.
func (rw *ResponseWriter) NoContent() {
	rw.w.WriteHeader(http.StatusNoContent)
}

// Error writes an error response with the given status code.
func (rw *ResponseWriter) Error(statusCode int, code, message string) {
	rw.ErrorWithDetails(statusCode, code, message, nil)
}

// ErrorWithDetails writes an error response with additional details.
func (rw *ResponseWriter) ErrorWithDetails(statusCode int, code, message string, details interface{}) {
	rw.writeJSON(statusCode, APIResponse{
		Success: false,
		Error: &APIError{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: chimiddleware.GetReqID(rw.r.Context()),
		},
		Meta: rw.meta(),
	})
}

// BadRequest writes a 400 error.
func (rw *ResponseWriter) BadRequest(message string) {
	rw.Error(http.StatusBadRequest, ErrCodeBadRequest, message)
}

// NotFound writes a 404 error.
func (rw *ResponseWriter) NotFound(message string) {
	rw.Error(http.StatusNotFound, ErrCodeNotFound, message)
}

// ValidationFailed writes a 400 error with field-level details.
func (rw *ResponseWriter) ValidationFailed(details interface{}) {
	rw.ErrorWithDetails(http.StatusBadRequest, ErrCodeValidationFailed, "request validation failed", details)
}

// InternalError writes a 500 error.
func (rw *ResponseWriter) InternalError(message string) {
	rw.Error(http.StatusInternalServerError, ErrCodeInternalError, message)
}

// ServiceUnavailable writes a 503 error.
func (rw *ResponseWriter) ServiceUnavailable(message string) {
	rw.Error(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, message)
}

func (rw *ResponseWriter) meta() *APIMeta {
	return &APIMeta{
		RequestID:  chimiddleware.GetReqID(rw.r.Context()),
		Timestamp:  time.Now().UTC(),
		DurationMs: time.Since(rw.startTime).Milliseconds(),
	}
}

func (rw *ResponseWriter) writeJSON(statusCode int, response APIResponse) {
	rw.w.Header().Set("Content-Type", "application/json")
	rw.w.WriteHeader(statusCode)
	if err := json.NewEncoder(rw.w).Encode(response); err != nil {
		logging.Error().Err(err).Msg("failed to encode API response")
	}
}
