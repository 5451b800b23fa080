package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// SuccessResponse represents a successful API response
type SuccessResponse struct {
	Data any  `json:"data"`
	Meta Meta `json:"meta"`
}

// Meta represents metadata in response
type Meta struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message,omitempty"`
	Count     int       `json:"count,omitempty"`
}

// ErrorResponse represents an error API response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error details
type ErrorDetail struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Error codes
const (
	ErrCodeInternalServer     = "INTERNAL_SERVER_ERROR"
	ErrCodeInvalidParameter   = "INVALID_PARAMETER"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeStorage            = "STORAGE_ERROR"
	ErrCodeExternalAPIError   = "EXTERNAL_API_ERROR"
	ErrCodeExternalAPITimeout = "EXTERNAL_API_TIMEOUT"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

// Success sends data wrapped in the success envelope.
func Success(w http.ResponseWriter, r *http.Request, status int, data any, message string) {
	writeJSON(w, status, SuccessResponse{
		Data: data,
		Meta: Meta{
			RequestID: GetRequestID(r.Context()),
			Timestamp: time.Now(),
			Message:   message,
		},
	})
}

// SuccessList sends list data with its count.
func SuccessList(w http.ResponseWriter, r *http.Request, data any, count int) {
	writeJSON(w, http.StatusOK, SuccessResponse{
		Data: data,
		Meta: Meta{
			RequestID: GetRequestID(r.Context()),
			Timestamp: time.Now(),
			Count:     count,
		},
	})
}

// Error sends an error response
func Error(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	ErrorWithDetails(w, r, status, code, message, "")
}

// ErrorWithDetails sends an error response with additional details
func ErrorWithDetails(w http.ResponseWriter, r *http.Request, status int, code, message, details string) {
	resp := ErrorResponse{
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: GetRequestID(r.Context()),
			Timestamp: time.Now(),
		},
	}
	event := log.Warn()
	if status >= 500 {
		event = log.Error()
	}
	event.
		Str("request_id", resp.Error.RequestID).
		Str("error_code", code).
		Str("error_message", message).
		Int("status", status).
		Msg("API error response")

	writeJSON(w, status, resp)
}

// BadRequest sends a 400 Bad Request error
func BadRequest(w http.ResponseWriter, r *http.Request, message string) {
	Error(w, r, http.StatusBadRequest, ErrCodeInvalidParameter, message)
}

// NotFound sends a 404 Not Found error
func NotFound(w http.ResponseWriter, r *http.Request, message string) {
	Error(w, r, http.StatusNotFound, ErrCodeNotFound, message)
}
