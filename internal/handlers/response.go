package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/vikasavnish/mandacarubroker/internal/utils"
	"github.com/vikasavnish/mandacarubroker/internal/validation"
)

// Error codes
const (
	ErrCodeValidation     = "VALIDATION_ERROR"
	ErrCodeInvalidRequest = "INVALID_REQUEST"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeConflict       = "CONFLICT"
	ErrCodeInternalServer = "INTERNAL_SERVER_ERROR"
)

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes what went wrong
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	RequestID string                 `json:"request_id,omitempty"`
	Fields    []validation.Violation `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Debug().Err(err).Msg("Failed to write response body")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			RequestID: utils.GetRequestIDFromContext(r.Context()),
		},
	})
}

func writeValidationError(w http.ResponseWriter, r *http.Request, verr *validation.Error) {
	requestID := utils.GetRequestIDFromContext(r.Context())

	log.Warn().
		Str("request_id", requestID).
		Int("field_count", len(verr.Violations)).
		Msg("Validation error")

	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Error: ErrorDetail{
			Code:      ErrCodeValidation,
			Message:   verr.Error(),
			RequestID: requestID,
			Fields:    verr.Violations,
		},
	})
}

func writeInternalError(w http.ResponseWriter, r *http.Request, err error) {
	log.Error().
		Err(err).
		Str("request_id", utils.GetRequestIDFromContext(r.Context())).
		Msg("Internal server error")

	writeError(w, r, http.StatusInternalServerError, ErrCodeInternalServer, "An unexpected error occurred")
}
