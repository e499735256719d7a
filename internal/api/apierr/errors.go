package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/demesup/awale/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeConflict       = "CONFLICT"
	CodeNotFound       = "NOT_FOUND"
	CodePlayerNotFound = "PLAYER_NOT_FOUND"
	CodeGameNotFound   = "GAME_NOT_FOUND"
	CodeStaleReference = "STALE_REFERENCE"
	CodeInternalError  = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status an error maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError. Specific sentinels get
// their own code; every other domain error is mapped by kind.
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrGameNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeGameNotFound, "Game not found"}}
	}

	switch model.KindOf(err) {
	case model.KindValidation:
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, err.Error()}}
	case model.KindStateConflict:
		return &httpError{http.StatusConflict, APIError{CodeConflict, err.Error()}}
	case model.KindNotFound:
		return &httpError{http.StatusNotFound, APIError{CodeNotFound, err.Error()}}
	case model.KindStaleReference:
		return &httpError{http.StatusGone, APIError{CodeStaleReference, err.Error()}}
	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
