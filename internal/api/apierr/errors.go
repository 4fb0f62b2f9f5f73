package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/comus-party/justeprix/internal/model"
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
	CodeInvalidRequest  = "INVALID_REQUEST"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeSessionExists   = "SESSION_EXISTS"
	CodeSessionNotFound = "SESSION_NOT_FOUND"
	CodeTokenNotFound   = "TOKEN_NOT_FOUND"
	CodeRosterTooSmall  = "ROSTER_TOO_SMALL"
	CodeRosterTooLarge  = "ROSTER_TOO_LARGE"
	CodeInvalidSetting  = "INVALID_SETTING"
	CodeDuplicateName   = "DUPLICATE_DISPLAY_NAME"
	CodeInternalError   = "INTERNAL_ERROR"
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

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrSessionNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeSessionNotFound, "Session not found"}}
	case errors.Is(err, model.ErrTokenNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeTokenNotFound, "Token not recognized for this session"}}
	case errors.Is(err, model.ErrSessionExists):
		return &httpError{http.StatusConflict, APIError{CodeSessionExists, "Session already exists"}}
	case errors.Is(err, model.ErrRosterTooSmall):
		return &httpError{http.StatusBadRequest, APIError{CodeRosterTooSmall, "Not enough players for a session"}}
	case errors.Is(err, model.ErrRosterTooLarge):
		return &httpError{http.StatusBadRequest, APIError{CodeRosterTooLarge, "Too many players for a session"}}
	case errors.Is(err, model.ErrInvalidSetting):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidSetting, err.Error()}}
	case errors.Is(err, model.ErrDuplicateDisplayName):
		return &httpError{http.StatusBadRequest, APIError{CodeDuplicateName, "Display names must be unique"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
