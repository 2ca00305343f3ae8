package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrWrongCredentials is returned when login credentials don't match.
	ErrWrongCredentials = errors.New("wrong credentials")
	// ErrUserAlreadyExists is returned when username or email is taken.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrInvalidRefreshToken is returned when a refresh token is invalid or expired.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	// ErrForbidden is returned when the caller lacks a permission or does
	// not own the resource.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrCannotModifySystemRole is returned on any attempt to rename,
	// re-permission or delete the reserved admin/user roles.
	ErrCannotModifySystemRole = errors.New("cannot modify system role")
	// ErrTxHashUsed is returned when a transaction hash was already recorded.
	ErrTxHashUsed = errors.New("transaction hash already used")
	// ErrInvalidTxHash is returned when a hash is not valid 32-byte hex.
	ErrInvalidTxHash = errors.New("invalid transaction hash")
	// ErrInvalidAmount is returned when an amount is negative.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrCategoryInUse is returned when deleting a category that campaigns
	// still reference.
	ErrCategoryInUse = errors.New("category has campaigns")
	// ErrAlreadyClaimed is returned when a claim was already fulfilled.
	ErrAlreadyClaimed = errors.New("claim already fulfilled")
)

// ValidationErrors aggregates field-keyed validation messages, mirrored to
// the client as a 422 body of {"errors": {"field": ["msg", ...]}}.
type ValidationErrors struct {
	Fields map[string][]string `json:"errors"`
}

func (v *ValidationErrors) Error() string {
	for field, msgs := range v.Fields {
		if len(msgs) > 0 {
			return field + ": " + msgs[0]
		}
	}
	return "validation failed"
}

// Add appends a message under a field key.
func (v *ValidationErrors) Add(field, message string) {
	if v.Fields == nil {
		v.Fields = map[string][]string{}
	}
	v.Fields[field] = append(v.Fields[field], message)
}

// HasErrors reports whether any field message was recorded.
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Fields) > 0
}

// NewValidation builds a single-field validation error.
func NewValidation(field, message string) *ValidationErrors {
	v := &ValidationErrors{}
	v.Add(field, message)
	return v
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrWrongCredentials):
		return NewHTTPError(http.StatusUnprocessableEntity, err.Error(), "WRONG_CREDENTIALS")
	case errors.Is(err, ErrUserAlreadyExists):
		return NewHTTPError(http.StatusUnprocessableEntity, err.Error(), "USER_ALREADY_EXISTS")
	case errors.Is(err, ErrInvalidRefreshToken):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_REFRESH_TOKEN")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, err.Error(), "FORBIDDEN")
	case errors.Is(err, ErrNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "NOT_FOUND")
	case errors.Is(err, ErrCannotModifySystemRole):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "CANNOT_MODIFY")
	case errors.Is(err, ErrCategoryInUse):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "CATEGORY_IN_USE")
	case errors.Is(err, ErrTxHashUsed):
		return NewHTTPError(http.StatusUnprocessableEntity, err.Error(), "TX_HASH_USED")
	case errors.Is(err, ErrInvalidTxHash):
		return NewHTTPError(http.StatusUnprocessableEntity, err.Error(), "INVALID_TX_HASH")
	case errors.Is(err, ErrInvalidAmount):
		return NewHTTPError(http.StatusUnprocessableEntity, err.Error(), "INVALID_AMOUNT")
	case errors.Is(err, ErrAlreadyClaimed):
		return NewHTTPError(http.StatusUnprocessableEntity, err.Error(), "ALREADY_CLAIMED")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
