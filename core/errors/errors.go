package errors

import "fmt"

type ErrorCode string

const (
	// Generic
	ErrInternalServer     ErrorCode = "INTERNAL_SERVER_ERROR"
	ErrInvalidInput       ErrorCode = "INVALID_INPUT"
	ErrInvalidRequestData ErrorCode = "INVALID_REQUEST_DATA"
	ErrNotFound           ErrorCode = "NOT_FOUND"
	ErrAlreadyExists      ErrorCode = "ALREADY_EXISTS"
	ErrForbidden          ErrorCode = "FORBIDDEN"

	// Auth
	ErrUnauthorized               ErrorCode = "UNAUTHORIZED"
	ErrTokenExpired               ErrorCode = "TOKEN_EXPIRED"
	ErrInvalidTokenFormat         ErrorCode = "INVALID_TOKEN_FORMAT"
	ErrMissingAuthorizationHeader ErrorCode = "MISSING_AUTHORIZATION_HEADER"

	// Persistence
	ErrCreateFailed ErrorCode = "CREATE_FAILED"
	ErrGetFailed    ErrorCode = "GET_FAILED"
	ErrUpdateFailed ErrorCode = "UPDATE_FAILED"
	ErrDeleteFailed ErrorCode = "DELETE_FAILED"

	// Recurring events
	ErrInvalidRecurrence ErrorCode = "INVALID_RECURRENCE"
	ErrInvalidOperation  ErrorCode = "INVALID_OPERATION"

	// Calendar sync
	ErrMissingRemoteID   ErrorCode = "MISSING_REMOTE_ID"
	ErrRemoteUnavailable ErrorCode = "REMOTE_UNAVAILABLE"
	ErrPublishState      ErrorCode = "INVALID_PUBLISH_STATE"
)

// AppError is the error type every service returns. Code drives the HTTP
// mapping in core/controller; Err keeps the underlying cause for logs.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether err is an *AppError carrying the given code.
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	ae, ok := err.(*AppError)
	return ok && ae.Code == code
}

func New(message string) error {
	return fmt.Errorf("%s", message)
}
