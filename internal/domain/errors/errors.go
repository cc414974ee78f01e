package errors

import (
	"fmt"
	"net/http"

	"islandpost/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types
var (
	// OAuth-related errors
	ErrUnsupportedProvider = NewBaseError(
		http.StatusBadRequest,
		"UNSUPPORTED_OAUTH_PROVIDER",
		"unsupported OAuth provider",
		"",
	)

	// Token-related errors
	ErrInvalidAccessToken = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_ACCESS_TOKEN",
		"invalid or expired access token",
		"",
	)

	ErrInvalidTempToken = NewBaseError(
		http.StatusBadRequest,
		"INVALID_TEMP_TOKEN",
		"invalid signup token",
		"",
	)

	ErrInvalidRefreshToken = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_REFRESH_TOKEN",
		"invalid refresh token",
		"",
	)

	ErrRefreshTokenExpired = NewBaseError(
		http.StatusUnauthorized,
		"REFRESH_TOKEN_EXPIRED",
		"refresh token has expired",
		"",
	)

	// Member-related errors
	ErrMemberNotFound = NewBaseError(
		http.StatusBadRequest,
		"MEMBER_NOT_FOUND",
		"member not found",
		"",
	)

	ErrMemberNotActive = NewBaseError(
		http.StatusForbidden,
		"MEMBER_NOT_ACTIVE",
		"member account is not active",
		"",
	)

	ErrMemberAlreadyWithdrawn = NewBaseError(
		http.StatusBadRequest,
		"MEMBER_ALREADY_WITHDRAWN",
		"member has already withdrawn",
		"",
	)

	ErrDuplicateMember = NewBaseError(
		http.StatusConflict,
		"DUPLICATE_MEMBER",
		"member already registered",
		"",
	)

	// Validation-related errors
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"request validation failed",
		"",
	)

	// Transaction-related errors
	ErrTransactionFailed = NewBaseError(
		http.StatusInternalServerError,
		"TRANSACTION_FAILED",
		"database transaction failed",
		"",
	)

	// General errors
	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"internal server error",
		"",
	)
)

// ProviderStage identifies which step of a provider exchange failed.
type ProviderStage string

const (
	StageTokenExchange   ProviderStage = "token-exchange"
	StageProfileFetch    ProviderStage = "profile-fetch"
	StageTokenValidation ProviderStage = "token-validation"
	StageUnlink          ProviderStage = "unlink"
)

// ProviderError represents a failure while talking to an external OAuth
// provider. It carries the provider name and the stage that failed so logs
// and responses can distinguish a Kakao token exchange from an Apple
// signature check without separate error variables per combination.
type ProviderError struct {
	provider string
	stage    ProviderStage
	err      error
}

// NewProviderError creates a provider exchange error for the given stage
func NewProviderError(provider string, stage ProviderStage, err error) *ProviderError {
	return &ProviderError{
		provider: provider,
		stage:    stage,
		err:      err,
	}
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s %s failed: %s", e.provider, e.stage, e.err.Error())
	}

	return fmt.Sprintf("%s %s failed", e.provider, e.stage)
}

// Unwrap exposes the underlying cause
func (e *ProviderError) Unwrap() error {
	return e.err
}

// Provider returns the provider name
func (e *ProviderError) Provider() string {
	return e.provider
}

// Stage returns the exchange stage that failed
func (e *ProviderError) Stage() ProviderStage {
	return e.stage
}

// HTTPCode returns the HTTP status code
func (e *ProviderError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code
func (e *ProviderError) ErrorCode() string {
	return "OAUTH_PROVIDER_ERROR"
}

// Message returns the user-friendly error message
func (e *ProviderError) Message() string {
	return fmt.Sprintf("%s authentication failed", e.provider)
}

// Details returns detailed error information
func (e *ProviderError) Details() string {
	return string(e.stage)
}

// DatabaseExecuteError represents a database execution error, implementing the AppError interface
type DatabaseExecuteError struct {
	err     error
	details string
}

// NewDatabaseExecuteError creates a database-related error
func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *DatabaseExecuteError) Error() string {
	return errors.Wrap(e.err, "database execution failed").Error()
}

// HTTPCode returns the HTTP status code
func (e *DatabaseExecuteError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code
func (e *DatabaseExecuteError) ErrorCode() string {
	return "DATABASE_EXECUTE_FAILED"
}

// Message returns the user-friendly error message
func (e *DatabaseExecuteError) Message() string {
	return "database execution failed"
}

// Details returns detailed error information
func (e *DatabaseExecuteError) Details() string {
	return e.details
}
