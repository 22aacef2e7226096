package service

import (
	"errors"
	"fmt"

	"github.com/kitforge/backend/internal/db"
	"github.com/kitforge/backend/internal/token"
)

// Error is a user-visible failure with a stable machine-readable code.
// Two Errors match under errors.Is when their codes are equal.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

const (
	CodeInvalidCredentials      = "INVALID_CREDENTIALS"
	CodeAccountDisabled         = "ACCOUNT_DISABLED"
	CodeConflict                = "CONFLICT"
	CodeTokenRequired           = "TOKEN_REQUIRED"
	CodeTokenExpired            = "TOKEN_EXPIRED"
	CodeTokenInvalid            = "INVALID_TOKEN"
	CodeTokenPurposeMismatch    = "TOKEN_PURPOSE_MISMATCH"
	CodeInsufficientPermissions = "INSUFFICIENT_PERMISSIONS"
	CodeEmailNotVerified        = "EMAIL_NOT_VERIFIED"
	CodeUserNotFound            = "USER_NOT_FOUND"
	CodeInvalidPassword         = "INVALID_PASSWORD"
	CodeInternal                = "INTERNAL_ERROR"
	CodeValidation              = "VALIDATION_ERROR"
	CodeRateLimited             = "RATE_LIMITED"
	CodeFeatureUnavailable      = "FEATURE_UNAVAILABLE"
)

var (
	ErrInvalidCredentials      = &Error{Code: CodeInvalidCredentials, Message: "Invalid email or password"}
	ErrAccountDisabled         = &Error{Code: CodeAccountDisabled, Message: "Account is disabled"}
	ErrConflict                = &Error{Code: CodeConflict, Message: "Resource already exists"}
	ErrEmailTaken              = &Error{Code: CodeConflict, Message: "Email is already registered"}
	ErrUsernameTaken           = &Error{Code: CodeConflict, Message: "Username is already taken"}
	ErrTokenRequired           = &Error{Code: CodeTokenRequired, Message: "Authentication token is required"}
	ErrTokenExpired            = &Error{Code: CodeTokenExpired, Message: "Token has expired"}
	ErrTokenInvalid            = &Error{Code: CodeTokenInvalid, Message: "Invalid token"}
	ErrTokenPurposeMismatch    = &Error{Code: CodeTokenPurposeMismatch, Message: "Token cannot be used for this operation"}
	ErrInsufficientPermissions = &Error{Code: CodeInsufficientPermissions, Message: "Insufficient permissions"}
	ErrEmailNotVerified        = &Error{Code: CodeEmailNotVerified, Message: "Email address is not verified"}
	ErrUserNotFound            = &Error{Code: CodeUserNotFound, Message: "User not found"}
	ErrInvalidPassword         = &Error{Code: CodeInvalidPassword, Message: "Current password is incorrect"}
	ErrInternal                = &Error{Code: CodeInternal, Message: "Internal server error"}
	ErrValidation              = &Error{Code: CodeValidation, Message: "Validation failed"}
	ErrRateLimited             = &Error{Code: CodeRateLimited, Message: "Too many requests"}
	ErrFeatureUnavailable      = &Error{Code: CodeFeatureUnavailable, Message: "Feature is not configured"}
	ErrAlreadyVerified         = &Error{Code: CodeValidation, Message: "Email is already verified"}
)

// ErrMisconfigured is returned by constructors and startup seeding, never to HTTP callers.
var ErrMisconfigured = errors.New("service config invalid")

func validationError(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// internalError keeps the cause for logs while classifying the failure as INTERNAL_ERROR.
func internalError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrInternal, op, err)
}

// fromTokenError maps token package failures onto the service taxonomy.
func fromTokenError(err error) error {
	switch {
	case errors.Is(err, token.ErrExpired):
		return ErrTokenExpired
	case errors.Is(err, token.ErrPurposeMismatch):
		return ErrTokenPurposeMismatch
	case errors.Is(err, token.ErrInvalid):
		return ErrTokenInvalid
	default:
		return internalError("verify token", err)
	}
}

// conflictFor maps store duplicate sentinels onto conflicts; nil when err is not a duplicate.
func conflictFor(err error) error {
	switch {
	case errors.Is(err, db.ErrDuplicateEmail):
		return ErrEmailTaken
	case errors.Is(err, db.ErrDuplicateUsername):
		return ErrUsernameTaken
	case errors.Is(err, db.ErrDuplicate):
		return ErrConflict
	}
	return nil
}
