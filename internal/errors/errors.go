package errors

import "fmt"

// ErrCode represents an error code
type ErrCode string

const (
	ErrCodeInvalidTimeExpression ErrCode = "INVALID_TIME_EXPRESSION"
	ErrCodeUpstreamAuth          ErrCode = "UPSTREAM_AUTH"
	ErrCodeRateLimited           ErrCode = "RATE_LIMITED"
	ErrCodeUpstreamUnavailable   ErrCode = "UPSTREAM_UNAVAILABLE"
	ErrCodeMissingField          ErrCode = "MISSING_FIELD"
	ErrCodeRootMessageMissing    ErrCode = "ROOT_MESSAGE_MISSING"
	ErrCodeUnknownFormat         ErrCode = "UNKNOWN_FORMAT"
	ErrCodeUsage                 ErrCode = "USAGE"
)

// AppError represents an application error
type AppError struct {
	Code    ErrCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewInvalidTimeExpressionError signals an unparseable time expression.
func NewInvalidTimeExpressionError(expression string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidTimeExpression,
		Message: fmt.Sprintf("unable to parse time expression: %q", expression),
		Err:     err,
	}
}

// NewUpstreamAuthError signals a missing or rejected credential.
func NewUpstreamAuthError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeUpstreamAuth,
		Message: message,
		Err:     err,
	}
}

// NewRateLimitedError signals an exhausted upstream rate limit.
func NewRateLimitedError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeRateLimited,
		Message: message,
		Err:     err,
	}
}

// NewUpstreamUnavailableError wraps transport failures and non-auth HTTP errors.
func NewUpstreamUnavailableError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeUpstreamUnavailable,
		Message: message,
		Err:     err,
	}
}

// NewMissingFieldError signals a fetched record lacking an expected field.
func NewMissingFieldError(field string) *AppError {
	return &AppError{
		Code:    ErrCodeMissingField,
		Message: fmt.Sprintf("record is missing required field: %s", field),
	}
}

// NewRootMessageMissingError signals an item upsert attempted before the
// root message exists.
func NewRootMessageMissingError(key string) *AppError {
	return &AppError{
		Code:    ErrCodeRootMessageMissing,
		Message: fmt.Sprintf("unable to create item %q without root message", key),
	}
}

// NewUnknownFormatError signals an unsupported output format.
func NewUnknownFormatError(format string) *AppError {
	return &AppError{
		Code:    ErrCodeUnknownFormat,
		Message: fmt.Sprintf("unknown output format: %q", format),
	}
}

// NewUsageError signals invalid command line usage.
func NewUsageError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeUsage,
		Message: message,
	}
}

func hasCode(err error, code ErrCode) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == code
	}
	return false
}

// IsInvalidTimeExpression checks if the error is a time expression parse error
func IsInvalidTimeExpression(err error) bool {
	return hasCode(err, ErrCodeInvalidTimeExpression)
}

// IsUpstreamAuth checks if the error is an upstream auth error
func IsUpstreamAuth(err error) bool {
	return hasCode(err, ErrCodeUpstreamAuth)
}

// IsRateLimited checks if the error is a rate limit error
func IsRateLimited(err error) bool {
	return hasCode(err, ErrCodeRateLimited)
}

// IsMissingField checks if the error is a missing field error
func IsMissingField(err error) bool {
	return hasCode(err, ErrCodeMissingField)
}

// IsRootMessageMissing checks if the error is a missing root message error
func IsRootMessageMissing(err error) bool {
	return hasCode(err, ErrCodeRootMessageMissing)
}

// IsUnknownFormat checks if the error is an unknown format error
func IsUnknownFormat(err error) bool {
	return hasCode(err, ErrCodeUnknownFormat)
}

// IsUsage checks if the error is a usage error
func IsUsage(err error) bool {
	return hasCode(err, ErrCodeUsage)
}
