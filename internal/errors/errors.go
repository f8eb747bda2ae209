package errors

import (
	stderrors "errors"
	"fmt"

	"statcalc/domain/core"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context. The code of a wrapped
// AppError or calculation error is preserved.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    CodeFor(err),
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeConfigInvalid          = "CONFIG_INVALID"
	CodeNotFound               = "NOT_FOUND"
	CodeInternalError          = "INTERNAL_ERROR"
	CodeInvalidInput           = "INVALID_INPUT"
	CodeFileError              = "FILE_ERROR"
	CodeParse                  = "PARSE_ERROR"
	CodeInsufficientParameters = "INSUFFICIENT_PARAMETERS"
	CodeAmbiguousInput         = "AMBIGUOUS_INPUT"
	CodeDomain                 = "DOMAIN_ERROR"
	CodeNonConvergence         = "NON_CONVERGENCE"
)

// CodeFor classifies err. Calculation categories take precedence over the
// code of any AppError wrapping them.
func CodeFor(err error) string {
	switch {
	case err == nil:
		return ""
	case core.IsParseError(err):
		return CodeParse
	case core.IsInsufficientParametersError(err):
		return CodeInsufficientParameters
	case core.IsAmbiguousInputError(err):
		return CodeAmbiguousInput
	case core.IsDomainError(err):
		return CodeDomain
	case core.IsNonConvergenceError(err):
		return CodeNonConvergence
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternalError
}

// ExitCode maps err to the process exit status.
func ExitCode(err error) int {
	switch CodeFor(err) {
	case "":
		return 0
	case CodeParse:
		return 2
	case CodeInsufficientParameters:
		return 3
	case CodeAmbiguousInput:
		return 4
	case CodeDomain:
		return 5
	case CodeNonConvergence:
		return 6
	default:
		return 1
	}
}

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

func FileError(path string, cause error) *AppError {
	return &AppError{
		Code:    CodeFileError,
		Message: fmt.Sprintf("cannot load %s", path),
		Cause:   cause,
	}
}
