package common

import (
	"errors"
	"fmt"

	"github.com/joseph-ayodele/invoice-auditor/constants"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrValidation   = errors.New("validation failed")

	ErrNoJSONSpan       = errors.New("no json object found in response")
	ErrJSONSyntax       = errors.New("json object in response is malformed")
	ErrTransport        = errors.New("model service call failed")
	ErrMissingOutput    = errors.New("extracted output missing")
	ErrInvalidStatus    = errors.New("verdict status not recognized")
	ErrDegradedMismatch = errors.New("mismatch verdict without details")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// KindOf maps an error chain to the failure kind recorded for a file.
func KindOf(err error) constants.FailureKind {
	switch {
	case err == nil:
		return constants.KindNone
	case errors.Is(err, ErrNoJSONSpan):
		return constants.KindNoJSONSpan
	case errors.Is(err, ErrJSONSyntax):
		return constants.KindJSONSyntax
	case errors.Is(err, ErrTransport):
		return constants.KindTransport
	case errors.Is(err, ErrMissingOutput):
		return constants.KindMissingOutput
	case errors.Is(err, ErrInvalidStatus):
		return constants.KindInvalidStatus
	case errors.Is(err, ErrDegradedMismatch):
		return constants.KindDegradedMismatch
	case errors.Is(err, ErrValidation):
		return constants.KindSchemaViolation
	}
	var ae *AppError
	if errors.As(err, &ae) && ae.Code != "" {
		return constants.FailureKind(ae.Code)
	}
	return constants.KindUnexpected
}
