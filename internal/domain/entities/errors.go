package entities

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure the pipeline can report.
type ErrorKind string

// Client input errors.
const (
	KindEmpty            ErrorKind = "Empty"
	KindTooShort         ErrorKind = "TooShort"
	KindTooLong          ErrorKind = "TooLong"
	KindInvalidCharacter ErrorKind = "InvalidCharacter"
	KindUnknownStrategy  ErrorKind = "UnknownStrategy"
	KindInvalidRequest   ErrorKind = "InvalidRequest"
)

// Internal processing errors.
const (
	KindTokenizationFailure ErrorKind = "TokenizationFailure"
	KindInferenceFailure    ErrorKind = "InferenceFailure"
	KindEmptyMatrix         ErrorKind = "EmptyMatrix"
)

// Availability errors.
const (
	KindModelUnavailable ErrorKind = "ModelUnavailable"
	KindTimeout          ErrorKind = "Timeout"
)

// IsClientError reports whether the kind is caused by caller input.
func (k ErrorKind) IsClientError() bool {
	switch k {
	case KindEmpty, KindTooShort, KindTooLong, KindInvalidCharacter, KindUnknownStrategy, KindInvalidRequest:
		return true
	default:
		return false
	}
}

// Error is the typed error returned across the pipeline.
// Message is safe to show to clients; Err holds the internal cause.
type Error struct {
	Kind    ErrorKind
	Stage   Stage
	Message string

	// Index and Char locate the offending character for KindInvalidCharacter.
	Index int
	Char  rune

	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds an Error of the given kind wrapping cause.
func NewError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// AsError extracts an *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind carried by err. Errors that are not an *Error
// are treated as inference failures so that nothing goes unreported.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	if e, ok := AsError(err); ok {
		return e.Kind
	}
	return KindInferenceFailure
}
