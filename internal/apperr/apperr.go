package apperr

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodeStorage           Code = "STORAGE"
	CodeSensorUnavailable Code = "SENSOR_UNAVAILABLE"
	CodeNoMatch           Code = "NO_MATCH"
	CodeQualityRejected   Code = "QUALITY_REJECTED"
	CodeDuplicateIdentity Code = "DUPLICATE_IDENTITY"
	CodeNotFound          Code = "NOT_FOUND"
	CodeInvalidArgument   Code = "INVALID_ARGUMENT"
	CodeUnauthorized      Code = "UNAUTHORIZED"
)

// Error is the domain error carried across service boundaries. NO_MATCH is a
// normal outcome, not a fault; callers must be able to tell it apart from
// SENSOR_UNAVAILABLE.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors by code so sentinels built with the same constructor
// compare equal under errors.Is.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// CodeOf extracts the domain code from err, or empty when err is not a
// domain error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

func Storage(msg string, err error) error {
	return &Error{Code: CodeStorage, Message: msg, Err: err}
}

func SensorUnavailable(msg string) error {
	return &Error{Code: CodeSensorUnavailable, Message: msg}
}

func NoMatch(msg string) error {
	return &Error{Code: CodeNoMatch, Message: msg}
}

func QualityRejected(msg string) error {
	return &Error{Code: CodeQualityRejected, Message: msg}
}

func DuplicateIdentity(msg string) error {
	return &Error{Code: CodeDuplicateIdentity, Message: msg}
}

func NotFound(msg string) error {
	return &Error{Code: CodeNotFound, Message: msg}
}

func InvalidArgument(msg string) error {
	return &Error{Code: CodeInvalidArgument, Message: msg}
}

func Unauthorized(msg string) error {
	return &Error{Code: CodeUnauthorized, Message: msg}
}
