package errors

import (
	"errors"
	"fmt"
)

// Wrap wraps an error with additional context, creating an *Error if the input is not already one
func Wrap(err error, errType ErrorType, code, message string) *Error {
	if err == nil {
		return nil
	}

	// Keep hint and recoverability of an inner structured error
	var e *Error
	if errors.As(err, &e) {
		return &Error{
			Type:        errType,
			Code:        code,
			Message:     message,
			Cause:       err,
			Context:     e.Context,
			Component:   e.Component,
			FilePath:    e.FilePath,
			Hint:        e.Hint,
			Recoverable: e.Recoverable,
		}
	}

	return &Error{
		Type:        errType,
		Code:        code,
		Message:     message,
		Cause:       err,
		Recoverable: errType == ErrorTypeVersionUnavailable,
	}
}

// WrapConfig wraps an error as a configuration structure error
func WrapConfig(err error, code, message string) *Error {
	return Wrap(err, ErrorTypeInvalidConfigStructure, code, message)
}

// WrapInternal wraps an error as an internal error
func WrapInternal(err error, code, message string) *Error {
	return Wrap(err, ErrorTypeInternal, code, message)
}

// StageError wraps a stage failure of the install run.
func StageError(stage string, err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		w := Wrap(err, e.Type, e.Code, fmt.Sprintf("stage %s failed", stage))
		w.Component = stage
		return w
	}

	w := WrapInternal(err, ErrCodeInternalError, fmt.Sprintf("stage %s failed", stage))
	w.Component = stage
	return w
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
