// Package errors defines the structured error taxonomy used across xcboot.
//
// Every failure the installer can surface carries a Type from the closed set
// below, a stable Code, and optionally a remediation Hint that the CLI prints
// next to the message. Stage-local failures are wrapped rather than replaced,
// so errors.Is and errors.As keep working through the orchestrator.
package errors

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeFatalDetection         ErrorType = "fatal_detection"
	ErrorTypeDeviceNotFound         ErrorType = "device_not_found"
	ErrorTypeVersionUnavailable     ErrorType = "version_unavailable"
	ErrorTypeInvalidConfigStructure ErrorType = "invalid_config_structure"
	ErrorTypeMissingDependency      ErrorType = "missing_dependency"
	ErrorTypeValidation             ErrorType = "validation"
	ErrorTypeIO                     ErrorType = "io"
	ErrorTypeInternal               ErrorType = "internal"
)

// Common error codes.
const (
	ErrCodeMissingProject     = "ERR_MISSING_PROJECT"
	ErrCodeDeviceNotFound     = "ERR_DEVICE_NOT_FOUND"
	ErrCodeVersionUnavailable = "ERR_VERSION_UNAVAILABLE"
	ErrCodeConfigShape        = "ERR_CONFIG_SHAPE"
	ErrCodeConfigRead         = "ERR_CONFIG_READ"
	ErrCodeConfigWrite        = "ERR_CONFIG_WRITE"
	ErrCodeToolMissing        = "ERR_TOOL_MISSING"
	ErrCodeCommandFailed      = "ERR_COMMAND_FAILED"
	ErrCodeUnresolvedTokens   = "ERR_UNRESOLVED_TOKENS"
	ErrCodeUnknownTemplate    = "ERR_UNKNOWN_TEMPLATE"
	ErrCodeTemplateNotFound   = "ERR_TEMPLATE_NOT_FOUND"
	ErrCodeInvalidPath        = "ERR_INVALID_PATH"
	ErrCodeWriteFailed        = "ERR_WRITE_FAILED"
	ErrCodeInternalError      = "ERR_INTERNAL"
	ErrCodeValidationFailed   = "ERR_VALIDATION_FAILED"
	ErrCodeInvalidProjectName = "ERR_INVALID_PROJECT_NAME"
	ErrCodeInvalidRendering   = "ERR_INVALID_RENDERING"
)

// Error is a structured error type with context.
type Error struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Context     map[string]interface{}
	Component   string
	FilePath    string
	Hint        string
	Recoverable bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Component != "" {
		parts = append(parts, "component:"+e.Component)
	}

	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithComponent adds component context.
func (e *Error) WithComponent(component string) *Error {
	e.Component = component

	return e
}

// WithFile records the file the error is about.
func (e *Error) WithFile(path string) *Error {
	e.FilePath = path

	return e
}

// WithHint attaches a remediation hint shown to the user.
func (e *Error) WithHint(hint string) *Error {
	e.Hint = hint

	return e
}

// Error creation functions

// NewFatalDetectionError creates an error for a project that cannot be detected.
func NewFatalDetectionError(code, message string) *Error {
	return &Error{
		Type:        ErrorTypeFatalDetection,
		Code:        code,
		Message:     message,
		Recoverable: false,
	}
}

// NewDeviceNotFoundError creates a device lookup error. Suggestions are
// stored in the context under "suggestions".
func NewDeviceNotFoundError(device string, suggestions []string) *Error {
	e := &Error{
		Type:        ErrorTypeDeviceNotFound,
		Code:        ErrCodeDeviceNotFound,
		Message:     fmt.Sprintf("device %q is not available on this host", device),
		Recoverable: false,
	}
	e.WithContext("device", device)
	if len(suggestions) > 0 {
		e.WithContext("suggestions", suggestions)
		e.Hint = "did you mean: " + strings.Join(suggestions, ", ")
	}

	return e
}

// NewVersionUnavailableError creates the recoverable error that triggers
// version fallback.
func NewVersionUnavailableError(device, requested, fallback string) *Error {
	return &Error{
		Type:    ErrorTypeVersionUnavailable,
		Code:    ErrCodeVersionUnavailable,
		Message: fmt.Sprintf("OS %s is not installed for %q, using %s", requested, device, fallback),
		Context: map[string]interface{}{
			"device":    device,
			"requested": requested,
			"fallback":  fallback,
		},
		Recoverable: true,
	}
}

// NewConfigStructureError creates a document shape mismatch error.
func NewConfigStructureError(key, message string) *Error {
	return &Error{
		Type:        ErrorTypeInvalidConfigStructure,
		Code:        ErrCodeConfigShape,
		Message:     message,
		Context:     map[string]interface{}{"key": key},
		Recoverable: false,
	}
}

// NewMissingDependencyError creates an error for an absent external tool.
func NewMissingDependencyError(tool, hint string, cause error) *Error {
	return &Error{
		Type:        ErrorTypeMissingDependency,
		Code:        ErrCodeToolMissing,
		Message:     fmt.Sprintf("required tool %q not found", tool),
		Cause:       cause,
		Context:     map[string]interface{}{"tool": tool},
		Hint:        hint,
		Recoverable: false,
	}
}

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *Error {
	return &Error{
		Type:        ErrorTypeValidation,
		Code:        code,
		Message:     message,
		Recoverable: false,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *Error {
	return &Error{
		Type:        ErrorTypeIO,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *Error {
	return &Error{
		Type:        ErrorTypeInternal,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// Error recovery and handling utilities

// IsRecoverable checks if an error is recoverable.
func IsRecoverable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Recoverable
	}

	return false
}

// IsType reports whether any error in err's chain has the given type.
func IsType(err error, t ErrorType) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Type == t {
			return true
		}
		err = e.Cause
	}

	return false
}

// TypeOf returns the outermost structured type of err, or ErrorTypeInternal.
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}

	return ErrorTypeInternal
}

// Logger interface for error logging.
type Logger interface {
	Error(ctx context.Context, err error, msg string, fields ...interface{})
	Warn(ctx context.Context, err error, msg string, fields ...interface{})
}

// ErrorHandler provides centralized error handling.
type ErrorHandler struct {
	logger Logger
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle logs err at a level that matches it: recoverable errors are
// warnings, everything else is an error. The error context, flattened by
// ContextFields, and any hint are appended to fields.
func (h *ErrorHandler) Handle(ctx context.Context, err error, msg string, fields ...interface{}) {
	if err == nil || h.logger == nil {
		return
	}

	fields = append(fields, ContextFields(err)...)
	if hint := HintOf(err); hint != "" {
		fields = append(fields, "hint", hint)
	}
	if IsRecoverable(err) {
		h.logger.Warn(ctx, err, msg, fields...)
		return
	}
	h.logger.Error(ctx, err, msg, fields...)
}

// FormatErrorWithHint renders err for the terminal, followed by its
// remediation hint when one is attached anywhere in the chain.
func FormatErrorWithHint(err error) string {
	if err == nil {
		return ""
	}

	result := err.Error()
	if hint := HintOf(err); hint != "" {
		result += "\n  hint: " + hint
	}

	return result
}

// HintOf returns the first remediation hint in err's chain.
func HintOf(err error) string {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return ""
		}
		if e.Hint != "" {
			return e.Hint
		}
		err = e.Cause
	}

	return ""
}

// GetErrorContext flattens the context of a structured error for logging.
func GetErrorContext(err error) map[string]interface{} {
	var e *Error
	if errors.As(err, &e) {
		ctx := make(map[string]interface{}, len(e.Context)+4)
		for k, v := range e.Context {
			ctx[k] = v
		}
		if e.Component != "" {
			ctx["component"] = e.Component
		}
		if e.FilePath != "" {
			ctx["file"] = e.FilePath
		}
		ctx["type"] = string(e.Type)
		ctx["code"] = e.Code
		ctx["recoverable"] = e.Recoverable

		return ctx
	}

	return map[string]interface{}{
		"message": err.Error(),
		"type":    "unknown",
	}
}

// ContextFields turns an error context into sorted key/value pairs suitable
// for the logging package.
func ContextFields(err error) []interface{} {
	ctx := GetErrorContext(err)
	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]interface{}, 0, len(keys)*2)
	for _, k := range keys {
		fields = append(fields, k, ctx[k])
	}

	return fields
}
