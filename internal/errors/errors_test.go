package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorString(t *testing.T) {
	testCases := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name:     "code and message",
			err:      NewValidationError(ErrCodeUnresolvedTokens, "unresolved tokens"),
			contains: []string{"[ERR_UNRESOLVED_TOKENS]", "unresolved tokens"},
		},
		{
			name:     "with component and file",
			err:      NewIOError(ErrCodeWriteFailed, "write failed", fmt.Errorf("disk full")).WithComponent("scripts").WithFile("scripts/build.sh"),
			contains: []string{"component:scripts", "scripts/build.sh", "write failed", "disk full"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			msg := tc.err.Error()
			for _, part := range tc.contains {
				assert.Contains(t, msg, part)
			}
		})
	}
}

func TestErrorIs(t *testing.T) {
	err := NewDeviceNotFoundError("iPhone 99", nil)
	wrapped := fmt.Errorf("resolve: %w", err)

	assert.True(t, errors.Is(wrapped, &Error{Type: ErrorTypeDeviceNotFound, Code: ErrCodeDeviceNotFound}))
	assert.False(t, errors.Is(wrapped, &Error{Type: ErrorTypeIO, Code: ErrCodeDeviceNotFound}))
}

func TestDeviceNotFoundSuggestions(t *testing.T) {
	err := NewDeviceNotFoundError("iPhone 99", []string{"iPhone 15", "iPhone 15 Pro"})

	assert.Equal(t, []string{"iPhone 15", "iPhone 15 Pro"}, err.Context["suggestions"])
	assert.Contains(t, err.Hint, "iPhone 15 Pro")
	assert.False(t, err.Recoverable)
}

func TestRecoverability(t *testing.T) {
	assert.True(t, IsRecoverable(NewVersionUnavailableError("iPhone 15", "19.0", "18-0")))
	assert.False(t, IsRecoverable(NewFatalDetectionError(ErrCodeMissingProject, "no project")))
	assert.False(t, IsRecoverable(fmt.Errorf("plain")))
}

func TestIsTypeWalksChain(t *testing.T) {
	inner := NewMissingDependencyError("xcrun", "install Xcode", nil)
	outer := StageError("ResolveTestProfile", inner)

	require.NotNil(t, outer)
	assert.True(t, IsType(outer, ErrorTypeMissingDependency))
	assert.Equal(t, "ResolveTestProfile", outer.Component)
	assert.Equal(t, "install Xcode", HintOf(outer))
	assert.False(t, IsType(outer, ErrorTypeIO))
}

func TestStageErrorPlainCause(t *testing.T) {
	err := StageError("Probe", fmt.Errorf("boom"))

	require.NotNil(t, err)
	assert.Equal(t, ErrorTypeInternal, err.Type)
	assert.Nil(t, StageError("Probe", nil))
}

func TestFormatErrorWithHint(t *testing.T) {
	err := NewMissingDependencyError("swift", "install the Swift toolchain", nil)

	out := FormatErrorWithHint(err)
	assert.Contains(t, out, `required tool "swift" not found`)
	assert.Contains(t, out, "hint: install the Swift toolchain")
	assert.Empty(t, FormatErrorWithHint(nil))
}

func TestContextFieldsSorted(t *testing.T) {
	err := NewConfigStructureError("test.device", "expected scalar")

	fields := ContextFields(err)
	require.Len(t, fields, 8)
	assert.Equal(t, "code", fields[0])
	assert.Equal(t, "key", fields[2])
	assert.Equal(t, "test.device", fields[3])
}

type recordingLogger struct {
	errors []string
	warns  []string
	fields [][]interface{}
}

func (r *recordingLogger) Error(_ context.Context, _ error, msg string, fields ...interface{}) {
	r.errors = append(r.errors, msg)
	r.fields = append(r.fields, fields)
}

func (r *recordingLogger) Warn(_ context.Context, _ error, msg string, fields ...interface{}) {
	r.warns = append(r.warns, msg)
	r.fields = append(r.fields, fields)
}

func TestErrorHandler(t *testing.T) {
	logger := &recordingLogger{}
	handler := NewErrorHandler(logger)
	ctx := context.Background()

	handler.Handle(ctx, NewVersionUnavailableError("iPhone 15", "19.0", "18-0"), "fallback")
	handler.Handle(ctx, NewMissingDependencyError("xcrun", "install Xcode", nil), "stage failed", "stage", "detect")
	handler.Handle(ctx, fmt.Errorf("plain"), "unexpected")
	handler.Handle(ctx, nil, "ignored")

	assert.Equal(t, []string{"fallback"}, logger.warns)
	assert.Equal(t, []string{"stage failed", "unexpected"}, logger.errors)

	require.Len(t, logger.fields, 3)
	missing := logger.fields[1]
	assert.Equal(t, []interface{}{"stage", "detect"}, missing[:2])
	assert.Contains(t, missing, "xcrun")
	assert.Equal(t, []interface{}{"hint", "install Xcode"}, missing[len(missing)-2:])
	assert.Contains(t, logger.fields[2], "unknown")
}
