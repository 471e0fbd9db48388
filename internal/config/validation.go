package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cast"
)

// ValidationError represents a configuration validation error with suggestions
type ValidationError struct {
	Field       string
	Layer       string
	Value       interface{}
	Message     string
	Suggestions []string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the result of configuration validation
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationError
}

// HasErrors returns true if there are any validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings
func (vr *ValidationResult) HasWarnings() bool {
	return len(vr.Warnings) > 0
}

// String returns a formatted string of all validation issues
func (vr *ValidationResult) String() string {
	var builder strings.Builder

	write := func(title string, issues []ValidationError) {
		if len(issues) == 0 {
			return
		}
		builder.WriteString(title + ":\n")
		for _, issue := range issues {
			builder.WriteString(fmt.Sprintf("  - %s (%s): %s\n", issue.Field, issue.Layer, issue.Message))
			for _, suggestion := range issue.Suggestions {
				builder.WriteString(fmt.Sprintf("      %s\n", suggestion))
			}
		}
	}

	write("Errors", vr.Errors)
	write("Warnings", vr.Warnings)

	return builder.String()
}

var (
	dottedVersion = regexp.MustCompile(`^\d+(\.\d+)*$`)
	tokenVersion  = regexp.MustCompile(`^\d+(-\d+)*$`)
)

// ValidateLayers checks every file-backed layer for shape errors, unknown
// keys and invalid values.
func ValidateLayers(l *Layered) *ValidationResult {
	result := &ValidationResult{
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}

	known := make(map[string]bool, len(KnownKeys))
	for _, k := range KnownKeys {
		known[k] = true
	}

	for _, doc := range l.Layers() {
		if doc.Path() == "" || !doc.Exists() {
			continue
		}

		for _, key := range doc.Keys() {
			if !known[key] {
				result.Warnings = append(result.Warnings, ValidationError{
					Field:       key,
					Layer:       doc.Name(),
					Message:     "unknown key is ignored",
					Suggestions: []string{"Known keys: " + strings.Join(KnownKeys, ", ")},
				})
			}
		}

		for _, key := range KnownKeys {
			value, found, err := doc.Lookup(key)
			if err != nil {
				result.Errors = append(result.Errors, ValidationError{
					Field:   key,
					Layer:   doc.Name(),
					Message: err.Error(),
				})
				continue
			}
			if found {
				validateValue(key, doc.Name(), value, result)
			}
		}
	}

	result.Valid = !result.HasErrors()
	return result
}

func validateValue(key, layer string, value interface{}, result *ValidationResult) {
	fail := func(msg string, suggestions ...string) {
		result.Errors = append(result.Errors, ValidationError{
			Field: key, Layer: layer, Value: value, Message: msg, Suggestions: suggestions,
		})
	}

	switch key {
	case KeyTestArch:
		arch := cast.ToString(value)
		if arch != "" && arch != "arm64" && arch != "x86_64" {
			fail(fmt.Sprintf("unsupported architecture %q", arch), "Use arm64 or x86_64")
		}
	case KeyTestOS:
		v := cast.ToString(value)
		if v != "" && !dottedVersion.MatchString(v) && !tokenVersion.MatchString(v) {
			fail(fmt.Sprintf("%q is not a version", v), "Use a version such as 17.5")
		}
	case KeyLintStrict, KeyHooksPreCommit:
		if _, err := cast.ToBoolE(value); err != nil {
			fail("expected true or false")
		}
	case KeyCIXcodeVersion, KeyFormatSwiftVersion:
		v := cast.ToString(value)
		if v != "" && !dottedVersion.MatchString(v) {
			fail(fmt.Sprintf("%q is not a version", v))
		}
	}
}
