package errors

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a configuration error.
type ErrorCode string

const (
	CodeMissingKey        ErrorCode = "missing_key"
	CodeMissingSection    ErrorCode = "missing_section"
	CodeMissingColumn     ErrorCode = "missing_column"
	CodeEmptyCategory     ErrorCode = "empty_category"
	CodeInvalidPattern    ErrorCode = "invalid_pattern"
	CodeInvalidValue      ErrorCode = "invalid_value"
	CodeUnreadableInput   ErrorCode = "unreadable_input"
	CodeUnsupportedFormat ErrorCode = "unsupported_format"
)

// ConfigError is a fatal error raised before any row is processed.
type ConfigError struct {
	Code    ErrorCode
	Section string
	Key     string
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	switch {
	case e.Section != "" && e.Key != "":
		return fmt.Sprintf("%s: `%s` in the `%s` section: %s", e.Code, e.Key, e.Section, e.Message)
	case e.Key != "":
		return fmt.Sprintf("%s: `%s`: %s", e.Code, e.Key, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// MissingKey reports a required key absent from a config section.
// An empty section means the top level of the file.
func MissingKey(section, key string) *ConfigError {
	msg := "missing key in config file, aborting"
	if section != "" {
		msg = "missing key in config section, aborting"
	}
	return &ConfigError{
		Code:    CodeMissingKey,
		Section: section,
		Key:     key,
		Message: msg,
		Cause:   ErrMissingKey,
	}
}

// MissingSection reports a required section absent from the config file.
func MissingSection(section string) *ConfigError {
	return &ConfigError{
		Code:    CodeMissingSection,
		Key:     section,
		Message: "missing section in config file, aborting",
		Cause:   ErrMissingKey,
	}
}

// MissingColumn reports a configured header that the table does not carry.
func MissingColumn(key, header string) *ConfigError {
	return &ConfigError{
		Code:    CodeMissingColumn,
		Key:     key,
		Message: fmt.Sprintf("no column found with the header %q, aborting", header),
		Cause:   ErrMissingColumn,
	}
}

// EmptyCategory reports a required column category that matched no headers.
func EmptyCategory(category, pattern string) *ConfigError {
	return &ConfigError{
		Code:    CodeEmptyCategory,
		Section: "regex",
		Key:     category,
		Message: fmt.Sprintf("pattern %q matched no column headers, aborting", pattern),
		Cause:   ErrEmptyCategory,
	}
}

// InvalidPattern reports a pattern that failed to compile or has the wrong number of groups.
func InvalidPattern(key string, cause error) *ConfigError {
	return &ConfigError{
		Code:    CodeInvalidPattern,
		Section: "regex",
		Key:     key,
		Message: cause.Error(),
		Cause:   fmt.Errorf("%w: %w", ErrInvalidPattern, cause),
	}
}

// IsConfigError reports whether err's chain holds a *ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// CodeOf returns the code of the first *ConfigError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}
