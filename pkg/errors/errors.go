// Package errors provides common error types for the matchmaker tool.
//
// This package defines sentinel errors for the conditions a run can hit before
// any participant is built: missing configuration keys, missing columns, and
// patterns that cannot be used. Using typed errors enables consistent handling
// with errors.Is() checks.
//
// Usage:
//
//	import mmerrors "github.com/otherjamesbrown/matchmaker/pkg/errors"
//
//	// Return a configuration error
//	return mmerrors.MissingKey("regex", "find_name")
//
//	// Check for configuration errors
//	if mmerrors.IsConfigError(err) {
//	    // abort the run
//	}
package errors

import "errors"

// Sentinel errors for run-level conditions.
var (
	// ErrNotFound indicates the requested file, sheet or participant was not found.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates invalid input or validation failure.
	ErrValidation = errors.New("validation error")

	// ErrMissingKey indicates a required configuration key is absent.
	ErrMissingKey = errors.New("missing configuration key")

	// ErrMissingColumn indicates a configured column header is absent from the table.
	ErrMissingColumn = errors.New("missing column")

	// ErrEmptyCategory indicates a required column category matched no headers.
	ErrEmptyCategory = errors.New("column category matched no headers")

	// ErrInvalidPattern indicates a configured regular expression is unusable.
	ErrInvalidPattern = errors.New("invalid pattern")

	// ErrDuplicate indicates two rows claimed the same participant name.
	ErrDuplicate = errors.New("duplicate participant")

	// ErrUnsupportedFormat indicates an input or output format that is not handled.
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// IsNotFound reports whether any error in err's chain is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation reports whether any error in err's chain is ErrValidation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsMissingKey reports whether any error in err's chain is ErrMissingKey.
func IsMissingKey(err error) bool {
	return errors.Is(err, ErrMissingKey)
}

// IsMissingColumn reports whether any error in err's chain is ErrMissingColumn.
func IsMissingColumn(err error) bool {
	return errors.Is(err, ErrMissingColumn)
}

// IsEmptyCategory reports whether any error in err's chain is ErrEmptyCategory.
func IsEmptyCategory(err error) bool {
	return errors.Is(err, ErrEmptyCategory)
}

// IsInvalidPattern reports whether any error in err's chain is ErrInvalidPattern.
func IsInvalidPattern(err error) bool {
	return errors.Is(err, ErrInvalidPattern)
}

// IsUnsupportedFormat reports whether any error in err's chain is ErrUnsupportedFormat.
func IsUnsupportedFormat(err error) bool {
	return errors.Is(err, ErrUnsupportedFormat)
}
