package errors

import (
	"strings"
	"unicode"
)

// ReservedIDColumn is the internal dense-index column name. User-supplied
// identifier columns must not collide with it, otherwise the remap between
// internal and external ids becomes ambiguous.
const ReservedIDColumn = "strm_id"

// ValidateIDColumn validates a user-supplied identifier column name.
// It rejects empty names, names colliding with the reserved internal id
// column, and names containing control characters.
func ValidateIDColumn(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "identifier column name cannot be empty")
	}
	if strings.EqualFold(name, ReservedIDColumn) {
		return New(ErrCodeReservedColumn, "identifier column cannot be named %q (reserved for internal ids)", ReservedIDColumn)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "column name contains invalid control characters")
		}
	}
	return nil
}

// ValidateColumnName validates a generic CSV column name (to/from node,
// weight, target variables).
func ValidateColumnName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "column name cannot be empty")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "column name contains invalid control characters")
		}
	}
	return nil
}

// ValidateStorePath validates a closure-store file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidateStorePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "store path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "store path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "store path contains invalid characters")
		}
	}
	return nil
}
