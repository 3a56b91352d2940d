package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateNetworkName validates a stored network name for safety and correctness.
// Names become file names and document keys, so the rules are conservative:
//   - No empty names
//   - Maximum length of 128 characters
//   - No control characters
//   - No path separators or traversal sequences
//   - Only letters, digits, '.', '_' and '-'
func ValidateNetworkName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "network name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidName, "network name too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "network name contains invalid control characters")
		}
	}

	for _, pattern := range []string{"..", "/", "\\"} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidName, "network name contains invalid characters: %q", pattern)
		}
	}

	if !networkNameRegex.MatchString(name) {
		return New(ErrCodeInvalidName, "invalid network name: %q", name)
	}

	return nil
}

var networkNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateObjectKey validates an artifact key before it is handed to a blob backend.
//
// Validation rules:
//   - Key cannot be empty
//   - Maximum length of 500 characters
//   - No control characters
//   - No absolute keys, traversal sequences or backslashes
func ValidateObjectKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidInput, "key cannot be empty")
	}

	const maxKeyLength = 500
	if len(key) > maxKeyLength {
		return New(ErrCodeInvalidInput, "key too long (max %d characters)", maxKeyLength)
	}

	for _, r := range key {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "key contains invalid characters")
		}
	}

	if strings.HasPrefix(key, "/") {
		return New(ErrCodeInvalidInput, "key must be relative (cannot start with /)")
	}

	if strings.Contains(key, "..") {
		return New(ErrCodeInvalidInput, "key cannot contain path traversal sequences (..)")
	}

	if strings.Contains(key, "\\") {
		return New(ErrCodeInvalidInput, "key cannot contain backslashes")
	}

	return nil
}
