package runner

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxInputSize is 4KB (conservative default)
	DefaultMaxInputSize = 4096
	// EnvMaxInputSize is the environment variable to override the default
	EnvMaxInputSize = "PARLEY_MAX_INPUT_SIZE"
)

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// SanitizeFunc cleans one user message before it is scored.
type SanitizeFunc func(input string) (string, error)

// LimitSanitizer returns a SanitizeFunc enforcing limit bytes. Zero disables
// the limit.
func LimitSanitizer(limit int) SanitizeFunc {
	return func(input string) (string, error) {
		return SanitizeWithLimit(input, limit)
	}
}

// SanitizeInput cleans a user message with the configured size limit.
// See SanitizeWithLimit.
func SanitizeInput(input string) (string, error) {
	return SanitizeWithLimit(input, MaxInputSize())
}

// SanitizeWithLimit rejects input longer than limit bytes or not valid
// UTF-8, and strips control characters other than newline, tab and carriage
// return. Leading and trailing whitespace is kept: it takes part in keyword
// distance like any other character.
func SanitizeWithLimit(input string, limit int) (string, error) {
	if limit > 0 && len(input) > limit {
		// Rejected rather than truncated so the match never depends on where the cut fell.
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}

	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	// Fast path: if no control chars, return as is.
	if strings.IndexFunc(input, isUnsafeControl) < 0 {
		return input, nil
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if !isUnsafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

func isUnsafeControl(r rune) bool {
	return unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r'
}

// MaxInputSize returns the limit from EnvMaxInputSize, or DefaultMaxInputSize.
func MaxInputSize() int {
	if val := os.Getenv(EnvMaxInputSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxInputSize
}
