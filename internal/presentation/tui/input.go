package tui

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxInputSize bounds a single line of player input.
const MaxInputSize = 4096

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// SanitizeInput rejects oversized or invalid UTF-8 input and strips control
// characters other than tab, so stray escape sequences cannot reach the terminal.
func SanitizeInput(input string) (string, error) {
	if len(input) > MaxInputSize {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), MaxInputSize)
	}
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if !unicode.IsControl(r) || r == '\t' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String()), nil
}
