package ingest

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Bounds on the source text after normalization. Below the minimum
// there is nothing worth a model call; above the maximum the prompt
// would not fit a single request.
const (
	MinChars = 20
	MaxChars = 50000
)

// Validation failures callers can branch on.
var (
	ErrTooShort = errors.New("source text is too short")
	ErrTooLong  = errors.New("source text is too long")
)

// blankRunRe matches runs of more than two blank lines.
var blankRunRe = regexp.MustCompile(`\n{4,}`)

// Normalize cleans a document's whitespace without touching its words:
// line endings become \n, tabs become four spaces, and runs of three or
// more blank lines collapse to two.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\t", "    ")
	text = blankRunRe.ReplaceAllString(text, "\n\n\n")
	return strings.TrimSpace(text)
}

// Validate enforces the source-text bounds. The text should already be
// normalized; the rune count decides, not the byte count.
func Validate(text string) error {
	n := utf8.RuneCountInString(text)
	if n < MinChars {
		return fmt.Errorf("%w: %d characters (minimum %d)", ErrTooShort, n, MinChars)
	}
	if n > MaxChars {
		return fmt.Errorf("%w: %d characters (maximum %d)", ErrTooLong, n, MaxChars)
	}
	return nil
}
