package logger

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Length caps for values that end up in structured log fields. Anything
// longer is truncated with a trailing ellipsis.
const (
	MaxPathLength          = 500
	MaxErrorMessageLength  = 1000
	MaxGeneralStringLength = 2000
)

// SanitizeString strips control characters from s, repairs invalid UTF-8
// and truncates to maxLength. A non-positive maxLength falls back to
// MaxGeneralStringLength.
func SanitizeString(s string, maxLength int) string {
	if s == "" {
		return ""
	}
	if maxLength <= 0 {
		maxLength = MaxGeneralStringLength
	}
	s = stripControlRunes(s)
	if len(s) > maxLength {
		s = s[:maxLength] + "..."
	}
	return s
}

// SanitizePath prepares a request path for logging. Paths are attacker
// controlled, so they get the same control-character and length treatment
// as any other untrusted string.
func SanitizePath(path string) string {
	return SanitizeString(path, MaxPathLength)
}

// SanitizeError renders an error for a log field, tolerating nil.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeString(err.Error(), MaxErrorMessageLength)
}

// stripControlRunes drops non-printable runes. Space, tab, newline and
// carriage return survive so multi-line content stays readable.
func stripControlRunes(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsPrint(r) || r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
