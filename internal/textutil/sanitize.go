package textutil

import (
	"strings"
	"unicode"
)

// SanitizeFileName converts a book title into a filesystem-friendly name.
// Letters, digits, dashes, underscores, and dots are kept; spaces become
// underscores; everything else becomes an underscore. Returns "book" when
// nothing usable remains.
func SanitizeFileName(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "book"
	}

	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		default:
			b.WriteByte('_')
		}
	}

	name := strings.Trim(b.String(), "_.")
	if name == "" {
		return "book"
	}
	return name
}
