package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Slug normalizes an application name into its wire identity. The name is
// NFKD-decomposed, ASCII letters and digits are kept lower-cased, runs of
// whitespace and ./-/_// separators collapse to single hyphens, and anything
// else is dropped. The result never starts or ends with a hyphen, so the
// function is idempotent.
func Slug(name string) string {
	var b []byte
	for _, r := range norm.NFKD.String(name) {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z':
			b = append(b, byte(r))
		case r >= 'A' && r <= 'Z':
			b = append(b, byte(r+'a'-'A'))
		case unicode.IsSpace(r), r == '-', r == '_', r == '.', r == '/':
			if len(b) > 0 && b[len(b)-1] != '-' {
				b = append(b, '-')
			}
		}
	}
	return strings.Trim(string(b), "-")
}
