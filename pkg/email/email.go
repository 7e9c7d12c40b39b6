// Package email holds helpers for working with login emails.
package email

import (
	"strings"
	"unicode"
)

// DeriveDisplayName builds a readable display name from the local part of an
// email address, e.g. "sam.writer@example.com" becomes "Sam Writer". Used as
// the default when registration supplies no display name.
func DeriveDisplayName(email string) string {
	localPart := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		localPart = email[:at]
	}

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	if len(parts) == 0 {
		return "User"
	}

	for i, p := range parts {
		parts[i] = capitalize(p)
	}
	return strings.Join(parts, " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
