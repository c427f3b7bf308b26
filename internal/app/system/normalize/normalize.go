// internal/app/system/normalize/normalize.go
package normalize

import (
	"strings"
	"unicode"
)

// Email lowercases and trims an email address for storage and lookup.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace from a display name, preserving case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Role lowercases and trims a role value for comparison against the
// closed role set.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// DisplayName returns the name to show for an account. When name is
// empty it derives one from the email local part: digits, dots,
// underscores, and hyphens are stripped and the first letter is
// capitalized. Falls back to "User" when nothing usable remains.
func DisplayName(name, email string) string {
	if n := Name(name); n != "" {
		return n
	}
	local := email
	if at := strings.IndexByte(email, '@'); at >= 0 {
		local = email[:at]
	}
	var b strings.Builder
	for _, r := range local {
		if unicode.IsDigit(r) || r == '.' || r == '_' || r == '-' {
			continue
		}
		b.WriteRune(r)
	}
	clean := b.String()
	if clean == "" {
		return "User"
	}
	return strings.ToUpper(clean[:1]) + strings.ToLower(clean[1:])
}
