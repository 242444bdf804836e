package services

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	maxUserNameLen = 20
	maxSlugLen     = 48
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9._-]{3,20}$`)

var reservedUsernames = map[string]bool{
	"admin":     true,
	"owner":     true,
	"support":   true,
	"root":      true,
	"system":    true,
	"api":       true,
	"docs":      true,
	"help":      true,
	"test":      true,
	"superuser": true,
}

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func stripDiacritics(s string) string {
	out, _, err := transform.String(diacriticStripper, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeUsername lower-cases, strips diacritics, drops characters outside
// [a-z0-9._-] and truncates to 20 characters. It is idempotent.
func NormalizeUsername(raw string) string {
	s := stripDiacritics(strings.ToLower(strings.TrimSpace(raw)))

	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	u := b.String()
	if len(u) > maxUserNameLen {
		u = u[:maxUserNameLen]
	}
	return u
}

// ValidUsername reports whether a normalized username satisfies the
// 3-20 character [a-z0-9._-] rule.
func ValidUsername(userName string) bool {
	return usernamePattern.MatchString(userName)
}

// ReservedUsername reports whether the name is on the denylist.
func ReservedUsername(userName string) bool {
	return reservedUsernames[userName]
}

// Slugify derives a URL-safe tenant slug from a display name: lower-cased,
// diacritics stripped, non-alphanumeric runs collapsed to single hyphens,
// leading/trailing hyphens trimmed, capped at 48 characters.
func Slugify(name string) string {
	s := stripDiacritics(strings.ToLower(name))

	var b strings.Builder
	pendingHyphen := false
	for _, r := range s {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if alnum {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}

	slug := b.String()
	if len(slug) > maxSlugLen {
		slug = strings.TrimRight(slug[:maxSlugLen], "-")
	}
	return slug
}
