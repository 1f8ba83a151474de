package auth

import "strings"

// AllowList is an immutable set of administrator email addresses.
// It is built once at startup and handed to whatever needs it; nothing
// reads it from ambient state, so concurrent reads need no locking.
type AllowList struct {
	emails map[string]struct{}
}

// NewAllowList builds an allow-list from raw entries. Each entry is
// trimmed and lower-cased; empty entries are dropped.
func NewAllowList(entries []string) *AllowList {
	emails := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if n := NormalizeEmail(e); n != "" {
			emails[n] = struct{}{}
		}
	}
	return &AllowList{emails: emails}
}

// Allows reports whether the normalized email is on the list.
// An empty email is never allowed.
func (a *AllowList) Allows(email string) bool {
	n := NormalizeEmail(email)
	if n == "" {
		return false
	}
	_, ok := a.emails[n]
	return ok
}

// Len returns the number of allow-listed addresses.
func (a *AllowList) Len() int {
	return len(a.emails)
}

// NormalizeEmail trims surrounding whitespace and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
