package domain

import "time"

// Session identifies one browser-side interaction with the add-on iframe.
// The raw session token only ever lives in the cookie; the store keeps its
// fingerprint. Session IDs are random and rows are deleted on destruction,
// so an identifier is never reused.
type Session struct {
	ID         string
	TokenHash  string
	UserID     string // empty until the user has authorized
	CreatedAt  time.Time
	LastSeenAt time.Time
	ExpiresAt  time.Time
}

// Expired reports whether the session has passed its expiry at the given time.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
