package domain

import (
	"slices"
	"time"
)

// Credential holds the OAuth2 tokens granted to one session. Token values
// are plaintext here; the store seals them before they touch disk.
type Credential struct {
	SessionID    string
	AccessToken  string
	RefreshToken string // empty when the provider issued none
	ExpiresAt    time.Time
	Scopes       []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Fresh reports whether the access token is still usable at now, leaving
// margin before the actual expiry so in-flight API calls don't race it.
func (c Credential) Fresh(now time.Time, margin time.Duration) bool {
	return c.ExpiresAt.After(now.Add(margin))
}

// HasScopes reports whether every required scope was granted.
func (c Credential) HasScopes(required []string) bool {
	for _, want := range required {
		if !slices.Contains(c.Scopes, want) {
			return false
		}
	}
	return true
}

// PendingState is the stored half of an in-flight authorization round trip:
// the fingerprint of the anti-forgery state issued by BeginAuthorization.
// Single use; consumed on the first completion attempt.
type PendingState struct {
	SessionID string
	StateHash string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the pending state is too old to honour.
func (p PendingState) Expired(now time.Time) bool {
	return !p.ExpiresAt.After(now)
}
