package domain

import "time"

// User is a known end user of the add-on, identified by the identity
// provider's stable subject ID. The stored refresh token lets a returning
// user (matched via login_hint) skip the consent screen on a fresh session.
type User struct {
	ID          string
	DisplayName string
	Email       string
	PortraitURL string

	// RefreshToken is plaintext here; sealed at rest. It becomes invalid if
	// the user revokes access or the provider rotates it away.
	RefreshToken string

	CreatedAt time.Time
	UpdatedAt time.Time
}
