// Package jwtx verifies host-issued launch tokens. The embedding platform
// signs a short-lived JWT describing the launch; the only claim the add-on
// trusts for authorization decisions is the role claim carried here.
package jwtx

import (
	"github.com/golang-jwt/jwt/v5"
)

// LaunchClaims are the claims a host platform places in a signed launch token.
type LaunchClaims struct {
	jwt.RegisteredClaims

	// Role the user holds in the launching context: "teacher" or "student".
	Role string `json:"role"`

	// Identifiers describing the launching context. These mirror the query
	// parameters but arrive signed; handlers may cross-check the two.
	CourseID     string `json:"courseId,omitempty"`
	ItemID       string `json:"itemId,omitempty"`
	AttachmentID string `json:"attachmentId,omitempty"`
}
