package domain

// Role is the capability the host platform asserts for the launching user.
// It is only ever taken from a verified host claim, never inferred from
// request shape.
type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool {
	return r == RoleTeacher || r == RoleStudent
}

// LaunchParams are the raw, untrusted query parameters the host supplies
// when it opens the add-on iframe.
type LaunchParams struct {
	CourseID     string
	ItemID       string
	AttachmentID string // empty for "create new attachment" flows
	SubmissionID string
	LoginHint    string // provider user ID of the launching user, if known
	AddOnToken   string // host-minted token authorizing attachment creation
	LaunchToken  string // signed launch JWT, when the host uses that scheme
}

// LaunchContext is the resolved, typed form of LaunchParams. It is derived
// fresh on every launch and never persisted.
type LaunchContext struct {
	CourseID     string
	ItemID       string
	AttachmentID string // empty for "create new" flows
	SubmissionID string
	Role         Role
	UserID       string
}

// Key derives the attachment key for this context.
func (lc LaunchContext) Key() AttachmentKey {
	return AttachmentKey{
		CourseID:     lc.CourseID,
		ItemID:       lc.ItemID,
		AttachmentID: lc.AttachmentID,
	}
}

// LaunchState tracks one launch request through its lifecycle.
type LaunchState int

const (
	Unauthenticated LaunchState = iota
	AuthorizationPending
	Authenticated
	ContextResolved
)

func (s LaunchState) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case AuthorizationPending:
		return "authorization_pending"
	case Authenticated:
		return "authenticated"
	case ContextResolved:
		return "context_resolved"
	default:
		return "unknown"
	}
}

// CanAdvance reports whether the transition s -> next is legal. Any failure
// resets the flow to Unauthenticated, which is always reachable; forward
// movement follows the single path
// Unauthenticated -> AuthorizationPending -> Authenticated -> ContextResolved,
// with AuthorizationPending skippable when a valid credential already exists.
func (s LaunchState) CanAdvance(next LaunchState) bool {
	if next == Unauthenticated {
		return true
	}
	switch s {
	case Unauthenticated:
		return next == AuthorizationPending || next == Authenticated
	case AuthorizationPending:
		return next == Authenticated
	case Authenticated:
		return next == ContextResolved
	default:
		return false
	}
}
