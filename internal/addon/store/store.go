package store

import (
	"context"
	"errors"
	"time"

	"github.com/campusware/edukit/internal/addon/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable.
type Store interface {
	Sessions() Sessions
	Credentials() Credentials
	Users() Users
	Attachments() Attachments
	Submissions() Submissions

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds
// Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Sessions interface {
	// CreateSession inserts a new session (id is provided by app via ULID).
	CreateSession(ctx context.Context, s domain.Session) error

	// GetSessionByTokenHash looks a session up by the fingerprint of its
	// cookie token.
	GetSessionByTokenHash(ctx context.Context, hash string) (domain.Session, error)

	// TouchSession bumps last_seen_at and pushes expires_at forward.
	TouchSession(ctx context.Context, id string, seenAt, expiresAt time.Time) error

	// BindSessionUser associates a session with an identity-provider user ID
	// once it is known.
	BindSessionUser(ctx context.Context, id, userID string) error

	// DeleteSession destroys a session. Credentials and pending states
	// cascade per schema.
	DeleteSession(ctx context.Context, id string) error

	// DeleteExpiredSessions is housekeeping.
	DeleteExpiredSessions(ctx context.Context, now time.Time) error
}

type Credentials interface {
	// UpsertCredential stores the credential for a session, replacing any
	// prior one.
	UpsertCredential(ctx context.Context, c domain.Credential) error

	// GetCredentialBySession returns the session's stored credential.
	GetCredentialBySession(ctx context.Context, sessionID string) (domain.Credential, error)

	// DeleteCredentialBySession discards the session's credential.
	DeleteCredentialBySession(ctx context.Context, sessionID string) error

	// SetPendingState stores the anti-forgery state fingerprint for an
	// in-flight authorization, replacing any previous pending state.
	SetPendingState(ctx context.Context, p domain.PendingState) error

	// ConsumePendingState atomically fetches and deletes the session's
	// pending state. A second call for the same state returns ErrNotFound;
	// that is what makes the state single-use.
	ConsumePendingState(ctx context.Context, sessionID string) (domain.PendingState, error)

	// DeleteExpiredPendingStates is housekeeping.
	DeleteExpiredPendingStates(ctx context.Context, now time.Time) error
}

type Users interface {
	// UpsertUser inserts or updates a user profile. An empty RefreshToken
	// leaves any stored token untouched (providers only return a refresh
	// token on the first consent).
	UpsertUser(ctx context.Context, u domain.User) error

	// GetUserByID returns a user by provider subject ID.
	GetUserByID(ctx context.Context, id string) (domain.User, error)
}

type Attachments interface {
	// UpsertAttachment writes the shared teacher-authored record for a key.
	UpsertAttachment(ctx context.Context, rec domain.AttachmentRecord) error

	// GetAttachment returns the record stored under key.
	GetAttachment(ctx context.Context, key domain.AttachmentKey) (domain.AttachmentRecord, error)
}

type Submissions interface {
	// UpsertSubmission writes one student's response. Last write wins.
	UpsertSubmission(ctx context.Context, rec domain.SubmissionRecord) error

	// GetSubmission returns the response stored under (key, userID).
	GetSubmission(ctx context.Context, key domain.AttachmentKey, userID string) (domain.SubmissionRecord, error)
}
