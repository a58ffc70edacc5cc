package service

import (
	"context"
	"errors"
	"time"

	"github.com/campusware/edukit/internal/addon/domain"
	"github.com/campusware/edukit/internal/addon/store"
	"github.com/campusware/edukit/pkg/cryptox"
	"github.com/campusware/edukit/pkg/idx"
)

var (
	// ErrNoSession is returned when a session token is unknown or has
	// expired. Callers should establish a fresh session and retry.
	ErrNoSession = errors.New("session_not_found")
)

// SessionService manages the browser-side sessions that anchor a launch.
// The raw token only ever travels in the cookie; the store keeps a
// fingerprint, so a database leak does not leak usable cookies.
type SessionService struct {
	Store store.Store
	TTL   time.Duration
}

// Establish creates a brand new session and returns it along with the raw
// cookie token. Session IDs are ULIDs and never reused.
func (s *SessionService) Establish(ctx context.Context) (domain.Session, string, error) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return domain.Session{}, "", err
	}

	now := time.Now().UTC()
	sess := domain.Session{
		ID:         idx.New().String(),
		TokenHash:  cryptox.FingerprintToken(token),
		CreatedAt:  now,
		LastSeenAt: now,
		ExpiresAt:  now.Add(s.TTL),
	}

	if err := s.Store.Sessions().CreateSession(ctx, sess); err != nil {
		return domain.Session{}, "", err
	}
	return sess, token, nil
}

// Resolve maps a raw cookie token back to its session and slides the
// expiry forward. Expired sessions are deleted on sight.
func (s *SessionService) Resolve(ctx context.Context, token string) (domain.Session, error) {
	sess, err := s.Store.Sessions().GetSessionByTokenHash(ctx, cryptox.FingerprintToken(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Session{}, ErrNoSession
		}
		return domain.Session{}, err
	}

	now := time.Now().UTC()
	if sess.Expired(now) {
		_ = s.Store.Sessions().DeleteSession(ctx, sess.ID)
		return domain.Session{}, ErrNoSession
	}

	sess.LastSeenAt = now
	sess.ExpiresAt = now.Add(s.TTL)
	if err := s.Store.Sessions().TouchSession(ctx, sess.ID, sess.LastSeenAt, sess.ExpiresAt); err != nil {
		return domain.Session{}, err
	}
	return sess, nil
}

// Destroy removes the session. The schema cascades the session's
// credential and any pending authorization state with it.
func (s *SessionService) Destroy(ctx context.Context, sessionID string) error {
	return s.Store.Sessions().DeleteSession(ctx, sessionID)
}
