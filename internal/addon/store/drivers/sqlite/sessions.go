package sqlite

import (
	"context"
	"time"

	"github.com/campusware/edukit/internal/addon/domain"
)

type sessionsRepo struct {
	db dbtx
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, token_hash, user_id, created_at, last_seen_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID, s.TokenHash, s.UserID, s.CreatedAt, s.LastSeenAt, s.ExpiresAt,
	)
	return err
}

func (r *sessionsRepo) GetSessionByTokenHash(ctx context.Context, hash string) (domain.Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, token_hash, user_id, created_at, last_seen_at, expires_at
		FROM sessions WHERE token_hash = ?`, hash,
	)

	var s domain.Session
	err := row.Scan(&s.ID, &s.TokenHash, &s.UserID, &s.CreatedAt, &s.LastSeenAt, &s.ExpiresAt)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	return s, nil
}

func (r *sessionsRepo) TouchSession(ctx context.Context, id string, seenAt, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE sessions SET last_seen_at = ?, expires_at = ? WHERE id = ?`,
		seenAt, expiresAt, id,
	)
	return err
}

func (r *sessionsRepo) BindSessionUser(ctx context.Context, id, userID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE sessions SET user_id = ? WHERE id = ?`, userID, id,
	)
	return err
}

func (r *sessionsRepo) DeleteSession(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return err
}

func (r *sessionsRepo) DeleteExpiredSessions(ctx context.Context, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, now)
	return err
}
