package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/campusware/edukit/internal/addon/domain"
	"github.com/campusware/edukit/internal/addon/store"
	"github.com/campusware/edukit/pkg/cryptox"
)

type credentialsRepo struct {
	db     dbtx
	sealer *cryptox.Sealer
}

func (r *credentialsRepo) UpsertCredential(ctx context.Context, c domain.Credential) error {
	access, err := r.sealer.Seal(c.AccessToken)
	if err != nil {
		return err
	}

	var refresh sql.NullString
	if c.RefreshToken != "" {
		sealed, err := r.sealer.Seal(c.RefreshToken)
		if err != nil {
			return err
		}
		refresh = sql.NullString{String: sealed, Valid: true}
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO oauth_credentials
			(session_id, access_token_sealed, refresh_token_sealed, expires_at, scopes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (session_id) DO UPDATE SET
			access_token_sealed = excluded.access_token_sealed,
			refresh_token_sealed = COALESCE(excluded.refresh_token_sealed, oauth_credentials.refresh_token_sealed),
			expires_at = excluded.expires_at,
			scopes = excluded.scopes,
			updated_at = excluded.updated_at`,
		c.SessionID, access, refresh, c.ExpiresAt,
		strings.Join(c.Scopes, " "), c.CreatedAt, c.UpdatedAt,
	)
	return err
}

func (r *credentialsRepo) GetCredentialBySession(ctx context.Context, sessionID string) (domain.Credential, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT session_id, access_token_sealed, refresh_token_sealed, expires_at, scopes, created_at, updated_at
		FROM oauth_credentials WHERE session_id = ?`, sessionID,
	)

	var (
		c       domain.Credential
		access  string
		refresh sql.NullString
		scopes  string
	)
	err := row.Scan(&c.SessionID, &access, &refresh, &c.ExpiresAt, &scopes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return domain.Credential{}, mapNotFound(err)
	}

	if c.AccessToken, err = r.sealer.Open(access); err != nil {
		return domain.Credential{}, err
	}
	if refresh.Valid {
		if c.RefreshToken, err = r.sealer.Open(refresh.String); err != nil {
			return domain.Credential{}, err
		}
	}
	c.Scopes = splitScopes(scopes)
	return c, nil
}

func (r *credentialsRepo) DeleteCredentialBySession(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM oauth_credentials WHERE session_id = ?`, sessionID)
	return err
}

func (r *credentialsRepo) SetPendingState(ctx context.Context, p domain.PendingState) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pending_states (session_id, state_hash, created_at, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (session_id) DO UPDATE SET
			state_hash = excluded.state_hash,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at`,
		p.SessionID, p.StateHash, p.CreatedAt, p.ExpiresAt,
	)
	return err
}

func (r *credentialsRepo) ConsumePendingState(ctx context.Context, sessionID string) (domain.PendingState, error) {
	// DELETE ... RETURNING makes fetch-and-consume a single atomic
	// statement, which is what enforces single use.
	row := r.db.QueryRowContext(ctx, `
		DELETE FROM pending_states WHERE session_id = ?
		RETURNING session_id, state_hash, created_at, expires_at`, sessionID,
	)

	var p domain.PendingState
	err := row.Scan(&p.SessionID, &p.StateHash, &p.CreatedAt, &p.ExpiresAt)
	if err != nil {
		return domain.PendingState{}, mapNotFound(err)
	}
	return p, nil
}

func (r *credentialsRepo) DeleteExpiredPendingStates(ctx context.Context, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM pending_states WHERE expires_at <= ?`, now)
	return err
}

func splitScopes(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return strings.Fields(s)
}

var _ store.Credentials = (*credentialsRepo)(nil)
