package sqlite

import (
	"context"
	"database/sql"

	"github.com/campusware/edukit/internal/addon/domain"
	"github.com/campusware/edukit/pkg/cryptox"
)

type usersRepo struct {
	db     dbtx
	sealer *cryptox.Sealer
}

func (r *usersRepo) UpsertUser(ctx context.Context, u domain.User) error {
	var refresh sql.NullString
	if u.RefreshToken != "" {
		sealed, err := r.sealer.Seal(u.RefreshToken)
		if err != nil {
			return err
		}
		refresh = sql.NullString{String: sealed, Valid: true}
	}

	// COALESCE keeps the previously stored refresh token when the provider
	// didn't issue a new one on this consent.
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, display_name, email, portrait_url, refresh_token_sealed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			display_name = excluded.display_name,
			email = excluded.email,
			portrait_url = excluded.portrait_url,
			refresh_token_sealed = COALESCE(excluded.refresh_token_sealed, users.refresh_token_sealed),
			updated_at = excluded.updated_at`,
		u.ID, u.DisplayName, u.Email, u.PortraitURL, refresh, u.CreatedAt, u.UpdatedAt,
	)
	return err
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, display_name, email, portrait_url, refresh_token_sealed, created_at, updated_at
		FROM users WHERE id = ?`, id,
	)

	var (
		u       domain.User
		refresh sql.NullString
	)
	err := row.Scan(&u.ID, &u.DisplayName, &u.Email, &u.PortraitURL, &refresh, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	if refresh.Valid {
		if u.RefreshToken, err = r.sealer.Open(refresh.String); err != nil {
			return domain.User{}, err
		}
	}
	return u, nil
}
