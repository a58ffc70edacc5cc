package sqlite

import (
	"context"
	"database/sql"

	"github.com/campusware/edukit/internal/addon/store"
	"github.com/campusware/edukit/pkg/cryptox"
)

type txStore struct {
	tx     *sql.Tx
	sealer *cryptox.Sealer
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // caller commits/rolls back; outer DB stays open

// Ping is a no-op for transactions.
func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) ApplyMigrations() error { return nil } // migrations run before any tx starts

func (t *txStore) Sessions() store.Sessions { return &sessionsRepo{db: t.tx} }
func (t *txStore) Credentials() store.Credentials {
	return &credentialsRepo{db: t.tx, sealer: t.sealer}
}
func (t *txStore) Users() store.Users             { return &usersRepo{db: t.tx, sealer: t.sealer} }
func (t *txStore) Attachments() store.Attachments { return &attachmentsRepo{db: t.tx} }
func (t *txStore) Submissions() store.Submissions { return &submissionsRepo{db: t.tx} }
