package db

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

type sqliteAccountStore struct {
	db *sql.DB
}

func NewAccountStore(sqlDB *sql.DB) AccountStore {
	return &sqliteAccountStore{db: sqlDB}
}

func (s *sqliteAccountStore) Get(ctx context.Context, id string) (Account, error) {
	const q = `
SELECT id, platform, username, label, created_at, last_sync_at
FROM accounts WHERE id = ?;`
	return s.scanOne(s.db.QueryRowContext(ctx, q, id))
}

// FindByPlatformUsername matches case-insensitively
func (s *sqliteAccountStore) FindByPlatformUsername(ctx context.Context, platform Platform, username string) (Account, error) {
	const q = `
SELECT id, platform, username, label, created_at, last_sync_at
FROM accounts WHERE platform = ? AND username_lower = ?;`
	return s.scanOne(s.db.QueryRowContext(ctx, q, string(platform), strings.ToLower(username)))
}

func (s *sqliteAccountStore) scanOne(row *sql.Row) (Account, error) {
	var a Account
	var label sql.NullString
	var lastSync sql.NullTime
	if err := row.Scan(&a.ID, &a.Platform, &a.Username, &label, &a.CreatedAt, &lastSync); err != nil {
		return Account{}, err
	}
	if label.Valid {
		a.Label = &label.String
	}
	if lastSync.Valid {
		t := lastSync.Time
		a.LastSyncAt = &t
	}
	return a, nil
}

// SetLastSyncAt advances last_sync_at. Callers (the Coordinator) are
// responsible for only calling this with a timestamp >= the previous value,
// preserving the account's last-sync monotonicity invariant.
func (s *sqliteAccountStore) SetLastSyncAt(ctx context.Context, id string, t time.Time) error {
	const q = `UPDATE accounts SET last_sync_at = ? WHERE id = ?;`
	_, err := s.db.ExecContext(ctx, q, t.UTC(), id)
	return err
}
