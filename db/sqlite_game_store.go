package db

import (
	"context"
	"database/sql"
)

type sqliteGameStore struct {
	db *sql.DB
}

func NewGameStore(sqlDB *sql.DB) GameStore {
	return &sqliteGameStore{db: sqlDB}
}

func (s *sqliteGameStore) Exists(ctx context.Context, accountID, pgnHash string) (bool, error) {
	const q = `SELECT 1 FROM games WHERE account_id = ? AND pgn_hash = ? LIMIT 1;`
	var one int
	err := s.db.QueryRowContext(ctx, q, accountID, pgnHash).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Insert relies on the unique (account_id, pgn_hash) index and an
// ON CONFLICT DO NOTHING clause rather than parsing the driver's
// constraint-violation error. A concurrent duplicate
// insert (two entries of the same game landing in the same batch) simply
// affects zero rows instead of erroring, which is exactly the "not
// inserted" outcome the Coordinator treats as a duplicate.
func (s *sqliteGameStore) Insert(ctx context.Context, g Game) (bool, error) {
	const q = `
INSERT INTO games (id, account_id, played_at, result, color, time_control_raw,
  time_control_category, eco_code, opening_name, opponent, pgn_hash, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(account_id, pgn_hash) DO NOTHING;`
	res, err := s.db.ExecContext(ctx, q,
		g.ID, g.AccountID, g.PlayedAt.UTC(), string(g.Result), string(g.Color),
		nullableString(g.TimeControlRaw), string(g.TimeControlCategory),
		nullableString(g.ECOCode), nullableString(g.OpeningName), nullableString(g.Opponent),
		g.PGNHash, g.CreatedAt.UTC(),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *sqliteGameStore) CountByAccount(ctx context.Context, accountID string) (int, error) {
	const q = `SELECT COUNT(*) FROM games WHERE account_id = ?;`
	var n int
	if err := s.db.QueryRowContext(ctx, q, accountID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *sqliteGameStore) DeleteByAccount(ctx context.Context, accountID string) error {
	const q = `DELETE FROM games WHERE account_id = ?;`
	_, err := s.db.ExecContext(ctx, q, accountID)
	return err
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
