// Package analytics computes read-only aggregates over an account's
// ingested games: overall win/loss/draw record, the same broken down by
// color and time control, and day-by-day activity counts. The aggregation
// is pushed into SQL (a single GROUP BY beats fetching every row to sum in
// Go), so this package owns its own queries against *sql.DB.
package analytics

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jasperwolfe/chessimport/db"
)

// ColorBreakdown is one color's record within a Summary.
type ColorBreakdown struct {
	Games, Wins, Losses, Draws int
}

// Summary is an account's all-time record, grouped by color and by time
// control category.
type Summary struct {
	AccountID     string
	TotalGames    int
	Wins          int
	Losses        int
	Draws         int
	WinPct        float64
	ByColor       map[db.Color]ColorBreakdown
	ByTimeControl map[db.TimeControlCategory]int
}

// DailyCount is the number of games played on one calendar date (UTC).
type DailyCount struct {
	Date  string // "2006-01-02"
	Games int
}

// Store runs read-only aggregate queries against the games table.
type Store struct {
	db *sql.DB
}

func NewStore(conn *sql.DB) *Store {
	return &Store{db: conn}
}

// Summary computes an account's overall record and by-color/time-control rollups.
func (s *Store) Summary(ctx context.Context, accountID string) (Summary, error) {
	out := Summary{
		AccountID:     accountID,
		ByColor:       map[db.Color]ColorBreakdown{},
		ByTimeControl: map[db.TimeControlCategory]int{},
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT color, result, COUNT(*)
		FROM games
		WHERE account_id = ?
		GROUP BY color, result`, accountID)
	if err != nil {
		return Summary{}, fmt.Errorf("query color/result breakdown: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var color, result string
		var count int
		if err := rows.Scan(&color, &result, &count); err != nil {
			return Summary{}, fmt.Errorf("scan color/result row: %w", err)
		}
		cb := out.ByColor[db.Color(color)]
		cb.Games += count
		switch db.Result(result) {
		case db.ResultWin:
			cb.Wins += count
			out.Wins += count
		case db.ResultLoss:
			cb.Losses += count
			out.Losses += count
		case db.ResultDraw:
			cb.Draws += count
			out.Draws += count
		}
		out.ByColor[db.Color(color)] = cb
		out.TotalGames += count
	}
	if err := rows.Err(); err != nil {
		return Summary{}, err
	}

	tcRows, err := s.db.QueryContext(ctx, `
		SELECT time_control_category, COUNT(*)
		FROM games
		WHERE account_id = ?
		GROUP BY time_control_category`, accountID)
	if err != nil {
		return Summary{}, fmt.Errorf("query time control breakdown: %w", err)
	}
	defer tcRows.Close()

	for tcRows.Next() {
		var category string
		var count int
		if err := tcRows.Scan(&category, &count); err != nil {
			return Summary{}, fmt.Errorf("scan time control row: %w", err)
		}
		out.ByTimeControl[db.TimeControlCategory(category)] = count
	}
	if err := tcRows.Err(); err != nil {
		return Summary{}, err
	}

	if out.TotalGames > 0 {
		out.WinPct = 100 * float64(out.Wins) / float64(out.TotalGames)
	}
	return out, nil
}

// DailyActivity returns one row per UTC calendar date that has at least
// one game, most recent first, limited to the most recent `days` distinct
// dates.
func (s *Store) DailyActivity(ctx context.Context, accountID string, days int) ([]DailyCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date(played_at) AS d, COUNT(*)
		FROM games
		WHERE account_id = ?
		GROUP BY d
		ORDER BY d DESC
		LIMIT ?`, accountID, days)
	if err != nil {
		return nil, fmt.Errorf("query daily activity: %w", err)
	}
	defer rows.Close()

	var out []DailyCount
	for rows.Next() {
		var dc DailyCount
		if err := rows.Scan(&dc.Date, &dc.Games); err != nil {
			return nil, fmt.Errorf("scan daily activity row: %w", err)
		}
		out = append(out, dc)
	}
	return out, rows.Err()
}
