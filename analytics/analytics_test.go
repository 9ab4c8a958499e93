package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/jasperwolfe/chessimport/db"
)

func newTestDB(t *testing.T) *Store {
	t.Helper()
	conn, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := db.ApplyMigrations(context.Background(), conn, "../db/migrations"); err != nil {
		t.Fatalf("ApplyMigrations: %v", err)
	}
	return NewStore(conn)
}

func insertGame(t *testing.T, store *Store, accountID string, playedAt time.Time, result db.Result, color db.Color, tc db.TimeControlCategory) {
	t.Helper()
	_, err := store.db.ExecContext(context.Background(), `
		INSERT INTO games (id, account_id, played_at, result, color, time_control_category, pgn_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), accountID, playedAt, string(result), string(color), string(tc), uuid.NewString(), time.Now().UTC())
	if err != nil {
		t.Fatalf("insert fixture game: %v", err)
	}
}

func TestSummary_AggregatesByColorAndResult(t *testing.T) {
	store := newTestDB(t)
	acc := "acc1"
	day := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	insertGame(t, store, acc, day, db.ResultWin, db.ColorWhite, db.TimeControlBlitz)
	insertGame(t, store, acc, day, db.ResultLoss, db.ColorWhite, db.TimeControlBlitz)
	insertGame(t, store, acc, day, db.ResultWin, db.ColorBlack, db.TimeControlBullet)
	insertGame(t, store, acc, day, db.ResultDraw, db.ColorBlack, db.TimeControlBullet)

	summary, err := store.Summary(context.Background(), acc)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.TotalGames != 4 {
		t.Fatalf("TotalGames = %d, want 4", summary.TotalGames)
	}
	if summary.Wins != 2 || summary.Losses != 1 || summary.Draws != 1 {
		t.Fatalf("unexpected record: wins=%d losses=%d draws=%d", summary.Wins, summary.Losses, summary.Draws)
	}
	if summary.WinPct != 50 {
		t.Fatalf("WinPct = %v, want 50", summary.WinPct)
	}
	white := summary.ByColor[db.ColorWhite]
	if white.Games != 2 || white.Wins != 1 || white.Losses != 1 {
		t.Fatalf("unexpected white breakdown: %+v", white)
	}
	if summary.ByTimeControl[db.TimeControlBlitz] != 2 || summary.ByTimeControl[db.TimeControlBullet] != 2 {
		t.Fatalf("unexpected time control breakdown: %+v", summary.ByTimeControl)
	}
}

func TestSummary_NoGamesIsZeroValueNotError(t *testing.T) {
	store := newTestDB(t)
	summary, err := store.Summary(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.TotalGames != 0 || summary.WinPct != 0 {
		t.Fatalf("expected zero-value summary, got %+v", summary)
	}
}

func TestDailyActivity_GroupsByUTCDateMostRecentFirst(t *testing.T) {
	store := newTestDB(t)
	acc := "acc1"
	day1 := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	day1Later := time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC)

	insertGame(t, store, acc, day1, db.ResultWin, db.ColorWhite, db.TimeControlBlitz)
	insertGame(t, store, acc, day1Later, db.ResultLoss, db.ColorBlack, db.TimeControlBlitz)
	insertGame(t, store, acc, day2, db.ResultDraw, db.ColorWhite, db.TimeControlBlitz)

	activity, err := store.DailyActivity(context.Background(), acc, 10)
	if err != nil {
		t.Fatalf("DailyActivity: %v", err)
	}
	if len(activity) != 2 {
		t.Fatalf("expected 2 distinct days, got %d: %+v", len(activity), activity)
	}
	if activity[0].Date != "2024-06-02" || activity[0].Games != 1 {
		t.Fatalf("unexpected most-recent day: %+v", activity[0])
	}
	if activity[1].Date != "2024-06-01" || activity[1].Games != 2 {
		t.Fatalf("unexpected older day: %+v", activity[1])
	}
}
