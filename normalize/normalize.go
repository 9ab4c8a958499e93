// Package normalize maps a pgn.ParsedGame (headers + move text) into the
// internal Game record: player color, result from the player's perspective,
// time-control category, UTC timestamp, and a stable dedup fingerprint.
package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/jasperwolfe/chessimport/db"
	"github.com/jasperwolfe/chessimport/pgn"
)

// Game is the normalizer's output. A Game is valid iff PlayedAt, Result,
// Color, and PGNHash are all populated; Normalize
// returns nil for an invalid game rather than a half-filled struct.
type Game struct {
	PlayedAt            time.Time
	Result              db.Result
	Color               db.Color
	TimeControlRaw      *string
	TimeControlCategory db.TimeControlCategory
	ECOCode             *string
	OpeningName         *string
	Opponent            *string
	PGNHash             string
}

// Normalize maps a single parsed game onto the given account username.
// Returns nil when the username doesn't match either side, or when any
// required field can't be derived.
func Normalize(username string, g pgn.ParsedGame) *Game {
	color, opponent, ok := matchColor(username, g.Headers)
	if !ok {
		return nil
	}

	result := mapResult(g.Headers["Result"], color)
	playedAt := parseTimestamp(g.Headers["Date"], g.Headers["UTCTime"], g.Headers["Time"])
	rawTC, category := categorizeTimeControl(g.Headers["TimeControl"])
	hash := fingerprint(g.Headers, g.Moves)

	if playedAt.IsZero() || result == "" || color == "" || hash == "" {
		return nil
	}

	out := &Game{
		PlayedAt:            playedAt,
		Result:              result,
		Color:               color,
		TimeControlCategory: category,
		PGNHash:             hash,
	}
	if rawTC != "" {
		out.TimeControlRaw = &rawTC
	}
	if opponent != "" {
		out.Opponent = &opponent
	}
	if eco := strings.TrimSpace(g.Headers["ECO"]); eco != "" {
		out.ECOCode = &eco
	}
	if opening := strings.TrimSpace(g.Headers["Opening"]); opening != "" {
		out.OpeningName = &opening
	}
	return out
}

// matchColor compares username case-insensitively against the White/Black
// headers. Exactly one must match.
func matchColor(username string, headers map[string]string) (color db.Color, opponent string, ok bool) {
	white := headers["White"]
	black := headers["Black"]
	lowered := strings.ToLower(username)

	whiteMatch := strings.ToLower(white) == lowered
	blackMatch := strings.ToLower(black) == lowered

	switch {
	case whiteMatch && !blackMatch:
		return db.ColorWhite, black, true
	case blackMatch && !whiteMatch:
		return db.ColorBlack, white, true
	default:
		return "", "", false
	}
}

// mapResult maps a PGN Result token to the tracked player's outcome.
func mapResult(token string, color db.Color) db.Result {
	switch token {
	case "1-0":
		if color == db.ColorWhite {
			return db.ResultWin
		}
		return db.ResultLoss
	case "0-1":
		if color == db.ColorBlack {
			return db.ResultWin
		}
		return db.ResultLoss
	default:
		// "1/2-1/2", "*", or anything else.
		return db.ResultDraw
	}
}

// parseTimestamp combines a PGN Date ("yyyy.MM.dd") with UTCTime if present,
// else Time (both "HH:mm:ss"). Missing/placeholder values fall back to the
// current UTC date and midnight respectively — retained deliberately even
// though it will cause an incremental Lichess sync to re-fetch those games.
func parseTimestamp(date, utcTime, localTime string) time.Time {
	var d time.Time
	if date == "" || strings.Contains(date, "?") {
		d = time.Now().UTC().Truncate(24 * time.Hour)
	} else {
		parsed, err := time.Parse("2006.01.02", date)
		if err != nil {
			d = time.Now().UTC().Truncate(24 * time.Hour)
		} else {
			d = parsed
		}
	}

	timeStr := utcTime
	if timeStr == "" {
		timeStr = localTime
	}
	if timeStr == "" {
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	}
	t, err := time.Parse("15:04:05", timeStr)
	if err != nil {
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

// categorizeTimeControl buckets a PGN TimeControl header. Returns the raw
// TimeControl string (possibly empty) alongside the derived category.
func categorizeTimeControl(raw string) (string, db.TimeControlCategory) {
	if raw == "" || raw == "-" {
		return raw, db.TimeControlUnknown
	}
	if strings.Contains(raw, "/") {
		return raw, db.TimeControlCorrespondence
	}

	end := len(raw)
	if i := strings.IndexAny(raw, "+/"); i >= 0 {
		end = i
	}
	baseSeconds, err := strconv.Atoi(raw[:end])
	if err != nil {
		return raw, db.TimeControlUnknown
	}

	switch {
	case baseSeconds < 30:
		return raw, db.TimeControlUltraBullet
	case baseSeconds < 180:
		return raw, db.TimeControlBullet
	case baseSeconds < 600:
		return raw, db.TimeControlBlitz
	case baseSeconds < 1800:
		return raw, db.TimeControlRapid
	default:
		return raw, db.TimeControlClassical
	}
}

// fingerprint is SHA-256 of
// Date ∥ White ∥ Black ∥ Result ∥ first_200_bytes(collapse_ws(moves)),
// an ordered, unsorted concatenation since fingerprint order matters.
func fingerprint(headers map[string]string, moves string) string {
	collapsed := collapseWhitespace(moves)
	if len(collapsed) > 200 {
		collapsed = collapsed[:200]
	}
	joined := headers["Date"] + headers["White"] + headers["Black"] + headers["Result"] + collapsed
	sum := sha256.Sum256([]byte(joined))
	return hex.EncodeToString(sum[:])
}

func collapseWhitespace(s string) string {
	fields := strings.Fields(s)
	return strings.TrimSpace(strings.Join(fields, " "))
}
