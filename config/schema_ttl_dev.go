//go:build dev

package config

import (
	"os"
	"strconv"
	"time"
)

// ArchiveListTTL controls how long a Chess.com account's archive-month
// listing (GET /pub/player/{user}/games/archives) may be cached before
// source.ChessComSource re-fetches it. Dev default: short, to catch
// changes quickly while iterating.
func ArchiveListTTL() time.Duration {
	if v := os.Getenv("ARCHIVE_LIST_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return time.Duration(n) * time.Second
		}
	}
	return 5 * time.Minute
}
