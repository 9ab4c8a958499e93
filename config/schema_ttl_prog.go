//go:build !dev

package config

import (
	"os"
	"strconv"
	"time"
)

// ArchiveListTTL controls how long a Chess.com account's archive-month
// listing may be cached before re-fetching. Prod default: 1h, since the
// list of completed months rarely changes within a sync.
func ArchiveListTTL() time.Duration {
	if v := os.Getenv("ARCHIVE_LIST_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return time.Duration(n) * time.Second
		}
	}
	return time.Hour // 3600s
}
