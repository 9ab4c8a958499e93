//go:build !dev

package config

import (
	"os"
	"strconv"
	"time"
)

// MinSyncInterval returns the cooldown between accepted import requests for
// the same account+platform. Prod default: 60s. Override with
// MIN_SYNC_INTERVAL_SECONDS.
func MinSyncInterval() time.Duration {
	if v := os.Getenv("MIN_SYNC_INTERVAL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return time.Duration(n) * time.Second
		}
	}
	return 60 * time.Second
}
