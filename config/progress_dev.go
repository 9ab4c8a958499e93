//go:build dev

package config

import (
	"os"
	"strconv"
)

// FileProgressInterval is how many games a file-upload Job processes
// between persisted counter flushes. Dev default: 10, low enough to watch
// progress move against small local fixtures. Override with
// FILE_PROGRESS_INTERVAL.
func FileProgressInterval() int {
	if v := os.Getenv("FILE_PROGRESS_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 10
}

// APIProgressInterval is the same, for Chess.com/Lichess Jobs, which tend
// to process many more games per flush since the bottleneck is the
// provider's own rate limit rather than disk I/O. Dev default: 20.
// Override with API_PROGRESS_INTERVAL.
func APIProgressInterval() int {
	if v := os.Getenv("API_PROGRESS_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 20
}
