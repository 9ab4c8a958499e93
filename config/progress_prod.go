//go:build !dev

package config

import (
	"os"
	"strconv"
)

// FileProgressInterval is how many games a file-upload Job processes
// between persisted counter flushes. Prod default: 50. Override with
// FILE_PROGRESS_INTERVAL.
func FileProgressInterval() int {
	if v := os.Getenv("FILE_PROGRESS_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 50
}

// APIProgressInterval is the same, for Chess.com/Lichess Jobs. Prod
// default: 100. Override with API_PROGRESS_INTERVAL.
func APIProgressInterval() int {
	if v := os.Getenv("API_PROGRESS_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 100
}
