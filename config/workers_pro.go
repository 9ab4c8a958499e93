//go:build !dev

package config

import (
	"os"
	"strconv"
)

// IngestWorkers returns the size of the bounded pool of concurrently-running
// Jobs. Prod default: 5. Override with INGEST_WORKERS.
func IngestWorkers() int {
	if v := os.Getenv("INGEST_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 5
}
