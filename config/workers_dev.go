//go:build dev

package config

import (
	"os"
	"strconv"
)

// IngestWorkers is the size of the bounded pool of concurrently-running
// Jobs. Dev default: 3. Override with INGEST_WORKERS.
func IngestWorkers() int {
	if v := os.Getenv("INGEST_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 3
}
