package ingest

import (
	"fmt"
	"time"
)

// ErrJobAlreadyActive is returned when an account already has a PENDING or
// PROCESSING Job.
type ErrJobAlreadyActive struct {
	AccountID string
}

func (e *ErrJobAlreadyActive) Error() string {
	return fmt.Sprintf("account %s already has an active import job", e.AccountID)
}

// ErrSyncTooSoon is returned when a provider sync is requested before
// config.MinSyncInterval has elapsed since the account's last completed
// sync for that platform.
type ErrSyncTooSoon struct {
	AccountID string
	Remaining time.Duration
}

func (e *ErrSyncTooSoon) Error() string {
	return fmt.Sprintf("account %s must wait %s before syncing again", e.AccountID, e.Remaining.Round(time.Second))
}
