// Package ingest coordinates import Jobs end to end: claiming the
// at-most-one-active-job slot, running a source.Source against an account,
// deduping and persisting each game, and flushing progress counters. Whole
// Jobs across different accounts run concurrently in a bounded pool, while
// games within a single Job are always processed in strict PGN order.
package ingest

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/jasperwolfe/chessimport/config"
	"github.com/jasperwolfe/chessimport/db"
	"github.com/jasperwolfe/chessimport/normalize"
	"github.com/jasperwolfe/chessimport/source"
)

// Coordinator owns the bounded pool of concurrently-running Jobs.
type Coordinator struct {
	accounts db.AccountStore
	games    db.GameStore
	jobs     db.JobStore
	sem      chan struct{}

	// background is the parent context for job goroutines, deliberately
	// decoupled from any single HTTP request's context — a Job must keep
	// running after the request that enqueued it returns.
	background context.Context
}

// NewCoordinator builds a Coordinator sized by config.IngestWorkers.
func NewCoordinator(accounts db.AccountStore, games db.GameStore, jobs db.JobStore) *Coordinator {
	return &Coordinator{
		accounts:   accounts,
		games:      games,
		jobs:       jobs,
		sem:        make(chan struct{}, config.IngestWorkers()),
		background: context.Background(),
	}
}

// EnqueueFileImport creates a PENDING Job for an uploaded PGN file and
// starts processing it in the background. Returns the new Job's ID.
func (c *Coordinator) EnqueueFileImport(ctx context.Context, accountID, filePath, fileName string) (string, error) {
	account, err := c.accounts.Get(ctx, accountID)
	if err != nil {
		return "", err
	}
	job, err := c.createJob(ctx, accountID, &fileName)
	if err != nil {
		return "", err
	}
	src := &source.PgnFileSource{Path: filePath}
	c.run(job.ID, account, src, config.FileProgressInterval())
	return job.ID, nil
}

// EnqueueChessComImport creates a PENDING Job for a Chess.com sync.
func (c *Coordinator) EnqueueChessComImport(ctx context.Context, accountID string) (string, error) {
	account, err := c.accounts.Get(ctx, accountID)
	if err != nil {
		return "", err
	}
	if err := checkSyncCooldown(account); err != nil {
		return "", err
	}
	job, err := c.createJob(ctx, accountID, nil)
	if err != nil {
		return "", err
	}
	src := source.NewChessComSource()
	c.run(job.ID, account, src, config.APIProgressInterval())
	return job.ID, nil
}

// EnqueueLichessImport creates a PENDING Job for a Lichess sync.
func (c *Coordinator) EnqueueLichessImport(ctx context.Context, accountID string) (string, error) {
	account, err := c.accounts.Get(ctx, accountID)
	if err != nil {
		return "", err
	}
	if err := checkSyncCooldown(account); err != nil {
		return "", err
	}
	job, err := c.createJob(ctx, accountID, nil)
	if err != nil {
		return "", err
	}
	src := source.NewLichessSource()
	c.run(job.ID, account, src, config.APIProgressInterval())
	return job.ID, nil
}

// checkSyncCooldown enforces config.MinSyncInterval between two accepted
// provider-sync requests for the same account. File imports are exempt —
// the cooldown exists to keep a user from hammering a provider's API, and
// an uploaded file never touches one.
func checkSyncCooldown(account db.Account) error {
	if account.LastSyncAt == nil {
		return nil
	}
	elapsed := time.Since(*account.LastSyncAt)
	if min := config.MinSyncInterval(); elapsed < min {
		return &ErrSyncTooSoon{AccountID: account.ID, Remaining: min - elapsed}
	}
	return nil
}

// createJob enforces the at-most-one-active-job invariant and writes the
// initial PENDING row, all before any network call is made.
func (c *Coordinator) createJob(ctx context.Context, accountID string, fileName *string) (db.Job, error) {
	active, err := c.jobs.ExistsActive(ctx, accountID)
	if err != nil {
		return db.Job{}, err
	}
	if active {
		return db.Job{}, &ErrJobAlreadyActive{AccountID: accountID}
	}
	job := db.Job{
		ID:        uuid.NewString(),
		AccountID: accountID,
		FileName:  fileName,
		Status:    db.JobPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := c.jobs.Create(ctx, job); err != nil {
		return db.Job{}, err
	}
	return job, nil
}

// run acquires a worker-pool slot and processes one Job to completion in
// its own goroutine, independent of the caller.
func (c *Coordinator) run(jobID string, account db.Account, src source.Source, progressInterval int) {
	go func() {
		c.sem <- struct{}{}
		defer func() { <-c.sem }()
		c.process(jobID, account, src, progressInterval)
	}()
}

func (c *Coordinator) process(jobID string, account db.Account, src source.Source, progressInterval int) {
	ctx := c.background

	if err := c.jobs.SetStatus(ctx, jobID, db.JobProcessing); err != nil {
		log.Printf("ingest: job %s: set processing: %v", jobID, err)
		return
	}

	isChessCom := false
	if _, ok := src.(*source.ChessComSource); ok {
		isChessCom = true
	}

	var totalGames *int
	var totalArchives *int
	if isChessCom {
		n, err := src.CountHint(ctx, account)
		if err == nil && n >= 0 {
			totalArchives = &n
		}
	} else {
		n, err := src.CountHint(ctx, account)
		if err == nil && n >= 0 {
			totalGames = &n
		}
	}
	if totalGames != nil || totalArchives != nil {
		if err := c.jobs.SetCounters(ctx, jobID, totalGames, nil, nil, nil, totalArchives); err != nil {
			log.Printf("ingest: job %s: set initial counters: %v", jobID, err)
		}
	}

	processed, duplicates := 0, 0
	sinceFlush := 0

	emit := func(g normalize.Game) {
		processed, duplicates, sinceFlush = c.handleGame(ctx, jobID, account.ID, g, processed, duplicates, sinceFlush, progressInterval)
	}

	var archivesProcessed, archivesTotal int
	onArchiveProgress := func(p, total int) {
		archivesProcessed, archivesTotal = p, total
		_ = c.jobs.SetCounters(ctx, jobID, nil, &processed, &duplicates, &archivesProcessed, &archivesTotal)
	}

	streamErr := src.Stream(ctx, account, emit, onArchiveProgress)

	// Final flush regardless of outcome, so a FAILED job still reflects
	// how far it actually got.
	if err := c.jobs.SetCounters(ctx, jobID, totalGames, &processed, &duplicates, nil, totalArchives); err != nil {
		log.Printf("ingest: job %s: final counter flush: %v", jobID, err)
	}

	now := time.Now().UTC()
	if streamErr != nil {
		if err := c.jobs.MarkFailed(ctx, jobID, now, streamErr.Error()); err != nil {
			log.Printf("ingest: job %s: mark failed: %v", jobID, err)
		}
		return
	}
	if err := c.jobs.MarkCompleted(ctx, jobID, now); err != nil {
		log.Printf("ingest: job %s: mark completed: %v", jobID, err)
		return
	}
	if err := c.accounts.SetLastSyncAt(ctx, account.ID, now); err != nil {
		log.Printf("ingest: job %s: advance last sync: %v", jobID, err)
	}
}

// handleGame checks for a duplicate, inserts when new, and flushes
// progress counters every progressInterval games. Returns
// the updated running counts.
func (c *Coordinator) handleGame(ctx context.Context, jobID, accountID string, g normalize.Game, processed, duplicates, sinceFlush, progressInterval int) (int, int, int) {
	game := db.Game{
		ID:                  uuid.NewString(),
		AccountID:           accountID,
		PlayedAt:            g.PlayedAt,
		Result:              g.Result,
		Color:               g.Color,
		TimeControlRaw:      g.TimeControlRaw,
		TimeControlCategory: g.TimeControlCategory,
		ECOCode:             g.ECOCode,
		OpeningName:         g.OpeningName,
		Opponent:            g.Opponent,
		PGNHash:             g.PGNHash,
		CreatedAt:           time.Now().UTC(),
	}

	exists, err := c.games.Exists(ctx, accountID, g.PGNHash)
	if err != nil {
		log.Printf("ingest: job %s: check duplicate: %v", jobID, err)
	}
	if exists {
		duplicates++
	} else if inserted, err := c.games.Insert(ctx, game); err != nil {
		log.Printf("ingest: job %s: insert game: %v", jobID, err)
	} else if !inserted {
		duplicates++
	}
	processed++
	sinceFlush++

	if sinceFlush >= progressInterval {
		if err := c.jobs.SetCounters(ctx, jobID, nil, &processed, &duplicates, nil, nil); err != nil {
			log.Printf("ingest: job %s: flush counters: %v", jobID, err)
		}
		sinceFlush = 0
	}
	return processed, duplicates, sinceFlush
}
