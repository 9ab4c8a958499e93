package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/jasperwolfe/chessimport/db"
	"github.com/jasperwolfe/chessimport/normalize"
	"github.com/jasperwolfe/chessimport/source"
)

// fakeData is the shared in-memory backing store for all three fake
// repositories below, guarded by one mutex since tests only care about
// correctness, not throughput.
type fakeData struct {
	mu       sync.Mutex
	accounts map[string]db.Account
	games    map[string]db.Game
	jobs     map[string]db.Job
}

func newFakeData() *fakeData {
	return &fakeData{
		accounts: map[string]db.Account{},
		games:    map[string]db.Game{},
		jobs:     map[string]db.Job{},
	}
}

// fakeAccountStore, fakeGameStore, and fakeJobStore are separate types
// (rather than one struct implementing all three db.*Store interfaces)
// because db.AccountStore.Get and db.JobStore.Get collide on name but not
// on signature — Go methods can't be overloaded, so each interface gets
// its own thin wrapper over the same fakeData.
type fakeAccountStore struct{ d *fakeData }
type fakeGameStore struct{ d *fakeData }
type fakeJobStore struct{ d *fakeData }

func (f fakeAccountStore) Get(ctx context.Context, id string) (db.Account, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	a, ok := f.d.accounts[id]
	if !ok {
		return db.Account{}, db.ErrNoRows
	}
	return a, nil
}

func (f fakeAccountStore) FindByPlatformUsername(ctx context.Context, platform db.Platform, username string) (db.Account, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	for _, a := range f.d.accounts {
		if a.Platform == platform && a.Username == username {
			return a, nil
		}
	}
	return db.Account{}, db.ErrNoRows
}

func (f fakeAccountStore) SetLastSyncAt(ctx context.Context, id string, t time.Time) error {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	a := f.d.accounts[id]
	a.LastSyncAt = &t
	f.d.accounts[id] = a
	return nil
}

func (f fakeGameStore) Exists(ctx context.Context, accountID, pgnHash string) (bool, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	for _, g := range f.d.games {
		if g.AccountID == accountID && g.PGNHash == pgnHash {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeGameStore) Insert(ctx context.Context, g db.Game) (bool, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	for _, existing := range f.d.games {
		if existing.AccountID == g.AccountID && existing.PGNHash == g.PGNHash {
			return false, nil
		}
	}
	g.CreatedAt = time.Now().UTC()
	f.d.games[g.ID] = g
	return true, nil
}

func (f fakeGameStore) CountByAccount(ctx context.Context, accountID string) (int, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	n := 0
	for _, g := range f.d.games {
		if g.AccountID == accountID {
			n++
		}
	}
	return n, nil
}

func (f fakeGameStore) DeleteByAccount(ctx context.Context, accountID string) error {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	for id, g := range f.d.games {
		if g.AccountID == accountID {
			delete(f.d.games, id)
		}
	}
	return nil
}

func (f fakeJobStore) Create(ctx context.Context, j db.Job) error {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	f.d.jobs[j.ID] = j
	return nil
}

func (f fakeJobStore) Get(ctx context.Context, id string) (db.Job, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	j, ok := f.d.jobs[id]
	if !ok {
		return db.Job{}, db.ErrNoRows
	}
	return j, nil
}

func (f fakeJobStore) ListByAccount(ctx context.Context, accountID string, limit int) ([]db.Job, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	var out []db.Job
	for _, j := range f.d.jobs {
		if j.AccountID == accountID {
			out = append(out, j)
		}
	}
	return out, nil
}

func (f fakeJobStore) SetStatus(ctx context.Context, id string, status db.JobStatus) error {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	j := f.d.jobs[id]
	j.Status = status
	f.d.jobs[id] = j
	return nil
}

func (f fakeJobStore) SetCounters(ctx context.Context, id string, totalGames, processedGames, duplicateGames, archivesProcessed, totalArchives *int) error {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	j := f.d.jobs[id]
	if totalGames != nil {
		j.TotalGames = totalGames
	}
	if processedGames != nil {
		j.ProcessedGames = *processedGames
	}
	if duplicateGames != nil {
		j.DuplicateGames = *duplicateGames
	}
	if archivesProcessed != nil {
		j.ArchivesProcessed = archivesProcessed
	}
	if totalArchives != nil {
		j.TotalArchives = totalArchives
	}
	f.d.jobs[id] = j
	return nil
}

func (f fakeJobStore) MarkCompleted(ctx context.Context, id string, completedAt time.Time) error {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	j := f.d.jobs[id]
	j.Status = db.JobCompleted
	j.CompletedAt = &completedAt
	f.d.jobs[id] = j
	return nil
}

func (f fakeJobStore) MarkFailed(ctx context.Context, id string, completedAt time.Time, errMsg string) error {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	j := f.d.jobs[id]
	j.Status = db.JobFailed
	j.CompletedAt = &completedAt
	j.ErrorMessage = &errMsg
	f.d.jobs[id] = j
	return nil
}

func (f fakeJobStore) ExistsActive(ctx context.Context, accountID string) (bool, error) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	for _, j := range f.d.jobs {
		if j.AccountID == accountID && (j.Status == db.JobPending || j.Status == db.JobProcessing) {
			return true, nil
		}
	}
	return false, nil
}

// fakeSource emits a fixed slice of games, in order, optionally failing
// partway through.
type fakeSource struct {
	games  []normalize.Game
	failAt int // -1 means never fail
	failErr error
}

func (s *fakeSource) CountHint(ctx context.Context, account db.Account) (int, error) {
	return len(s.games), nil
}

func (s *fakeSource) Stream(ctx context.Context, account db.Account, emit source.EmitFunc, onArchiveProgress source.ArchiveProgressFunc) error {
	for i, g := range s.games {
		if s.failAt >= 0 && i == s.failAt {
			return s.failErr
		}
		emit(g)
	}
	return nil
}

// waitForTerminal polls until the job reaches COMPLETED or FAILED, or the
// timeout elapses.
func waitForTerminal(d *fakeData, jobID string, timeout time.Duration) (db.Job, bool) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		d.mu.Lock()
		j, ok := d.jobs[jobID]
		d.mu.Unlock()
		if ok && (j.Status == db.JobCompleted || j.Status == db.JobFailed) {
			return j, true
		}
		time.Sleep(time.Millisecond)
	}
	d.mu.Lock()
	j := d.jobs[jobID]
	d.mu.Unlock()
	return j, false
}
