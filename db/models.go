package db

import (
	"context"
	"database/sql"
	"time"
)

// Re-export so callers can check db.ErrNoRows without importing database/sql.
var ErrNoRows = sql.ErrNoRows

// Platform identifies the provider an Account belongs to.
type Platform string

const (
	PlatformChessCom Platform = "CHESS_COM"
	PlatformLichess  Platform = "LICHESS"
	PlatformOther    Platform = "OTHER"
)

// JobStatus is the lifecycle state of an import Job.
type JobStatus string

const (
	JobPending    JobStatus = "PENDING"
	JobProcessing JobStatus = "PROCESSING"
	JobCompleted  JobStatus = "COMPLETED"
	JobFailed     JobStatus = "FAILED"
)

// Result is a Game's outcome from the tracked player's perspective.
type Result string

const (
	ResultWin  Result = "WIN"
	ResultLoss Result = "LOSS"
	ResultDraw Result = "DRAW"
)

// Color is the tracked player's side in a Game.
type Color string

const (
	ColorWhite Color = "WHITE"
	ColorBlack Color = "BLACK"
)

// TimeControlCategory buckets a PGN TimeControl header into a coarse class.
type TimeControlCategory string

const (
	TimeControlUltraBullet    TimeControlCategory = "ULTRABULLET"
	TimeControlBullet         TimeControlCategory = "BULLET"
	TimeControlBlitz          TimeControlCategory = "BLITZ"
	TimeControlRapid          TimeControlCategory = "RAPID"
	TimeControlClassical      TimeControlCategory = "CLASSICAL"
	TimeControlCorrespondence TimeControlCategory = "CORRESPONDENCE"
	TimeControlUnknown        TimeControlCategory = "UNKNOWN"
)

// Account mirrors the fields the ingestion core reads or writes. Everything
// else about an Account (validation, CRUD) lives outside the core.
type Account struct {
	ID         string
	Platform   Platform
	Username   string
	Label      *string
	CreatedAt  time.Time
	LastSyncAt *time.Time
}

// Job is one logical import attempt for one account.
type Job struct {
	ID                string
	AccountID         string
	FileName          *string
	Status            JobStatus
	TotalGames        *int
	ProcessedGames    int
	DuplicateGames    int
	ArchivesProcessed *int
	TotalArchives     *int
	ErrorMessage      *string
	CreatedAt         time.Time
	CompletedAt       *time.Time
}

// ProgressPercent is floor(100 * processed / total) when total > 0, else nil.
func (j Job) ProgressPercent() *int {
	if j.TotalGames == nil || *j.TotalGames <= 0 {
		return nil
	}
	p := (100 * j.ProcessedGames) / *j.TotalGames
	return &p
}

// Game is one ingested game, written once and never updated.
type Game struct {
	ID                  string
	AccountID           string
	PlayedAt            time.Time
	Result              Result
	Color               Color
	TimeControlRaw      *string
	TimeControlCategory TimeControlCategory
	ECOCode             *string
	OpeningName         *string
	Opponent            *string
	PGNHash             string
	CreatedAt           time.Time
}

// AccountStore is the slice of account persistence the core needs: reading
// provider/username/last_sync_at and advancing last_sync_at on a clean sync.
// Account CRUD itself lives outside the core.
type AccountStore interface {
	Get(ctx context.Context, id string) (Account, error)
	FindByPlatformUsername(ctx context.Context, platform Platform, username string) (Account, error)
	SetLastSyncAt(ctx context.Context, id string, t time.Time) error
}

// GameStore answers "does (account, fingerprint) already exist?" and
// persists new Game rows.
type GameStore interface {
	Exists(ctx context.Context, accountID, pgnHash string) (bool, error)
	// Insert reports inserted=false (not an error) when the unique
	// (account_id, pgn_hash) constraint rejects the row.
	Insert(ctx context.Context, g Game) (inserted bool, err error)
	CountByAccount(ctx context.Context, accountID string) (int, error)
	DeleteByAccount(ctx context.Context, accountID string) error
}

// JobStore answers for the mutable Job counters a poller reads while a job
// is still PROCESSING — every mutation below is its own committed unit of
// work.
type JobStore interface {
	Create(ctx context.Context, j Job) error
	Get(ctx context.Context, id string) (Job, error)
	ListByAccount(ctx context.Context, accountID string, limit int) ([]Job, error)
	SetStatus(ctx context.Context, id string, status JobStatus) error
	SetCounters(ctx context.Context, id string, totalGames, processedGames, duplicateGames, archivesProcessed, totalArchives *int) error
	MarkCompleted(ctx context.Context, id string, completedAt time.Time) error
	MarkFailed(ctx context.Context, id string, completedAt time.Time, errMsg string) error
	ExistsActive(ctx context.Context, accountID string) (bool, error)
}
