package db

import (
	"context"
	"database/sql"
	"time"
)

type sqliteJobStore struct {
	db *sql.DB
}

func NewJobStore(sqlDB *sql.DB) JobStore {
	return &sqliteJobStore{db: sqlDB}
}

func (s *sqliteJobStore) Create(ctx context.Context, j Job) error {
	const q = `
INSERT INTO jobs (id, account_id, file_name, status, total_games, processed_games,
  duplicate_games, archives_processed, total_archives, error_message, created_at, completed_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`
	_, err := s.db.ExecContext(ctx, q,
		j.ID, j.AccountID, nullableString(j.FileName), string(j.Status),
		nullableInt(j.TotalGames), j.ProcessedGames, j.DuplicateGames,
		nullableInt(j.ArchivesProcessed), nullableInt(j.TotalArchives),
		nullableString(j.ErrorMessage), j.CreatedAt.UTC(), nullableTime(j.CompletedAt),
	)
	return err
}

func (s *sqliteJobStore) Get(ctx context.Context, id string) (Job, error) {
	const q = `
SELECT id, account_id, file_name, status, total_games, processed_games, duplicate_games,
  archives_processed, total_archives, error_message, created_at, completed_at
FROM jobs WHERE id = ?;`
	return scanJob(s.db.QueryRowContext(ctx, q, id))
}

func (s *sqliteJobStore) ListByAccount(ctx context.Context, accountID string, limit int) ([]Job, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, account_id, file_name, status, total_games, processed_games, duplicate_games,
  archives_processed, total_archives, error_message, created_at, completed_at
FROM jobs WHERE account_id = ? ORDER BY created_at DESC LIMIT ?;`
	rows, err := s.db.QueryContext(ctx, q, accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Job
	for rows.Next() {
		j, err := scanJobRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// SetStatus is its own committed unit of work so a poller reading the Job
// row concurrently never observes a torn write. A Job in a terminal state
// is never mutated again; callers are expected to honor that, this store
// does not re-check it (the Coordinator is the sole writer).
func (s *sqliteJobStore) SetStatus(ctx context.Context, id string, status JobStatus) error {
	const q = `UPDATE jobs SET status = ? WHERE id = ?;`
	_, err := s.db.ExecContext(ctx, q, string(status), id)
	return err
}

// SetCounters flushes processed/duplicate/archive counters in a single
// statement so processed_games and duplicate_games are never visible to a
// concurrent reader out of sync with each other. Pass nil for any counter
// to leave its stored value unchanged.
func (s *sqliteJobStore) SetCounters(ctx context.Context, id string, totalGames, processedGames, duplicateGames, archivesProcessed, totalArchives *int) error {
	const q = `
UPDATE jobs SET
  total_games        = COALESCE(?, total_games),
  processed_games     = COALESCE(?, processed_games),
  duplicate_games     = COALESCE(?, duplicate_games),
  archives_processed  = COALESCE(?, archives_processed),
  total_archives      = COALESCE(?, total_archives)
WHERE id = ?;`
	_, err := s.db.ExecContext(ctx, q,
		nullableInt(totalGames), nullableInt(processedGames), nullableInt(duplicateGames),
		nullableInt(archivesProcessed), nullableInt(totalArchives), id)
	return err
}

func (s *sqliteJobStore) MarkCompleted(ctx context.Context, id string, completedAt time.Time) error {
	const q = `UPDATE jobs SET status = ?, completed_at = ? WHERE id = ?;`
	_, err := s.db.ExecContext(ctx, q, string(JobCompleted), completedAt.UTC(), id)
	return err
}

func (s *sqliteJobStore) MarkFailed(ctx context.Context, id string, completedAt time.Time, errMsg string) error {
	const q = `UPDATE jobs SET status = ?, completed_at = ?, error_message = ? WHERE id = ?;`
	_, err := s.db.ExecContext(ctx, q, string(JobFailed), completedAt.UTC(), errMsg, id)
	return err
}

func (s *sqliteJobStore) ExistsActive(ctx context.Context, accountID string) (bool, error) {
	const q = `
SELECT 1 FROM jobs
WHERE account_id = ? AND status IN (?, ?)
LIMIT 1;`
	var one int
	err := s.db.QueryRowContext(ctx, q, accountID, string(JobPending), string(JobProcessing)).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row *sql.Row) (Job, error) {
	return scanJobScanner(row)
}

func scanJobRows(rows *sql.Rows) (Job, error) {
	return scanJobScanner(rows)
}

func scanJobScanner(r rowScanner) (Job, error) {
	var j Job
	var fileName, errMsg sql.NullString
	var totalGames, archivesProcessed, totalArchives sql.NullInt64
	var completedAt sql.NullTime
	var status string

	if err := r.Scan(&j.ID, &j.AccountID, &fileName, &status, &totalGames, &j.ProcessedGames,
		&j.DuplicateGames, &archivesProcessed, &totalArchives, &errMsg, &j.CreatedAt, &completedAt); err != nil {
		return Job{}, err
	}
	j.Status = JobStatus(status)
	if fileName.Valid {
		j.FileName = &fileName.String
	}
	if errMsg.Valid {
		j.ErrorMessage = &errMsg.String
	}
	if totalGames.Valid {
		v := int(totalGames.Int64)
		j.TotalGames = &v
	}
	if archivesProcessed.Valid {
		v := int(archivesProcessed.Int64)
		j.ArchivesProcessed = &v
	}
	if totalArchives.Valid {
		v := int(totalArchives.Int64)
		j.TotalArchives = &v
	}
	if completedAt.Valid {
		t := completedAt.Time
		j.CompletedAt = &t
	}
	return j, nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
