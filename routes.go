package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/jasperwolfe/chessimport/db"
	"github.com/jasperwolfe/chessimport/ingest"
	"github.com/jasperwolfe/chessimport/views"
)

// jobJSON is the Job wire shape, with progress_percent derived rather than
// stored.
type jobJSON struct {
	ID                string     `json:"id"`
	AccountID         string     `json:"account_id"`
	FileName          *string    `json:"file_name"`
	Status            string     `json:"status"`
	TotalGames        *int       `json:"total_games"`
	ProcessedGames    int        `json:"processed_games"`
	DuplicateGames    int        `json:"duplicate_games"`
	ArchivesProcessed *int       `json:"archives_processed"`
	TotalArchives     *int       `json:"total_archives"`
	ErrorMessage      *string    `json:"error_message"`
	CreatedAt         time.Time  `json:"created_at"`
	CompletedAt       *time.Time `json:"completed_at"`
	ProgressPercent   *int       `json:"progress_percent"`
}

func toJobJSON(j db.Job) jobJSON {
	return jobJSON{
		ID:                j.ID,
		AccountID:         j.AccountID,
		FileName:          j.FileName,
		Status:            string(j.Status),
		TotalGames:        j.TotalGames,
		ProcessedGames:    j.ProcessedGames,
		DuplicateGames:    j.DuplicateGames,
		ArchivesProcessed: j.ArchivesProcessed,
		TotalArchives:     j.TotalArchives,
		ErrorMessage:      j.ErrorMessage,
		CreatedAt:         j.CreatedAt,
		CompletedAt:       j.CompletedAt,
		ProgressPercent:   j.ProgressPercent(),
	}
}

func (app *Application) Home(c echo.Context) error {
	return views.Home().Render(c.Request().Context(), c.Response())
}

// GET /accounts/:id/jobs — HTML dashboard of recent import jobs.
func (app *Application) UIJobs(c echo.Context) error {
	ctx := c.Request().Context()
	account, err := app.Accounts.Get(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, db.ErrNoRows) {
			return c.String(http.StatusNotFound, "account not found")
		}
		return c.String(http.StatusInternalServerError, err.Error())
	}
	jobs, err := app.Jobs.ListByAccount(ctx, account.ID, 50)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}
	return views.Jobs(account, jobs).Render(ctx, c.Response())
}

// POST /accounts/:id/upload (multipart "file") → 202 + Job JSON.
func (app *Application) UploadImport(c echo.Context) error {
	ctx := c.Request().Context()
	accountID := c.Param("id")
	if _, err := app.Accounts.Get(ctx, accountID); err != nil {
		if errors.Is(err, db.ErrNoRows) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "account not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing multipart field \"file\""})
	}
	src, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	defer src.Close()

	savedName := fmt.Sprintf("%s_%s", uuid.NewString(), filepath.Base(fileHeader.Filename))
	savedPath := filepath.Join(app.UploadDir, savedName)
	dst, err := os.Create(savedPath)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	jobID, err := app.Coordinator.EnqueueFileImport(ctx, accountID, savedPath, fileHeader.Filename)
	if err != nil {
		return jobEnqueueError(c, err)
	}
	job, err := app.Jobs.Get(ctx, jobID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusAccepted, toJobJSON(job))
}

// POST /accounts/:id/import/chesscom → 202 + Job JSON; 400 if wrong
// platform or a job is already active; 404 if the account is absent.
func (app *Application) ChessComImport(c echo.Context) error {
	return app.startProviderImport(c, db.PlatformChessCom, app.Coordinator.EnqueueChessComImport)
}

// POST /accounts/:id/import/lichess — analogous.
func (app *Application) LichessImport(c echo.Context) error {
	return app.startProviderImport(c, db.PlatformLichess, app.Coordinator.EnqueueLichessImport)
}

func (app *Application) startProviderImport(c echo.Context, platform db.Platform, enqueue func(ctx context.Context, accountID string) (string, error)) error {
	ctx := c.Request().Context()
	accountID := c.Param("id")
	account, err := app.Accounts.Get(ctx, accountID)
	if err != nil {
		if errors.Is(err, db.ErrNoRows) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "account not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if account.Platform != platform {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "account platform mismatch"})
	}

	jobID, err := enqueue(ctx, accountID)
	if err != nil {
		return jobEnqueueError(c, err)
	}
	job, err := app.Jobs.Get(ctx, jobID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusAccepted, toJobJSON(job))
}

// GET /accounts/:id/jobs/:job_id/html → the HTML detail fragment, for the
// dashboard's "view one job" link; the JSON route below is the canonical one.
func (app *Application) UIJobStatus(c echo.Context) error {
	ctx := c.Request().Context()
	job, err := app.Jobs.Get(ctx, c.Param("job_id"))
	if err != nil {
		if errors.Is(err, db.ErrNoRows) {
			return c.String(http.StatusNotFound, "job not found")
		}
		return c.String(http.StatusInternalServerError, err.Error())
	}
	if job.AccountID != c.Param("id") {
		return c.String(http.StatusNotFound, "job not found")
	}
	return views.JobStatus(job).Render(ctx, c.Response())
}

// GET /accounts/:id/jobs/:job_id → Job JSON.
func (app *Application) GetJob(c echo.Context) error {
	ctx := c.Request().Context()
	accountID := c.Param("id")
	job, err := app.Jobs.Get(ctx, c.Param("job_id"))
	if err != nil {
		if errors.Is(err, db.ErrNoRows) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "job not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if job.AccountID != accountID {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "job not found"})
	}
	return c.JSON(http.StatusOK, toJobJSON(job))
}

// GET /accounts/:id/analytics/summary
func (app *Application) AnalyticsSummary(c echo.Context) error {
	ctx := c.Request().Context()
	summary, err := app.Analytics.Summary(ctx, c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, summary)
}

// GET /accounts/:id/analytics/daily
func (app *Application) AnalyticsDaily(c echo.Context) error {
	ctx := c.Request().Context()
	activity, err := app.Analytics.DailyActivity(ctx, c.Param("id"), 30)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, activity)
}

// jobEnqueueError maps a Coordinator error to an HTTP disposition: an
// already-active Job or a too-soon resync is a 4xx, anything else is a 500.
func jobEnqueueError(c echo.Context, err error) error {
	var active *ingest.ErrJobAlreadyActive
	if errors.As(err, &active) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	var tooSoon *ingest.ErrSyncTooSoon
	if errors.As(err, &tooSoon) {
		return c.JSON(http.StatusTooManyRequests, map[string]string{"error": err.Error()})
	}
	if errors.Is(err, db.ErrNoRows) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "account not found"})
	}
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
}
