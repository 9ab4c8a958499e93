package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/jasperwolfe/chessimport/analytics"
	dbpkg "github.com/jasperwolfe/chessimport/db"
	"github.com/jasperwolfe/chessimport/ingest"
)

func main() {
	// 1) Open DB + apply migrations
	sqlDB, err := dbpkg.Open("data/app.db")
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer func(db *sql.DB) { _ = db.Close() }(sqlDB)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := dbpkg.ApplyMigrations(ctx, sqlDB, "db/migrations"); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	uploadDir := "data/uploads"
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		log.Fatalf("create upload dir: %v", err)
	}

	// 2) Stores + coordinator + app container
	accounts := dbpkg.NewAccountStore(sqlDB)
	games := dbpkg.NewGameStore(sqlDB)
	jobs := dbpkg.NewJobStore(sqlDB)

	app := &Application{
		DB:          sqlDB,
		Accounts:    accounts,
		Games:       games,
		Jobs:        jobs,
		Coordinator: ingest.NewCoordinator(accounts, games, jobs),
		Analytics:   analytics.NewStore(sqlDB),
		UploadDir:   uploadDir,
	}

	// 3) Echo
	server := echo.New()
	server.Use(middleware.Logger())
	server.Use(middleware.Recover())

	server.GET("/", app.Home)
	server.GET("/accounts/:id/jobs", app.UIJobs)

	server.POST("/accounts/:id/upload", app.UploadImport)
	server.POST("/accounts/:id/import/chesscom", app.ChessComImport)
	server.POST("/accounts/:id/import/lichess", app.LichessImport)
	server.GET("/accounts/:id/jobs/:job_id", app.GetJob)
	server.GET("/accounts/:id/jobs/:job_id/html", app.UIJobStatus)

	server.GET("/accounts/:id/analytics/summary", app.AnalyticsSummary)
	server.GET("/accounts/:id/analytics/daily", app.AnalyticsDaily)

	server.Logger.Fatal(server.Start(":8080"))
}
