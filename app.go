package main

import (
	"database/sql"

	"github.com/jasperwolfe/chessimport/analytics"
	"github.com/jasperwolfe/chessimport/db"
	"github.com/jasperwolfe/chessimport/ingest"
)

// Application is the shared handler receiver: the store surface is split
// into the three interfaces the core actually depends on, plus the
// Coordinator and the analytics read store.
type Application struct {
	DB          *sql.DB
	Accounts    db.AccountStore
	Games       db.GameStore
	Jobs        db.JobStore
	Coordinator *ingest.Coordinator
	Analytics   *analytics.Store
	UploadDir   string
}
