// Package source adapts the three game inputs (uploaded PGN file, Chess.com
// API, Lichess API) to one shape the ingestion coordinator can drive
// without caring which provider it's talking to.
package source

import (
	"context"

	"github.com/jasperwolfe/chessimport/db"
	"github.com/jasperwolfe/chessimport/normalize"
)

// EmitFunc receives one normalized game at a time, in file/archive order.
// The coordinator is responsible for dedup-checking and persisting it.
type EmitFunc func(normalize.Game)

// ArchiveProgressFunc reports archive-level progress for providers that
// paginate by month (Chess.com). Sources that don't paginate never call it.
type ArchiveProgressFunc func(processed, total int)

// Source streams every game for an account that this import should
// consider, in order, normalized against the account's username.
type Source interface {
	// CountHint returns an upfront estimate of the number of games this
	// Stream call will emit, or -1 when the provider can't say without
	// doing the same work Stream itself would do (Lichess's single PGN
	// stream has no way to report a count ahead of time). ChessComSource
	// returns the number of archive months it will fetch instead.
	CountHint(ctx context.Context, account db.Account) (int, error)

	// Stream parses and normalizes games for account, calling emit for
	// each one that matches the account's username.
	// onArchiveProgress may be nil.
	Stream(ctx context.Context, account db.Account, emit EmitFunc, onArchiveProgress ArchiveProgressFunc) error
}
