package source

import (
	"context"
	"fmt"
	"os"

	"github.com/jasperwolfe/chessimport/db"
	"github.com/jasperwolfe/chessimport/normalize"
	"github.com/jasperwolfe/chessimport/pgn"
)

// PgnFileSource reads a single PGN file already saved to disk by the
// upload handler. One instance is scoped to one uploaded
// file, not to an account, since a file Job is one-shot.
type PgnFileSource struct {
	Path string
}

// CountHint scans the file once for "[Event " lines before Stream parses
// it a second time, avoiding buffering the whole file in memory just to
// know its length.
func (s *PgnFileSource) CountHint(ctx context.Context, account db.Account) (int, error) {
	return pgn.CountGames(s.Path)
}

func (s *PgnFileSource) Stream(ctx context.Context, account db.Account, emit EmitFunc, onArchiveProgress ArchiveProgressFunc) error {
	f, err := os.Open(s.Path)
	if err != nil {
		return fmt.Errorf("open uploaded file: %w", err)
	}
	defer f.Close()

	return pgn.ParseStream(f, func(pg pgn.ParsedGame) {
		if ctx.Err() != nil {
			return
		}
		if g := normalize.Normalize(account.Username, pg); g != nil {
			emit(*g)
		}
	})
}
