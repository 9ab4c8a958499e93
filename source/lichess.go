package source

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/jasperwolfe/chessimport/config"
	"github.com/jasperwolfe/chessimport/db"
	"github.com/jasperwolfe/chessimport/fetch"
	"github.com/jasperwolfe/chessimport/normalize"
	"github.com/jasperwolfe/chessimport/pgn"
)

// LichessSource streams an account's export as one long-lived GET against
// GET /api/games/user/{username}, using the `since` parameter for
// incremental syncs.
type LichessSource struct {
	Fetcher *fetch.Fetcher
	BaseURL string
}

// NewLichessSource builds a source with a fresh rate-limited fetcher.
func NewLichessSource() *LichessSource {
	return &LichessSource{
		Fetcher: fetch.New(fetch.LichessProfile()),
		BaseURL: config.LichessBaseURL(),
	}
}

// CountHint always returns -1: Lichess's export is a single streamed
// response with no upfront game count, so the coordinator falls back to
// reporting progress without a percentage for this source.
func (s *LichessSource) CountHint(ctx context.Context, account db.Account) (int, error) {
	return -1, nil
}

func (s *LichessSource) Stream(ctx context.Context, account db.Account, emit EmitFunc, onArchiveProgress ArchiveProgressFunc) error {
	reqURL := fmt.Sprintf("%s/api/games/user/%s", s.BaseURL, url.PathEscape(strings.ToLower(account.Username)))
	q := url.Values{}
	q.Set("moves", "true")
	q.Set("tags", "true")
	q.Set("clocks", "false")
	q.Set("evals", "false")
	q.Set("opening", "true")
	if account.LastSyncAt != nil {
		q.Set("since", strconv.FormatInt(account.LastSyncAt.UnixMilli(), 10))
	}
	reqURL += "?" + q.Encode()

	body, err := s.Fetcher.FetchStream(ctx, reqURL, "application/x-chess-pgn")
	if err != nil {
		return fmt.Errorf("stream lichess export: %w", err)
	}
	defer body.Close()

	return pgn.ParseStream(body, func(pg pgn.ParsedGame) {
		if ctx.Err() != nil {
			return
		}
		if g := normalize.Normalize(account.Username, pg); g != nil {
			emit(*g)
		}
	})
}
