package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jasperwolfe/chessimport/config"
	"github.com/jasperwolfe/chessimport/db"
	"github.com/jasperwolfe/chessimport/fetch"
	"github.com/jasperwolfe/chessimport/normalize"
	"github.com/jasperwolfe/chessimport/pgn"
)

// archivesResponse is the shape of GET /pub/player/{user}/games/archives.
type archivesResponse struct {
	Archives []string `json:"archives"`
}

// monthResponse is the shape of each archive URL's response: one JSON game
// per entry, each carrying its own full PGN text.
type monthResponse struct {
	Games []struct {
		PGN string `json:"pgn"`
	} `json:"games"`
}

// ChessComSource discovers an account's monthly archives and streams every
// game from the months at or after the account's last sync.
// A full history import has no LastSyncAt and walks every archive.
type ChessComSource struct {
	Fetcher *fetch.Fetcher
	BaseURL string
}

// archiveListCache holds the most recent archive-month listing per
// BaseURL+username, reused for config.ArchiveListTTL so two Jobs started
// in quick succession for the same account (a manual sync right after an
// automatic one, or a retried request) don't re-fetch an archive list that
// has not had time to grow a new month.
var archiveListCache = struct {
	mu      sync.Mutex
	entries map[string]archiveListEntry
}{entries: make(map[string]archiveListEntry)}

type archiveListEntry struct {
	archives  []string
	fetchedAt time.Time
}

// NewChessComSource builds a source with a fresh rate-limited fetcher.
func NewChessComSource() *ChessComSource {
	return &ChessComSource{
		Fetcher: fetch.New(fetch.ChessComProfile()),
		BaseURL: config.ChessComBaseURL(),
	}
}

func (s *ChessComSource) CountHint(ctx context.Context, account db.Account) (int, error) {
	// Chess.com never exposes a game count ahead of downloading every
	// archive page, so CountHint only reports the archive count — the
	// coordinator uses ArchivesProcessed/TotalArchives for this source's
	// progress bar instead of TotalGames/ProcessedGames.
	archives, err := s.relevantArchives(ctx, account)
	if err != nil {
		return -1, err
	}
	return len(archives), nil
}

func (s *ChessComSource) Stream(ctx context.Context, account db.Account, emit EmitFunc, onArchiveProgress ArchiveProgressFunc) error {
	archives, err := s.relevantArchives(ctx, account)
	if err != nil {
		return err
	}

	for i, url := range archives {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		body, err := s.Fetcher.FetchText(ctx, url)
		if err != nil {
			log.Printf("ingest: chess.com archive %s failed, skipping: %v", url, err)
			if onArchiveProgress != nil {
				onArchiveProgress(i+1, len(archives))
			}
			continue
		}
		var month monthResponse
		if err := json.Unmarshal([]byte(body), &month); err != nil {
			log.Printf("ingest: chess.com archive %s decode failed, skipping: %v", url, err)
			if onArchiveProgress != nil {
				onArchiveProgress(i+1, len(archives))
			}
			continue
		}
		for _, entry := range month.Games {
			pg, err := pgn.ParseOne([]byte(entry.PGN))
			if err != nil || pg == nil {
				continue
			}
			if g := normalize.Normalize(account.Username, *pg); g != nil {
				emit(*g)
			}
		}
		if onArchiveProgress != nil {
			onArchiveProgress(i+1, len(archives))
		}
	}
	return nil
}

// relevantArchives fetches the full archive list (or reuses a recent one
// from archiveListCache within config.ArchiveListTTL), then drops any
// month strictly before the account's last sync.
func (s *ChessComSource) relevantArchives(ctx context.Context, account db.Account) ([]string, error) {
	username := strings.ToLower(account.Username)
	cacheKey := s.BaseURL + "/" + username

	all, err := s.fetchArchiveList(ctx, cacheKey, username)
	if err != nil {
		return nil, err
	}
	if account.LastSyncAt == nil {
		return all, nil
	}

	boundary := account.LastSyncAt.Format("2006/01")
	var out []string
	for _, a := range all {
		ym := archiveYearMonth(a)
		if ym == "" || ym >= boundary {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *ChessComSource) fetchArchiveList(ctx context.Context, cacheKey, username string) ([]string, error) {
	ttl := config.ArchiveListTTL()

	archiveListCache.mu.Lock()
	if entry, ok := archiveListCache.entries[cacheKey]; ok && time.Since(entry.fetchedAt) < ttl {
		archiveListCache.mu.Unlock()
		return entry.archives, nil
	}
	archiveListCache.mu.Unlock()

	url := fmt.Sprintf("%s/player/%s/games/archives", s.BaseURL, username)
	body, err := s.Fetcher.FetchText(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("list archives: %w", err)
	}
	var resp archivesResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return nil, fmt.Errorf("decode archive list: %w", err)
	}

	archiveListCache.mu.Lock()
	archiveListCache.entries[cacheKey] = archiveListEntry{archives: resp.Archives, fetchedAt: time.Now()}
	archiveListCache.mu.Unlock()

	return resp.Archives, nil
}

// archiveYearMonth extracts "2024/06" from an archive URL's trailing
// "/2024/06" path segments.
func archiveYearMonth(url string) string {
	parts := strings.Split(strings.TrimRight(url, "/"), "/")
	if len(parts) < 2 {
		return ""
	}
	year, month := parts[len(parts)-2], parts[len(parts)-1]
	if _, err := strconv.Atoi(year); err != nil {
		return ""
	}
	if _, err := strconv.Atoi(month); err != nil {
		return ""
	}
	return year + "/" + month
}
