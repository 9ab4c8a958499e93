package pgn

import (
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseStream_TwoGamesWithBlankLine(t *testing.T) {
	input := `[Event "Test"]
[White "alice"]
[Black "bob"]
[Result "1-0"]

1. e4 e5 2. Nf3 1-0

[Event "Test2"]
[White "carol"]
[Black "dave"]
[Result "0-1"]

1. d4 d5 0-1
`
	var got []ParsedGame
	if err := ParseStream(strings.NewReader(input), func(g ParsedGame) { got = append(got, g) }); err != nil {
		t.Fatalf("ParseStream: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 games, got %d", len(got))
	}
	if got[0].Headers["White"] != "alice" || got[1].Headers["White"] != "carol" {
		t.Fatalf("unexpected headers: %+v", got)
	}
	if got[0].Moves != "1. e4 e5 2. Nf3 1-0" {
		t.Fatalf("unexpected moves: %q", got[0].Moves)
	}
}

// Some providers omit the blank line between games — a "[" line while
// already in the move section must start a new game rather than be
// swallowed into the previous game's move text.
func TestParseStream_NoBlankLineBetweenGames(t *testing.T) {
	input := `[Event "Test"]
[White "alice"]
[Black "bob"]
[Result "1-0"]

1. e4 e5 1-0
[Event "Test2"]
[White "carol"]
[Black "dave"]
[Result "0-1"]

1. d4 d5 0-1
`
	var got []ParsedGame
	if err := ParseStream(strings.NewReader(input), func(g ParsedGame) { got = append(got, g) }); err != nil {
		t.Fatalf("ParseStream: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 games, got %d: %+v", len(got), got)
	}
	if diff := cmp.Diff("alice", got[0].Headers["White"]); diff != "" {
		t.Errorf("game 0 White mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff("carol", got[1].Headers["White"]); diff != "" {
		t.Errorf("game 1 White mismatch (-want +got):\n%s", diff)
	}
}

func TestParseStream_MalformedBlockPassedThrough(t *testing.T) {
	// No headers at all, just stray move text followed by a real game.
	input := `random junk line

[Event "Real"]
[White "alice"]
[Black "bob"]
[Result "1-0"]

1. e4 1-0
`
	var got []ParsedGame
	if err := ParseStream(strings.NewReader(input), func(g ParsedGame) { got = append(got, g) }); err != nil {
		t.Fatalf("ParseStream: %v", err)
	}
	// The junk line becomes a headerless game with move text "random junk
	// line" — parse_stream itself never rejects anything; rejection of
	// ill-formed games happens in the normalizer (no White/Black match).
	if len(got) != 2 {
		t.Fatalf("expected 2 raw blocks, got %d: %+v", len(got), got)
	}
	if got[1].Headers["White"] != "alice" {
		t.Fatalf("expected second block to be the real game, got %+v", got[1])
	}
}

func TestParseOne(t *testing.T) {
	input := `[Event "Test"]
[White "alice"]
[Black "bob"]
[Result "1/2-1/2"]

1. e4 e5 1/2-1/2`
	g, err := ParseOne([]byte(input))
	if err != nil {
		t.Fatalf("ParseOne: %v", err)
	}
	if g == nil {
		t.Fatal("expected a parsed game, got nil")
	}
	if g.Headers["Result"] != "1/2-1/2" {
		t.Fatalf("unexpected result header: %q", g.Headers["Result"])
	}
}

func TestCountGames(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/games.pgn"
	content := `[Event "A"]
[White "x"]
[Black "y"]
[Result "*"]

1. e4 *

[Event "B"]
[White "x"]
[Black "y"]
[Result "*"]

1. d4 *
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write test fixture: %v", err)
	}
	n, err := CountGames(path)
	if err != nil {
		t.Fatalf("CountGames: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2, got %d", n)
	}
}
