// Package pgn implements a streaming tokenizer for Portable Game Notation
// text: it delimits header blocks and move-text blobs one game at a time
// without buffering the whole input, the way a log-shipping scanner reads
// one record at a time rather than loading the whole file. It does not
// tokenize moves or validate legality — that's out of scope.
package pgn

import (
	"bufio"
	"io"
	"regexp"
	"strings"
)

// ParsedGame is the raw result of delimiting one PGN game: its headers and
// the concatenated move-section text. Normalization into a domain Game
// record happens in the normalize package.
type ParsedGame struct {
	Headers map[string]string
	Moves   string
}

var headerLine = regexp.MustCompile(`^\[([A-Za-z]+)\s+"([^"]*)"\]$`)

type state int

const (
	stateHeaders state = iota
	stateMoves
)

// ParseStream scans r line by line and invokes emit once per game-sized
// block that has headers or move text; it rejects nothing itself, so a
// malformed block (stray text with no headers, say) is emitted as-is and
// left for the normalizer to drop. Some providers omit the blank line
// between games, so a line
// starting with "[" is treated as the start of a new game whenever the
// scanner is already inside the move section.
func ParseStream(r io.Reader, emit func(ParsedGame)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	st := stateHeaders
	headers := map[string]string{}
	var moves strings.Builder

	flush := func() {
		if len(headers) == 0 && moves.Len() == 0 {
			return
		}
		emit(ParsedGame{Headers: headers, Moves: strings.TrimSpace(moves.String())})
		headers = map[string]string{}
		moves.Reset()
		st = stateHeaders
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch st {
		case stateHeaders:
			if m := headerLine.FindStringSubmatch(line); m != nil {
				headers[m[1]] = m[2]
				continue
			}
			// Blank line, or any non-header, non-blank line, moves us into
			// the move section — the separator is optional in practice.
			st = stateMoves
			if line == "" {
				continue
			}
			appendMove(&moves, line)

		case stateMoves:
			if line == "" {
				flush()
				continue
			}
			if strings.HasPrefix(line, "[") {
				// New game started without a blank-line separator.
				flush()
				if m := headerLine.FindStringSubmatch(line); m != nil {
					headers[m[1]] = m[2]
				}
				continue
			}
			appendMove(&moves, line)
		}
	}
	flush()
	return scanner.Err()
}

func appendMove(b *strings.Builder, line string) {
	if b.Len() > 0 {
		b.WriteByte(' ')
	}
	b.WriteString(line)
}

// ParseOne parses a single self-contained PGN game, used by sources that
// already delimit one game per call (Chess.com hands back one PGN string
// per array element).
func ParseOne(data []byte) (*ParsedGame, error) {
	var out *ParsedGame
	err := ParseStream(strings.NewReader(string(data)), func(g ParsedGame) {
		if out == nil {
			out = &g
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
