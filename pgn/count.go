package pgn

import (
	"bufio"
	"os"
	"strings"
)

// CountGames counts occurrences of the "[Event " tag at line start without
// materializing any game. Used only for progress totals on file uploads
// — never on streaming sources, where "count then parse"
// would mean buffering the whole body twice.
func CountGames(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	count := 0
	for scanner.Scan() {
		if strings.HasPrefix(scanner.Text(), "[Event ") {
			count++
		}
	}
	return count, scanner.Err()
}
