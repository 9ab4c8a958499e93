package config

// ChessComBaseURL is the root of the Chess.com public API.
func ChessComBaseURL() string {
	return "https://api.chess.com/pub"
}

// LichessBaseURL is the root of the Lichess API.
func LichessBaseURL() string {
	return "https://lichess.org"
}
