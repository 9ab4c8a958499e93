package fetch

import "fmt"

// NotFoundError means the provider returned 404 — usually an account that
// doesn't exist, or (for Chess.com) an archive month with no games.
type NotFoundError struct {
	URL string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found: %s", e.URL)
}

// RateLimitedError means the retry budget was exhausted while the provider
// kept returning 429.
type RateLimitedError struct {
	Provider string
	Retries  int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("%s: rate limited after %d retries", e.Provider, e.Retries)
}

// ProviderError wraps any other non-2xx response the fetcher isn't taught a
// specific disposition for.
type ProviderError struct {
	Provider   string
	StatusCode int
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Provider, e.StatusCode)
}
