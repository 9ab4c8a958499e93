// Package fetch implements the rate-limited HTTP fetcher shared by the
// Chess.com and Lichess source adapters: a *http.Client built once with
// explicit Transport timeouts, and a small typed helper over it driven by
// a per-provider Profile carrying its own backoff/retry/timeout policy.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// BackoffPolicy describes how the delay after a 429 evolves across retries.
type BackoffPolicy int

const (
	// BackoffFixed always sleeps InitialBackoff (Lichess's policy).
	BackoffFixed BackoffPolicy = iota
	// BackoffDoubling doubles the delay each retry, capped at MaxBackoff
	// (Chess.com's policy).
	BackoffDoubling
)

// Profile is a provider's scheduling policy.
type Profile struct {
	Name              string
	UserAgent         string
	InterRequestDelay time.Duration
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffPolicy     BackoffPolicy
	MaxRetries        int
	RequestTimeout    time.Duration
}

// ChessComProfile is the Chess.com provider's scheduling policy.
func ChessComProfile() Profile {
	return Profile{
		Name:              "Chess.com",
		UserAgent:         "chessimport/1.0 (+https://github.com/jasperwolfe/chessimport)",
		InterRequestDelay: 500 * time.Millisecond,
		InitialBackoff:    2 * time.Second,
		MaxBackoff:        60 * time.Second,
		BackoffPolicy:     BackoffDoubling,
		MaxRetries:        3,
		RequestTimeout:    30 * time.Second,
	}
}

// LichessProfile is the Lichess provider's scheduling policy.
func LichessProfile() Profile {
	return Profile{
		Name:              "Lichess",
		UserAgent:         "chessimport/1.0 (+https://github.com/jasperwolfe/chessimport)",
		InterRequestDelay: 0,
		InitialBackoff:    60 * time.Second,
		MaxBackoff:        60 * time.Second,
		BackoffPolicy:     BackoffFixed,
		MaxRetries:        3,
		RequestTimeout:    10 * time.Minute,
	}
}

// Fetcher performs GET requests against one provider under its Profile's
// scheduling policy. One Fetcher is meant to live for the duration of a
// single source adapter's session (the inter-request delay is measured from
// the Fetcher's own previous request: "before every
// request after the first in a session").
type Fetcher struct {
	profile    Profile
	httpClient *http.Client
	backoff    time.Duration
	requested  bool

	// sleep is swappable in tests so backoff/delay assertions don't take
	// real wall-clock minutes.
	sleep func(time.Duration)
}

// New builds a Fetcher for the given profile with an explicit-Transport
// http.Client.
func New(profile Profile) *Fetcher {
	return &Fetcher{
		profile: profile,
		httpClient: &http.Client{
			Timeout: profile.RequestTimeout,
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				DialContext:           (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
				IdleConnTimeout:       30 * time.Second,
				MaxIdleConns:          100,
				MaxConnsPerHost:       10,
			},
		},
		backoff: profile.InitialBackoff,
		sleep:   time.Sleep,
	}
}

// FetchText performs a GET and returns the whole body as a string. Used for
// small JSON endpoints like the Chess.com archive list and per-archive
// game pages.
func (f *Fetcher) FetchText(ctx context.Context, url string) (string, error) {
	body, err := f.fetch(ctx, url)
	if err != nil {
		return "", err
	}
	defer body.Close()
	b, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}
	return string(b), nil
}

// FetchStream performs a GET and returns the live response body for the
// caller to stream-parse (the Lichess source does this, handing the body
// straight to pgn.ParseStream). The caller owns closing it.
func (f *Fetcher) FetchStream(ctx context.Context, url string, accept string) (io.ReadCloser, error) {
	return f.fetchWithAccept(ctx, url, accept)
}

func (f *Fetcher) fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	return f.fetchWithAccept(ctx, url, "")
}

// fetchWithAccept implements the session-wide inter-request delay, the 429
// backoff/retry loop, and the 404/other disposition rules.
func (f *Fetcher) fetchWithAccept(ctx context.Context, url string, accept string) (io.ReadCloser, error) {
	if f.requested && f.profile.InterRequestDelay > 0 {
		f.sleep(f.profile.InterRequestDelay)
	}
	f.requested = true

	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("User-Agent", f.profile.UserAgent)
		if accept != "" {
			req.Header.Set("Accept", accept)
		}

		resp, err := f.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("%s request: %w", f.profile.Name, err)
		}

		switch resp.StatusCode {
		case http.StatusOK:
			return resp.Body, nil
		case http.StatusNotFound:
			resp.Body.Close()
			return nil, &NotFoundError{URL: url}
		case http.StatusTooManyRequests:
			resp.Body.Close()
			if attempt >= f.profile.MaxRetries {
				return nil, &RateLimitedError{Provider: f.profile.Name, Retries: f.profile.MaxRetries}
			}
			f.sleep(f.backoff)
			f.advanceBackoff()
			continue
		default:
			resp.Body.Close()
			return nil, &ProviderError{Provider: f.profile.Name, StatusCode: resp.StatusCode}
		}
	}
}

func (f *Fetcher) advanceBackoff() {
	if f.profile.BackoffPolicy != BackoffDoubling {
		return
	}
	next := f.backoff * 2
	if next > f.profile.MaxBackoff {
		next = f.profile.MaxBackoff
	}
	f.backoff = next
}
