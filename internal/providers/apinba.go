package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hoopsight/hoopsight/pkg/config"
)

// ErrMissingCredentials is returned when a request is attempted without an
// API key. This is a configuration failure and is never retried.
var ErrMissingCredentials = errors.New("upstream API key is not configured")

// UpstreamError is returned after the retry budget for a single logical
// request is exhausted. It wraps the last attempt's failure.
type UpstreamError struct {
	Path     string
	Attempts int
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream request %s failed after %d attempts: %v", e.Path, e.Attempts, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// attemptResult classifies the outcome of a single request attempt. The retry
// loop is an explicit state machine over these outcomes rather than an
// exception-style control flow.
type attemptResult int

const (
	attemptOK attemptResult = iota
	attemptRetry
	attemptFatal
)

// Client performs single logical calls against the api-nba provider with
// bounded retry and exponential backoff. It holds no cache; every call is one
// upstream request (plus retries).
type Client struct {
	httpClient  *http.Client
	logger      *logrus.Logger
	apiKey      string
	apiHost     string
	baseURL     string
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
}

// NewClient creates a new api-nba client.
func NewClient(cfg *config.Config, logger *logrus.Logger) *Client {
	timeout := cfg.ExternalAPITimeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:      logger,
		apiKey:      cfg.RapidAPIKey,
		apiHost:     cfg.RapidAPIHost,
		baseURL:     "https://" + cfg.RapidAPIHost,
		maxAttempts: 5,
		baseDelay:   time.Second,
		maxDelay:    10 * time.Second,
	}
}

// SetBaseURL overrides the upstream base URL, e.g. to point at a local
// proxy or a test server.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

// FetchTeams returns the standard-league team list.
func (c *Client) FetchTeams(ctx context.Context) ([]RawTeam, error) {
	params := url.Values{}
	params.Set("league", "standard")

	var env teamsEnvelope
	if err := c.get(ctx, "/teams", params, &env); err != nil {
		return nil, err
	}
	return env.Response, nil
}

// FetchPlayersPage returns a single page of a team's roster for a season.
func (c *Client) FetchPlayersPage(ctx context.Context, teamID int, season string, page int) ([]RawPlayer, error) {
	params := url.Values{}
	params.Set("team", strconv.Itoa(teamID))
	params.Set("season", season)
	params.Set("page", strconv.Itoa(page))

	var env playersEnvelope
	if err := c.get(ctx, "/players", params, &env); err != nil {
		return nil, err
	}
	return env.Response, nil
}

// FetchPlayerStatistics returns all per-game stat records for one player and
// season. The endpoint is not paginated.
func (c *Client) FetchPlayerStatistics(ctx context.Context, playerID int, season string) ([]RawPlayerStat, error) {
	params := url.Values{}
	params.Set("id", strconv.Itoa(playerID))
	params.Set("season", season)

	var env statisticsEnvelope
	if err := c.get(ctx, "/players/statistics", params, &env); err != nil {
		return nil, err
	}
	return env.Response, nil
}

// SearchPlayers returns players matching a free-text query.
func (c *Client) SearchPlayers(ctx context.Context, query string) ([]RawPlayer, error) {
	params := url.Values{}
	params.Set("search", query)

	var env playersEnvelope
	if err := c.get(ctx, "/players", params, &env); err != nil {
		return nil, err
	}
	return env.Response, nil
}

// FetchPlayerDetails returns the player record for a single player id.
func (c *Client) FetchPlayerDetails(ctx context.Context, playerID int) ([]RawPlayer, error) {
	params := url.Values{}
	params.Set("id", strconv.Itoa(playerID))

	var env playersEnvelope
	if err := c.get(ctx, "/players", params, &env); err != nil {
		return nil, err
	}
	return env.Response, nil
}

// FetchGamesByDate returns the raw schedule document for a date. The schedule
// surface is a pass-through; callers forward it unmodified.
func (c *Client) FetchGamesByDate(ctx context.Context, dateISO string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("date", dateISO)

	var raw json.RawMessage
	if err := c.get(ctx, "/games", params, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// get performs one logical request with up to maxAttempts attempts.
func (c *Client) get(ctx context.Context, path string, params url.Values, target interface{}) error {
	if c.apiKey == "" {
		return ErrMissingCredentials
	}

	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			if err := c.wait(ctx, c.backoff(attempt-1)); err != nil {
				return err
			}
		}

		result, err := c.attempt(ctx, endpoint, target)
		switch result {
		case attemptOK:
			return nil
		case attemptFatal:
			return err
		}

		lastErr = err
		c.logger.WithFields(logrus.Fields{
			"path":    path,
			"attempt": attempt,
		}).Warnf("Upstream request failed: %v", err)
	}

	return &UpstreamError{Path: path, Attempts: c.maxAttempts, Err: lastErr}
}

// attempt issues exactly one HTTP request and classifies the outcome.
// Any HTTP status >= 400 and any body that fails to decode are retryable;
// a cancelled context is fatal.
func (c *Client) attempt(ctx context.Context, endpoint string, target interface{}) (attemptResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return attemptFatal, err
	}

	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("x-rapidapi-host", c.apiHost)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return attemptFatal, ctx.Err()
		}
		return attemptRetry, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return attemptRetry, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return attemptRetry, fmt.Errorf("HTTP %d: %s", resp.StatusCode, truncate(body, 200))
	}

	if err := json.Unmarshal(body, target); err != nil {
		return attemptRetry, fmt.Errorf("invalid JSON: %w", err)
	}

	return attemptOK, nil
}

// backoff returns the wait before the next attempt given the number of
// failures so far: 1s, 2s, 4s, 8s, capped at maxDelay.
func (c *Client) backoff(failures int) time.Duration {
	delay := c.baseDelay << (failures - 1)
	if delay < c.baseDelay {
		delay = c.baseDelay
	}
	if delay > c.maxDelay {
		delay = c.maxDelay
	}
	return delay
}

// wait sleeps for the backoff duration, abandoning early if the caller's
// context is cancelled.
func (c *Client) wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
