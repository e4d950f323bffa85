// Package jokeapi fetches random jokes from the JokeAPI service. Jokes are
// non-critical: every failure path degrades to a fixed fallback joke so the
// conversation never breaks.
package jokeapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// FallbackJoke is returned verbatim whenever the service cannot be reached
// or answers with anything unexpected.
const FallbackJoke = "Setup: Why did the librarian get kicked off the plane?\nPunchline: It was overbooked!"

// blacklistFlags excludes joke categories unfit for a public-facing librarian.
const blacklistFlags = "nsfw,religious,political,racist,sexist,explicit"

// Client calls the JokeAPI endpoint with a bounded timeout.
type Client struct {
	httpClient *http.Client
	endpoint   string
	logger     *zap.Logger
}

// New creates a joke client. timeout bounds the whole request.
func New(endpoint string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
		logger:     logger,
	}
}

type jokeResponse struct {
	Type     string `json:"type"`
	Setup    string `json:"setup"`
	Delivery string `json:"delivery"`
	Joke     string `json:"joke"`
}

// RandomJoke fetches a joke, preferring the two-part format. It never
// returns an error; any failure yields FallbackJoke.
func (c *Client) RandomJoke(ctx context.Context) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		c.logger.Warn("joke request build failed", zap.Error(err))
		return FallbackJoke
	}

	q := url.Values{}
	q.Set("blacklistFlags", blacklistFlags)
	q.Set("type", "twopart")
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("joke request failed", zap.Error(err))
		return FallbackJoke
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("joke service returned non-OK status", zap.Int("status", resp.StatusCode))
		return FallbackJoke
	}

	var data jokeResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		c.logger.Warn("joke response decode failed", zap.Error(err))
		return FallbackJoke
	}

	if data.Type == "twopart" && data.Setup != "" {
		return "Setup: " + data.Setup + "\nPunchline: " + data.Delivery
	}
	if data.Joke != "" {
		return data.Joke
	}
	return FallbackJoke
}
