package rounds

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/Alias1177/AviatorPredictor/internal/outcome"
	httpClient "github.com/Alias1177/AviatorPredictor/internal/platform/http"
	"github.com/Alias1177/AviatorPredictor/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Client fetches rounds from an HTTP JSON feed
type Client struct {
	feedURL    string
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new feed client
type ClientOptions struct {
	FeedURL         string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetries      int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new feed client
func NewClient(options ClientOptions) *Client {
	httpOpts := httpClient.ClientOptions{
		Timeout:         options.RequestTimeout,
		RequestsPerSec:  options.RequestsPerSec,
		MaxRetries:      options.MaxRetries,
		MaxRetryTimeout: options.MaxRetryTimeout,
	}

	return &Client{
		feedURL:    options.FeedURL,
		httpClient: httpClient.NewClient(httpOpts),
		logger:     log.With().Str("component", "rounds_feed").Logger(),
	}
}

type feedResponse struct {
	Rounds []outcome.Record `json:"rounds"`
}

// Latest fetches up to limit of the newest rounds, oldest first.
// Malformed records are dropped and logged.
func (c *Client) Latest(ctx context.Context, limit int) ([]models.Outcome, error) {
	u, err := url.Parse(c.feedURL)
	if err != nil {
		return nil, fmt.Errorf("parsing feed url: %w", err)
	}
	q := u.Query()
	q.Set("limit", strconv.Itoa(limit))
	u.RawQuery = q.Encode()

	c.logger.Debug().Str("url", u.String()).Msg("Fetching rounds")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	records, err := decodeRecords(body)
	if err != nil {
		c.logger.Error().Err(err).Str("response", truncate(string(body), 512)).Msg("Error parsing JSON")
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	outcomes, err := outcome.AdaptValid(records)
	if err != nil {
		c.logger.Warn().Err(err).Int("dropped", len(records)-len(outcomes)).Msg("Dropped invalid rounds")
	}

	// Sort rounds by timestamp (oldest first for proper calculations)
	sort.SliceStable(outcomes, func(i, j int) bool {
		return outcomes[i].Timestamp < outcomes[j].Timestamp
	})

	if len(outcomes) > limit {
		outcomes = outcomes[len(outcomes)-limit:]
	}

	c.logger.Debug().Int("count", len(outcomes)).Msg("Fetched rounds")
	return outcomes, nil
}

// decodeRecords accepts either a bare array or {"rounds": [...]}
func decodeRecords(body []byte) ([]outcome.Record, error) {
	var records []outcome.Record
	if err := json.Unmarshal(body, &records); err == nil {
		return records, nil
	}

	var wrapped feedResponse
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Rounds, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
