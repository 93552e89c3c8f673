// Package deezer talks to the Deezer catalog: the public search API and the
// authenticated download gateway.
package deezer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultAPIURL = "https://api.deezer.com"

// Artist is the performer attached to a search result.
type Artist struct {
	Name string `json:"name"`
}

// Album carries the cover art references for a search result.
type Album struct {
	Title       string `json:"title"`
	Cover       string `json:"cover"`
	CoverMedium string `json:"cover_medium"`
}

// Track is a single result of a catalog search. The ID is Deezer's own,
// stable across sessions; Preview points at a short clip playable without
// authentication.
type Track struct {
	ID       uint64 `json:"id"`
	Title    string `json:"title"`
	Preview  string `json:"preview"`
	Duration int    `json:"duration"`
	Artist   Artist `json:"artist"`
	Album    Album  `json:"album"`
}

// Client queries the public Deezer API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a search client. baseURL overrides the public endpoint
// when non-empty (used by tests).
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultAPIURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Search returns up to limit tracks matching the term, in Deezer's ranking
// order.
func (c *Client) Search(ctx context.Context, term string, limit int) ([]Track, error) {
	query := url.Values{}
	query.Set("q", term)
	query.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search request: unexpected status %d", resp.StatusCode)
	}

	var result struct {
		Data []Track `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("parse search response: %w", err)
	}

	return result.Data, nil
}
