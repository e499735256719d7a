package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client reads the status API of an Awale server
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a status API client rooted at baseURL
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// APIError is the error body returned by the status API
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

type errorBody struct {
	Error APIError `json:"error"`
}

// Health fetches the server health summary
func (c *Client) Health(ctx context.Context) (HealthResult, error) {
	var r HealthResult
	err := c.get(ctx, "/api/v1/health", &r)
	return r, err
}

// Online lists the players currently logged in
func (c *Client) Online(ctx context.Context) (OnlineResult, error) {
	var r OnlineResult
	err := c.get(ctx, "/api/v1/players/online", &r)
	return r, err
}

// Player fetches one player's public profile
func (c *Client) Player(ctx context.Context, handle string) (Player, error) {
	var r Player
	err := c.get(ctx, "/api/v1/players/"+url.PathEscape(handle), &r)
	return r, err
}

// Games lists the games in progress
func (c *Client) Games(ctx context.Context) (GamesResult, error) {
	var r GamesResult
	err := c.get(ctx, "/api/v1/games", &r)
	return r, err
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var eb errorBody
		if err := json.Unmarshal(body, &eb); err == nil && eb.Error.Code != "" {
			return &eb.Error
		}
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if len(body) == 0 {
		return errors.New("empty response")
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
