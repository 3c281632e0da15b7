// Package upstream is the thin client for the bridge service's own
// HTTP endpoints. Responses pass through verbatim; the dashboard adds
// nothing but a timeout.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const requestTimeout = 10 * time.Second

// Client talks to the bridge service's API.
type Client struct {
	baseURL string
	client  *http.Client
}

// New creates a Client for the bridge at baseURL, e.g. "http://localhost:8777".
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: requestTimeout},
	}
}

// Status fetches the bridge's /status JSON.
func (c *Client) Status(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/status")
}

// ReloadEnv asks the bridge to reload its environment configuration.
func (c *Client) ReloadEnv(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, "/reload-env")
}

func (c *Client) do(ctx context.Context, method, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bridge request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading bridge response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("bridge returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return json.RawMessage(body), nil
}
