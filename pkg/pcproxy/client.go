// Package pcproxy is the typed client for the dashboard's own /pc-proxy
// endpoints, used by anything driving the dashboard programmatically. It
// does no business logic beyond response and error normalization.
package pcproxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Status is the device agent's lock state as relayed by the proxy.
type Status struct {
	Locked bool `json:"locked"`
}

// ScheduleConfig is the schedule payload for SetSchedule.
type ScheduleConfig struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

// APIError is any non-success response from the proxy, carrying the
// relayed message and status code.
type APIError struct {
	Message    string
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pc proxy error (status %d): %s", e.StatusCode, e.Message)
}

// Client calls the dashboard's proxy endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a proxy client for the dashboard at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Lock locks the PC at ip:port through the proxy.
func (c *Client) Lock(ctx context.Context, ip string, port int, password string) (map[string]interface{}, error) {
	return c.post(ctx, "/pc-proxy/lock", map[string]interface{}{
		"ip":       ip,
		"port":     port,
		"password": password,
	})
}

// Unlock unlocks the PC at ip:port through the proxy.
func (c *Client) Unlock(ctx context.Context, ip string, port int, password string) (map[string]interface{}, error) {
	return c.post(ctx, "/pc-proxy/unlock", map[string]interface{}{
		"ip":       ip,
		"port":     port,
		"password": password,
	})
}

// GetStatus queries the PC's lock state through the proxy.
func (c *Client) GetStatus(ctx context.Context, ip string, port int) (*Status, error) {
	data, err := c.post(ctx, "/pc-proxy/status", map[string]interface{}{
		"ip":   ip,
		"port": port,
	})
	if err != nil {
		return nil, err
	}

	locked, _ := data["locked"].(bool)
	return &Status{Locked: locked}, nil
}

// SetSchedule pushes a schedule to the PC through the proxy.
func (c *Client) SetSchedule(ctx context.Context, ip string, port int, password string, schedule ScheduleConfig) (map[string]interface{}, error) {
	return c.post(ctx, "/pc-proxy/schedule", map[string]interface{}{
		"ip":       ip,
		"port":     port,
		"password": password,
		"schedule": schedule,
	})
}

// post issues a proxy request and normalizes non-success responses into
// *APIError with the relayed message and status code.
func (c *Client) post(ctx context.Context, path string, payload map[string]interface{}) (map[string]interface{}, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Message: fmt.Sprintf("Network error: %v", err), StatusCode: 0}
	}
	defer resp.Body.Close()

	var data map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		data = map[string]interface{}{}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := resp.Status
		if errMsg, ok := data["error"].(string); ok && errMsg != "" {
			message = errMsg
		}
		return nil, &APIError{Message: message, StatusCode: resp.StatusCode}
	}

	return data, nil
}
