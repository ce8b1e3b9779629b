// Package agent implements the HTTP client for device agents: the services
// running on each managed PC that execute lock/unlock/status/schedule
// commands. Every call is a single bounded attempt; the dashboard never
// retries on the caller's behalf.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// ScheduleConfig is the schedule payload the device agent understands.
type ScheduleConfig struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

// Response is a decoded device agent response body. Agents that return
// non-JSON bodies are wrapped as {"raw": <body>}.
type Response map[string]interface{}

// Error is a non-success response from a device agent. The status code and
// message are relayed to the caller as-is; Details carries the decoded body.
type Error struct {
	StatusCode int
	Message    string
	Details    Response
}

func (e *Error) Error() string {
	return fmt.Sprintf("device agent returned %d: %s", e.StatusCode, e.Message)
}

// UnreachableError is a transport-level failure: the agent did not respond
// or the network call itself failed.
type UnreachableError struct {
	Cause error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("device agent unreachable: %v", e.Cause)
}

func (e *UnreachableError) Unwrap() error {
	return e.Cause
}

// Config holds configuration for the device agent client
type Config struct {
	Timeout   time.Duration
	UserAgent string
}

// DefaultConfig returns a default configuration for the device agent client
func DefaultConfig() Config {
	return Config{
		Timeout:   5 * time.Second,
		UserAgent: "pc-control-dashboard/1.0",
	}
}

// Client talks to device agents over plain HTTP at http://{ip}:{port}/api/*.
type Client interface {
	Lock(ctx context.Context, ip string, port int, password string) (Response, error)
	Unlock(ctx context.Context, ip string, port int, password string) (Response, error)
	Status(ctx context.Context, ip string, port int) (Response, error)
	SetSchedule(ctx context.Context, ip string, port int, password string, schedule ScheduleConfig) (Response, error)
}

type client struct {
	config     Config
	httpClient *http.Client
	logger     *log.Logger
}

// NewClient creates a device agent client with the given configuration.
func NewClient(config Config, logger *log.Logger) Client {
	if logger == nil {
		logger = log.Default()
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	return &client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger,
	}
}

// Lock commands the agent to lock the PC.
func (c *client) Lock(ctx context.Context, ip string, port int, password string) (Response, error) {
	return c.post(ctx, ip, port, "lock", map[string]interface{}{"password": password})
}

// Unlock commands the agent to unlock the PC.
func (c *client) Unlock(ctx context.Context, ip string, port int, password string) (Response, error) {
	return c.post(ctx, ip, port, "unlock", map[string]interface{}{"password": password})
}

// Status queries the agent's current lock state. No password is required.
func (c *client) Status(ctx context.Context, ip string, port int) (Response, error) {
	return c.do(ctx, http.MethodGet, ip, port, "status", nil)
}

// SetSchedule pushes a lock window to the agent.
func (c *client) SetSchedule(ctx context.Context, ip string, port int, password string, schedule ScheduleConfig) (Response, error) {
	return c.post(ctx, ip, port, "schedule", map[string]interface{}{
		"password": password,
		"enabled":  schedule.Enabled,
		"start":    schedule.Start,
		"end":      schedule.End,
	})
}

func (c *client) post(ctx context.Context, ip string, port int, operation string, payload map[string]interface{}) (Response, error) {
	return c.do(ctx, http.MethodPost, ip, port, operation, payload)
}

// do issues a single request to the agent and decodes the response. Non-2xx
// statuses become *Error; transport failures become *UnreachableError.
func (c *client) do(ctx context.Context, method, ip string, port int, operation string, payload map[string]interface{}) (Response, error) {
	url := fmt.Sprintf("http://%s:%d/api/%s", ip, port, operation)

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal agent payload: %w", err)
		}
		body = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Printf("Agent request failed: %s %s: %v", method, url, err)
		return nil, &UnreachableError{Cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Printf("Agent response read failed: %s %s: %v", method, url, err)
		return nil, &UnreachableError{Cause: err}
	}

	data := decodeBody(raw)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := resp.Status
		if errMsg, ok := data["error"].(string); ok && errMsg != "" {
			message = errMsg
		}
		c.logger.Printf("Agent %s/%s returned %d: %s", ip, operation, resp.StatusCode, message)
		return nil, &Error{
			StatusCode: resp.StatusCode,
			Message:    message,
			Details:    data,
		}
	}

	return data, nil
}

// decodeBody attempts structured decoding, falling back to a raw-text
// wrapper when the body is not a JSON object.
func decodeBody(raw []byte) Response {
	var data Response
	if err := json.Unmarshal(raw, &data); err != nil || data == nil {
		return Response{"raw": string(raw)}
	}
	return data
}
