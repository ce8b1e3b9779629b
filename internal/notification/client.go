// Package notification posts operator alerts to a configurable webhook:
// PC registrations and deletions, and schedules left out of sync with their
// device agent. Payloads never include the device password.
package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// Level represents the severity level of a notification
type Level string

const (
	LevelInfo     Level = "info"
	LevelWarning  Level = "warning"
	LevelError    Level = "error"
	LevelCritical Level = "critical"
)

// Notifier is an interface for sending notifications with context support
type Notifier interface {
	SendNotification(notification Notification) error
	SendNotificationWithContext(ctx context.Context, notification Notification) error
	IsHealthy(ctx context.Context) bool
}

// Config holds configuration for the notification client
type Config struct {
	URL           string
	Timeout       time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// DefaultConfig returns a default configuration for the notification client
func DefaultConfig(url string) Config {
	return Config{
		URL:           url,
		Timeout:       10 * time.Second,
		RetryAttempts: 3,
		RetryDelay:    time.Second,
	}
}

// Notification represents the payload for the webhook
type Notification struct {
	Level     Level             `json:"level"`
	PCName    string            `json:"pcName,omitempty"`
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp,omitempty"`
	Source    string            `json:"source,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Validate checks if the notification is valid
func (n *Notification) Validate() error {
	if n.Level == "" {
		return fmt.Errorf("notification level is required")
	}
	if n.Message == "" {
		return fmt.Errorf("notification message is required")
	}
	if len(n.Message) > 1000 {
		return fmt.Errorf("notification message too long (max 1000 characters)")
	}

	switch n.Level {
	case LevelInfo, LevelWarning, LevelError, LevelCritical:
	default:
		return fmt.Errorf("invalid notification level: %s", n.Level)
	}

	return nil
}

// notificationClient is the concrete implementation of the Notifier interface
type notificationClient struct {
	config Config
	client *http.Client
	logger *log.Logger
}

// NewNotifier creates a new Notifier. An empty URL yields a no-op notifier
// so callers never have to nil-check.
func NewNotifier(config Config, logger *log.Logger) Notifier {
	if config.URL == "" {
		return &noopNotifier{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &notificationClient{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger,
	}
}

// SendNotification sends a notification to the webhook
func (c *notificationClient) SendNotification(notification Notification) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.config.Timeout)
	defer cancel()
	return c.SendNotificationWithContext(ctx, notification)
}

// SendNotificationWithContext sends a notification with context support,
// retrying transient failures with a linear backoff.
func (c *notificationClient) SendNotificationWithContext(ctx context.Context, notification Notification) error {
	if err := notification.Validate(); err != nil {
		return fmt.Errorf("invalid notification: %w", err)
	}

	if notification.Timestamp.IsZero() {
		notification.Timestamp = time.Now()
	}
	if notification.Source == "" {
		notification.Source = "pc-control-dashboard"
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.RetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.config.RetryDelay * time.Duration(attempt)):
			}
			c.logger.Printf("Retrying notification send (attempt %d/%d)", attempt+1, c.config.RetryAttempts+1)
		}

		if err := c.sendAttempt(ctx, notification); err != nil {
			lastErr = err
			c.logger.Printf("Notification send attempt %d failed: %v", attempt+1, err)

			// Client errors will not improve with retries.
			if strings.Contains(err.Error(), "status 4") ||
				strings.Contains(err.Error(), "failed to marshal") {
				return err
			}
			continue
		}

		return nil
	}

	return fmt.Errorf("failed to send notification after %d attempts: %w", c.config.RetryAttempts+1, lastErr)
}

// sendAttempt performs a single notification send attempt
func (c *notificationClient) sendAttempt(ctx context.Context, notification Notification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.config.URL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "pc-control-dashboard/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("notification webhook returned error status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// IsHealthy checks if the notification webhook is reachable
func (c *notificationClient) IsHealthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, "HEAD", c.config.URL, nil)
	if err != nil {
		return false
	}

	req.Header.Set("User-Agent", "pc-control-dashboard/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode < 500
}

// noopNotifier is used when no webhook is configured.
type noopNotifier struct{}

func (n *noopNotifier) SendNotification(Notification) error { return nil }

func (n *noopNotifier) SendNotificationWithContext(context.Context, Notification) error { return nil }

func (n *noopNotifier) IsHealthy(context.Context) bool { return true }
