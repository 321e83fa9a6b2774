package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/retry"
)

// Client is the thin HTTP wrapper around the server notification API.
type Client struct {
	base string
	http *http.Client
}

// NewClient creates an API client for the given base URL.
func NewClient(base string) *Client {
	return &Client{
		base: base,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

// Notification is one record as returned by GET /api/notifications.
type Notification struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Link      string    `json:"link,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Notifications fetches the full list, newest first. A non-array response is
// treated as empty rather than an error.
func (c *Client) Notifications(ctx context.Context) ([]Notification, error) {
	var body []byte
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/api/notifications", nil)
			if err != nil {
				return err
			}
			resp, err := c.http.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("HTTP %d", resp.StatusCode)
			}
			body, err = io.ReadAll(resp.Body)
			return err
		},
		retry.Attempts(3),
		retry.Delay(200*time.Millisecond),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}

	var list []Notification
	if err := json.Unmarshal(body, &list); err != nil {
		return []Notification{}, nil
	}
	return list, nil
}

// NotificationCount returns the length of the notification list, the ground
// truth the badge converges to.
func (c *Client) NotificationCount(ctx context.Context) (int, error) {
	list, err := c.Notifications(ctx)
	if err != nil {
		return 0, err
	}
	return len(list), nil
}

// VAPIDPublicKey fetches the server's public application key.
func (c *Client) VAPIDPublicKey(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/api/vapid_public_key", nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch VAPID key: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("VAPID key request returned HTTP %d", resp.StatusCode)
	}

	var payload struct {
		PublicKey string `json:"public_key"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode VAPID key response: %w", err)
	}
	return payload.PublicKey, nil
}

// RegisterSubscription reports a registration to the server under a user.
func (c *Client) RegisterSubscription(ctx context.Context, userID int64, reg *Registration) error {
	body, err := json.Marshal(map[string]any{
		"userId": userID,
		"subscription": map[string]any{
			"endpoint": reg.Endpoint,
			"keys": map[string]string{
				"p256dh": reg.P256DH,
				"auth":   reg.Auth,
			},
		},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/notifications/subscribe", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to report subscription: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("subscribe returned HTTP %d", resp.StatusCode)
	}
	return nil
}
