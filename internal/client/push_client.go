package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"roadside-service/internal/config"
	"roadside-service/internal/tracking"
)

type PushMessage struct {
	Target             string   `json:"target"`
	Title              string   `json:"title"`
	Body               string   `json:"body"`
	Tag                string   `json:"tag"`
	RequireInteraction bool     `json:"require_interaction"`
	Sound              bool     `json:"sound"`
	Kind               string   `json:"kind"`
	DistanceKm         *float64 `json:"distance_km,omitempty"`
}

// PushClient delivers tracking alerts to the push gateway.
type PushClient struct {
	baseURL       string
	internalToken string
	httpClient    *http.Client
	backoff       time.Duration
}

func NewPushClient(cfg *config.Config) *PushClient {
	return &PushClient{
		baseURL:       cfg.Push.ServiceURL,
		internalToken: cfg.Push.Token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		backoff: 500 * time.Millisecond,
	}
}

// Notify sends alert to target. A 403 from the gateway means the recipient
// never granted permission and is reported as tracking.ErrPermissionDenied.
func (c *PushClient) Notify(ctx context.Context, target string, alert tracking.Alert) error {
	if c.baseURL == "" {
		return fmt.Errorf("push service URL is not configured")
	}
	if target == "" {
		return fmt.Errorf("push target is empty")
	}

	payload, err := json.Marshal(PushMessage{
		Target:             target,
		Title:              alert.Title,
		Body:               alert.Body,
		Tag:                alert.Tag,
		RequireInteraction: alert.RequireInteraction,
		Sound:              alert.Sound,
		Kind:               string(alert.Kind),
		DistanceKm:         alert.DistanceKm,
	})
	if err != nil {
		return fmt.Errorf("failed to encode push message: %w", err)
	}

	url := c.baseURL + "/internal/push/notifications"

	// retry only network errors; an HTTP answer is final
	var resp *http.Response
	var lastErr error
	maxRetries := 3
	for attempt := 0; attempt < maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.internalToken != "" {
			req.Header.Set("X-Internal-Token", c.internalToken)
		}

		resp, lastErr = c.httpClient.Do(req)
		if lastErr == nil {
			break
		}
		if attempt == maxRetries-1 {
			return fmt.Errorf("failed to execute request after %d attempts: %w", maxRetries, lastErr)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * c.backoff):
		}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden:
		return tracking.ErrPermissionDenied
	case resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("push service returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
