package events

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/vk/packrig/internal/config"
)

// defaultWebhookTimeout bounds a single delivery when the plan does not set one.
const defaultWebhookTimeout = 10 * time.Second

// webhookClient is shared by all webhook sinks to reuse TCP connections.
var webhookClient = &http.Client{}

// WebhookSink delivers each event as a JSON POST to a fixed URL.
type WebhookSink struct {
	name    string
	url     string
	timeout time.Duration
	client  *http.Client
}

// NewWebhookSink creates a sink for the given plan entry.
func NewWebhookSink(cfg *config.Webhook) *WebhookSink {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultWebhookTimeout
	}
	return &WebhookSink{
		name:    cfg.Name,
		url:     cfg.URL,
		timeout: timeout,
		client:  webhookClient,
	}
}

// Name implements Sink.
func (s *WebhookSink) Name() string {
	return "webhook/" + s.name
}

// Send implements Sink.
func (s *WebhookSink) Send(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver event to %s: %w", s.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook %s rejected event with status: %s", s.url, resp.Status)
	}
	return nil
}

// Close implements Sink. The shared HTTP client stays open.
func (s *WebhookSink) Close() error {
	return nil
}
