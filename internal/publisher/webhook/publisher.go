// Package webhook delivers scrape payloads to an agent endpoint over HTTP.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bipwatch/crawler/internal/bip"
)

const defaultTimeout = 30 * time.Second

// Config captures the webhook endpoint parameters.
type Config struct {
	URL          string
	APIKey       string
	APIKeyHeader string
	Timeout      time.Duration
}

// Publisher POSTs payloads as JSON to a configured webhook.
type Publisher struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// New creates a webhook Publisher.
func New(cfg Config, logger *zap.Logger) *Publisher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.APIKeyHeader == "" {
		cfg.APIKeyHeader = "Authorization"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Publish sends the payload. Non-2xx responses are errors so the caller
// can fall back to a local snapshot.
func (p *Publisher) Publish(ctx context.Context, payload bip.Payload) error {
	if strings.TrimSpace(p.cfg.URL) == "" {
		return fmt.Errorf("webhook url is not configured")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	if p.cfg.APIKey != "" {
		req.Header.Set(p.cfg.APIKeyHeader, headerValue(p.cfg.APIKeyHeader, p.cfg.APIKey))
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &bip.FetchError{
			URL:        p.cfg.URL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("webhook rejected payload: %s", strings.TrimSpace(string(snippet))),
		}
	}

	p.logger.Info("payload delivered",
		zap.String("run_id", payload.RunID),
		zap.Int("entries", len(payload.Entries)),
		zap.Int("status", resp.StatusCode),
	)
	return nil
}

// headerValue applies the conventional Bearer prefix when the key travels
// in the Authorization header and is passed through verbatim otherwise.
func headerValue(header, key string) string {
	if strings.EqualFold(header, "Authorization") && !strings.HasPrefix(key, "Bearer ") {
		return "Bearer " + key
	}
	return key
}
