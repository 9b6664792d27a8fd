package tally

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sidharth-timber/tally-connect/internal/logger"
)

// Poster delivers one import document to the accounting endpoint and returns
// the interpreted response. The Provisioner and the Orchestrator depend on
// this narrow interface rather than on the HTTP client.
type Poster interface {
	Post(ctx context.Context, doc string) (*Response, error)
}

// ClientConfig holds configuration for the Tally transport client.
type ClientConfig struct {
	// URL is the import endpoint, normally http://localhost:9000.
	URL string

	// Timeout is the per-request timeout. A timed-out call surfaces as a
	// transport error for the invoice being processed; it never terminates
	// the agent. Default: 15 seconds.
	Timeout time.Duration
}

// DefaultClientConfig returns a ClientConfig with sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		URL:     "http://localhost:9000",
		Timeout: 15 * time.Second,
	}
}

// Client posts XML import documents to the Tally endpoint. It carries no
// retry or interpretation logic beyond parsing the response body; retry
// policy lives with the orchestrator.
type Client struct {
	url        string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a transport client for the given configuration.
func NewClient(cfg ClientConfig) *Client {
	if cfg.URL == "" {
		cfg.URL = DefaultClientConfig().URL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultClientConfig().Timeout
	}
	return &Client{
		url:        cfg.URL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logger.WithComponent("tally-client"),
	}
}

// Post sends one import document. Transport failures, non-2xx statuses and
// empty bodies are returned as *TransportError; a delivered document always
// comes back as an interpreted *Response, even when Tally rejected it.
func (c *Client) Post(ctx context.Context, doc string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(doc))
	if err != nil {
		return nil, &TransportError{Op: "Post", URL: c.url, Err: err}
	}
	req.Header.Set("Content-Type", "application/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "Post", URL: c.url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "Post", URL: c.url, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{
			Op:         "Post",
			URL:        c.url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: %s", ErrUnexpectedStatus, strings.TrimSpace(string(body))),
		}
	}
	if len(body) == 0 {
		return nil, &TransportError{Op: "Post", URL: c.url, StatusCode: resp.StatusCode, Err: ErrEmptyResponse}
	}

	c.log.Debug().
		Int("status", resp.StatusCode).
		Int("body_bytes", len(body)).
		Msg("Import document delivered")

	return Interpret(string(body)), nil
}
