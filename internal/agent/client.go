package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/sidharth-timber/tally-connect/internal/logger"
	"github.com/sidharth-timber/tally-connect/pkg/models"
)

// Coordinator is the agent's view of the remote order-management server:
// fetch the pending invoices, report a terminal status. The orchestrator
// depends on this capability, not on the HTTP transport behind it.
type Coordinator interface {
	FetchPending(ctx context.Context) ([]models.Invoice, error)
	ReportStatus(ctx context.Context, invoiceID, status, errMsg string) error
}

// envelope is the JSON wrapper every webhook request carries.
type envelope struct {
	APIKey string `json:"apiKey"`
	Event  string `json:"event"`
	Data   any    `json:"data,omitempty"`
}

type statusReport struct {
	InvoiceID string `json:"invoiceId"`
	Status    string `json:"status"`
	Error     string `json:"error"`
}

// CoordinationClient talks to the coordination server's webhook endpoint,
// authenticating every request with the shared static key.
type CoordinationClient struct {
	webhookURL string
	apiKey     string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewCoordinationClient creates a client for the server at baseURL.
func NewCoordinationClient(baseURL, apiKey string) *CoordinationClient {
	return &CoordinationClient{
		webhookURL: baseURL + "/webhook",
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        logger.WithComponent("coordination-client"),
	}
}

// FetchPending requests the invoices still awaiting synchronization.
func (c *CoordinationClient) FetchPending(ctx context.Context) ([]models.Invoice, error) {
	body, err := c.post(ctx, envelope{APIKey: c.apiKey, Event: "sync-request"})
	if err != nil {
		return nil, err
	}

	var res struct {
		Invoices []models.Invoice `json:"invoices"`
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("parse sync-request response: %w", err)
	}
	return res.Invoices, nil
}

// ReportStatus records an invoice's terminal state on the server.
func (c *CoordinationClient) ReportStatus(ctx context.Context, invoiceID, status, errMsg string) error {
	_, err := c.post(ctx, envelope{
		APIKey: c.apiKey,
		Event:  "sync-status",
		Data:   statusReport{InvoiceID: invoiceID, Status: status, Error: errMsg},
	})
	return err
}

func (c *CoordinationClient) post(ctx context.Context, env envelope) ([]byte, error) {
	payload, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", env.Event, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", env.Event, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", env.Event, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", env.Event, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: server returned %d: %s", env.Event, resp.StatusCode, bytes.TrimSpace(body))
	}
	return body, nil
}
