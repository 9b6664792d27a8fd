// Package server implements the coordination side of the sync protocol:
// the webhook endpoint agents poll, plus a small REST surface for feeding
// invoices in and inspecting their state.
package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/sidharth-timber/tally-connect/internal/logger"
	"github.com/sidharth-timber/tally-connect/internal/store"
	"github.com/sidharth-timber/tally-connect/pkg/models"
)

// Webhook event names agents send.
const (
	EventSyncRequest = "sync-request"
	EventSyncStatus  = "sync-status"
)

type webhookRequest struct {
	APIKey string         `json:"apiKey"`
	Event  string         `json:"event"`
	Data   map[string]any `json:"data"`
}

// Server routes webhook and invoice requests onto a Repository.
type Server struct {
	repo   store.Repository
	apiKey string
	log    zerolog.Logger
}

func New(repo store.Repository, apiKey string) *Server {
	return &Server{
		repo:   repo,
		apiKey: apiKey,
		log:    logger.WithComponent("server"),
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.POST("/webhook", s.handleWebhook)
	r.POST("/invoices", s.handleCreateInvoice)
	r.GET("/invoices", s.handleListInvoices)
	return r
}

func (s *Server) handleWebhook(c *gin.Context) {
	var req webhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.APIKey != s.apiKey {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	switch req.Event {
	case EventSyncRequest:
		s.handleSyncRequest(c)
	case EventSyncStatus:
		s.handleSyncStatus(c, req.Data)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown event"})
	}
}

func (s *Server) handleSyncRequest(c *gin.Context) {
	pending, err := s.repo.ListPending(c.Request.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list pending invoices")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoices": pending})
}

func (s *Server) handleSyncStatus(c *gin.Context, data map[string]any) {
	id, _ := data["invoiceId"].(string)
	if id == "" {
		id, _ = data["_id"].(string)
	}
	status, _ := data["status"].(string)
	errMsg, _ := data["error"].(string)

	if id == "" || status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invoiceId and status are required"})
		return
	}
	if status != models.StatusSuccess && status != models.StatusError {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be success or error"})
		return
	}

	err := s.repo.UpdateStatus(c.Request.Context(), id, status, errMsg)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "invoice not found"})
		return
	}
	if err != nil {
		s.log.Error().Err(err).Str("invoice_id", id).Msg("Failed to update invoice status")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
		return
	}

	s.log.Info().Str("invoice_id", id).Str("status", status).Msg("Invoice status updated")
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

func (s *Server) handleCreateInvoice(c *gin.Context) {
	var inv models.Invoice
	if err := c.ShouldBindJSON(&inv); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice payload"})
		return
	}
	created, err := s.repo.Create(c.Request.Context(), inv)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to store invoice")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
		return
	}
	s.log.Info().Str("invoice_id", created.ID).Msg("Invoice queued for sync")
	c.JSON(http.StatusCreated, created)
}

func (s *Server) handleListInvoices(c *gin.Context) {
	invoices, err := s.repo.List(c.Request.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list invoices")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoices": invoices})
}
