// Package store defines the invoice repository the coordination server
// persists through. The server depends only on this interface; the memory
// and postgres sub-packages provide the implementations.
package store

import (
	"context"
	"errors"

	"github.com/sidharth-timber/tally-connect/pkg/models"
)

var ErrNotFound = errors.New("invoice not found")

// Repository holds the invoices awaiting and completing synchronization.
type Repository interface {
	// Create stores a new invoice. An empty ID is assigned; the status is
	// forced to pending.
	Create(ctx context.Context, inv models.Invoice) (*models.Invoice, error)

	// List returns every invoice.
	List(ctx context.Context) ([]models.Invoice, error)

	// ListPending returns the invoices with status pending.
	ListPending(ctx context.Context) ([]models.Invoice, error)

	// UpdateStatus records an invoice's sync outcome. Returns ErrNotFound
	// for an unknown ID.
	UpdateStatus(ctx context.Context, id, status, errMsg string) error
}
