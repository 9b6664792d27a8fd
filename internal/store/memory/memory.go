// Package memory is the in-memory Repository used by default and in tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/sidharth-timber/tally-connect/internal/store"
	"github.com/sidharth-timber/tally-connect/pkg/models"
)

type Store struct {
	mu       sync.RWMutex
	invoices map[string]models.Invoice
	order    map[string]int // insertion order, for stable listings
	next     int
}

func New() *Store {
	return &Store{
		invoices: make(map[string]models.Invoice),
		order:    make(map[string]int),
	}
}

var _ store.Repository = (*Store)(nil)

func (s *Store) Create(_ context.Context, inv models.Invoice) (*models.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	inv.Status = models.StatusPending
	inv.Error = ""

	s.invoices[inv.ID] = inv
	if _, seen := s.order[inv.ID]; !seen {
		s.order[inv.ID] = s.next
		s.next++
	}
	return &inv, nil
}

func (s *Store) List(context.Context) ([]models.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(func(models.Invoice) bool { return true }), nil
}

func (s *Store) ListPending(context.Context) ([]models.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(func(inv models.Invoice) bool { return inv.Status == models.StatusPending }), nil
}

func (s *Store) UpdateStatus(_ context.Context, id, status, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invoices[id]
	if !ok {
		return store.ErrNotFound
	}
	inv.Status = status
	inv.Error = errMsg
	s.invoices[id] = inv
	return nil
}

func (s *Store) snapshot(keep func(models.Invoice) bool) []models.Invoice {
	out := make([]models.Invoice, 0, len(s.invoices))
	for _, inv := range s.invoices {
		if keep(inv) {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return s.order[out[i].ID] < s.order[out[j].ID]
	})
	return out
}
