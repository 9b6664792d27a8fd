package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/sidharth-timber/tally-connect/internal/store"
	"github.com/sidharth-timber/tally-connect/pkg/models"
)

func TestCreateAssignsIDAndPendingStatus(t *testing.T) {
	s := New()
	created, err := s.Create(context.Background(), models.Invoice{
		Customer: &models.Party{Name: "Acme"},
		Status:   "success", // must be overridden
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if created.ID == "" {
		t.Error("Create() must assign an ID")
	}
	if created.Status != models.StatusPending {
		t.Errorf("Status = %q, want pending", created.Status)
	}
}

func TestListPendingFiltersTerminalInvoices(t *testing.T) {
	ctx := context.Background()
	s := New()

	a, _ := s.Create(ctx, models.Invoice{ID: "A1"})
	s.Create(ctx, models.Invoice{ID: "B2"})
	s.Create(ctx, models.Invoice{ID: "C3"})

	if err := s.UpdateStatus(ctx, a.ID, models.StatusSuccess, ""); err != nil {
		t.Fatalf("UpdateStatus() error: %v", err)
	}

	pending, err := s.ListPending(ctx)
	if err != nil {
		t.Fatalf("ListPending() error: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending = %d, want 2", len(pending))
	}
	// Insertion order is preserved.
	if pending[0].ID != "B2" || pending[1].ID != "C3" {
		t.Errorf("pending order = %s, %s", pending[0].ID, pending[1].ID)
	}

	all, _ := s.List(ctx)
	if len(all) != 3 {
		t.Errorf("List() = %d invoices, want 3", len(all))
	}
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.Create(ctx, models.Invoice{ID: "A1"})

	if err := s.UpdateStatus(ctx, "A1", models.StatusError, "Invalid ledger"); err != nil {
		t.Fatalf("UpdateStatus() error: %v", err)
	}
	all, _ := s.List(ctx)
	if all[0].Status != models.StatusError || all[0].Error != "Invalid ledger" {
		t.Errorf("invoice after update = %+v", all[0])
	}

	if err := s.UpdateStatus(ctx, "missing", models.StatusError, ""); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("UpdateStatus(missing) = %v, want ErrNotFound", err)
	}
}
