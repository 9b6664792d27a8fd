// Package postgres persists invoices in PostgreSQL via GORM. The raw
// invoice document is kept as a JSON payload column so the coordination
// server never loses fields it does not model itself.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"

	"github.com/sidharth-timber/tally-connect/internal/store"
	"github.com/sidharth-timber/tally-connect/pkg/models"
)

type invoiceRecord struct {
	ID        string `gorm:"primaryKey"`
	Status    string `gorm:"index"`
	Error     string
	Payload   []byte `gorm:"type:jsonb"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (invoiceRecord) TableName() string { return "invoices" }

// Store implements store.Repository on a PostgreSQL database.
type Store struct {
	db *gorm.DB
}

var _ store.Repository = (*Store)(nil)

// Open connects to the database at dsn and migrates the invoices table.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: glogger.Default.LogMode(glogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := db.AutoMigrate(&invoiceRecord{}); err != nil {
		return nil, fmt.Errorf("migrating invoices table: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Create(ctx context.Context, inv models.Invoice) (*models.Invoice, error) {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	inv.Status = models.StatusPending
	inv.Error = ""

	payload, err := json.Marshal(inv)
	if err != nil {
		return nil, fmt.Errorf("encoding invoice %s: %w", inv.ID, err)
	}
	rec := invoiceRecord{
		ID:      inv.ID,
		Status:  inv.Status,
		Payload: payload,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return nil, fmt.Errorf("inserting invoice %s: %w", inv.ID, err)
	}
	return &inv, nil
}

func (s *Store) List(ctx context.Context) ([]models.Invoice, error) {
	var recs []invoiceRecord
	if err := s.db.WithContext(ctx).Order("created_at").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	return decodeRecords(recs)
}

func (s *Store) ListPending(ctx context.Context) ([]models.Invoice, error) {
	var recs []invoiceRecord
	err := s.db.WithContext(ctx).
		Where("status = ?", models.StatusPending).
		Order("created_at").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("listing pending invoices: %w", err)
	}
	return decodeRecords(recs)
}

func (s *Store) UpdateStatus(ctx context.Context, id, status, errMsg string) error {
	res := s.db.WithContext(ctx).
		Model(&invoiceRecord{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "error": errMsg})
	if res.Error != nil {
		return fmt.Errorf("updating invoice %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func decodeRecords(recs []invoiceRecord) ([]models.Invoice, error) {
	invoices := make([]models.Invoice, 0, len(recs))
	for _, rec := range recs {
		var inv models.Invoice
		if err := json.Unmarshal(rec.Payload, &inv); err != nil {
			return nil, fmt.Errorf("decoding invoice %s: %w", rec.ID, err)
		}
		inv.ID = rec.ID
		inv.Status = rec.Status
		inv.Error = rec.Error
		invoices = append(invoices, inv)
	}
	return invoices, nil
}
