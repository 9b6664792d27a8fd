package masters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sidharth-timber/tally-connect/pkg/models"
)

func TestDefaultSchemaFatality(t *testing.T) {
	s := DefaultSchema()
	if !s.Unit.Fatal {
		t.Error("unit step must default to fatal")
	}
	if s.StockGroup.Fatal {
		t.Error("stock-group step must default to non-fatal")
	}
	if s.SalesLedger.Fatal || s.PurchaseLedger.Fatal {
		t.Error("revenue ledger steps must default to non-fatal")
	}
	if !s.Party.Fatal {
		t.Error("counterparty step must default to fatal")
	}
	if !s.Item.Fatal {
		t.Error("item steps must default to fatal")
	}
}

func TestLoadSchemaOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "masters.yaml")
	override := `
unit:
  tag: UNIT
  name: NOS
  fatal: true
stock_group:
  tag: STOCKGROUP
  name: Imported
  fatal: true
item:
  parent: Imported
  base_unit: NOS
  fatal: true
`
	if err := os.WriteFile(path, []byte(override), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSchema(path)
	if err != nil {
		t.Fatalf("LoadSchema() error: %v", err)
	}
	if s.Unit.Name != "NOS" {
		t.Errorf("Unit.Name = %q, want NOS", s.Unit.Name)
	}
	if !s.StockGroup.Fatal {
		t.Error("override should make the stock-group step fatal")
	}
	if s.Item.BaseUnit != "NOS" {
		t.Errorf("Item.BaseUnit = %q, want NOS", s.Item.BaseUnit)
	}
	// Untouched sections keep their defaults.
	if s.Party.SalesParent != "Sundry Debtors" {
		t.Errorf("Party.SalesParent = %q, want default", s.Party.SalesParent)
	}
	if got := s.RevenueLedger(models.Sales).Name; got != "Sales Account" {
		t.Errorf("sales revenue ledger = %q, want default", got)
	}
}

func TestLoadSchemaMissingFile(t *testing.T) {
	if _, err := LoadSchema("/nonexistent/masters.yaml"); err == nil {
		t.Error("LoadSchema() should fail for a missing file")
	}
}
