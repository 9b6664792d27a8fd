package voucher

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/beevik/etree"

	"github.com/sidharth-timber/tally-connect/pkg/models"
)

func TestBuildSalesScenario(t *testing.T) {
	inv := &models.Invoice{
		ID:          "A1",
		Customer:    &models.Party{Name: "Acme"},
		InvoiceDate: "2025-06-15",
		Total:       300,
		Items:       []models.LineItem{{Title: "Widget", Quantity: 2, Rate: 150}},
	}

	v, err := Build(inv)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	if v.Type != "Sales" {
		t.Errorf("Type = %q, want Sales", v.Type)
	}
	if v.Date != "20250615" {
		t.Errorf("Date = %q, want separators stripped", v.Date)
	}
	if len(v.Ledger) != 2 {
		t.Fatalf("ledger entries = %d, want 2", len(v.Ledger))
	}
	if v.Ledger[0].Ledger != "Acme" || v.Ledger[0].Amount != 300 {
		t.Errorf("counterparty entry = %+v, want Acme +300", v.Ledger[0])
	}
	if v.Ledger[1].Ledger != "Sales Account" || v.Ledger[1].Amount != -300 {
		t.Errorf("revenue entry = %+v, want Sales Account -300", v.Ledger[1])
	}
	if len(v.Inventory) != 1 {
		t.Fatalf("inventory entries = %d, want 1", len(v.Inventory))
	}
	item := v.Inventory[0]
	if item.Item != "Widget" || item.Rate != 150 || item.Amount != -300 || item.Quantity != 2 {
		t.Errorf("inventory entry = %+v, want Widget rate 150 amount -300 qty 2", item)
	}
}

func TestBuildPurchaseSigns(t *testing.T) {
	inv := &models.Invoice{
		ID:          "P7",
		Type:        "purchase",
		Vendor:      &models.Party{Name: "Globex"},
		InvoiceDate: "2025-02-01",
		Total:       120,
	}

	v, err := Build(inv)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if v.Type != "Purchase" {
		t.Errorf("Type = %q, want Purchase", v.Type)
	}
	if v.Ledger[0].Ledger != "Globex" || v.Ledger[0].Amount != -120 {
		t.Errorf("counterparty entry = %+v, want Globex -120", v.Ledger[0])
	}
	if v.Ledger[1].Ledger != "Purchase" || v.Ledger[1].Amount != 120 {
		t.Errorf("expense entry = %+v, want Purchase +120", v.Ledger[1])
	}
}

func TestBuildBalanceInvariant(t *testing.T) {
	invoices := []*models.Invoice{
		{ID: "1", InvoiceDate: "2025-01-01", Total: 300,
			Items: []models.LineItem{{Title: "W", Quantity: 2, Rate: 150}}},
		{ID: "2", Type: "purchase", InvoiceDate: "2025-01-02", GrandTotal: 999.99,
			Items: []models.LineItem{{Name: "A", Quantity: 3, Price: 333.33}}},
		{ID: "3", InvoiceDate: "2025-01-03"}, // zero items, zero total
		{ID: "4", InvoiceDate: "2025-01-04",
			Items: []models.LineItem{
				{Title: "X", Quantity: 1, UnitPrice: 10.5},
				{Title: "Y", Quantity: 4, Rate: 2.25},
			}}, // total computed from items
	}
	for _, inv := range invoices {
		v, err := Build(inv)
		if err != nil {
			t.Fatalf("Build(%s) error: %v", inv.ID, err)
		}
		if balance := v.LedgerBalance(); math.Abs(balance) > 1e-9 {
			t.Errorf("invoice %s: ledger balance = %v, want 0", inv.ID, balance)
		}
	}
}

func TestBuildComputedTotal(t *testing.T) {
	inv := &models.Invoice{
		ID:          "C1",
		InvoiceDate: "2025-05-05",
		Items: []models.LineItem{
			{Title: "X", Quantity: 2, Rate: 10},
			{Title: "Y", Quantity: 1, UnitPrice: 5},
		},
	}
	v, err := Build(inv)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if v.Ledger[0].Amount != 25 {
		t.Errorf("counterparty amount = %v, want computed total 25", v.Ledger[0].Amount)
	}
}

func TestBuildDateHandling(t *testing.T) {
	base := func() *models.Invoice {
		return &models.Invoice{ID: "D1", Total: 10}
	}

	inv := base()
	if _, err := Build(inv); !errors.Is(err, ErrMissingDate) {
		t.Errorf("Build() without date = %v, want ErrMissingDate", err)
	}

	inv = base()
	inv.InvoiceDate = "not-a-date"
	if _, err := Build(inv); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("Build() with junk date = %v, want ErrInvalidDate", err)
	}

	inv = base()
	inv.InvoiceDate = "2025-06-15T10:30:00Z"
	v, err := Build(inv)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if v.Date != "20250615" {
		t.Errorf("Date = %q, want 20250615", v.Date)
	}

	inv = base()
	inv.Date = "2025-06-16" // alternate field
	if v, err = Build(inv); err != nil || v.Date != "20250616" {
		t.Errorf("Build() with alternate date field = %q, %v", v.Date, err)
	}
}

func TestVoucherXML(t *testing.T) {
	inv := &models.Invoice{
		ID:          "A1",
		Customer:    &models.Party{Name: "Acme"},
		InvoiceDate: "2025-06-15",
		Total:       300,
		Items:       []models.LineItem{{Title: "Widget", Quantity: 2, Rate: 150}},
	}
	v, err := Build(inv)
	if err != nil {
		t.Fatal(err)
	}
	xml := v.XML()

	doc := etree.NewDocument()
	if err := doc.ReadFromString(xml); err != nil {
		t.Fatalf("voucher XML not well-formed: %v", err)
	}

	vch := doc.FindElement("//VOUCHER")
	if vch == nil {
		t.Fatal("missing VOUCHER element")
	}
	if got := vch.SelectAttrValue("VCHTYPE", ""); got != "Sales" {
		t.Errorf("VCHTYPE = %q", got)
	}
	if got := vch.SelectAttrValue("REMOTEID", ""); got != "A1" {
		t.Errorf("REMOTEID = %q", got)
	}
	if el := doc.FindElement("//REQUESTDESC/REPORTNAME"); el == nil || el.Text() != "Vouchers" {
		t.Error("voucher must target the Vouchers report")
	}
	if el := vch.FindElement("DATE"); el == nil || el.Text() != "20250615" {
		t.Error("missing compact DATE")
	}
	if el := vch.FindElement("PARTYLEDGERNAME"); el == nil || el.Text() != "Acme" {
		t.Error("missing party ledger name")
	}

	// Tally wire signs: debits negative. The customer entry (+300 in
	// double-entry terms) goes out as -300.
	entries := vch.SelectElements("ALLLEDGERENTRIES.LIST")
	if len(entries) != 2 {
		t.Fatalf("ledger entries in XML = %d, want 2", len(entries))
	}
	if got := entries[0].SelectElement("AMOUNT").Text(); got != "-300" {
		t.Errorf("party wire amount = %q, want -300", got)
	}
	if got := entries[1].SelectElement("AMOUNT").Text(); got != "300" {
		t.Errorf("revenue wire amount = %q, want 300", got)
	}

	invEntries := vch.SelectElements("INVENTORYENTRIES.LIST")
	if len(invEntries) != 1 {
		t.Fatalf("inventory entries in XML = %d, want 1", len(invEntries))
	}
	ie := invEntries[0]
	if got := ie.SelectElement("RATE").Text(); got != "150/PCS" {
		t.Errorf("RATE = %q, want 150/PCS", got)
	}
	if got := ie.SelectElement("ACTUALQTY").Text(); got != "2 PCS" {
		t.Errorf("ACTUALQTY = %q, want 2 PCS", got)
	}
	if got := ie.SelectElement("AMOUNT").Text(); got != "300" {
		t.Errorf("inventory wire amount = %q, want 300", got)
	}
	if ie.SelectElement("BATCHALLOCATIONS.LIST") == nil {
		t.Error("missing empty BATCHALLOCATIONS.LIST")
	}
	alloc := ie.SelectElement("ACCOUNTINGALLOCATIONS.LIST")
	if alloc == nil || alloc.SelectElement("LEDGERNAME").Text() != "Sales Account" {
		t.Error("inventory line must allocate to the revenue ledger")
	}

	if !strings.Contains(xml, `xmlns:UDF="TallyUDF"`) {
		t.Error("missing TallyUDF namespace attribute")
	}
}
