// Package voucher builds balanced accounting transaction documents from
// normalized invoices.
//
// A voucher carries one ledger entry for the counterparty, one for the
// matched revenue/expense ledger with the opposite sign, and one inventory
// entry per line item. The signed ledger amounts always sum to zero; Build is
// pure and performs no I/O.
package voucher

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sidharth-timber/tally-connect/internal/tally"
	"github.com/sidharth-timber/tally-connect/pkg/models"
)

// Build failure modes. The builder fails only on malformed input; everything
// else is resolvable through the invoice fallback chains.
var (
	ErrMissingDate = errors.New("invoice has no date")
	ErrInvalidDate = errors.New("invoice date is not parseable")
)

// unitLabel is the display label attached to rates and quantities, matching
// the base unit provisioned for every stock item.
const unitLabel = "PCS"

// LedgerEntry is one signed monetary posting. Amount follows the double-entry
// convention: positive debits the ledger, negative credits it.
type LedgerEntry struct {
	Ledger         string
	Amount         float64
	DeemedPositive bool
}

// InventoryEntry is one stock movement line. Amount is the negative of
// quantity x rate, so the inventory magnitudes sum to the ledger total.
type InventoryEntry struct {
	Item     string
	Rate     float64
	Amount   float64
	Quantity float64
}

// Voucher is the built transaction document. It is immutable once built; a
// new sync attempt builds a new voucher.
type Voucher struct {
	InvoiceID string
	Type      string
	Date      string // compact numeric form, e.g. 20250615
	Party     string
	Ledger    []LedgerEntry
	Inventory []InventoryEntry
}

// Build maps one invoice into a balanced voucher. The counterparty entry is
// positive for a sale and negative for a purchase; the revenue/expense entry
// carries the same magnitude with the opposite sign. The total falls back to
// the sum of quantity x rate when the invoice does not supply one.
func Build(inv *models.Invoice) (*Voucher, error) {
	date, err := normalizeDate(inv.IssueDate())
	if err != nil {
		return nil, err
	}

	direction := inv.Direction()
	total := inv.ResolveTotal()
	sign := 1.0
	if direction == models.Purchase {
		sign = -1.0
	}

	v := &Voucher{
		InvoiceID: inv.ID,
		Type:      tally.VoucherType(direction),
		Date:      date,
		Party:     tally.PartyLedgerName(inv),
		Ledger: []LedgerEntry{
			{Ledger: tally.PartyLedgerName(inv), Amount: sign * total, DeemedPositive: true},
			{Ledger: tally.RevenueLedger(direction), Amount: -sign * total},
		},
	}

	for i := range inv.Items {
		item := &inv.Items[i]
		v.Inventory = append(v.Inventory, InventoryEntry{
			Item:     item.DisplayName(),
			Rate:     item.ResolveRate(),
			Amount:   -item.ResolveAmount(),
			Quantity: item.Quantity,
		})
	}
	return v, nil
}

// LedgerBalance returns the sum of the signed ledger-entry amounts. It is
// zero for every voucher Build produces.
func (v *Voucher) LedgerBalance() float64 {
	var sum float64
	for _, e := range v.Ledger {
		sum += e.Amount
	}
	return sum
}

// XML renders the voucher as a Tally import document. Amounts are negated on
// the wire: Tally writes debits as negative values, the opposite of the
// double-entry convention the Voucher struct uses.
func (v *Voucher) XML() string {
	doc, msg := tally.Envelope(tally.ReportVouchers)
	msg.CreateAttr("xmlns:UDF", "TallyUDF")

	vch := msg.CreateElement("VOUCHER")
	vch.CreateAttr("REMOTEID", v.InvoiceID)
	vch.CreateAttr("VCHTYPE", v.Type)
	vch.CreateAttr("ACTION", "Create")
	vch.CreateAttr("OBJVIEW", "Invoice Voucher View")

	vch.CreateElement("DATE").SetText(v.Date)
	vch.CreateElement("GUID").SetText(v.InvoiceID)
	vch.CreateElement("NARRATION").SetText(v.Type + " Invoice")
	vch.CreateElement("VOUCHERTYPENAME").SetText(v.Type)
	vch.CreateElement("PARTYLEDGERNAME").SetText(v.Party)
	vch.CreateElement("PERSISTEDVIEW").SetText("Invoice Voucher View")
	vch.CreateElement("BASICBASEPARTYNAME").SetText(v.Party)
	vch.CreateElement("VCHENTRYMODE").SetText("Item Invoice")

	for _, e := range v.Ledger {
		entry := vch.CreateElement("ALLLEDGERENTRIES.LIST")
		entry.CreateElement("LEDGERNAME").SetText(e.Ledger)
		entry.CreateElement("ISDEEMEDPOSITIVE").SetText(yesNo(e.DeemedPositive))
		entry.CreateElement("AMOUNT").SetText(formatAmount(-e.Amount))
	}

	revenue := ""
	if len(v.Ledger) > 1 {
		revenue = v.Ledger[1].Ledger
	}
	for _, e := range v.Inventory {
		entry := vch.CreateElement("INVENTORYENTRIES.LIST")
		entry.CreateElement("STOCKITEMNAME").SetText(e.Item)
		entry.CreateElement("ISDEEMEDPOSITIVE").SetText("No")
		entry.CreateElement("RATE").SetText(formatAmount(e.Rate) + "/" + unitLabel)
		entry.CreateElement("AMOUNT").SetText(formatAmount(-e.Amount))
		entry.CreateElement("ACTUALQTY").SetText(formatQuantity(e.Quantity))
		entry.CreateElement("BILLEDQTY").SetText(formatQuantity(e.Quantity))
		entry.CreateElement("BATCHALLOCATIONS.LIST") // empty but required

		alloc := entry.CreateElement("ACCOUNTINGALLOCATIONS.LIST")
		alloc.CreateElement("LEDGERNAME").SetText(revenue)
		alloc.CreateElement("ISDEEMEDPOSITIVE").SetText("No")
		alloc.CreateElement("AMOUNT").SetText(formatAmount(-e.Amount))
	}

	xml, _ := doc.WriteToString()
	return xml
}

// dateLayouts are the formats upstream systems have been seen emitting.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
}

// normalizeDate reduces an ISO-ish date string to the compact numeric form
// Tally expects, with all separators stripped.
func normalizeDate(raw string) (string, error) {
	if raw == "" {
		return "", ErrMissingDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("20060102"), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDate, raw)
}

func formatAmount(f float64) string {
	if f == 0 {
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatQuantity(q float64) string {
	return formatAmount(q) + " " + unitLabel
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
