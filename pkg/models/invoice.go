package models

import "strings"

// Sync statuses an invoice moves through on the coordination server.
const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusError   = "error"
)

// Direction is the transaction direction of an invoice: an outbound sale to a
// customer or an inbound purchase from a supplier. The direction decides which
// revenue/expense ledger a voucher posts against, which account group the
// counterparty ledger belongs to, and the sign of the counterparty amount.
type Direction string

const (
	Sales    Direction = "sales"
	Purchase Direction = "purchase"
)

// Party is a counterparty record attached to an invoice. For a sale it is the
// customer; for a purchase it is the supplier.
type Party struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	TaxID string `json:"taxId,omitempty"`
}

// LineItem is one invoice line. Upstream systems are inconsistent about which
// fields they fill in, so every lookup goes through a resolution method
// instead of reading fields directly.
type LineItem struct {
	Title string `json:"title,omitempty"`
	Name  string `json:"name,omitempty"`

	Quantity float64 `json:"quantity"`

	// Rate candidates, in resolution order.
	UnitPrice float64 `json:"unit_price,omitempty"`
	Price     float64 `json:"price,omitempty"`
	Rate      float64 `json:"rate,omitempty"`

	// Amount candidates; when both are zero the amount is quantity x rate.
	Amount float64 `json:"amount,omitempty"`
	Total  float64 `json:"total,omitempty"`
}

// DisplayName resolves the stock-item name: title, then name, then a
// placeholder.
func (li *LineItem) DisplayName() string {
	if li.Title != "" {
		return li.Title
	}
	if li.Name != "" {
		return li.Name
	}
	return "Unknown Item"
}

// ResolveRate resolves the unit rate: unit_price, then price, then rate,
// then zero.
func (li *LineItem) ResolveRate() float64 {
	switch {
	case li.UnitPrice != 0:
		return li.UnitPrice
	case li.Price != 0:
		return li.Price
	default:
		return li.Rate
	}
}

// ResolveAmount resolves the line amount: amount, then total, then
// quantity x resolved rate.
func (li *LineItem) ResolveAmount() float64 {
	if li.Amount != 0 {
		return li.Amount
	}
	if li.Total != 0 {
		return li.Total
	}
	return li.Quantity * li.ResolveRate()
}

// Invoice is one transaction pending synchronization. It is owned by the
// coordination server; the agent holds a transient copy for the duration of a
// poll cycle and reports the terminal status back.
//
// The struct mirrors the loose wire shape produced by the order-management
// side: several alternate spellings exist for the counterparty, the date and
// the total. Callers must use the Resolve/Counterparty helpers, which encode
// the fallback order once.
type Invoice struct {
	ID string `json:"_id"`

	// Type marks the transaction direction ("sales" or "purchase").
	// Empty means sales.
	Type string `json:"type,omitempty"`

	// Counterparty candidates, in resolution order.
	Customer  *Party `json:"customer,omitempty"`
	Vendor    *Party `json:"vendor,omitempty"`
	PartyName string `json:"partyName,omitempty"`
	Party     string `json:"party,omitempty"`

	// Date candidates (ISO 8601 strings).
	InvoiceDate string `json:"invoice_date,omitempty"`
	Date        string `json:"date,omitempty"`

	// Total candidates, in resolution order.
	Total       float64 `json:"total,omitempty"`
	TotalAmount float64 `json:"totalAmount,omitempty"`
	Amount      float64 `json:"amount,omitempty"`
	GrandTotal  float64 `json:"grandTotal,omitempty"`
	FinalAmount float64 `json:"finalAmount,omitempty"`

	Items []LineItem `json:"items"`

	Status string `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Direction reports the transaction direction. Anything that reads as a
// purchase ("purchase", "payable") is a purchase; everything else, including
// an absent type, is a sale.
func (inv *Invoice) Direction() Direction {
	t := strings.ToLower(inv.Type)
	if strings.Contains(t, "purchase") || strings.Contains(t, "payable") {
		return Purchase
	}
	return Sales
}

// CounterpartyName resolves the counterparty name: customer name, vendor
// name, then the flat partyName/party fields. Returns "" when every
// candidate is absent; the caller supplies the direction-specific
// placeholder.
func (inv *Invoice) CounterpartyName() string {
	if inv.Customer != nil && inv.Customer.Name != "" {
		return inv.Customer.Name
	}
	if inv.Vendor != nil && inv.Vendor.Name != "" {
		return inv.Vendor.Name
	}
	if inv.PartyName != "" {
		return inv.PartyName
	}
	return inv.Party
}

// IssueDate resolves the invoice date string: invoice_date, then date.
func (inv *Invoice) IssueDate() string {
	if inv.InvoiceDate != "" {
		return inv.InvoiceDate
	}
	return inv.Date
}

// ResolveTotal resolves the monetary total. When no total field is supplied
// it is computed as the sum of quantity x resolved rate over the line items.
func (inv *Invoice) ResolveTotal() float64 {
	for _, candidate := range []float64{
		inv.Total, inv.TotalAmount, inv.Amount, inv.GrandTotal, inv.FinalAmount,
	} {
		if candidate != 0 {
			return candidate
		}
	}
	var sum float64
	for i := range inv.Items {
		sum += inv.Items[i].Quantity * inv.Items[i].ResolveRate()
	}
	return sum
}
