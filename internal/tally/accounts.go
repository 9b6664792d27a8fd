package tally

import "github.com/sidharth-timber/tally-connect/pkg/models"

// Direction-dependent Tally account naming. Both the provisioner and the
// voucher builder go through these helpers so a sale and a purchase can never
// drift onto different ledger names.

// VoucherType returns the voucher type name for a direction.
func VoucherType(d models.Direction) string {
	if d == models.Purchase {
		return "Purchase"
	}
	return "Sales"
}

// RevenueLedger returns the revenue/expense ledger a voucher posts against.
func RevenueLedger(d models.Direction) string {
	if d == models.Purchase {
		return "Purchase"
	}
	return "Sales Account"
}

// RevenueGroup returns the parent account group of the revenue ledger.
func RevenueGroup(d models.Direction) string {
	if d == models.Purchase {
		return "Purchase Accounts"
	}
	return "Sales Accounts"
}

// PartyGroup returns the parent account group of the counterparty ledger.
func PartyGroup(d models.Direction) string {
	if d == models.Purchase {
		return "Sundry Creditors"
	}
	return "Sundry Debtors"
}

// UnknownParty returns the placeholder counterparty name for invoices that
// carry no usable name field.
func UnknownParty(d models.Direction) string {
	if d == models.Purchase {
		return "Unknown Supplier"
	}
	return "Unknown Customer"
}

// PartyLedgerName resolves the counterparty ledger name for an invoice,
// falling back to the direction-specific placeholder.
func PartyLedgerName(inv *models.Invoice) string {
	if name := inv.CounterpartyName(); name != "" {
		return name
	}
	return UnknownParty(inv.Direction())
}
