package masters

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sidharth-timber/tally-connect/internal/tally"
	"github.com/sidharth-timber/tally-connect/pkg/models"
)

// Definition describes one fixed master record (the unit, the stock group,
// the revenue and expense ledgers). Whether a hard failure on the record
// aborts the invoice is part of the definition, not of call order.
type Definition struct {
	Tag    string        `yaml:"tag"`
	Name   string        `yaml:"name"`
	Fields []tally.Field `yaml:"fields"`
	Fatal  bool          `yaml:"fatal"`
}

// PartyDefinition describes the counterparty ledger, whose name comes from
// the invoice at runtime. Only the parent group differs by direction.
type PartyDefinition struct {
	SalesParent    string        `yaml:"sales_parent"`
	PurchaseParent string        `yaml:"purchase_parent"`
	Fields         []tally.Field `yaml:"fields"`
	Fatal          bool          `yaml:"fatal"`
}

// ItemDefinition describes stock-item records, named per line item.
type ItemDefinition struct {
	Parent   string `yaml:"parent"`
	BaseUnit string `yaml:"base_unit"`
	Fatal    bool   `yaml:"fatal"`
}

// Schema is the full declarative description of the master records an
// invoice depends on. DefaultSchema matches a stock Tally company; a YAML
// file can override names, parent groups, extra fields and the fatality of
// individual steps for differently-configured installations.
type Schema struct {
	Unit           Definition      `yaml:"unit"`
	StockGroup     Definition      `yaml:"stock_group"`
	SalesLedger    Definition      `yaml:"sales_ledger"`
	PurchaseLedger Definition      `yaml:"purchase_ledger"`
	Party          PartyDefinition `yaml:"party"`
	Item           ItemDefinition  `yaml:"item"`
}

// DefaultSchema returns the stock schema: unit and counterparty failures are
// fatal (a voucher cannot post, or cannot balance, without them), stock-group
// and revenue-ledger failures are logged and tolerated, and any item failure
// is fatal so an invoice is never posted partially provisioned.
func DefaultSchema() Schema {
	return Schema{
		Unit: Definition{
			Tag:  "UNIT",
			Name: "PIECES",
			Fields: []tally.Field{
				{Key: "ISSIMPLEUNIT", Value: "Yes"},
				{Key: "DECIMALPLACES", Value: "0"},
			},
			Fatal: true,
		},
		StockGroup: Definition{
			Tag:   "STOCKGROUP",
			Name:  "Primary",
			Fatal: false,
		},
		SalesLedger: Definition{
			Tag:  "LEDGER",
			Name: tally.RevenueLedger(models.Sales),
			Fields: []tally.Field{
				{Key: "PARENT", Value: tally.RevenueGroup(models.Sales)},
				{Key: "ISCOSTCENTREON", Value: "No"},
			},
			Fatal: false,
		},
		PurchaseLedger: Definition{
			Tag:  "LEDGER",
			Name: tally.RevenueLedger(models.Purchase),
			Fields: []tally.Field{
				{Key: "PARENT", Value: tally.RevenueGroup(models.Purchase)},
				{Key: "ISDEEMEDPOSITIVE", Value: "Yes"},
				{Key: "ISBILLWISEON", Value: "No"},
				{Key: "ISREVENUE", Value: "No"},
			},
			Fatal: false,
		},
		Party: PartyDefinition{
			SalesParent:    tally.PartyGroup(models.Sales),
			PurchaseParent: tally.PartyGroup(models.Purchase),
			Fields: []tally.Field{
				{Key: "ISBILLWISEON", Value: "Yes"},
			},
			Fatal: true,
		},
		Item: ItemDefinition{
			Parent:   "Primary",
			BaseUnit: "PIECES",
			Fatal:    true,
		},
	}
}

// RevenueLedger returns the revenue/expense ledger definition for a
// direction.
func (s Schema) RevenueLedger(d models.Direction) Definition {
	if d == models.Purchase {
		return s.PurchaseLedger
	}
	return s.SalesLedger
}

// PartyParent returns the counterparty ledger's parent group for a
// direction.
func (s Schema) PartyParent(d models.Direction) string {
	if d == models.Purchase {
		return s.Party.PurchaseParent
	}
	return s.Party.SalesParent
}

// LoadSchema reads a YAML override file on top of the default schema. Fields
// not present in the file keep their defaults.
func LoadSchema(path string) (Schema, error) {
	schema := DefaultSchema()
	data, err := os.ReadFile(path)
	if err != nil {
		return schema, fmt.Errorf("read master schema: %w", err)
	}
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return schema, fmt.Errorf("parse master schema: %w", err)
	}
	return schema, nil
}
