package masters

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sidharth-timber/tally-connect/internal/logger"
	"github.com/sidharth-timber/tally-connect/internal/tally"
	"github.com/sidharth-timber/tally-connect/pkg/models"
)

// ProvisioningError is returned when a required master-data step hard-fails.
// Its message is what the coordination server records against the invoice.
type ProvisioningError struct {
	// Step is the human-readable step label (e.g., "Customer ledger").
	Step string

	// Message is the backend's error text, when the step was rejected.
	Message string

	// Err is the underlying error for transport-level failures.
	Err error
}

func (e *ProvisioningError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s creation failed: %s", e.Step, e.Message)
	}
	return fmt.Sprintf("%s creation failed: %v", e.Step, e.Err)
}

func (e *ProvisioningError) Unwrap() error {
	return e.Err
}

// step is one resolved upsert in the fixed provisioning sequence.
type step struct {
	label string
	doc   string
	fatal bool
}

// Provisioner idempotently ensures the master records an invoice depends on
// exist in the accounting system, in dependency order, before a voucher
// referencing them is posted.
type Provisioner struct {
	poster tally.Poster
	schema Schema
	dup    tally.DuplicatePredicate
	log    zerolog.Logger
}

// Option configures a Provisioner.
type Option func(*Provisioner)

// WithSchema replaces the default master-record schema.
func WithSchema(schema Schema) Option {
	return func(p *Provisioner) { p.schema = schema }
}

// WithDuplicatePredicate replaces the stock "already exists" dialect.
func WithDuplicatePredicate(dup tally.DuplicatePredicate) Option {
	return func(p *Provisioner) { p.dup = dup }
}

// NewProvisioner creates a Provisioner posting through the given transport.
func NewProvisioner(poster tally.Poster, opts ...Option) *Provisioner {
	p := &Provisioner{
		poster: poster,
		schema: DefaultSchema(),
		dup:    tally.AlreadyExists,
		log:    logger.WithComponent("provisioner"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Ensure runs the provisioning sequence for one invoice:
// unit, stock group, revenue/expense ledger, counterparty ledger, then one
// stock item per line. Steps run strictly in order because later records
// reference names created by earlier ones, and the accounting backend is a
// single writer. Each step is idempotent: a "record already exists" rejection
// classifies as benign, so re-running the sequence never fails merely because
// a prior cycle already created the target.
//
// A hard failure on a step marked fatal aborts the invoice with a
// *ProvisioningError; hard failures on optional steps are logged and the
// sequence continues.
func (p *Provisioner) Ensure(ctx context.Context, inv *models.Invoice) error {
	for _, s := range p.steps(inv) {
		if err := p.ensure(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (p *Provisioner) ensure(ctx context.Context, s step) error {
	resp, err := p.poster.Post(ctx, s.doc)
	if err != nil {
		if s.fatal {
			return &ProvisioningError{Step: s.label, Err: err}
		}
		p.log.Warn().Err(err).Str("step", s.label).Msg("Optional master step unreachable, continuing")
		return nil
	}

	switch resp.Classify(p.dup) {
	case tally.OutcomeSuccess:
		p.log.Debug().Str("step", s.label).Msg("Master record created")
	case tally.OutcomeDuplicate:
		p.log.Debug().Str("step", s.label).Msg("Master record already present")
	case tally.OutcomeFailed:
		if s.fatal {
			return &ProvisioningError{Step: s.label, Message: resp.LineError}
		}
		p.log.Warn().
			Str("step", s.label).
			Str("line_error", resp.LineError).
			Msg("Optional master step rejected, continuing")
	}
	return nil
}

// steps resolves the ordered upsert sequence for an invoice.
func (p *Provisioner) steps(inv *models.Invoice) []step {
	direction := inv.Direction()
	revenue := p.schema.RevenueLedger(direction)

	partyLabel := "Customer ledger"
	if direction == models.Purchase {
		partyLabel = "Supplier ledger"
	}
	partyName := tally.PartyLedgerName(inv)
	partyFields := append(
		[]tally.Field{{Key: "PARENT", Value: p.schema.PartyParent(direction)}},
		p.schema.Party.Fields...,
	)

	steps := []step{
		{
			label: fmt.Sprintf("Unit %s", p.schema.Unit.Name),
			doc:   tally.MasterEnvelope(p.schema.Unit.Tag, p.schema.Unit.Name, p.schema.Unit.Fields),
			fatal: p.schema.Unit.Fatal,
		},
		{
			label: fmt.Sprintf("Stock group %s", p.schema.StockGroup.Name),
			doc:   tally.MasterEnvelope(p.schema.StockGroup.Tag, p.schema.StockGroup.Name, p.schema.StockGroup.Fields),
			fatal: p.schema.StockGroup.Fatal,
		},
		{
			label: fmt.Sprintf("%s ledger", tally.VoucherType(direction)),
			doc:   tally.MasterEnvelope(revenue.Tag, revenue.Name, revenue.Fields),
			fatal: revenue.Fatal,
		},
		{
			label: partyLabel,
			doc:   tally.MasterEnvelope("LEDGER", partyName, partyFields),
			fatal: p.schema.Party.Fatal,
		},
	}

	for i := range inv.Items {
		name := inv.Items[i].DisplayName()
		steps = append(steps, step{
			label: fmt.Sprintf("Item %q", name),
			doc: tally.MasterEnvelope("STOCKITEM", name, []tally.Field{
				{Key: "PARENT", Value: p.schema.Item.Parent},
				{Key: "BASEUNITS", Value: p.schema.Item.BaseUnit},
			}),
			fatal: p.schema.Item.Fatal,
		})
	}
	return steps
}
