// Package agent runs the synchronization loop: it polls the coordination
// server for pending invoices, drives master-data provisioning and voucher
// posting for each one, and reports per-invoice outcomes back.
package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sidharth-timber/tally-connect/internal/logger"
	"github.com/sidharth-timber/tally-connect/internal/masters"
	"github.com/sidharth-timber/tally-connect/internal/tally"
	"github.com/sidharth-timber/tally-connect/internal/voucher"
	"github.com/sidharth-timber/tally-connect/pkg/models"
)

// Config holds the orchestrator's tunables.
type Config struct {
	// Interval between poll cycles. Default: 60 seconds.
	Interval time.Duration

	// Duplicate dialect for classifying posting responses. Default:
	// tally.AlreadyExists.
	Duplicates tally.DuplicatePredicate
}

// Agent is the sync orchestrator. One cycle fetches the pending invoices and
// processes them strictly one at a time; the accounting backend is a single
// writer and tolerates no concurrent structural changes. A cycle that
// overruns the interval simply delays the next tick; cycles never overlap.
type Agent struct {
	coord       Coordinator
	poster      tally.Poster
	provisioner *masters.Provisioner
	interval    time.Duration
	dup         tally.DuplicatePredicate
	log         zerolog.Logger
}

// New creates an Agent from its collaborators.
func New(coord Coordinator, poster tally.Poster, provisioner *masters.Provisioner, cfg Config) *Agent {
	if cfg.Interval <= 0 {
		cfg.Interval = 60 * time.Second
	}
	if cfg.Duplicates == nil {
		cfg.Duplicates = tally.AlreadyExists
	}
	return &Agent{
		coord:       coord,
		poster:      poster,
		provisioner: provisioner,
		interval:    cfg.Interval,
		dup:         cfg.Duplicates,
		log:         logger.WithComponent("agent"),
	}
}

// Run executes one cycle immediately and then one per interval until the
// context is cancelled. The loop itself never terminates on a sync error;
// a failed cycle is simply retried on the next tick.
func (a *Agent) Run(ctx context.Context) error {
	a.log.Info().Dur("interval", a.interval).Msg("Agent starting")
	a.RunCycle(ctx)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.log.Info().Msg("Agent stopping")
			return ctx.Err()
		case <-ticker.C:
			a.RunCycle(ctx)
		}
	}
}

// RunCycle performs one full poll cycle. A failure to fetch the pending list
// abandons the whole cycle; no partial invoice list is acted on. Per-invoice
// failures are contained at the invoice boundary, so one bad invoice never
// blocks the rest of the batch.
func (a *Agent) RunCycle(ctx context.Context) {
	invoices, err := a.coord.FetchPending(ctx)
	if err != nil {
		a.log.Error().Err(err).Msg("Failed to fetch pending invoices, abandoning cycle")
		return
	}
	if len(invoices) == 0 {
		a.log.Debug().Msg("No pending invoices")
		return
	}

	a.log.Info().Int("count", len(invoices)).Msg("Processing pending invoices")
	for i := range invoices {
		inv := &invoices[i]
		status, errMsg := a.processInvoice(ctx, inv)

		log := logger.WithInvoice("agent", inv.ID)
		if status == models.StatusSuccess {
			log.Info().Msg("Invoice synced")
		} else {
			log.Warn().Str("error", errMsg).Msg("Invoice failed")
		}
		if err := a.coord.ReportStatus(ctx, inv.ID, status, errMsg); err != nil {
			log.Error().Err(err).Msg("Failed to report invoice status")
		}
	}
}

// processInvoice drives one invoice through provisioning, voucher building
// and posting. It always returns a terminal status; a panic anywhere in the
// pipeline is recovered and reported as that invoice's error rather than
// taking down the loop.
func (a *Agent) processInvoice(ctx context.Context, inv *models.Invoice) (status, errMsg string) {
	defer func() {
		if r := recover(); r != nil {
			status = models.StatusError
			errMsg = fmt.Sprintf("panic: %v", r)
		}
	}()

	if err := a.provisioner.Ensure(ctx, inv); err != nil {
		return models.StatusError, err.Error()
	}

	v, err := voucher.Build(inv)
	if err != nil {
		return models.StatusError, err.Error()
	}

	resp, err := a.poster.Post(ctx, v.XML())
	if err != nil {
		return models.StatusError, err.Error()
	}

	log := logger.WithInvoice("agent", inv.ID)
	switch resp.Classify(a.dup) {
	case tally.OutcomeFailed:
		return models.StatusError, resp.LineError
	case tally.OutcomeDuplicate:
		log.Debug().Msg("Voucher already imported")
	case tally.OutcomeSuccess:
		if resp.Exceptions > 0 {
			if resp.ExceptionText != "" {
				return models.StatusError,
					fmt.Sprintf("Voucher import had exceptions: %s", resp.ExceptionText)
			}
			// Accepted with exceptions but no identifiable error; note it and
			// treat the import as successful.
			log.Warn().
				Int("exceptions", resp.Exceptions).
				Msg("Voucher imported with exceptions")
		}
	}
	return models.StatusSuccess, ""
}
