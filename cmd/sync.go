package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sidharth-timber/tally-connect/internal/config"
	"github.com/sidharth-timber/tally-connect/internal/logger"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run a single synchronization cycle and exit",
	Long: `Fetch the pending invoices once, push each to Tally, report the
outcomes and exit. Useful for cron-driven setups and for verifying the
configuration before leaving the agent unattended.`,
	Example: `  # One cycle with the configured server and Tally endpoint
  tally-connect sync

  # Abort the cycle if it takes longer than two minutes
  tally-connect sync --timeout 2m`,
	RunE: runSync,
}

var syncTimeout time.Duration

func runSync(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("sync-cmd")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if err := cfg.ValidateAgent(); err != nil {
		return err
	}

	a, err := buildAgent(cfg, cfg.SyncInterval)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
	defer cancel()

	log.Info().
		Str("server_url", cfg.ServerURL).
		Str("tally_url", cfg.TallyURL).
		Msg("Running single sync cycle")

	a.RunCycle(ctx)

	log.Info().Msg("Sync cycle finished")
	return nil
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().DurationVar(&syncTimeout, "timeout", 5*time.Minute,
		"Maximum duration for the cycle")
}
