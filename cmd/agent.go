package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sidharth-timber/tally-connect/internal/agent"
	"github.com/sidharth-timber/tally-connect/internal/config"
	"github.com/sidharth-timber/tally-connect/internal/logger"
	"github.com/sidharth-timber/tally-connect/internal/masters"
	"github.com/sidharth-timber/tally-connect/internal/tally"
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Run the unattended invoice synchronization agent",
	Long: `Start the polling agent. Every cycle it asks the coordination server
for pending invoices, provisions the master records each invoice needs
in Tally, posts the voucher, and reports success or failure back.

The agent runs until interrupted. A failing invoice never stops the
cycle; its error is reported and the next invoice is processed.

Required environment variables:
  SERVER_URL - Base URL of the coordination server
  API_KEY    - Shared key for the webhook protocol

Optional environment variables:
  TALLY_URL             - Tally XML endpoint (default http://localhost:9000)
  SYNC_INTERVAL_SECONDS - Seconds between polling cycles (default 60)
  MASTER_SCHEMA_FILE    - YAML file overriding the master record schema`,
	Example: `  # Poll with defaults (Tally on localhost:9000, every 60 seconds)
  tally-connect agent

  # Poll a staging server every 10 seconds
  SERVER_URL=https://staging.example.com SYNC_INTERVAL_SECONDS=10 tally-connect agent

  # Override the polling interval from the command line
  tally-connect agent --interval 30s`,
	RunE: runAgent,
}

var agentInterval time.Duration

func runAgent(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("agent-cmd")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if err := cfg.ValidateAgent(); err != nil {
		return err
	}

	interval := cfg.SyncInterval
	if cmd.Flags().Changed("interval") {
		interval = agentInterval
	}

	a, err := buildAgent(cfg, interval)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("server_url", cfg.ServerURL).
		Str("tally_url", cfg.TallyURL).
		Dur("interval", interval).
		Msg("Agent starting")

	if err := a.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	log.Info().Msg("Agent stopped")
	return nil
}

// buildAgent wires the coordination client, Tally client and provisioner
// from configuration. Shared by the agent and sync commands.
func buildAgent(cfg *config.Config, interval time.Duration) (*agent.Agent, error) {
	coord := agent.NewCoordinationClient(cfg.ServerURL, cfg.APIKey)

	tallyCfg := tally.DefaultClientConfig()
	tallyCfg.URL = cfg.TallyURL
	poster := tally.NewClient(tallyCfg)

	opts := []masters.Option{}
	if cfg.MasterSchemaFile != "" {
		schema, err := masters.LoadSchema(cfg.MasterSchemaFile)
		if err != nil {
			return nil, fmt.Errorf("loading master schema: %w", err)
		}
		opts = append(opts, masters.WithSchema(schema))
	}
	provisioner := masters.NewProvisioner(poster, opts...)

	return agent.New(coord, poster, provisioner, agent.Config{Interval: interval}), nil
}

func init() {
	rootCmd.AddCommand(agentCmd)
	agentCmd.Flags().DurationVar(&agentInterval, "interval", config.DefaultSyncInterval,
		"Polling interval (overrides SYNC_INTERVAL_SECONDS)")
}
