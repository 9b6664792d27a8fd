package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sidharth-timber/tally-connect/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "tally-connect",
	Short: "Tally Connect - invoice synchronization agent for Tally ERP",
	Long: `Tally Connect keeps a remote order-management server and a local
Tally ERP instance in sync. It polls the server for pending invoices,
provisions the master records each invoice needs, posts the matching
voucher to Tally over its XML interface, and reports the outcome back.

Run "tally-connect agent" on the machine where Tally is listening, or
"tally-connect serve" to host the coordination server.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Info().
			Str("version", version).
			Msg("Tally Connect executed")

		fmt.Println("Welcome to Tally Connect!")
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
