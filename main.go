package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/sidharth-timber/tally-connect/cmd"
	"github.com/sidharth-timber/tally-connect/internal/config"
	"github.com/sidharth-timber/tally-connect/internal/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Warning: Could not load configuration: %v", err)
		// Use default logger config if main config fails
		if err := logger.Setup(logger.DefaultConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	} else {
		// Initialize logger with configuration
		if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	}

	// Log application startup
	appLog := logger.WithComponent("main")
	appLog.Info().Msg("Starting Tally Connect")

	// Execute CLI commands
	cmd.Execute()

	appLog.Info().Msg("Tally Connect shutdown")
	os.Exit(0)
}
