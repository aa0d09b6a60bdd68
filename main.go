package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"scripture/cmd"
	"scripture/internal/config"
	"scripture/internal/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Load configuration. Flags are applied later, per command.
	cfg, err := config.Load(cmd.Settings())
	if err != nil {
		log.Printf("Warning: Could not load configuration: %v", err)
		if err := logger.Setup(logger.DefaultConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	} else {
		if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	}

	log := logger.WithComponent("main")
	log.Debug().Msg("Starting scripture CLI")

	cmd.Execute()

	log.Debug().Msg("scripture CLI shutdown")
	os.Exit(0)
}
