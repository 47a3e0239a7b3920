package main

import (
	"log"
	"os"

	"fic-expenses/cmd"
	"fic-expenses/internal/config"
	"fic-expenses/internal/logger"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables; a missing .env is normal
	envErr := godotenv.Load(config.EnvFile)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Warning: Could not load configuration: %v", err)
		// Use default logger config if main config fails
		if err := logger.Setup(logger.DefaultConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	} else {
		if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	}

	log := logger.WithComponent("main")
	if envErr != nil {
		log.Debug().Err(envErr).Msg("No .env file loaded")
	}
	log.Debug().Msg("Starting fic-expenses")

	cmd.Execute()

	log.Debug().Msg("fic-expenses finished")
	os.Exit(0)
}
