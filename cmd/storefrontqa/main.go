package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	internalcli "github.com/themizzi/storefrontqa/internal/cli"
	"github.com/themizzi/storefrontqa/internal/config"
	"github.com/themizzi/storefrontqa/internal/observability"
)

var version = "0.1.0"

func main() {
	// Load environment variables from .env file
	envErr := godotenv.Load()

	logCfg, err := config.LoadLoggerConfig(os.Getenv)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	logger, err := observability.Initialize(logCfg)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	defer logger.Sync()

	if envErr != nil {
		logger.Warn(".env file not found, using environment variables")
	}

	app := internalcli.NewApp(internalcli.DefaultEnv(logger), version)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logger.Error("Command failed.", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}
