package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/walletkeeper/internal/buildinfo"
	"github.com/dmitrijs2005/walletkeeper/internal/client/cli"
	"github.com/dmitrijs2005/walletkeeper/internal/config"
	"github.com/dmitrijs2005/walletkeeper/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stderr)

	ctx := context.Background()
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, cleanup, err := cli.Setup(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer cleanup()

	app.Run(ctx)

}
