package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/walletkeeper/internal/buildinfo"
	"github.com/dmitrijs2005/walletkeeper/internal/config"
	"github.com/dmitrijs2005/walletkeeper/internal/logging"
	"github.com/dmitrijs2005/walletkeeper/internal/server"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
