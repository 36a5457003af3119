package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/vbonduro/equipinv/internal/cli"
	"github.com/vbonduro/equipinv/internal/config"
	"github.com/vbonduro/equipinv/internal/db"
	"github.com/vbonduro/equipinv/internal/logging"
	"github.com/vbonduro/equipinv/internal/service"
	"github.com/vbonduro/equipinv/internal/store"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("failed to load config: %v", err)
		return cli.ExitUsage
	}

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		log.Printf("failed to initialize logger: %v", err)
		return cli.ExitFailure
	}
	defer cleanup()

	policy, err := store.ParseIDPolicy(cfg.ImportIDPolicy)
	if err != nil {
		logger.Error("invalid IMPORT_ID_POLICY", "error", err)
		return cli.ExitUsage
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.DBPath, "error", err)
		return cli.ExitFailure
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	svc := service.NewInventoryService(store.NewEquipmentStore(database), logger)
	app := cli.New(svc, logger, os.Stdout, os.Stderr, policy)
	return app.Run(ctx, os.Args[1:])
}
