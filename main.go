package main

import (
	"context"
	"fmt"
	"os"

	"hackboard/src/app/server"
	"hackboard/src/infra/config"
	"hackboard/src/infra/db"
	"hackboard/src/infra/logger"
	"hackboard/src/infra/repo"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg.Log)
	log.Info("configuration loaded",
		"server_addr", cfg.Server.Addr(),
		"db_host", cfg.Database.Host,
		"log_level", cfg.Log.Level,
	)

	ctx := context.Background()
	pg, err := db.New(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pg.Close()

	repository := repo.NewPostgresRepository(pg, log)

	srv := server.New(cfg, log, repository)
	return srv.Run()
}
