package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/samirrijal/pinmap/internal/adapters/postgres"
	"github.com/samirrijal/pinmap/internal/pkg/config"
	"github.com/samirrijal/pinmap/internal/pkg/logging"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down|status>")
	}

	cfg, err := config.Load("pinmap-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, "text")

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	switch os.Args[1] {
	case "up":
		n, err := db.Migrate(ctx)
		if err != nil {
			log.Fatalf("migrate: %v", err)
		}
		slog.Info("all migrations applied", "new", n)
	case "down":
		if err := db.Rollback(ctx); err != nil {
			log.Fatalf("rollback: %v", err)
		}
		slog.Info("schema dropped")
	case "status":
		migrations, err := postgres.Migrations()
		if err != nil {
			log.Fatalf("list migrations: %v", err)
		}
		for _, m := range migrations {
			slog.Info("embedded migration", "version", m.Version, "name", m.Name)
		}
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}
