package main

import (
	"context"
	"fmt"
	"os"

	"github.com/blagoySimandov/imagify/internal/config"
	"github.com/blagoySimandov/imagify/internal/db"
	"github.com/blagoySimandov/imagify/migrations"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun/migrate"
)

func main() {
	ctx := context.Background()

	dsn, err := config.LoadDatabaseURL()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	bunDB, err := db.NewBunPostgresClient(ctx, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer bunDB.Close()

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "up":
		group, err := migrations.Apply(ctx, bunDB)
		if err != nil {
			log.Fatal().Err(err).Msg("migration failed")
		}
		if group.IsZero() {
			fmt.Println("No new migrations to run (database is up to date)")
			return
		}
		fmt.Printf("Migrated to %s\n", group)

	case "down":
		migrator := migrate.NewMigrator(bunDB, migrations.Migrations)
		if err := migrator.Init(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to initialize migrator")
		}
		group, err := migrator.Rollback(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("rollback failed")
		}
		if group.IsZero() {
			fmt.Println("No migrations to rollback")
			return
		}
		fmt.Printf("Rolled back %s\n", group)

	case "status":
		migrator := migrate.NewMigrator(bunDB, migrations.Migrations)
		if err := migrator.Init(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to initialize migrator")
		}
		ms, err := migrator.MigrationsWithStatus(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to get migration status")
		}
		fmt.Printf("Migrations:\n")
		for _, m := range ms {
			status := "pending"
			if m.IsApplied() {
				status = "applied"
			}
			fmt.Printf("  %s: %s\n", m.Name, status)
		}

	default:
		fmt.Println("Usage: migrate [up|down|status]")
		fmt.Println("  up     - Run all pending migrations")
		fmt.Println("  down   - Rollback the last migration group")
		fmt.Println("  status - Show migration status")
		os.Exit(1)
	}
}
