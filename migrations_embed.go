package main

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"food-truck/db"
	applog "food-truck/log"
)

// Embedded so `food-truck migrate` works from any working directory.
//
//go:embed migrations/*.sql
var migrationsFS embed.FS

func migrationNames() ([]string, error) {
	names, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// applyMigrations runs every migration in file name order. The scripts are
// idempotent, so re-running them on an existing database is safe.
func applyMigrations(ctx context.Context, verbose bool) error {
	logger := applog.WithComponent("migrate")
	names, err := migrationNames()
	if err != nil {
		return err
	}
	for _, name := range names {
		sqlBytes, err := migrationsFS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := db.Pool.Exec(ctx, string(sqlBytes)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		ev := logger.Debug()
		if verbose {
			ev = logger.Info()
		}
		ev.Str("migration", name).Msg("migration applied")
	}
	return nil
}
