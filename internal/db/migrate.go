package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/udisondev/partybattle/internal/db/migrations"
)

// RunMigrations applies the embedded battle result schema to dsn.
func RunMigrations(ctx context.Context, dsn string) error {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("opening sql connection for migrations: %w", err)
	}
	defer sqlDB.Close()

	version, err := migrations.Up(ctx, sqlDB)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Debug("schema migrated", "version", version)
	return nil
}
