package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

func openMigrator(dsn string) (*sql.DB, error) {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("platform/db: goose dialect: %w", err)
	}
	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("platform/db: open database: %w", err)
	}
	return conn, nil
}

// MigrateUp applies all pending schema migrations.
func MigrateUp(ctx context.Context, dsn string) error {
	conn, err := openMigrator(dsn)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := goose.UpContext(ctx, conn, "migrations"); err != nil {
		return fmt.Errorf("platform/db: run migrations: %w", err)
	}
	return nil
}

// MigrationStatus prints the applied state of every migration to out.
func MigrationStatus(ctx context.Context, dsn string, out io.Writer) error {
	conn, err := openMigrator(dsn)
	if err != nil {
		return err
	}
	defer conn.Close()

	current, err := goose.GetDBVersionContext(ctx, conn)
	if err != nil {
		return fmt.Errorf("platform/db: read version: %w", err)
	}
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "current version: %d\n", current)
	for _, entry := range entries {
		_, _ = fmt.Fprintln(out, entry.Name())
	}
	return nil
}
