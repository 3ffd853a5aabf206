package repository

import (
	"context"
	"database/sql"
	"fmt"

	"fitpro-backend/repository/migrations"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"
)

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// gooseRunContext is a seam for testing goose.RunContext.
var gooseRunContext = func(ctx context.Context, command string, db *sql.DB, dir string, args ...string) error {
	return goose.RunContext(ctx, command, db, dir, args...)
}

// RunMigrations applies the embedded schema migrations through the pool
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()
	return Migrate(ctx, db)
}

// MigrateWithRetry applies the embedded migrations through the pool until
// they succeed, backoff stops, or ctx is done. onError, when set, sees every
// failed attempt.
func MigrateWithRetry(ctx context.Context, pool *pgxpool.Pool, backoff retry.Backoff, onError func(error)) error {
	return retryMigrations(ctx, backoff, func(ctx context.Context) error {
		return RunMigrations(ctx, pool)
	}, onError)
}

func retryMigrations(ctx context.Context, backoff retry.Backoff, run func(context.Context) error, onError func(error)) error {
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := run(ctx); err != nil {
			if onError != nil {
				onError(err)
			}
			return retry.RetryableError(err)
		}
		return nil
	})
}

// Migrate applies all pending embedded migrations to db
func Migrate(ctx context.Context, db *sql.DB) error {
	if err := useEmbeddedMigrations(); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// RunMigrationCommand runs a goose command (up, down, status, version, ...)
// against the embedded migrations
func RunMigrationCommand(ctx context.Context, db *sql.DB, command string, args ...string) error {
	if err := useEmbeddedMigrations(); err != nil {
		return err
	}
	if err := gooseRunContext(ctx, command, db, ".", args...); err != nil {
		return fmt.Errorf("migration command %q failed: %w", command, err)
	}
	return nil
}

func useEmbeddedMigrations() error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return nil
}
