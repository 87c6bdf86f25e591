package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"

	"todoTracker/internal/config"
	"todoTracker/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// EnsureSchema creates the application database when missing and applies the
// todos table definition. Safe to run on every start.
func EnsureSchema(ctx context.Context, cfg config.DatabaseConfig) error {
	logger.Info("Repository: ensuring schema", zap.String("database", cfg.Name))

	if err := ensureDatabase(ctx, cfg); err != nil {
		return err
	}
	if err := applyMigrations(cfg); err != nil {
		return err
	}

	logger.Info("Repository: schema is ready", zap.String("database", cfg.Name))
	return nil
}

func ensureDatabase(ctx context.Context, cfg config.DatabaseConfig) error {
	conn, err := pgx.Connect(ctx, cfg.URL(cfg.AdminName))
	if err != nil {
		logger.Error("Repository: failed to connect to maintenance database", err, zap.String("database", cfg.AdminName))
		return fmt.Errorf("connecting to %s: %w", cfg.AdminName, err)
	}
	defer conn.Close(ctx)

	var exists bool
	err = conn.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)`, cfg.Name).Scan(&exists)
	if err != nil {
		logger.Error("Repository: failed to look up database", err, zap.String("database", cfg.Name))
		return fmt.Errorf("looking up database %s: %w", cfg.Name, err)
	}
	if exists {
		return nil
	}

	// CREATE DATABASE takes no parameters; the name goes through identifier quoting.
	if _, err := conn.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{cfg.Name}.Sanitize()); err != nil {
		logger.Error("Repository: failed to create database", err, zap.String("database", cfg.Name))
		return fmt.Errorf("creating database %s: %w", cfg.Name, err)
	}
	logger.Info("Repository: database created", zap.String("database", cfg.Name))
	return nil
}

func applyMigrations(cfg config.DatabaseConfig) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, migrateURL(cfg.AppURL()))
	if err != nil {
		logger.Error("Repository: failed to init migrations", err)
		return fmt.Errorf("init migrations: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.Warn("Repository: failed to close migrator", zap.NamedError("source", srcErr), zap.NamedError("db", dbErr))
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("Repository: failed to apply migrations", err)
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}

// migrateURL switches the scheme to the one the pgx/v5 migrate driver registers.
func migrateURL(connURL string) string {
	return "pgx5" + strings.TrimPrefix(connURL, "postgres")
}
