package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Migrate applies or reverts every embedded migration on the provider's handle.
func Migrate(ctx context.Context, p *Provider, dir Direction, logger *slog.Logger) error {
	m, err := newMigrate(ctx, p)
	if err != nil {
		return err
	}
	defer closeMigrate(m, logger)

	switch dir {
	case Up:
		err = m.Up()
	case Down:
		err = m.Down()
	default:
		return fmt.Errorf("unknown migration direction %q", dir)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations (%s): %w", dir, err)
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read migration version: %w", verr)
	}
	logger.InfoContext(ctx, "migrations applied", "direction", string(dir), "version", version, "dirty", dirty)
	return nil
}

// Version reports the current schema version. ok is false when no migration has run.
func Version(ctx context.Context, p *Provider) (version uint, dirty bool, ok bool, err error) {
	m, err := newMigrate(ctx, p)
	if err != nil {
		return 0, false, false, err
	}
	defer closeMigrate(m, slog.Default())

	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, false, nil
	}
	if err != nil {
		return 0, false, false, fmt.Errorf("failed to read migration version: %w", err)
	}
	return version, dirty, true, nil
}

// newMigrate borrows one pooled connection rather than handing the *sql.DB to
// the driver, whose Close would otherwise close the shared handle.
func newMigrate(ctx context.Context, p *Provider) (*migrate.Migrate, error) {
	db, err := p.Handle(ctx)
	if err != nil {
		return nil, err
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}

	driver, err := postgres.WithConnection(ctx, conn, &postgres.Config{})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		driver.Close()
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

func closeMigrate(m *migrate.Migrate, logger *slog.Logger) {
	srcErr, dbErr := m.Close()
	if srcErr != nil || dbErr != nil {
		logger.Warn("failed to close migrate instance", "source_error", srcErr, "database_error", dbErr)
	}
}
