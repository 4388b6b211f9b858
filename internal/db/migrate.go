package db

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func newMigrator(params NewDBPoolParams) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}

	// the pgx/v5 driver registers itself under the pgx5 scheme
	dsn := strings.Replace(params.ConnString(), "postgres://", "pgx5://", 1)
	m, err := migrate.NewWithSourceInstance("iofs", source, dsn)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}

// MigrateUp applies all pending migrations.
func MigrateUp(params NewDBPoolParams) (err error) {
	m, err := newMigrator(params)
	if err != nil {
		return err
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if err == nil {
			err = multierr.Combine(srcErr, dbErr)
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations up: %w", err)
	}

	version, dirty, vErr := m.Version()
	if vErr == nil {
		log.Debugf("db schema at version %d (dirty: %t)", version, dirty)
	}
	return nil
}

// MigrateDown rolls back the given number of migrations.
func MigrateDown(params NewDBPoolParams, steps int) (err error) {
	if steps < 1 {
		return fmt.Errorf("steps must be greater than 0, got %d", steps)
	}

	m, err := newMigrator(params)
	if err != nil {
		return err
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if err == nil {
			err = multierr.Combine(srcErr, dbErr)
		}
	}()

	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations down: %w", err)
	}
	return nil
}
