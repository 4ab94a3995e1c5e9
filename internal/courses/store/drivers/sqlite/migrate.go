package sqlite

import (
	"errors"
	"fmt"

	"github.com/aussiebroadwan/courses/internal/courses/store/drivers/sqlite/migrations"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// ApplyMigrations applies any pending migrations from the embedded schema.
// It runs at start-up and again ahead of every page request. Once it has
// succeeded on this Store it returns immediately without touching the
// database.
//
// The migrate instance must not be closed: that closes the shared *sql.DB.
func (s *Store) ApplyMigrations() error {
	if s.migrated.Load() {
		return nil
	}

	s.migrateMu.Lock()
	defer s.migrateMu.Unlock()

	if s.migrated.Load() {
		return nil
	}

	driver, err := sqlite.WithInstance(s.db.DB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("migrate driver: %w", err)
	}

	source, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return fmt.Errorf("migrate source: %w", err)
	}

	instance, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("migrate instance: %w", err)
	}

	if err := instance.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}

	s.migrated.Store(true)
	return nil
}
