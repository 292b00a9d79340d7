package database

import (
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/maeulsoft/programhub/internal/logger"
)

// RunMigrations applies all pending schema migrations from the
// migrations/ directory.
func RunMigrations(dbURL string, log logger.Logger) error {
	if dbURL == "" {
		return fmt.Errorf("database URL not set")
	}

	m, err := migrate.New("file://migrations", dbURL)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		log.Warn("could not read migration version", map[string]interface{}{"error": err.Error()})
	}

	if dirty {
		log.Warn("database in dirty state, forcing version", map[string]interface{}{"version": version})
		if err := m.Force(int(version)); err != nil {
			return fmt.Errorf("failed to force version: %w", err)
		}
	}

	if err := m.Up(); err != nil {
		if err == migrate.ErrNoChange {
			log.Info("database schema is up to date", map[string]interface{}{"version": version})
			return nil
		}
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, _, _ = m.Version()
	log.Info("migrations applied", map[string]interface{}{"version": version})
	return nil
}
